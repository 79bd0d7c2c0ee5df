// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"testing"

	"github.com/rs/zerolog"
)

// script drives a player with the same frame every tick.
func script(simulation *Simulation, id PlayerID, seq uint32, controls Controls, nowMs int64) {
	simulation.QueueInput(id, InputFrame{Seq: seq, TimestampMs: nowMs, Controls: controls})
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() *Simulation {
		simulation := New(7, 3, zerolog.Nop())
		simulation.AddPlayer(1, "a", VehicleBalanced, 0)
		simulation.AddPlayer(2, "b", VehicleSpeedster, 1)
		simulation.AddPlayer(3, "c", VehicleTank, 2)

		seq := uint32(0)
		for tick := int64(0); tick < 200; tick++ {
			now := tick * TickPeriodMs
			seq++
			script(simulation, 1, seq, Controls{Throttle: 1, Steering: 0.3}, now)
			script(simulation, 2, seq, Controls{Throttle: 1, Handbrake: tick%40 > 20, Steering: 1}, now)
			script(simulation, 3, seq, Controls{Throttle: 0.5, Steering: -0.2}, now)
			simulation.Step(now)
		}
		return simulation
	}

	one := run()
	two := run()

	for _, player := range one.Players() {
		other := two.Player(player.ID)
		if player.Motion != other.Motion {
			t.Errorf("player %d diverged: %+v vs %+v", player.ID, player.Motion, other.Motion)
		}
		if player.Drift != other.Drift {
			t.Errorf("player %d drift diverged: %+v vs %+v", player.ID, player.Drift, other.Drift)
		}
		if player.Progress.DistanceMeters != other.Progress.DistanceMeters ||
			player.Progress.Lap != other.Progress.Lap ||
			player.Progress.CheckpointIndex != other.Progress.CheckpointIndex {
			t.Errorf("player %d progress diverged: %+v vs %+v", player.ID, player.Progress, other.Progress)
		}
	}
}

func TestSimulation_BoundaryClamp(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	seq := uint32(0)
	for tick := int64(0); tick < 400; tick++ {
		now := tick * TickPeriodMs
		seq++
		script(simulation, 1, seq, Controls{Throttle: 1, Steering: 1}, now)
		simulation.Step(now)

		x := simulation.Player(1).Motion.PositionX
		if x > TrackBoundaryX || x < -TrackBoundaryX {
			t.Fatalf("tick %d: position %f escaped the boundary", tick, x)
		}
	}
}

func TestSimulation_CheckpointProgress(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	seq := uint32(0)
	var sawCheckpoint bool
	for tick := int64(0); tick < 300; tick++ {
		now := tick * TickPeriodMs
		seq++
		script(simulation, 1, seq, Controls{Throttle: 1}, now)
		simulation.Step(now)

		if eventOfKind(simulation.TakeEvents(), EventCheckpoint) != nil {
			sawCheckpoint = true
		}
	}

	if !sawCheckpoint {
		t.Fatal("expected a checkpoint_passed event")
	}

	progress := simulation.Player(1).Progress
	if !progress.CompletedCheckpoints[0] {
		t.Error("expected the first checkpoint completed")
	}
	if progress.DistanceMeters <= 0 {
		t.Error("expected forward distance")
	}
}

func TestSimulation_ProcessesInputSequence(t *testing.T) {
	simulation := New(42, 3, zerolog.Nop())
	a := simulation.AddPlayer(1, "a", VehicleBalanced, 0)
	simulation.AddPlayer(2, "b", VehicleSpeedster, 1)

	// Run the countdown out so throttle has authority.
	now := int64(0)
	for simulation.Status() != RaceRacing {
		simulation.Step(now)
		now += TickPeriodMs
	}

	// One throttle frame per tick, seq 1..20.
	for seq := uint32(1); seq <= 20; seq++ {
		simulation.QueueInput(1, InputFrame{Seq: seq, TimestampMs: now, Controls: Controls{Throttle: 1}})
		simulation.Step(now)
		now += TickPeriodMs
	}

	if a.LastProcessedInputSeq != 20 {
		t.Errorf("expected last processed seq 20, got %d", a.LastProcessedInputSeq)
	}
	if a.Motion.Speed <= 0 {
		t.Errorf("expected forward speed after sustained throttle, got %f", a.Motion.Speed)
	}
}

func TestSimulation_DistanceRatchets(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	seq := uint32(0)
	// Drive forward, then slam into reverse.
	var peak float32
	for tick := int64(0); tick < 400; tick++ {
		now := tick * TickPeriodMs
		seq++
		controls := Controls{Throttle: 1}
		if tick > 200 {
			controls = Controls{Throttle: -1}
		}
		script(simulation, 1, seq, controls, now)
		simulation.Step(now)

		distance := simulation.Player(1).Progress.DistanceMeters
		if distance < peak {
			t.Fatalf("tick %d: distance %f fell below peak %f", tick, distance, peak)
		}
		peak = distance
	}
}

func TestSimulation_MissingBodyDoesNotPanic(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	// Force the invariant violation the tick must survive.
	delete(simulation.players.bodies, 1)

	simulation.Step(0)
	simulation.Step(TickPeriodMs)
}

func TestSimulation_Restart(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	seq := uint32(0)
	for tick := int64(0); tick < 200; tick++ {
		now := tick * TickPeriodMs
		seq++
		script(simulation, 1, seq, Controls{Throttle: 1}, now)
		simulation.Step(now)
	}

	if simulation.Player(1).Motion.PositionZ == SpawnTransform(0).Z {
		t.Fatal("expected the car to have moved before restarting")
	}

	simulation.TakeEvents()
	simulation.Restart(200 * TickPeriodMs)

	if simulation.Status() != RaceCountdown {
		t.Errorf("expected countdown after restart, got %v", simulation.Status())
	}

	player := simulation.Player(1)
	if player.Motion.PositionX != SpawnTransform(0).X || player.Motion.PositionZ != SpawnTransform(0).Z {
		t.Errorf("expected spawn transform, got %f,%f", player.Motion.PositionX, player.Motion.PositionZ)
	}
	if player.Progress.DistanceMeters != 0 || player.Progress.Lap != 0 {
		t.Errorf("expected fresh progress, got %+v", player.Progress)
	}

	if eventOfKind(simulation.TakeEvents(), EventRaceRestarted) == nil {
		t.Error("expected race_restarted event")
	}
}

func TestSimulation_RaceFinish(t *testing.T) {
	simulation := New(1, 1, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	seq := uint32(0)
	var finished bool
	for tick := int64(0); tick < 1200 && !finished; tick++ {
		now := tick * TickPeriodMs
		seq++
		script(simulation, 1, seq, Controls{Throttle: 1}, now)
		simulation.Step(now)

		if eventOfKind(simulation.TakeEvents(), EventRaceFinished) != nil {
			finished = true
		}
	}

	if !finished {
		t.Fatal("expected the race to finish within the window")
	}
	if simulation.Winner() != 1 {
		t.Errorf("expected winner 1, got %d", simulation.Winner())
	}
	if simulation.Status() != RaceFinished {
		t.Errorf("expected finished status, got %v", simulation.Status())
	}
}

func BenchmarkSimulationStep(b *testing.B) {
	simulation := New(1, 3, zerolog.Nop())
	for i := PlayerID(1); i <= 8; i++ {
		simulation.AddPlayer(i, "car", VehicleBalanced, 0)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		simulation.Step(int64(i) * TickPeriodMs)
	}
}
