// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"testing"

	"github.com/SoftbearStudios/drift/sim"
	"github.com/rs/zerolog"
)

// fullRoomSnapshot builds a worst-case room: 8 players mid-race with live
// effects and drift state, plus the full track layout.
func fullRoomSnapshot() *sim.Snapshot {
	simulation := sim.New(424242, 3, zerolog.Nop())

	for i := sim.PlayerID(1); i <= 8; i++ {
		player := simulation.AddPlayer(i, "racer", sim.VehicleClass(uint8(i)%uint8(sim.VehicleClassCount)), sim.ColorID(i))
		sim.ApplyEffect(player, sim.EffectSlow, 2500, 0.55, 0)
		sim.ApplyEffect(player, sim.EffectShield, 4000, 1, 0)
		player.Progress.DistanceMeters = float32(i) * 137.5
		player.Progress.Lap = int(i) % 3
		player.LastProcessedInputSeq = 1_000_000 + uint32(i)
		player.Drift.State = sim.DriftDrifting
		player.Drift.BoostTier = 3
	}

	// Positions off-grid so floats carry full precision.
	seq := uint32(0)
	for tick := int64(0); tick < 40; tick++ {
		for i := sim.PlayerID(1); i <= 8; i++ {
			seq++
			simulation.QueueInput(i, sim.InputFrame{Seq: seq, Controls: sim.Controls{Throttle: 1, Steering: 0.37}})
		}
		simulation.Step(tick * sim.TickPeriodMs)
	}

	return simulation.BuildSnapshot(40 * sim.TickPeriodMs)
}

func TestSnapshotByteBudget(t *testing.T) {
	snapshot := fullRoomSnapshot()

	buf, err := json.Marshal(Message{Data: ServerSnapshot{Seq: snapshot.Seq, Snapshot: snapshot}})
	if err != nil {
		t.Fatal("error marshaling:", err.Error())
	}

	if len(buf) > sim.SnapshotByteBudget {
		t.Errorf("snapshot is %d bytes, budget %d:\n%s", len(buf), sim.SnapshotByteBudget, buf)
	}
}

func TestSnapshotPlayerRoundtrip(t *testing.T) {
	in := sim.SnapshotPlayer{
		ID:         7,
		X:          -3.25,
		Z:          812.5,
		Yaw:        0.5,
		Speed:      24.75,
		DriftState: sim.DriftDrifting,
		BoostTier:  2,
		Lap:        1,
		Checkpoint: 5,
		LastSeq:    90210,
		Finished:   true,
		Effects:    []sim.SnapshotEffect{{Type: sim.EffectSlow, RemainingMs: 1200}},
	}

	buf, err := json.Marshal(in)
	if err != nil {
		t.Fatal("error marshaling:", err.Error())
	}

	var out sim.SnapshotPlayer
	if err = json.Unmarshal(buf, &out); err != nil {
		t.Fatal("error unmarshaling:", err.Error())
	}

	if out.ID != in.ID || out.X != in.X || out.Z != in.Z || out.Yaw != in.Yaw ||
		out.Speed != in.Speed || out.DriftState != in.DriftState || out.BoostTier != in.BoostTier ||
		out.Lap != in.Lap || out.Checkpoint != in.Checkpoint || out.LastSeq != in.LastSeq ||
		out.Finished != in.Finished {
		t.Errorf("roundtrip mismatch:\nin:  %+v\nout: %+v", in, out)
	}
	if len(out.Effects) != 1 || out.Effects[0] != in.Effects[0] {
		t.Errorf("effects mismatch: %+v", out.Effects)
	}
}

func TestInboundMessageDecode(t *testing.T) {
	const frame = `{"type":"inputFrame","data":{"frame":{"seq":42,"timestampMs":1000,"controls":{"throttle":1,"steering":-0.5,"handbrake":true}}}}`

	var message Message
	if err := json.Unmarshal([]byte(frame), &message); err != nil {
		t.Fatal("error unmarshaling:", err.Error())
	}

	in, ok := message.Data.(InputFrame)
	if !ok {
		t.Fatalf("expected InputFrame, got %T", message.Data)
	}
	if in.Frame.Seq != 42 || in.Frame.Controls.Steering != -0.5 || !in.Frame.Controls.Handbrake {
		t.Errorf("unexpected frame: %+v", in.Frame)
	}

	// Type after data forces the double read.
	const reversed = `{"data":{"frame":{"seq":7,"controls":{"throttle":1,"steering":0}}},"type":"inputFrame"}`
	if err := json.Unmarshal([]byte(reversed), &message); err != nil {
		t.Fatal("error unmarshaling reversed:", err.Error())
	}
	if in, ok = message.Data.(InputFrame); !ok || in.Frame.Seq != 7 {
		t.Errorf("reversed field order decode failed: %+v", message.Data)
	}
}

func TestUnknownInboundType(t *testing.T) {
	var message Message
	if err := json.Unmarshal([]byte(`{"type":"launchMissiles","data":{}}`), &message); err != nil {
		t.Fatal("error unmarshaling:", err.Error())
	}

	invalid, ok := message.Data.(InvalidInbound)
	if !ok {
		t.Fatalf("expected InvalidInbound, got %T", message.Data)
	}
	if invalid.messageType != "launchMissiles" {
		t.Errorf("expected preserved message type, got %q", invalid.messageType)
	}
}

func BenchmarkMarshalSnapshot(b *testing.B) {
	snapshot := fullRoomSnapshot()
	message := Message{Data: ServerSnapshot{Seq: snapshot.Seq, Snapshot: snapshot}}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(message); err != nil {
			b.Fatal(err)
		}
	}
}
