// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"github.com/rs/zerolog"
)

// RaceStatus is the room-level race phase.
type RaceStatus uint8

const (
	RaceCountdown RaceStatus = iota
	RaceRacing
	RaceFinished
)

var raceStatusLabels = [...]string{"countdown", "racing", "finished"}

func (status RaceStatus) String() string {
	if int(status) >= len(raceStatusLabels) {
		return "invalid"
	}
	return raceStatusLabels[status]
}

const (
	countdownMs   = 3000
	finishGraceMs = 30000 // stragglers get this long after the winner
)

// Simulation advances one room's authoritative state by fixed ticks.
// It is single-threaded: Step and every mutating method must be called
// from the same goroutine. It performs no I/O and never panics across a
// tick; identical seed plus identical ordered input history produces
// bit-identical player state on two independent instances.
type Simulation struct {
	track   *Track
	players *PlayerManager

	effects     EffectSystem
	abilities   AbilitySystem
	powerups    PowerupSystem
	projectiles ProjectileSystem
	hazards     *HazardSystem

	status          RaceStatus
	startedAtMs     int64
	endedAtMs       int64
	countdownEndsMs int64
	winner          PlayerID

	snapshotSeq uint32
	events      []Event

	log zerolog.Logger
}

// New creates a simulation for a room seed. The logger may be a no-op.
func New(seed int64, totalLaps int, log zerolog.Logger) *Simulation {
	return &Simulation{
		track:   NewTrack(seed, totalLaps),
		players: NewPlayerManager(),
		hazards: NewHazardSystem(),
		log:     log,
	}
}

func (simulation *Simulation) Track() *Track {
	return simulation.track
}

func (simulation *Simulation) Players() []*Player {
	return simulation.players.Players()
}

func (simulation *Simulation) Player(id PlayerID) *Player {
	return simulation.players.Get(id)
}

func (simulation *Simulation) Status() RaceStatus {
	return simulation.status
}

func (simulation *Simulation) Winner() PlayerID {
	return simulation.winner
}

// StartedAtMs is when the countdown ended, 0 before the first start.
func (simulation *Simulation) StartedAtMs() int64 {
	return simulation.startedAtMs
}

// AddPlayer registers a player and spawns its body on the grid.
func (simulation *Simulation) AddPlayer(id PlayerID, name string, class VehicleClass, color ColorID) *Player {
	if !class.Valid() {
		class = VehicleBalanced
	}
	return simulation.players.Add(id, name, class, color)
}

// RemovePlayer tears down the player's body synchronously. Safe to call
// between ticks; never during one.
func (simulation *Simulation) RemovePlayer(id PlayerID) {
	simulation.players.Remove(id)
}

// QueueInput buffers a control frame. Malformed frames are neutralized by
// clamping, never treated as an error.
func (simulation *Simulation) QueueInput(id PlayerID, frame InputFrame) {
	player := simulation.players.Get(id)
	if player == nil {
		return
	}
	frame.Controls = frame.Controls.Sanitize()
	player.QueueInput(frame)
}

// QueueAbility buffers an ability activation for the next tick's drain.
func (simulation *Simulation) QueueAbility(actor PlayerID, rawAbility uint8, target PlayerID) {
	simulation.abilities.Enqueue(AbilityRequest{Actor: actor, Raw: rawAbility, Target: target})
}

// Restart puts every player back on the grid and rolls the race back to
// countdown. Deployed hazards and collected pads reset with it.
func (simulation *Simulation) Restart(nowMs int64) {
	simulation.players.Reset()
	simulation.hazards.Reset()
	simulation.track.ResetPowerups()
	simulation.projectiles.projectiles = simulation.projectiles.projectiles[:0]
	simulation.winner = PlayerIDInvalid
	simulation.status = RaceCountdown
	simulation.startedAtMs = 0
	simulation.endedAtMs = 0
	simulation.countdownEndsMs = nowMs + countdownMs
	simulation.emit(Event{Kind: EventRaceRestarted, AtMs: nowMs})
}

func (simulation *Simulation) emit(event Event) {
	simulation.events = append(simulation.events, event)
}

// TakeEvents returns events raised since the last call and clears them.
func (simulation *Simulation) TakeEvents() []Event {
	events := simulation.events
	simulation.events = nil
	return events
}

// Step advances the room by one fixed tick. The phase order is load-bearing:
// inputs, drift, physics, motion resync, collisions, gameplay queues,
// effect pruning, race progress, projectiles.
func (simulation *Simulation) Step(nowMs int64) {
	simulation.stepStatus(nowMs)

	players := simulation.players.Players()
	dt := float32(TickPeriodMs) / 1000

	// Per-player drift output, held until the single physics pass.
	type pending struct {
		friction    float32
		boost       float32
		speedFactor float32
		boostTier   uint8
	}
	frame := make([]pending, len(players))

	for i, player := range players {
		// (a) Newest queued frame wins; an empty queue reuses the last
		// known input rather than stalling the car.
		if input, ok := player.queue.ConsumeLatest(player.LastProcessedInputSeq); ok {
			player.Input = input.Controls
			player.LastProcessedInputSeq = input.Seq
		}

		body := simulation.players.Body(player.ID)
		if body == nil {
			// Invariant violation: tracked player without a body. Skip the
			// player this tick and let disconnect handling clean up.
			simulation.log.Warn().Uint32("player", uint32(player.ID)).Msg("missing rigid body")
			continue
		}

		// (b) Drift machine feeds friction/boost into the physics pass.
		out := StepDrift(&player.Drift, player.Input, player.Motion.Speed, body.Yaw, body.Velocity, nowMs)
		frame[i] = pending{
			friction:    out.FrictionLateral,
			boost:       out.BoostImpulse,
			speedFactor: SpeedFactor(player, nowMs),
			boostTier:   out.BoostTier,
		}
	}

	// (c) One physics step for the whole room.
	for i, player := range players {
		body := simulation.players.Body(player.ID)
		if body == nil {
			continue
		}

		controls := player.Input
		if simulation.status != RaceRacing || player.Finished() {
			// Grid and post-finish cars coast; no throttle authority.
			controls = Controls{Brake: true}
		}

		body.Integrate(dt, controls, player.Class.Data(), frame[i].friction, frame[i].speedFactor)

		if frame[i].boost > 0 {
			body.ApplyForwardImpulse(frame[i].boost)
			simulation.emit(Event{Kind: EventDriftBoost, PlayerID: player.ID, Tier: frame[i].boostTier, AtMs: nowMs})
		}
	}

	// (d) Resync motion from bodies, clamping to the track boundary.
	for _, player := range players {
		body := simulation.players.Body(player.ID)
		if body == nil {
			continue
		}

		if body.Position.X > TrackBoundaryX {
			body.Position.X = TrackBoundaryX
			body.Velocity.X = min32(body.Velocity.X, 0)
		} else if body.Position.X < -TrackBoundaryX {
			body.Position.X = -TrackBoundaryX
			body.Velocity.X = max32(body.Velocity.X, 0)
		}

		player.Motion.PositionX = body.Position.X
		player.Motion.PositionZ = body.Position.Z
		player.Motion.RotationY = body.Yaw.Float()
		player.Motion.Speed = body.ForwardSpeed()
	}

	// (e) Resolve contacts.
	for _, pair := range DetectContacts(simulation.players) {
		a := simulation.players.Get(pair.A)
		b := simulation.players.Get(pair.B)
		bodyA := simulation.players.Body(pair.A)
		bodyB := simulation.players.Body(pair.B)
		if a == nil || b == nil || bodyA == nil || bodyB == nil {
			continue
		}
		ApplyPlayerBumpResponse(a, b, bodyA, bodyB)
		simulation.emit(Event{Kind: EventCollision, PlayerID: a.ID, TargetID: b.ID, AtMs: nowMs})
	}

	// (f) Gameplay queues, one outcome event per entry.
	simulation.abilities.Drain(simulation, nowMs)
	simulation.hazards.Detect(simulation, nowMs)
	simulation.hazards.Drain(simulation, nowMs)
	simulation.powerups.Detect(simulation, nowMs)
	simulation.powerups.Drain(simulation, nowMs)
	simulation.effects.Drain(simulation.players, nowMs, simulation.emit)

	// (g) Expired effects drop off.
	for _, player := range players {
		TickEffects(player, nowMs, simulation.emit)
	}

	// (h) Race progress. A race that completes here is reported finished in
	// this tick's snapshot, not the next one's.
	if simulation.status == RaceRacing {
		for _, player := range players {
			body := simulation.players.Body(player.ID)
			if body == nil {
				continue
			}
			updateProgress(simulation, player, body, nowMs)
		}
		simulation.checkRaceOver(nowMs)
	}

	// (i) Projectiles and deployables advance last so a fresh shot is
	// visible in the same tick's snapshot.
	simulation.projectiles.Step(simulation, nowMs)
}

func (simulation *Simulation) stepStatus(nowMs int64) {
	switch simulation.status {
	case RaceCountdown:
		if simulation.countdownEndsMs == 0 {
			simulation.countdownEndsMs = nowMs + countdownMs
		}
		if nowMs >= simulation.countdownEndsMs && simulation.players.Len() > 0 {
			simulation.status = RaceRacing
			simulation.startedAtMs = nowMs
			simulation.emit(Event{Kind: EventRaceStarted, AtMs: nowMs})
		}
	case RaceRacing:
		simulation.checkRaceOver(nowMs)
	}
}

// checkRaceOver ends the race once every player has finished, or once the
// grace window after the winner's finish runs out.
func (simulation *Simulation) checkRaceOver(nowMs int64) {
	finished := 0
	for _, player := range simulation.players.Players() {
		if player.Finished() {
			finished++
		}
	}
	if simulation.players.Len() > 0 && finished == simulation.players.Len() {
		simulation.endRace(nowMs)
	} else if simulation.winner != PlayerIDInvalid {
		if winner := simulation.players.Get(simulation.winner); winner != nil &&
			winner.Progress.FinishedAtMs != 0 && nowMs-winner.Progress.FinishedAtMs >= finishGraceMs {
			simulation.endRace(nowMs)
		}
	}
}

func (simulation *Simulation) endRace(nowMs int64) {
	simulation.status = RaceFinished
	simulation.endedAtMs = nowMs
}
