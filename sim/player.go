// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// Motion is the wire-visible kinematic state of a car.
type Motion struct {
	PositionX float32 `json:"x"`
	PositionZ float32 `json:"z"`
	RotationY float32 `json:"yaw"`
	// Speed is the cached forward speed scalar. Collision response resets
	// it to zero so downstream logic recomputes from the corrected velocity.
	Speed float32 `json:"speed"`
}

// Effect is one active status effect. At most one per EffectType exists on
// a player; duplicates merge by max expiry and max intensity.
type Effect struct {
	Type        EffectType `json:"type"`
	AppliedAtMs int64      `json:"appliedAtMs"`
	ExpiresAtMs int64      `json:"expiresAtMs"`
	Intensity   float32    `json:"intensity"`
}

// Progress tracks a player's position in the race.
type Progress struct {
	Lap                  int     `json:"lap"`
	CheckpointIndex      int     `json:"checkpoint"`
	CompletedCheckpoints []bool  `json:"-"`
	DistanceMeters       float32 `json:"distance"`
	FinishedAtMs         int64   `json:"finishedAtMs,omitempty"`
}

// Player is the authoritative per-player simulation state.
type Player struct {
	ID    PlayerID
	Name  string
	Class VehicleClass
	Color ColorID

	Motion   Motion
	Input    Controls // last known input, reused when the queue is empty
	Drift    DriftContext
	Effects  []Effect
	Progress Progress

	// LastProcessedInputSeq is monotonic non-decreasing.
	LastProcessedInputSeq uint32

	// Per-race ability bookkeeping.
	AbilityLastUsedMs [AbilityTypeCount]int64
	AbilityUseCount   [AbilityTypeCount]uint8

	queue InputQueue
}

// Finished reports whether the player has crossed the final finish line.
func (player *Player) Finished() bool {
	return player.Progress.FinishedAtMs != 0
}

// QueueInput buffers a control frame for the next tick.
func (player *Player) QueueInput(frame InputFrame) {
	player.queue.Push(frame)
}

// EffectByType returns the active effect of the given type, or nil.
func (player *Player) EffectByType(effectType EffectType) *Effect {
	for i := range player.Effects {
		if player.Effects[i].Type == effectType {
			return &player.Effects[i]
		}
	}
	return nil
}

// Shielded reports whether a shield effect is active at nowMs.
func (player *Player) Shielded(nowMs int64) bool {
	effect := player.EffectByType(EffectShield)
	return effect != nil && effect.ExpiresAtMs > nowMs
}

// resetRaceState clears progress, effects, drift, and ability counters for
// a mid-race restart. Identity (name/class/color) and input seq survive:
// the client does not renumber its frames on restart.
func (player *Player) resetRaceState() {
	player.Drift = DriftContext{}
	player.Effects = player.Effects[:0]
	player.Progress = Progress{
		CompletedCheckpoints: make([]bool, TrackCheckpoints),
	}
	player.AbilityLastUsedMs = [AbilityTypeCount]int64{}
	player.AbilityUseCount = [AbilityTypeCount]uint8{}
	player.Motion = Motion{}
	player.Input = Controls{}
}
