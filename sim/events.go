// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// EventKind tags a discrete race occurrence broadcast to clients.
type EventKind string

const (
	EventLapCompleted     EventKind = "lap_completed"
	EventCheckpoint       EventKind = "checkpoint_passed"
	EventRaceFinished     EventKind = "race_finished"
	EventRaceStarted      EventKind = "race_started"
	EventRaceRestarted    EventKind = "race_restarted"
	EventCollision        EventKind = "collision"
	EventAbilityActivated EventKind = "ability_activated"
	EventAbilityRejected  EventKind = "ability_rejected"
	EventEffectApplied    EventKind = "effect_applied"
	EventEffectRejected   EventKind = "effect_rejected"
	EventEffectExpired    EventKind = "effect_expired"
	EventEffectAbsorbed   EventKind = "effect_absorbed"
	EventHazardTriggered  EventKind = "hazard_triggered"
	EventHazardRejected   EventKind = "hazard_rejected"
	EventPowerupCollected EventKind = "powerup_collected"
	EventPowerupRejected  EventKind = "powerup_rejected"
	EventDriftBoost       EventKind = "drift_boost"
)

// RejectReason explains a *_rejected event. Gameplay rejections are
// non-fatal and leave simulation state untouched.
type RejectReason string

const (
	RejectCooldown      RejectReason = "cooldown"
	RejectInvalidTarget RejectReason = "invalid_target"
	RejectUnknownID     RejectReason = "unknown_id"
	RejectUsageLimit    RejectReason = "usage-limit"
	RejectNotRacing     RejectReason = "not_racing"
)

// Event is one discrete race occurrence. Zero-valued fields are omitted on
// the wire; every field here competes with the snapshot byte budget.
type Event struct {
	Kind     EventKind    `json:"kind"`
	PlayerID PlayerID     `json:"playerId,omitempty"`
	TargetID PlayerID     `json:"targetId,omitempty"`
	Ability  AbilityType  `json:"ability,omitempty"`
	Effect   EffectType   `json:"effect,omitempty"`
	Reason   RejectReason `json:"reason,omitempty"`
	Lap      int          `json:"lap,omitempty"`
	Tier     uint8        `json:"tier,omitempty"`
	AtMs     int64        `json:"atMs"`
}
