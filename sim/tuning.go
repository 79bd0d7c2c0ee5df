// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import "time"

const (
	TickPeriod     = time.Second / 20
	TickPeriodMs   = int64(TickPeriod / time.Millisecond)
	TicksPerSecond = int(time.Second / TickPeriod)
)

// Track geometry. The track is a longitudinal loop: cars accumulate distance
// along +Z and wrap every TrackLapLength meters. Lateral position is bounded.
const (
	TrackBoundaryX    = 16.0  // |x| may never exceed this
	TrackLapLength    = 400.0 // meters per lap
	TrackCheckpoints  = 8     // evenly spaced along the lap
	TrackDefaultLaps  = 3
	FinishColliderPad = 0 // finish uses the car's forward extent, no extra pad
)

// Car physics.
const (
	carAcceleration  = 9.0  // m/s^2 at full throttle
	carBrakeDecel    = 14.0 // m/s^2 at full brake
	carDrag          = 0.35 // per-second proportional drag
	carLateralGrip   = 8.0  // per-second lateral velocity damping when gripping
	carSteerRate     = 1.9  // rad/s at full steer and reference speed
	carSteerRefSpeed = 10.0 // m/s where full steer rate is reached
	carReverseFactor = 0.4  // reverse acceleration fraction

	// GuardrailSpeed bounds any single body's planar speed. Nothing, including
	// repeated bumps and stacked boosts, may push a car past it.
	GuardrailSpeed = 55.0
)

// Collision response.
const (
	bumpImpulse    = 6.0  // base delta-velocity of a player/player bump
	bumpSpeedClamp = 30.0 // post-bump planar speed ceiling
)

// Drift state machine.
const (
	DriftInitiationSpeed     = 12.0 // m/s required to begin initiating
	DriftSteerThreshold      = 0.5  // |steer| required to begin initiating
	DriftInitiationHoldMs    = 400  // continuous hold to reach DRIFTING
	DriftInitiationTimeoutMs = 1500 // safety timeout inside INITIATING
	DriftRecoveryMs          = 600  // RECOVERING duration
	DriftSteerNeutral        = 0.15 // |steer| below this ends a drift

	// Boost tiers unlocked by accumulated drift time.
	DriftTier1Ms = 1000
	DriftTier2Ms = 2200
	DriftTier3Ms = 3600
)

// Lateral friction multipliers by drift state. A lower value lets the car
// slide further before lateral velocity is damped away.
const (
	frictionGripping   = 1.0
	frictionInitiating = 0.55
	frictionDrifting   = 0.3
	frictionRecovering = 0.8
)

// driftBoostImpulse is the forward impulse in m/s granted per tier.
var driftBoostImpulse = [4]float32{0, 5, 9, 14}

// Status effects.
const (
	effectStunDurationMs  = 1500
	effectSlowDurationMs  = 2500
	effectSlowFactor      = 0.55
	effectBoostDurationMs = 2000
	effectBoostFactor     = 1.4
	effectShieldDuration  = 4000
)

// Abilities.
const (
	projectileSpeed      = 40.0 // m/s
	projectileLifetimeMs = 2500
	projectileHitRadius  = 2.0
	deployableLifetimeMs = 12000
	deployableRadius     = 2.5
)

// Powerups respawn after being collected.
const (
	powerupRespawnMs = 8000
	powerupRadius    = 2.0
	hazardRadius     = 2.5
)

// SnapshotByteBudget is the hard ceiling for a serialized snapshot of a full
// 8 player room. Every field added to the snapshot competes for this budget.
const SnapshotByteBudget = 4096
