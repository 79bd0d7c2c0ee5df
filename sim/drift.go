// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import "github.com/chewxy/math32"

// DriftState is the per-player drift state machine.
//
//	GRIPPING -> INITIATING -> DRIFTING -> RECOVERING -> GRIPPING
type DriftState uint8

const (
	DriftGripping DriftState = iota
	DriftInitiating
	DriftDrifting
	DriftRecovering
)

var driftStateLabels = [...]string{"gripping", "initiating", "drifting", "recovering"}

func (state DriftState) String() string {
	if int(state) >= len(driftStateLabels) {
		return "invalid"
	}
	return driftStateLabels[state]
}

// DriftContext is the mutable drift state carried by each player.
type DriftContext struct {
	State                  DriftState `json:"state"`
	StateEnteredAtMs       int64      `json:"stateEnteredAtMs"`
	AccumulatedDriftTimeMs int64      `json:"accumulatedDriftTimeMs"`
	BoostTier              uint8      `json:"boostTier"`
	DriftAngle             float32    `json:"driftAngle"`
	LastDriftTickMs        int64      `json:"lastDriftTickMs"`
}

// DriftOutput is what the state machine feeds back into physics each tick.
type DriftOutput struct {
	// FrictionLateral scales lateral grip; below 1 while sliding.
	FrictionLateral float32
	// BoostImpulse is a one-shot forward delta-velocity. Nonzero only on
	// the tick RECOVERING is entered with a pending tier.
	BoostImpulse float32
	// BoostTier is the tier the impulse was paid at, including a threshold
	// crossed on the release tick itself. Meaningful only with a nonzero
	// BoostImpulse.
	BoostTier uint8
}

func (drift *DriftContext) enter(state DriftState, nowMs int64) {
	drift.State = state
	drift.StateEnteredAtMs = nowMs
}

// tierFor maps accumulated drift time to a boost tier.
func tierFor(accumulatedMs int64) uint8 {
	switch {
	case accumulatedMs >= DriftTier3Ms:
		return 3
	case accumulatedMs >= DriftTier2Ms:
		return 2
	case accumulatedMs >= DriftTier1Ms:
		return 1
	}
	return 0
}

// StepDrift advances one player's drift machine by one tick and returns the
// friction/boost output to apply to the body.
func StepDrift(drift *DriftContext, controls Controls, speed float32, yaw Angle, velocity Vec2f, nowMs int64) DriftOutput {
	out := DriftOutput{FrictionLateral: frictionGripping}

	// Observable slide angle, for clients that render smoke/trails.
	if speed > 1 {
		drift.DriftAngle = velocity.Angle().Diff(yaw).Float()
	} else {
		drift.DriftAngle = 0
	}

	steer := math32.Abs(controls.Steering)

	switch drift.State {
	case DriftGripping:
		if controls.Handbrake && speed >= DriftInitiationSpeed && steer >= DriftSteerThreshold {
			drift.enter(DriftInitiating, nowMs)
			drift.AccumulatedDriftTimeMs = 0
			drift.BoostTier = 0
			out.FrictionLateral = frictionInitiating
		}

	case DriftInitiating:
		out.FrictionLateral = frictionInitiating
		switch {
		case !controls.Handbrake,
			speed < DriftInitiationSpeed*0.8,
			nowMs-drift.StateEnteredAtMs > DriftInitiationTimeoutMs:
			drift.enter(DriftGripping, nowMs)
			out.FrictionLateral = frictionGripping
		case nowMs-drift.StateEnteredAtMs >= DriftInitiationHoldMs:
			drift.enter(DriftDrifting, nowMs)
			drift.LastDriftTickMs = nowMs
			out.FrictionLateral = frictionDrifting
		}

	case DriftDrifting:
		out.FrictionLateral = frictionDrifting

		// Accumulate since the prior drifting tick, not since state entry:
		// the machine may re-enter DRIFTING with time already banked.
		if drift.LastDriftTickMs != 0 {
			drift.AccumulatedDriftTimeMs += nowMs - drift.LastDriftTickMs
		}
		drift.LastDriftTickMs = nowMs
		drift.BoostTier = tierFor(drift.AccumulatedDriftTimeMs)

		if speed < DriftInitiationSpeed*0.5 {
			// Penalty path: scrubbed off too much speed, no boost.
			drift.BoostTier = 0
			drift.AccumulatedDriftTimeMs = 0
			drift.LastDriftTickMs = 0
			drift.enter(DriftGripping, nowMs)
			out.FrictionLateral = frictionGripping
		} else if !controls.Handbrake || steer < DriftSteerNeutral {
			out.BoostImpulse = driftBoostImpulse[drift.BoostTier]
			out.BoostTier = drift.BoostTier
			drift.BoostTier = 0
			drift.AccumulatedDriftTimeMs = 0
			drift.LastDriftTickMs = 0
			drift.enter(DriftRecovering, nowMs)
			out.FrictionLateral = frictionRecovering
		}

	case DriftRecovering:
		out.FrictionLateral = frictionRecovering
		if nowMs-drift.StateEnteredAtMs >= DriftRecoveryMs {
			drift.enter(DriftGripping, nowMs)
			out.FrictionLateral = frictionGripping
		}
	}

	return out
}
