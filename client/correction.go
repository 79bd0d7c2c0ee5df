// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client holds the client-side reconciliation layer: correcting the
// locally predicted car toward authoritative snapshots and interpolating
// everyone else's. A renderer consumes these; no rendering happens here.
package client

import (
	"github.com/SoftbearStudios/drift/sim"
)

// CorrectionMode classifies how a position error is resolved.
type CorrectionMode uint8

const (
	// CorrectionNone leaves prediction alone; the error is noise.
	CorrectionNone CorrectionMode = iota
	// CorrectionSoft blends toward the authoritative position over frames.
	CorrectionSoft
	// CorrectionHard teleports. Reserved for divergence too large to blend
	// through without the car visibly swimming.
	CorrectionHard
)

const (
	// HardSnapMeters is the error at which blending gives up and teleports.
	HardSnapMeters = 15.0
	// MinCorrectMeters is the error below which no correction happens.
	MinCorrectMeters = 0.5

	// baseAlpha is the per-frame blend factor for the smallest correctable
	// error. It scales up to maxAlphaScale times itself as the error
	// approaches the hard-snap threshold: small errors correct gently,
	// large ones fast without teleporting.
	baseAlpha     = 0.12
	maxAlphaScale = 5.0

	// YawErrorThreshold is the angular error beyond which yaw is corrected.
	YawErrorThreshold = sim.Angle(0.30)
	// YawStepPerFrame is the fixed per-frame yaw nudge. Yaw is deliberately
	// not error-scaled: angular snapping reads as jitter far more than a
	// steady small-step correction does.
	YawStepPerFrame = sim.Angle(0.06)
)

// CorrectionSystem reconciles the locally predicted car against
// authoritative snapshots. Position and yaw correct independently.
type CorrectionSystem struct{}

// Classify buckets a position error into a correction mode.
func (CorrectionSystem) Classify(positionError float32) CorrectionMode {
	switch {
	case positionError >= HardSnapMeters:
		return CorrectionHard
	case positionError >= MinCorrectMeters:
		return CorrectionSoft
	}
	return CorrectionNone
}

// ComputeCorrectionAlpha returns the per-frame blend factor for a soft
// correction, scaling linearly from baseAlpha at the minimum threshold up
// to maxAlphaScale times baseAlpha at the hard-snap threshold.
func (CorrectionSystem) ComputeCorrectionAlpha(positionError float32) float32 {
	if positionError <= MinCorrectMeters {
		return baseAlpha
	}
	if positionError >= HardSnapMeters {
		return baseAlpha * maxAlphaScale
	}
	t := (positionError - MinCorrectMeters) / (HardSnapMeters - MinCorrectMeters)
	return baseAlpha * (1 + (maxAlphaScale-1)*t)
}

// CorrectPosition applies one frame of correction and reports the mode
// used. Hard mode returns the authoritative position outright.
func (system CorrectionSystem) CorrectPosition(predicted, authoritative sim.Vec2f) (sim.Vec2f, CorrectionMode) {
	positionError := predicted.Distance(authoritative)
	mode := system.Classify(positionError)

	switch mode {
	case CorrectionHard:
		return authoritative, mode
	case CorrectionSoft:
		alpha := system.ComputeCorrectionAlpha(positionError)
		return predicted.Lerp(authoritative, alpha), mode
	}
	return predicted, mode
}

// CorrectYaw nudges predicted yaw toward authoritative by a fixed step once
// the error exceeds the angular threshold.
func (CorrectionSystem) CorrectYaw(predicted, authoritative sim.Angle) sim.Angle {
	diff := authoritative.Diff(predicted)
	if diff.Abs() <= YawErrorThreshold {
		return predicted
	}
	if diff > 0 {
		return predicted + YawStepPerFrame
	}
	return predicted - YawStepPerFrame
}
