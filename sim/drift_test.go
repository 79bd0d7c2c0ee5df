// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"testing"
)

// stepUntil advances the machine in tick-sized steps until toMs.
func stepUntil(drift *DriftContext, controls Controls, speed float32, fromMs, toMs int64) (out DriftOutput) {
	for now := fromMs; now <= toMs; now += TickPeriodMs {
		out = StepDrift(drift, controls, speed, 0, Vec2f{Z: speed}, now)
	}
	return
}

func TestDrift_FullCycle(t *testing.T) {
	var drift DriftContext
	slide := Controls{Throttle: 1, Steering: 1, Handbrake: true}

	StepDrift(&drift, slide, 20, 0, Vec2f{Z: 20}, 0)
	if drift.State != DriftInitiating {
		t.Fatalf("expected initiating, got %v", drift.State)
	}

	// Hold through the initiation window.
	stepUntil(&drift, slide, 20, TickPeriodMs, DriftInitiationHoldMs)
	if drift.State != DriftDrifting {
		t.Fatalf("expected drifting after hold, got %v", drift.State)
	}

	// Accumulate past tier 1.
	stepUntil(&drift, slide, 20, DriftInitiationHoldMs+TickPeriodMs, DriftInitiationHoldMs+DriftTier1Ms+TickPeriodMs)
	if drift.BoostTier != 1 {
		t.Fatalf("expected tier 1, got %d", drift.BoostTier)
	}

	// Release the handbrake: one-shot boost, then recovering.
	now := DriftInitiationHoldMs + DriftTier1Ms + 2*TickPeriodMs
	out := StepDrift(&drift, Controls{Throttle: 1}, 20, 0, Vec2f{Z: 20}, now)
	if drift.State != DriftRecovering {
		t.Fatalf("expected recovering, got %v", drift.State)
	}
	if out.BoostImpulse != driftBoostImpulse[1] {
		t.Errorf("expected tier 1 boost %f, got %f", driftBoostImpulse[1], out.BoostImpulse)
	}
	if drift.BoostTier != 0 || drift.AccumulatedDriftTimeMs != 0 {
		t.Error("boost must be consumed on emission")
	}

	// Boost is one-shot.
	out = StepDrift(&drift, Controls{Throttle: 1}, 20, 0, Vec2f{Z: 20}, now+TickPeriodMs)
	if out.BoostImpulse != 0 {
		t.Error("boost emitted twice")
	}

	// Recovery window runs out.
	stepUntil(&drift, Controls{Throttle: 1}, 20, now+TickPeriodMs, now+DriftRecoveryMs+TickPeriodMs)
	if drift.State != DriftGripping {
		t.Errorf("expected gripping after recovery, got %v", drift.State)
	}
}

func TestDrift_InitiationRequiresAllConditions(t *testing.T) {
	cases := []struct {
		name     string
		controls Controls
		speed    float32
	}{
		{"no handbrake", Controls{Steering: 1}, 20},
		{"too slow", Controls{Steering: 1, Handbrake: true}, DriftInitiationSpeed - 1},
		{"not enough steer", Controls{Steering: DriftSteerThreshold - 0.1, Handbrake: true}, 20},
	}

	for _, c := range cases {
		var drift DriftContext
		StepDrift(&drift, c.controls, c.speed, 0, Vec2f{Z: c.speed}, 0)
		if drift.State != DriftGripping {
			t.Errorf("%s: expected gripping, got %v", c.name, drift.State)
		}
	}
}

func TestDrift_InitiationAbortsOnSpeedFade(t *testing.T) {
	var drift DriftContext
	slide := Controls{Steering: 1, Handbrake: true}

	StepDrift(&drift, slide, 20, 0, Vec2f{Z: 20}, 0)

	// Speed dropping below the 0.8 fraction aborts initiation. Tick from
	// entry so no hold-time transition fires first.
	StepDrift(&drift, slide, DriftInitiationSpeed*0.7, 0, Vec2f{Z: 8}, TickPeriodMs)
	if drift.State != DriftGripping {
		t.Errorf("expected gripping after speed fade, got %v", drift.State)
	}
}

func TestDrift_PenaltyExitForfeitsBoost(t *testing.T) {
	var drift DriftContext
	slide := Controls{Throttle: 1, Steering: 1, Handbrake: true}

	stepUntil(&drift, slide, 20, 0, DriftInitiationHoldMs+DriftTier2Ms+TickPeriodMs)
	if drift.State != DriftDrifting || drift.BoostTier < 2 {
		t.Fatalf("expected tier 2 drift, got %v tier %d", drift.State, drift.BoostTier)
	}

	// Scrub below half the initiation speed while still holding the slide.
	now := DriftInitiationHoldMs + DriftTier2Ms + 2*TickPeriodMs
	out := StepDrift(&drift, slide, DriftInitiationSpeed*0.4, 0, Vec2f{Z: 4}, now)
	if drift.State != DriftGripping {
		t.Fatalf("expected penalty exit to gripping, got %v", drift.State)
	}
	if out.BoostImpulse != 0 {
		t.Error("penalty exit must forfeit the boost")
	}
	if drift.BoostTier != 0 || drift.AccumulatedDriftTimeMs != 0 {
		t.Error("penalty exit must reset accumulated drift")
	}
}

func TestDrift_ReleaseTickTierCrossing(t *testing.T) {
	var drift DriftContext
	slide := Controls{Throttle: 1, Steering: 1, Handbrake: true}

	// Bank drift time to one tick short of tier 1.
	stepUntil(&drift, slide, 20, 0, DriftInitiationHoldMs+DriftTier1Ms-TickPeriodMs)
	if drift.State != DriftDrifting || drift.BoostTier != 0 {
		t.Fatalf("expected tier 0 drift before release, got %v tier %d", drift.State, drift.BoostTier)
	}

	// The release tick banks the crossing time itself; the paid tier must
	// reflect it.
	now := int64(DriftInitiationHoldMs + DriftTier1Ms)
	out := StepDrift(&drift, Controls{Throttle: 1}, 20, 0, Vec2f{Z: 20}, now)
	if out.BoostTier != 1 {
		t.Errorf("expected paid tier 1, got %d", out.BoostTier)
	}
	if out.BoostImpulse != driftBoostImpulse[1] {
		t.Errorf("expected tier 1 impulse %f, got %f", driftBoostImpulse[1], out.BoostImpulse)
	}
}

func TestDrift_TierThresholds(t *testing.T) {
	cases := []struct {
		accumulatedMs int64
		tier          uint8
	}{
		{0, 0},
		{DriftTier1Ms - 1, 0},
		{DriftTier1Ms, 1},
		{DriftTier2Ms, 2},
		{DriftTier3Ms, 3},
		{DriftTier3Ms * 10, 3},
	}

	for _, c := range cases {
		if got := tierFor(c.accumulatedMs); got != c.tier {
			t.Errorf("tierFor(%d): expected %d, got %d", c.accumulatedMs, c.tier, got)
		}
	}
}

func BenchmarkStepDrift(b *testing.B) {
	var drift DriftContext
	slide := Controls{Throttle: 1, Steering: 1, Handbrake: true}

	for i := 0; i < b.N; i++ {
		StepDrift(&drift, slide, 20, 0, Vec2f{Z: 20}, int64(i)*TickPeriodMs)
	}
}
