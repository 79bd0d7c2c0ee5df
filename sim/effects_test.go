// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"testing"
)

func TestApplyEffect_MergeNeverStacks(t *testing.T) {
	player := &Player{ID: 1, Class: VehicleBalanced}

	ApplyEffect(player, EffectSlow, 1000, 0.5, 0)
	ApplyEffect(player, EffectSlow, 500, 0.7, 0)

	if len(player.Effects) != 1 {
		t.Fatalf("expected 1 merged effect, got %d", len(player.Effects))
	}

	effect := &player.Effects[0]
	if effect.ExpiresAtMs != 1000 {
		t.Errorf("expected max expiry 1000, got %d", effect.ExpiresAtMs)
	}
	if effect.Intensity != 0.7 {
		t.Errorf("expected max intensity 0.7, got %f", effect.Intensity)
	}
}

func TestApplyEffect_StunScaledByClass(t *testing.T) {
	tank := &Player{ID: 1, Class: VehicleTank}
	ApplyEffect(tank, EffectStun, effectStunDurationMs, 1, 0)

	expected := int64(float32(effectStunDurationMs) * VehicleTank.Data().StunScale)
	if got := tank.Effects[0].ExpiresAtMs; got != expected {
		t.Errorf("expected tank stun to expire at %d, got %d", expected, got)
	}
}

func TestEffectSystem_ShieldAbsorbsHostile(t *testing.T) {
	manager := NewPlayerManager()
	target := manager.Add(1, "target", VehicleBalanced, 0)
	manager.Add(2, "attacker", VehicleBalanced, 0)

	ApplyEffect(target, EffectShield, effectShieldDuration, 1, 0)

	var system EffectSystem
	system.Enqueue(1, 2, EffectStun, effectStunDurationMs, 1)

	var events []Event
	system.Drain(manager, 100, func(event Event) { events = append(events, event) })

	if len(events) != 1 || events[0].Kind != EventEffectAbsorbed {
		t.Fatalf("expected one effect_absorbed event, got %v", events)
	}
	if target.EffectByType(EffectStun) != nil {
		t.Error("shield must block the stun")
	}
}

func TestEffectSystem_ShieldDoesNotBlockSelf(t *testing.T) {
	manager := NewPlayerManager()
	player := manager.Add(1, "racer", VehicleBalanced, 0)
	ApplyEffect(player, EffectShield, effectShieldDuration, 1, 0)

	var system EffectSystem
	system.Enqueue(1, 1, EffectSpeedBurst, effectBoostDurationMs, effectBoostFactor)

	var events []Event
	system.Drain(manager, 100, func(event Event) { events = append(events, event) })

	if len(events) != 1 || events[0].Kind != EventEffectApplied {
		t.Fatalf("expected effect_applied, got %v", events)
	}
	if player.EffectByType(EffectSpeedBurst) == nil {
		t.Error("own speed burst must apply through a shield")
	}
}

func TestEffectSystem_RejectsInvalid(t *testing.T) {
	manager := NewPlayerManager()
	manager.Add(1, "racer", VehicleBalanced, 0)

	var system EffectSystem
	system.Enqueue(99, 1, EffectSlow, 1000, 0.5)     // unknown target
	system.Enqueue(1, 1, EffectTypeCount, 1000, 0.5) // unknown type

	var events []Event
	system.Drain(manager, 0, func(event Event) { events = append(events, event) })

	if len(events) != 2 {
		t.Fatalf("expected exactly one event per request, got %d", len(events))
	}
	if events[0].Kind != EventEffectRejected || events[0].Reason != RejectInvalidTarget {
		t.Errorf("expected invalid_target rejection, got %v", events[0])
	}
	if events[1].Kind != EventEffectRejected || events[1].Reason != RejectUnknownID {
		t.Errorf("expected unknown_id rejection, got %v", events[1])
	}
}

func TestTickEffects_ExpiryEvents(t *testing.T) {
	player := &Player{ID: 1, Class: VehicleBalanced}
	ApplyEffect(player, EffectSlow, 1000, 0.5, 0)
	ApplyEffect(player, EffectShield, 5000, 1, 0)

	var events []Event
	TickEffects(player, 1000, func(event Event) { events = append(events, event) })

	if len(events) != 1 || events[0].Effect != EffectSlow {
		t.Fatalf("expected slow expiry, got %v", events)
	}
	if len(player.Effects) != 1 || player.Effects[0].Type != EffectShield {
		t.Error("shield must survive the prune")
	}
}

func TestSpeedFactor(t *testing.T) {
	player := &Player{ID: 1, Class: VehicleBalanced}

	if factor := SpeedFactor(player, 0); factor != 1 {
		t.Errorf("expected neutral factor 1, got %f", factor)
	}

	ApplyEffect(player, EffectSlow, 1000, effectSlowFactor, 0)
	ApplyEffect(player, EffectSpeedBurst, 1000, effectBoostFactor, 0)

	expected := float32(effectSlowFactor) * float32(effectBoostFactor)
	if factor := SpeedFactor(player, 100); factor != expected {
		t.Errorf("expected combined factor %f, got %f", expected, factor)
	}

	// A stun zeroes everything else out.
	ApplyEffect(player, EffectStun, 1000, 1, 0)
	if factor := SpeedFactor(player, 100); factor != 0 {
		t.Errorf("expected stun to zero the factor, got %f", factor)
	}
}
