// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// effectRequest is a queued status-effect application. The queue is drained
// once per tick by the orchestrator; each entry produces exactly one event.
type effectRequest struct {
	target     PlayerID
	source     PlayerID
	effectType EffectType
	durationMs int64
	intensity  float32
}

// EffectSystem applies, merges, ticks, and prunes status effects.
type EffectSystem struct {
	queue []effectRequest
}

// Enqueue schedules an effect application for the next drain.
func (system *EffectSystem) Enqueue(target, source PlayerID, effectType EffectType, durationMs int64, intensity float32) {
	system.queue = append(system.queue, effectRequest{
		target:     target,
		source:     source,
		effectType: effectType,
		durationMs: durationMs,
		intensity:  intensity,
	})
}

// Drain applies every queued request in order, emitting one event each.
func (system *EffectSystem) Drain(manager *PlayerManager, nowMs int64, emit func(Event)) {
	for _, request := range system.queue {
		target := manager.Get(request.target)
		if target == nil {
			emit(Event{Kind: EventEffectRejected, PlayerID: request.source, Effect: request.effectType, Reason: RejectInvalidTarget, AtMs: nowMs})
			continue
		}
		if !request.effectType.Valid() {
			emit(Event{Kind: EventEffectRejected, PlayerID: request.source, Effect: request.effectType, Reason: RejectUnknownID, AtMs: nowMs})
			continue
		}

		// Shield absorbs hostile effects from other players.
		hostile := request.source != target.ID && (request.effectType == EffectStun || request.effectType == EffectSlow)
		if hostile && target.Shielded(nowMs) {
			emit(Event{Kind: EventEffectAbsorbed, PlayerID: target.ID, Effect: request.effectType, AtMs: nowMs})
			continue
		}

		ApplyEffect(target, request.effectType, request.durationMs, request.intensity, nowMs)
		emit(Event{Kind: EventEffectApplied, PlayerID: target.ID, Effect: request.effectType, AtMs: nowMs})
	}
	system.queue = system.queue[:0]
}

// ApplyEffect adds the effect to the player, merging with an existing entry
// of the same type by taking the maximum of expiry and intensity. Effects
// never stack additively. Vehicle-class modifiers scale incoming stun
// duration before the merge.
func ApplyEffect(player *Player, effectType EffectType, durationMs int64, intensity float32, nowMs int64) {
	if effectType == EffectStun {
		durationMs = int64(float32(durationMs) * player.Class.Data().StunScale)
	}
	expiresAtMs := nowMs + durationMs

	if existing := player.EffectByType(effectType); existing != nil {
		if expiresAtMs > existing.ExpiresAtMs {
			existing.ExpiresAtMs = expiresAtMs
		}
		if intensity > existing.Intensity {
			existing.Intensity = intensity
		}
		return
	}

	player.Effects = append(player.Effects, Effect{
		Type:        effectType,
		AppliedAtMs: nowMs,
		ExpiresAtMs: expiresAtMs,
		Intensity:   intensity,
	})
}

// TickEffects prunes expired effects and emits an expiry event for each.
func TickEffects(player *Player, nowMs int64, emit func(Event)) {
	kept := player.Effects[:0]
	for _, effect := range player.Effects {
		if effect.ExpiresAtMs <= nowMs {
			emit(Event{Kind: EventEffectExpired, PlayerID: player.ID, Effect: effect.Type, AtMs: nowMs})
			continue
		}
		kept = append(kept, effect)
	}
	player.Effects = kept
}

// SpeedFactor folds the player's active effects into one multiplier on
// acceleration and top speed. A stun zeroes it outright.
func SpeedFactor(player *Player, nowMs int64) float32 {
	factor := float32(1)
	for i := range player.Effects {
		effect := &player.Effects[i]
		if effect.ExpiresAtMs <= nowMs {
			continue
		}
		switch effect.Type {
		case EffectStun:
			return 0
		case EffectSlow:
			factor *= effect.Intensity
		case EffectSpeedBurst:
			factor *= effect.Intensity
		}
	}
	return factor
}
