// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// AbilityRequest is a queued activation from the network path. Raw is the
// ability id as received; it may not name a valid ability.
type AbilityRequest struct {
	Actor  PlayerID
	Raw    uint8
	Target PlayerID
}

// AbilitySystem validates and applies queued ability activations. Every
// request produces exactly one outcome event: ability_activated on success,
// ability_rejected with a reason otherwise.
type AbilitySystem struct {
	queue []AbilityRequest
}

func (system *AbilitySystem) Enqueue(request AbilityRequest) {
	system.queue = append(system.queue, request)
}

// Drain processes the queue in arrival order.
func (system *AbilitySystem) Drain(simulation *Simulation, nowMs int64) {
	for _, request := range system.queue {
		system.resolve(simulation, request, nowMs)
	}
	system.queue = system.queue[:0]
}

func (system *AbilitySystem) resolve(simulation *Simulation, request AbilityRequest, nowMs int64) {
	emit := simulation.emit
	actor := simulation.players.Get(request.Actor)
	if actor == nil {
		// Actor left between queue and drain; nobody to bill, nobody to tell.
		return
	}

	ability := AbilityType(request.Raw)
	reject := func(reason RejectReason) {
		emit(Event{Kind: EventAbilityRejected, PlayerID: actor.ID, Ability: ability, Reason: reason, AtMs: nowMs})
	}

	if !ability.Valid() {
		reject(RejectUnknownID)
		return
	}
	if simulation.Status() != RaceRacing {
		reject(RejectNotRacing)
		return
	}

	last := actor.AbilityLastUsedMs[ability]
	if last != 0 && nowMs-last < ability.CooldownMs() {
		reject(RejectCooldown)
		return
	}

	limit := actor.Class.Data().AbilityUses[ability]
	if actor.AbilityUseCount[ability] >= limit {
		reject(RejectUsageLimit)
		return
	}

	body := simulation.players.Body(actor.ID)
	if body == nil {
		reject(RejectInvalidTarget)
		return
	}

	switch ability {
	case AbilityBoostBurst:
		intensity := effectBoostFactor * actor.Class.Data().IntensityScale
		simulation.effects.Enqueue(actor.ID, actor.ID, EffectSpeedBurst, effectBoostDurationMs, intensity)

	case AbilityStunShot:
		target := simulation.players.Get(request.Target)
		if target == nil || target.ID == actor.ID {
			reject(RejectInvalidTarget)
			return
		}
		simulation.projectiles.Spawn(Projectile{
			Owner:       actor.ID,
			Target:      target.ID,
			Position:    body.Position.AddScaled(body.Yaw.Vec2f(), body.ForwardExtent),
			Yaw:         body.Yaw,
			ExpiresAtMs: nowMs + projectileLifetimeMs,
		})

	case AbilityOilDrop:
		simulation.hazards.Deploy(Hazard{
			Type:        HazardOilSlick,
			Position:    body.Position.AddScaled(body.Yaw.Vec2f(), -body.ForwardExtent*1.5),
			Radius:      deployableRadius,
			OwnerID:     actor.ID,
			ExpiresAtMs: nowMs + deployableLifetimeMs,
		})
	}

	actor.AbilityLastUsedMs[ability] = nowMs
	actor.AbilityUseCount[ability]++
	emit(Event{Kind: EventAbilityActivated, PlayerID: actor.ID, TargetID: request.Target, Ability: ability, AtMs: nowMs})
}
