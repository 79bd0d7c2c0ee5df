// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// PowerupSystem drains per-tick collection requests against the track's
// pads. Collected pads respawn after a fixed delay.
type PowerupSystem struct {
	queue []powerupPickup
}

type powerupPickup struct {
	powerupID uint16
	player    PlayerID
}

// Detect queues a pickup for every player overlapping an active pad.
func (system *PowerupSystem) Detect(simulation *Simulation, nowMs int64) {
	track := simulation.track
	for _, player := range simulation.players.Players() {
		body := simulation.players.Body(player.ID)
		if body == nil {
			continue
		}
		lapPos := Vec2f{X: body.Position.X, Z: track.LapZ(body.Position.Z)}

		for i := range track.Powerups {
			powerup := &track.Powerups[i]
			if powerup.RespawnAtMs > nowMs {
				continue
			}
			reach := powerupRadius + body.Radius
			if powerup.Position.DistanceSquared(lapPos) < reach*reach {
				system.queue = append(system.queue, powerupPickup{powerupID: powerup.ID, player: player.ID})
			}
		}
	}
}

// Drain resolves queued pickups in order. The first player to a pad gets
// it; later pickups of the same pad this tick are rejected.
func (system *PowerupSystem) Drain(simulation *Simulation, nowMs int64) {
	for _, pickup := range system.queue {
		player := simulation.players.Get(pickup.player)
		if player == nil {
			continue
		}

		powerup := simulation.track.powerupByID(pickup.powerupID)
		if powerup == nil {
			simulation.emit(Event{Kind: EventPowerupRejected, PlayerID: player.ID, Reason: RejectUnknownID, AtMs: nowMs})
			continue
		}
		if powerup.RespawnAtMs > nowMs {
			simulation.emit(Event{Kind: EventPowerupRejected, PlayerID: player.ID, Reason: RejectInvalidTarget, AtMs: nowMs})
			continue
		}

		powerup.RespawnAtMs = nowMs + powerupRespawnMs

		switch powerup.Type {
		case PowerupSpeedPad:
			intensity := effectBoostFactor * player.Class.Data().IntensityScale
			simulation.effects.Enqueue(player.ID, player.ID, EffectSpeedBurst, effectBoostDurationMs, intensity)
		case PowerupShieldPad:
			simulation.effects.Enqueue(player.ID, player.ID, EffectShield, effectShieldDuration, 1)
		}
		simulation.emit(Event{Kind: EventPowerupCollected, PlayerID: player.ID, AtMs: nowMs})
	}
	system.queue = system.queue[:0]
}

func (track *Track) powerupByID(id uint16) *Powerup {
	for i := range track.Powerups {
		if track.Powerups[i].ID == id {
			return &track.Powerups[i]
		}
	}
	return nil
}

// ResetPowerups reactivates every pad for a race restart.
func (track *Track) ResetPowerups() {
	for i := range track.Powerups {
		track.Powerups[i].RespawnAtMs = 0
	}
}
