// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// Projectile is a fired stun shot. It homes weakly toward its target and
// expires if it never connects.
type Projectile struct {
	ID          uint16   `json:"id"`
	Owner       PlayerID `json:"owner"`
	Target      PlayerID `json:"-"`
	Position    Vec2f    `json:"pos"`
	Yaw         Angle    `json:"yaw"`
	ExpiresAtMs int64    `json:"-"`
}

const projectileHomingRate = 2.5 // rad/s toward target

// ProjectileSystem advances in-flight projectiles and resolves hits.
type ProjectileSystem struct {
	projectiles []Projectile
	nextID      uint16
}

func (system *ProjectileSystem) Spawn(projectile Projectile) {
	system.nextID++
	projectile.ID = system.nextID
	system.projectiles = append(system.projectiles, projectile)
}

// Projectiles returns in-flight projectiles for snapshotting.
func (system *ProjectileSystem) Projectiles() []Projectile {
	return system.projectiles
}

// Step advances every projectile one tick. Hits enqueue a stun on the
// target through the effect system so the usual merge/shield rules apply.
func (system *ProjectileSystem) Step(simulation *Simulation, nowMs int64) {
	dt := float32(TickPeriodMs) / 1000

	kept := system.projectiles[:0]
	for _, projectile := range system.projectiles {
		if projectile.ExpiresAtMs <= nowMs {
			continue
		}

		if targetBody := simulation.players.Body(projectile.Target); targetBody != nil {
			toTarget := targetBody.Position.Sub(projectile.Position).Angle()
			projectile.Yaw = projectile.Yaw.Lerp(toTarget, clamp(projectileHomingRate*dt, 0, 1))
		}
		projectile.Position = projectile.Position.AddScaled(projectile.Yaw.Vec2f(), projectileSpeed*dt)

		hit := false
		for _, player := range simulation.players.Players() {
			if player.ID == projectile.Owner {
				continue
			}
			body := simulation.players.Body(player.ID)
			if body == nil {
				continue
			}
			reach := projectileHitRadius + body.Radius
			if body.Position.DistanceSquared(projectile.Position) < reach*reach {
				simulation.effects.Enqueue(player.ID, projectile.Owner, EffectStun, effectStunDurationMs, 1)
				hit = true
				break
			}
		}
		if hit {
			continue
		}

		kept = append(kept, projectile)
	}
	system.projectiles = kept
}
