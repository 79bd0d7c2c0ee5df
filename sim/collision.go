// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// ContactPair is a detected overlap between two player bodies.
type ContactPair struct {
	A, B PlayerID
}

// DetectContacts finds overlapping player bodies. Pairs are emitted in join
// order so resolution is deterministic.
func DetectContacts(manager *PlayerManager) []ContactPair {
	players := manager.Players()
	var pairs []ContactPair

	for i := 0; i < len(players); i++ {
		a := manager.Body(players[i].ID)
		if a == nil {
			continue
		}
		for j := i + 1; j < len(players); j++ {
			b := manager.Body(players[j].ID)
			if b == nil {
				continue
			}
			sum := a.Radius + b.Radius
			if a.Position.DistanceSquared(b.Position) < sum*sum {
				pairs = append(pairs, ContactPair{A: players[i].ID, B: players[j].ID})
			}
		}
	}
	return pairs
}

// ApplyPlayerBumpResponse exchanges impulse between two colliding bodies
// along the line connecting their centers, weighted inversely by mass. The
// lighter car receives proportionally more delta-velocity; an approximation
// of momentum conservation, not an exact elastic solve. Each body's planar
// speed is then clamped so repeated contacts cannot build runaway velocity,
// and both players' cached Motion.Speed is zeroed so drift/recovery logic
// recomputes speed from the corrected velocity instead of trusting the
// pre-impact value.
func ApplyPlayerBumpResponse(a, b *Player, bodyA, bodyB *Body) {
	normal := bodyA.Position.Sub(bodyB.Position).Norm()
	if normal == (Vec2f{}) {
		// Bodies exactly coincident; separate along the track axis.
		normal = Vec2f{Z: 1}
	}

	totalMass := bodyA.Mass + bodyB.Mass
	// Inverse mass weighting: the lighter body takes the bigger share.
	shareA := bodyB.Mass / totalMass
	shareB := bodyA.Mass / totalMass

	bodyA.Velocity = bodyA.Velocity.AddScaled(normal, bumpImpulse*2*shareA)
	bodyB.Velocity = bodyB.Velocity.AddScaled(normal, -bumpImpulse*2*shareB)

	bodyA.Velocity = bodyA.Velocity.ClampLength(bumpSpeedClamp)
	bodyB.Velocity = bodyB.Velocity.ClampLength(bumpSpeedClamp)

	a.Motion.Speed = 0
	b.Motion.Speed = 0
}
