// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// PlayerManager owns every player's rigid body and spawn placement.
// Exactly one body exists per active player id.
type PlayerManager struct {
	players []*Player // join order, drives deterministic iteration
	bodies  map[PlayerID]*Body
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{
		bodies: make(map[PlayerID]*Body),
	}
}

// SpawnTransform is the deterministic grid slot for the index-th player.
// Four cars per row, rows stacked behind the start line. The lateral slot
// wraps every four cars so a full room stays inside TrackBoundaryX.
func SpawnTransform(index int) Vec2f {
	return Vec2f{
		X: float32(index%4)*4 - 6,
		Z: float32(-(index / 4) * 6),
	}
}

// Add creates the player's body at its grid slot and registers the player.
// Adding an existing id is a no-op returning the existing player.
func (manager *PlayerManager) Add(id PlayerID, name string, class VehicleClass, color ColorID) *Player {
	if existing := manager.Get(id); existing != nil {
		return existing
	}

	data := class.Data()
	index := len(manager.players)
	spawn := SpawnTransform(index)

	player := &Player{
		ID:    id,
		Name:  name,
		Class: class,
		Color: color,
	}
	player.resetRaceState()
	player.Motion.PositionX = spawn.X
	player.Motion.PositionZ = spawn.Z

	body := &Body{
		Position:      spawn,
		Mass:          data.Mass,
		Radius:        1.2,
		ForwardExtent: 2.0,
	}

	manager.players = append(manager.players, player)
	manager.bodies[id] = body
	return player
}

// Remove destroys the player's body and unregisters the player.
func (manager *PlayerManager) Remove(id PlayerID) {
	delete(manager.bodies, id)
	for i, player := range manager.players {
		if player.ID == id {
			manager.players = append(manager.players[:i], manager.players[i+1:]...)
			break
		}
	}
}

// Get returns the player with the given id, or nil.
func (manager *PlayerManager) Get(id PlayerID) *Player {
	for _, player := range manager.players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// Body returns the rigid body for the given player id, or nil. A tracked
// player without a body is an invariant violation handled by the caller.
func (manager *PlayerManager) Body(id PlayerID) *Body {
	return manager.bodies[id]
}

// Players returns players in join order. The slice is owned by the manager.
func (manager *PlayerManager) Players() []*Player {
	return manager.players
}

func (manager *PlayerManager) Len() int {
	return len(manager.players)
}

// Reset restores every player to its spawn transform with zero velocity,
// fresh progress, and no effects. Used for mid-race restarts.
func (manager *PlayerManager) Reset() {
	for i, player := range manager.players {
		player.resetRaceState()

		spawn := SpawnTransform(i)
		player.Motion.PositionX = spawn.X
		player.Motion.PositionZ = spawn.Z

		if body := manager.bodies[player.ID]; body != nil {
			body.Position = spawn
			body.Velocity = Vec2f{}
			body.Yaw = 0
		}
	}
}
