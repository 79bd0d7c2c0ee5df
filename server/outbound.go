// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/drift/sim"
)

type (
	// RoomPlayer is the roster entry sent on join.
	RoomPlayer struct {
		PlayerID sim.PlayerID     `json:"playerId"`
		Name     string           `json:"name"`
		Vehicle  sim.VehicleClass `json:"vehicle"`
		Color    sim.ColorID      `json:"color"`
	}

	// RoomJoined confirms a join: the room seed (all deterministic layout
	// derives from it), the roster, and a first snapshot.
	RoomJoined struct {
		Seed     int64         `json:"seed"`
		PlayerID sim.PlayerID  `json:"playerId"`
		Players  []RoomPlayer  `json:"players"`
		Snapshot *sim.Snapshot `json:"snapshot"`
	}

	// JoinError rejects a join at the boundary.
	JoinError struct {
		Reason string `json:"reason"`
	}

	// ServerSnapshot is the fixed-rate authoritative broadcast.
	ServerSnapshot struct {
		Seq      uint32        `json:"seq"`
		Snapshot *sim.Snapshot `json:"snapshot"`
	}

	// RaceEvent reports one discrete occurrence: lap, finish, collision,
	// ability, hazard, or powerup outcome.
	RaceEvent struct {
		sim.Event
	}

	// Leaderboard is the global best-lap table.
	Leaderboard struct {
		Leaderboard []LapRecord `json:"leaderboard"`
	}
)

func init() {
	registerOutbound(
		JoinError{},
		Leaderboard{},
		RaceEvent{},
		RoomJoined{},
		ServerSnapshot{},
	)
}

// Snapshots are shared across every client in a room, so nothing here owns
// poolable state; Pool is satisfied trivially.
func (RoomJoined) Pool()     {}
func (JoinError) Pool()      {}
func (ServerSnapshot) Pool() {}
func (RaceEvent) Pool()      {}
func (Leaderboard) Pool()    {}
