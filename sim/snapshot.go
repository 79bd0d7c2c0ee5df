// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// The snapshot is the hottest payload on the wire: one per broadcast tick
// per client. It stays structurally flat (one level of nesting), uses
// numeric ids, positional arrays, and omit-empty defaults. An 8 player
// snapshot with full gameplay state must fit SnapshotByteBudget; every
// field added below competes for that budget.

// SnapshotPlayer is one player's wire state. The jsoniter codec in the
// server package encodes it as a positional array, not an object.
type SnapshotPlayer struct {
	ID         PlayerID
	X          float32
	Z          float32
	Yaw        float32
	Speed      float32
	DriftState DriftState
	BoostTier  uint8
	Lap        uint8
	Checkpoint uint8
	LastSeq    uint32
	Finished   bool
	Effects    []SnapshotEffect
}

// SnapshotEffect is one active effect: type and remaining ms.
type SnapshotEffect struct {
	Type        EffectType
	RemainingMs int32
}

// SnapshotRace is the room-level race header.
type SnapshotRace struct {
	Status      RaceStatus `json:"status"`
	PlayerOrder []PlayerID `json:"order,omitempty"`
	Winner      PlayerID   `json:"winner,omitempty"`
	StartedAtMs int64      `json:"startedAtMs,omitempty"`
	EndedAtMs   int64      `json:"endedAtMs,omitempty"`
	TotalLaps   uint8      `json:"laps"`
	TrackID     uint8      `json:"track,omitempty"`
}

// SnapshotHazard and SnapshotPowerup are positional on the wire.
type SnapshotHazard struct {
	ID   uint16
	Type HazardType
	X    float32
	Z    float32
}

type SnapshotPowerup struct {
	ID     uint16
	Type   PowerupType
	X      float32
	Z      float32
	Active bool
}

// Snapshot is the authoritative per-tick broadcast payload.
type Snapshot struct {
	Seq          uint32            `json:"seq"`
	ServerTimeMs int64             `json:"t"`
	Players      []SnapshotPlayer  `json:"players"`
	Race         SnapshotRace      `json:"race"`
	Powerups     []SnapshotPowerup `json:"powerups,omitempty"`
	Hazards      []SnapshotHazard  `json:"hazards,omitempty"`
	Projectiles  []Projectile      `json:"projectiles,omitempty"`
}

// BuildSnapshot serializes the current state into a Snapshot. Seq is
// room-monotonic.
func (simulation *Simulation) BuildSnapshot(nowMs int64) *Snapshot {
	simulation.snapshotSeq++

	players := simulation.players.Players()
	snapshot := &Snapshot{
		Seq:          simulation.snapshotSeq,
		ServerTimeMs: nowMs,
		Players:      make([]SnapshotPlayer, 0, len(players)),
		Race: SnapshotRace{
			Status:      simulation.status,
			Winner:      simulation.winner,
			StartedAtMs: simulation.startedAtMs,
			EndedAtMs:   simulation.endedAtMs,
			TotalLaps:   uint8(simulation.track.TotalLaps),
			TrackID:     simulation.track.ID,
		},
	}

	for _, player := range players {
		sp := SnapshotPlayer{
			ID:         player.ID,
			X:          player.Motion.PositionX,
			Z:          player.Motion.PositionZ,
			Yaw:        player.Motion.RotationY,
			Speed:      player.Motion.Speed,
			DriftState: player.Drift.State,
			BoostTier:  player.Drift.BoostTier,
			Lap:        uint8(player.Progress.Lap),
			Checkpoint: uint8(player.Progress.CheckpointIndex),
			LastSeq:    player.LastProcessedInputSeq,
			Finished:   player.Finished(),
		}
		for _, effect := range player.Effects {
			remaining := effect.ExpiresAtMs - nowMs
			if remaining <= 0 {
				continue
			}
			sp.Effects = append(sp.Effects, SnapshotEffect{Type: effect.Type, RemainingMs: int32(remaining)})
		}
		snapshot.Players = append(snapshot.Players, sp)
	}

	snapshot.Race.PlayerOrder = simulation.playerOrder()

	for _, powerup := range simulation.track.Powerups {
		snapshot.Powerups = append(snapshot.Powerups, SnapshotPowerup{
			ID:     powerup.ID,
			Type:   powerup.Type,
			X:      powerup.Position.X,
			Z:      powerup.Position.Z,
			Active: powerup.RespawnAtMs <= nowMs,
		})
	}

	appendHazard := func(hazard Hazard) {
		snapshot.Hazards = append(snapshot.Hazards, SnapshotHazard{
			ID:   hazard.ID,
			Type: hazard.Type,
			X:    hazard.Position.X,
			Z:    hazard.Position.Z,
		})
	}
	for _, hazard := range simulation.track.Hazards {
		appendHazard(hazard)
	}
	for _, hazard := range simulation.hazards.Deployed() {
		appendHazard(hazard)
	}

	snapshot.Projectiles = simulation.projectiles.Projectiles()

	return snapshot
}

// playerOrder ranks players by race standing: finish time, then distance.
// Insertion sort keeps it allocation-light for 8 players.
func (simulation *Simulation) playerOrder() []PlayerID {
	players := simulation.players.Players()
	if len(players) == 0 {
		return nil
	}

	ranked := make([]*Player, len(players))
	copy(ranked, players)

	ahead := func(a, b *Player) bool {
		switch {
		case a.Finished() && b.Finished():
			return a.Progress.FinishedAtMs < b.Progress.FinishedAtMs
		case a.Finished():
			return true
		case b.Finished():
			return false
		}
		return a.Progress.DistanceMeters > b.Progress.DistanceMeters
	}

	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ahead(ranked[j], ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	order := make([]PlayerID, len(ranked))
	for i, player := range ranked {
		order[i] = player.ID
	}
	return order
}
