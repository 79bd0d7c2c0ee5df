// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// HazardSystem owns deployed hazards and drains per-tick trigger requests.
// Seeded hazards live on the Track; deployed ones here. Both trigger.
type HazardSystem struct {
	deployed []Hazard
	nextID   uint16
	queue    []hazardTrigger

	// entered tracks which players are currently inside which hazard so a
	// hazard fires once per entry, not once per tick.
	entered map[hazardPlayerKey]bool
}

type hazardTrigger struct {
	hazard Hazard
	player PlayerID
}

type hazardPlayerKey struct {
	hazardID uint16
	deployed bool
	player   PlayerID
}

func NewHazardSystem() *HazardSystem {
	return &HazardSystem{
		entered: make(map[hazardPlayerKey]bool),
		nextID:  1000, // deployed ids live above the seeded range
	}
}

// Deploy adds a player-dropped hazard.
func (system *HazardSystem) Deploy(hazard Hazard) {
	system.nextID++
	hazard.ID = system.nextID
	system.deployed = append(system.deployed, hazard)
}

// Deployed returns currently active deployed hazards for snapshotting.
func (system *HazardSystem) Deployed() []Hazard {
	return system.deployed
}

// Detect scans every player against every hazard and queues entry triggers.
// Expired deployed hazards are pruned first.
func (system *HazardSystem) Detect(simulation *Simulation, nowMs int64) {
	kept := system.deployed[:0]
	for _, hazard := range system.deployed {
		if hazard.ExpiresAtMs != 0 && hazard.ExpiresAtMs <= nowMs {
			continue
		}
		kept = append(kept, hazard)
	}
	system.deployed = kept

	track := simulation.track
	for _, player := range simulation.players.Players() {
		body := simulation.players.Body(player.ID)
		if body == nil {
			continue
		}
		lapPos := Vec2f{X: body.Position.X, Z: track.LapZ(body.Position.Z)}

		for i := range track.Hazards {
			system.check(&track.Hazards[i], false, player.ID, lapPos, body.Radius)
		}
		for i := range system.deployed {
			// Deployed hazards sit at absolute positions.
			system.check(&system.deployed[i], true, player.ID, body.Position, body.Radius)
		}
	}
}

func (system *HazardSystem) check(hazard *Hazard, deployed bool, player PlayerID, position Vec2f, radius float32) {
	key := hazardPlayerKey{hazardID: hazard.ID, deployed: deployed, player: player}
	reach := hazard.Radius + radius
	inside := hazard.Position.DistanceSquared(position) < reach*reach

	if inside && !system.entered[key] {
		system.queue = append(system.queue, hazardTrigger{hazard: *hazard, player: player})
	}
	if inside {
		system.entered[key] = true
	} else {
		delete(system.entered, key)
	}
}

// Drain resolves queued triggers, one event each.
func (system *HazardSystem) Drain(simulation *Simulation, nowMs int64) {
	for _, trigger := range system.queue {
		player := simulation.players.Get(trigger.player)
		if player == nil {
			continue
		}

		hazard := trigger.hazard
		if !hazard.Type.Valid() {
			simulation.emit(Event{Kind: EventHazardRejected, PlayerID: player.ID, Reason: RejectUnknownID, AtMs: nowMs})
			continue
		}
		if hazard.OwnerID == player.ID {
			// Your own slick doesn't bite you.
			continue
		}

		switch hazard.Type {
		case HazardOilSlick:
			simulation.effects.Enqueue(player.ID, hazard.OwnerID, EffectSlow, effectSlowDurationMs, effectSlowFactor)
		case HazardDebris:
			simulation.effects.Enqueue(player.ID, hazard.OwnerID, EffectStun, effectStunDurationMs/2, 1)
		}
		simulation.emit(Event{Kind: EventHazardTriggered, PlayerID: player.ID, AtMs: nowMs})
	}
	system.queue = system.queue[:0]
}

// Reset drops deployed hazards and entry tracking for a race restart.
func (system *HazardSystem) Reset() {
	system.deployed = system.deployed[:0]
	system.queue = system.queue[:0]
	for key := range system.entered {
		delete(system.entered, key)
	}
}

func (hazardType HazardType) Valid() bool {
	return hazardType < HazardTypeCount
}
