// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/SoftbearStudios/drift/server/cloud"
	"github.com/SoftbearStudios/drift/sim"
	"github.com/rs/zerolog"
)

const defaultRoomID = "main"

// Config is what cmd/server resolves from flags, env, and config file.
type Config struct {
	MinPlayers int    // rooms are topped up with bots to this many clients
	TotalLaps  int    // laps per race
	ResultLog  string // CSV audit log of race results, empty disables
	Auth       string // admin auth code
}

// RoomRegistry owns the room map: create on first join, drop on last
// leave. Everything a room needs is injected through it; there are no
// package singletons.
type RoomRegistry struct {
	mutex sync.Mutex
	rooms map[string]*Room

	config Config
	cloud  *cloud.Cloud
	log    zerolog.Logger

	// Served atomically by HTTP
	statusJSON      atomic.Value
	started         time.Time
	lastCloudUpdate time.Time
}

func NewRoomRegistry(config Config, c *cloud.Cloud, log zerolog.Logger) *RoomRegistry {
	if config.TotalLaps <= 0 {
		config.TotalLaps = sim.TrackDefaultLaps
	}

	registry := &RoomRegistry{
		rooms:   make(map[string]*Room),
		config:  config,
		cloud:   c,
		log:     log,
		started: time.Now(),
	}
	registry.refreshStatus()
	return registry
}

// Join resolves a joinRoom message: validates it, finds or creates the
// room, and hands the client to the room goroutine. On failure the client
// gets a JoinError and keeps its connection.
func (registry *RoomRegistry) Join(client Client, data JoinRoom) {
	if data.ProtocolVersion != ProtocolVersion {
		client.Send(JoinError{Reason: "unsupported protocol version"})
		return
	}

	name, ok := sanitizeName(data.PlayerName)
	if !ok {
		client.Send(JoinError{Reason: "invalid player name"})
		return
	}

	roomID := data.RoomID
	if roomID == "" {
		roomID = defaultRoomID
	}
	if _, ok := trimUtf8(roomID, 1, 24); !ok {
		client.Send(JoinError{Reason: "invalid room id"})
		return
	}

	vehicle := sim.VehicleClass(data.SelectedVehicleID)
	if !vehicle.Valid() {
		vehicle = sim.VehicleBalanced
	}

	clientData := client.Data()
	clientData.Name = name
	clientData.Vehicle = vehicle
	clientData.Color = sim.ColorID(data.SelectedColorID) % sim.ColorIDCount

	registry.mutex.Lock()
	room := registry.rooms[roomID]
	if room == nil {
		room = newRoom(roomID, registry.nextSeed(), registry)
		registry.rooms[roomID] = room
		go room.run()
	}
	registry.mutex.Unlock()

	// Mark before registration so the reader drops repeat joins.
	clientData.Room = room

	select {
	case room.register <- client:
	default:
		clientData.Room = nil
		client.Send(JoinError{Reason: "room is busy"})
	}
}

// remove drops a room from the map. Called by the room goroutine on
// shutdown; once it returns no join can reach the room.
func (registry *RoomRegistry) remove(room *Room) {
	registry.mutex.Lock()
	if registry.rooms[room.id] == room {
		delete(registry.rooms, room.id)
	}
	registry.mutex.Unlock()

	registry.refreshStatus()
}

func (registry *RoomRegistry) nextSeed() int64 {
	r := getRand()
	defer poolRand(r)
	return r.Int63()
}

// refreshStatus rebuilds the status JSON served on / and, at most once
// per cloud update period, reports the player count upstream.
func (registry *RoomRegistry) refreshStatus() {
	type roomStatus struct {
		ID      string `json:"id"`
		Clients int    `json:"clients"`
	}

	var status struct {
		Rooms    []roomStatus `json:"rooms"`
		Players  int          `json:"players"`
		UptimeMs int64        `json:"uptimeMs"`
	}

	registry.mutex.Lock()
	for id, room := range registry.rooms {
		// clients.Len is written by the room goroutine; an approximate
		// read is fine for a status page.
		n := room.clients.Len
		status.Rooms = append(status.Rooms, roomStatus{ID: id, Clients: n})
		status.Players += n
	}
	updateCloud := time.Since(registry.lastCloudUpdate) >= cloud.UpdatePeriod
	if updateCloud {
		registry.lastCloudUpdate = time.Now()
	}
	registry.mutex.Unlock()

	status.UptimeMs = int64(time.Since(registry.started) / time.Millisecond)

	if buf, err := json.Marshal(status); err == nil {
		registry.statusJSON.Store(buf)
	} else {
		registry.log.Warn().Err(err).Msg("status marshal failed")
	}

	if updateCloud {
		players := status.Players
		go func() {
			if err := registry.cloud.UpdateServer(players); err != nil {
				registry.log.Warn().Err(err).Msg("cloud server update failed")
			}
		}()
	}
}
