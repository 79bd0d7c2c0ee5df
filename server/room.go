// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"time"

	"github.com/SoftbearStudios/drift/sim"
	"github.com/rs/zerolog"
)

const (
	botPeriod         = time.Second
	debugPeriod       = time.Second * 5
	leaderboardPeriod = time.Second * 5
	updatePeriod      = sim.TickPeriod
)

// Room owns one race: a simulation, its clients, and the goroutine that
// is the only writer of both. Rooms are created by the registry on first
// join and destroy themselves when the last real player leaves.
type Room struct {
	id         string
	seed       int64
	registry   *RoomRegistry
	simulation *sim.Simulation

	clients      ClientList // implemented as double-linked list
	nextPlayerID sim.PlayerID

	// records is the room's best race-time table, ascending.
	records []LapRecord

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	updateTicker      *time.Ticker
	updateTime        time.Time
	leaderboardTicker *time.Ticker
	debugTicker       *time.Ticker
	botsTicker        *time.Ticker

	log zerolog.Logger
}

func newRoom(id string, seed int64, registry *RoomRegistry) *Room {
	log := registry.log.With().Str("room", id).Logger()

	return &Room{
		id:                id,
		seed:              seed,
		registry:          registry,
		simulation:        sim.New(seed, registry.config.TotalLaps, log),
		inbound:           make(chan SignedInbound, 64),
		register:          make(chan Client, 8),
		unregister:        make(chan Client, 16),
		updateTicker:      time.NewTicker(updatePeriod),
		updateTime:        time.Now(),
		leaderboardTicker: time.NewTicker(leaderboardPeriod),
		debugTicker:       time.NewTicker(debugPeriod),
		botsTicker:        time.NewTicker(botPeriod),
		log:               log,
	}
}

// run is the room goroutine. A panic anywhere in the tick is contained to
// this room: it is logged, the room is torn down, and every other room
// keeps racing.
func (room *Room) run() {
	defer func() {
		if r := recover(); r != nil {
			room.log.Error().Interface("panic", r).Msg("room crashed")
		}
		room.shutdown()
	}()

	room.log.Info().Int64("seed", room.seed).Msg("room created")

	for {
		select {
		case client := <-room.register:
			room.addClient(client)
		case client := <-room.unregister:
			if room.removeClient(client) {
				return
			}
		case in := <-room.inbound:
			// Read all messages currently in the channel
			n := len(room.inbound)

			for {
				// If not same room the message is old
				if in.Client.Data().Room == room {
					in.Inbound(room, in.Client)
				}

				if n--; n <= 0 {
					break
				}

				in = <-room.inbound
			}
		case <-room.updateTicker.C:
			now := time.Now()
			timeDelta := now.Sub(room.updateTime)
			room.updateTime = now

			// Falling far behind; skip the tick rather than spiral.
			if timeDelta > updatePeriod*4 {
				break
			}

			room.update(unixMillis())
		case <-room.leaderboardTicker.C:
			room.sendLeaderboard()
		case <-room.debugTicker.C:
			room.debug()
			room.registry.refreshStatus()
		case <-room.botsTicker.C:
			// Add as many as fit in the channel but don't block because it would deadlock
			for i := room.clients.Len + len(room.register) - len(room.unregister); i < room.registry.config.MinPlayers; i++ {
				select {
				case room.register <- room.newBot():
				default:
					break
				}
			}
		}
	}
}

// update advances the simulation one tick and broadcasts the result.
func (room *Room) update(nowMs int64) {
	room.simulation.Step(nowMs)

	snapshot := room.simulation.BuildSnapshot(nowMs)
	out := outbound(ServerSnapshot{Seq: snapshot.Seq, Snapshot: snapshot})

	for client := room.clients.First; client != nil; client = client.Data().Next {
		client.Send(out)
	}

	for _, event := range room.simulation.TakeEvents() {
		if event.Kind == sim.EventRaceFinished {
			room.recordFinish(event)
		}

		raceEvent := outbound(RaceEvent{Event: event})
		for client := room.clients.First; client != nil; client = client.Data().Next {
			client.Send(raceEvent)
		}
	}
}

func (room *Room) addClient(client Client) {
	room.nextPlayerID++

	data := client.Data()
	data.Room = room
	data.PlayerID = room.nextPlayerID

	room.clients.Add(client)
	room.simulation.AddPlayer(data.PlayerID, data.Name, data.Vehicle, data.Color)
	client.Init()

	client.Send(RoomJoined{
		Seed:     room.seed,
		PlayerID: data.PlayerID,
		Players:  room.roster(),
		Snapshot: room.simulation.BuildSnapshot(unixMillis()),
	})

	if !client.Bot() {
		room.log.Info().Str("name", data.Name).Uint32("player", uint32(data.PlayerID)).Msg("player joined")
	}
}

// removeClient unregisters a client and reports whether the room should
// shut down because the last real player left.
func (room *Room) removeClient(client Client) bool {
	data := client.Data()
	if data.Room != room {
		return false // stale unregister
	}

	client.Close()
	room.simulation.RemovePlayer(data.PlayerID)
	room.clients.Remove(client)
	data.Room = nil

	if !client.Bot() {
		room.log.Info().Str("name", data.Name).Msg("player left")
	}

	return room.realPlayers() == 0
}

func (room *Room) realPlayers() (count int) {
	for client := room.clients.First; client != nil; client = client.Data().Next {
		if !client.Bot() {
			count++
		}
	}
	return
}

func (room *Room) roster() []RoomPlayer {
	roster := make([]RoomPlayer, 0, room.clients.Len)
	for client := room.clients.First; client != nil; client = client.Data().Next {
		data := client.Data()
		roster = append(roster, RoomPlayer{
			PlayerID: data.PlayerID,
			Name:     data.Name,
			Vehicle:  data.Vehicle,
			Color:    data.Color,
		})
	}
	return roster
}

// restart puts the room back on the grid. Only valid once the race is
// over; mid-race requests are dropped.
func (room *Room) restart(playerID sim.PlayerID) {
	if room.simulation.Status() != sim.RaceFinished {
		return
	}

	room.log.Info().Uint32("player", uint32(playerID)).Msg("race restarted")
	room.simulation.Restart(unixMillis())
}

func (room *Room) newBot() *BotClient {
	r := getRand()
	defer poolRand(r)

	bot := &BotClient{}
	bot.Room = room
	bot.Name = randomBotName(r)
	bot.Vehicle = sim.VehicleClass(r.Intn(int(sim.VehicleClassCount)))
	bot.Color = sim.ColorID(r.Intn(sim.ColorIDCount))
	return bot
}

func (room *Room) debug() {
	var bots int
	for client := room.clients.First; client != nil; client = client.Data().Next {
		if client.Bot() {
			bots++
		}
	}

	room.log.Debug().
		Int("clients", room.clients.Len).
		Int("bots", bots).
		Str("status", room.simulation.Status().String()).
		Msg("room tick")
}

// shutdown tears the room down. Runs on the room goroutine, last.
func (room *Room) shutdown() {
	room.updateTicker.Stop()
	room.leaderboardTicker.Stop()
	room.debugTicker.Stop()
	room.botsTicker.Stop()

	// After this no join can reach the room anymore.
	room.registry.remove(room)

	for client := room.clients.First; client != nil; {
		next := room.clients.Remove(client)
		client.Data().Room = nil
		client.Close()
		client = next
	}

	// Joins that were already in flight are turned away.
	for {
		select {
		case client := <-room.register:
			client.Data().Room = nil
			client.Send(JoinError{Reason: "room closed"})
			client.Destroy()
		default:
			room.log.Info().Msg("room destroyed")
			return
		}
	}
}
