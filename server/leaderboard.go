// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/drift/sim"
)

// How many records the leaderboard carries.
const leaderboardSize = 10

// LapRecord is one finished race: who, in what, how fast. Lower TimeMs
// ranks higher.
type LapRecord struct {
	Name    string           `json:"name"`
	Vehicle sim.VehicleClass `json:"vehicle"`
	TimeMs  int64            `json:"timeMs"`
}

// recordFinish folds a race_finished event into the room's best-time
// table and persists it.
func (room *Room) recordFinish(event sim.Event) {
	player := room.simulation.Player(event.PlayerID)
	if player == nil {
		return
	}

	timeMs := event.AtMs - room.simulation.StartedAtMs()
	if timeMs <= 0 {
		return
	}

	record := LapRecord{
		Name:    player.Name,
		Vehicle: player.Class,
		TimeMs:  timeMs,
	}

	room.records = insertRecord(room.records, record, leaderboardSize)

	room.log.Info().
		Str("name", record.Name).
		Int64("timeMs", record.TimeMs).
		Msg("race finished")

	room.appendResultLog(record)

	// Persist off the room goroutine; the cloud is nil-safe.
	cloud := room.registry.cloud
	go func() {
		if err := cloud.UpdateBestTime(record.Name, record.TimeMs); err != nil {
			room.log.Warn().Err(err).Msg("cloud best time update failed")
		}
	}()
}

// sendLeaderboard sends the Leaderboard message to each Client.
func (room *Room) sendLeaderboard() {
	if len(room.records) == 0 {
		return
	}

	// Write pumps marshal asynchronously; a later insertRecord must not
	// reach into an already queued message.
	records := make([]LapRecord, len(room.records))
	copy(records, room.records)

	leaderboard := outbound(Leaderboard{Leaderboard: records})
	for client := room.clients.First; client != nil; client = client.Data().Next {
		client.Send(leaderboard)
	}
}

// insertRecord inserts by ascending time, keeping the best per name and
// at most size entries. Insert sort: the table never exceeds ten rows.
func insertRecord(records []LapRecord, record LapRecord, size int) []LapRecord {
	for i := range records {
		if records[i].Name == record.Name {
			if records[i].TimeMs <= record.TimeMs {
				return records
			}
			records = append(records[:i], records[i+1:]...)
			break
		}
	}

	at := len(records)
	for i := range records {
		if record.TimeMs < records[i].TimeMs {
			at = i
			break
		}
	}

	records = append(records, LapRecord{})
	copy(records[at+1:], records[at:])
	records[at] = record

	if len(records) > size {
		records = records[:size]
	}
	return records
}
