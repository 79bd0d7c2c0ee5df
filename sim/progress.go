// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// updateProgress advances one player's lap/checkpoint/finish state from the
// authoritative body position. The forward collider extent counts toward
// the line, so a bumper crossing finishes the race before the body center.
func updateProgress(simulation *Simulation, player *Player, body *Body, nowMs int64) {
	if player.Finished() {
		return
	}

	track := simulation.track
	progress := &player.Progress

	// The forward coordinate only ever ratchets up; reversing doesn't
	// refund laps.
	forward := body.Position.Z + body.ForwardExtent
	if forward > progress.DistanceMeters {
		progress.DistanceMeters = forward
	}

	if progress.DistanceMeters < 0 {
		return // still behind the start line on the grid
	}

	lap := int(progress.DistanceMeters / track.LapLength)
	lapZ := progress.DistanceMeters - float32(lap)*track.LapLength
	checkpoint := int(lapZ / track.LapLength * TrackCheckpoints)
	if checkpoint >= TrackCheckpoints {
		checkpoint = TrackCheckpoints - 1
	}

	if len(progress.CompletedCheckpoints) != TrackCheckpoints {
		progress.CompletedCheckpoints = make([]bool, TrackCheckpoints)
	}

	if lap > progress.Lap {
		progress.Lap = lap
		for i := range progress.CompletedCheckpoints {
			progress.CompletedCheckpoints[i] = false
		}
		if lap < track.TotalLaps {
			simulation.emit(Event{Kind: EventLapCompleted, PlayerID: player.ID, Lap: lap, AtMs: nowMs})
		}
	}

	if checkpoint != progress.CheckpointIndex || !progress.CompletedCheckpoints[checkpoint] {
		progress.CheckpointIndex = checkpoint
		if !progress.CompletedCheckpoints[checkpoint] {
			progress.CompletedCheckpoints[checkpoint] = true
			simulation.emit(Event{Kind: EventCheckpoint, PlayerID: player.ID, Lap: progress.Lap, AtMs: nowMs})
		}
	}

	if progress.DistanceMeters >= float32(track.TotalLaps)*track.LapLength {
		progress.FinishedAtMs = nowMs
		progress.Lap = track.TotalLaps
		simulation.emit(Event{Kind: EventRaceFinished, PlayerID: player.ID, Lap: track.TotalLaps, AtMs: nowMs})

		if simulation.winner == PlayerIDInvalid {
			simulation.winner = player.ID
		}
	}
}
