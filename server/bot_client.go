// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/drift/sim"
	"github.com/chewxy/math32"
)

// BotClient is a headless client that keeps a room populated. It drives
// off the same snapshots real clients receive, so it exercises the whole
// inbound path short of the websocket itself.
type BotClient struct {
	ClientData
	aggression float32 // probability scale of using abilities on rivals
	driftiness float32 // probability scale of throwing the car sideways
	targetX    float32 // lateral line the bot currently holds
	seq        uint32
	destroying bool
}

func (bot *BotClient) Bot() bool {
	return true
}

func (bot *BotClient) Close() {}

func (bot *BotClient) Data() *ClientData {
	return &bot.ClientData
}

func (bot *BotClient) Destroy() {
	if bot.destroying {
		return // In case goroutine hasn't run yet
	}

	bot.destroying = true
	room := bot.Room

	// Needs to go through always.
	select {
	case room.unregister <- bot:
	default:
		go func() {
			room.unregister <- bot
		}()
	}
}

func (bot *BotClient) Init() {
	r := getRand()

	bot.aggression = r.Float32()
	bot.driftiness = 0.2 + 0.8*r.Float32()
	bot.targetX = (r.Float32()*2 - 1) * (sim.TrackBoundaryX * 0.5)

	poolRand(r)
}

func (bot *BotClient) Send(out outbound) {
	if bot.destroying {
		return
	}

	snapshot, ok := out.(ServerSnapshot)
	if !ok {
		return
	}

	var me *sim.SnapshotPlayer
	for i := range snapshot.Snapshot.Players {
		if snapshot.Snapshot.Players[i].ID == bot.PlayerID {
			me = &snapshot.Snapshot.Players[i]
			break
		}
	}
	if me == nil {
		return
	}

	// Use local rand to avoid locking
	r := getRand()
	defer poolRand(r)

	if me.Finished {
		// Hang around for the stragglers, occasionally quit.
		if prob(r, 2e-3) {
			bot.Destroy()
		}
		return
	}

	// Pick a new racing line now and then, or when outside the guardrails.
	if prob(r, 0.01) || math32.Abs(me.X) > sim.TrackBoundaryX*0.8 {
		bot.targetX = (r.Float32()*2 - 1) * (sim.TrackBoundaryX * 0.5)
	}

	controls := sim.Controls{Throttle: 1}

	// Steer toward the held line, proportional with a deadzone.
	lateralError := bot.targetX - me.X
	if math32.Abs(lateralError) > 0.5 {
		controls.Steering = clampSteer(lateralError * 0.25)
	}

	// Also damp the yaw back toward straight ahead.
	controls.Steering = clampSteer(controls.Steering - me.Yaw*0.8)

	// Throw the car sideways sometimes; keep holding the handbrake while
	// already drifting so tiers charge up.
	switch me.DriftState {
	case sim.DriftInitiating, sim.DriftDrifting:
		controls.Handbrake = true
		if controls.Steering > 0 {
			controls.Steering = 1
		} else {
			controls.Steering = -1
		}
	default:
		if me.Speed > sim.DriftInitiationSpeed*1.2 && prob(r, float64(bot.driftiness)*0.05) {
			controls.Handbrake = true
			if prob(r, 0.5) {
				controls.Steering = 1
			} else {
				controls.Steering = -1
			}
		}
	}

	bot.seq++
	bot.receiveAsync(InputFrame{Frame: sim.InputFrame{
		Seq:            bot.seq,
		TimestampMs:    snapshot.Snapshot.ServerTimeMs,
		Controls:       controls,
		AckSnapshotSeq: snapshot.Seq,
	}})

	// Take a shot at the nearest rival ahead once in a while.
	if prob(r, float64(bot.aggression)*0.02) {
		if target := nearestRivalAhead(snapshot.Snapshot.Players, me); target != sim.PlayerIDInvalid {
			bot.seq++
			bot.receiveAsync(AbilityActivate{
				AbilityID:      uint8(sim.AbilityStunShot),
				Seq:            bot.seq,
				TargetPlayerID: target,
			})
		}
	} else if prob(r, 0.01) {
		bot.seq++
		bot.receiveAsync(AbilityActivate{
			AbilityID: uint8(sim.AbilityBoostBurst),
			Seq:       bot.seq,
		})
	}
}

// receiveAsync injects an inbound as if it arrived on a socket. Non-blocking
// because it can run on the room goroutine.
func (bot *BotClient) receiveAsync(in inbound) {
	select {
	case bot.Room.inbound <- SignedInbound{Client: bot, inbound: in}:
	default:
		// Inbox is full; bots lose, players don't.
	}
}

func nearestRivalAhead(players []sim.SnapshotPlayer, me *sim.SnapshotPlayer) sim.PlayerID {
	best := sim.PlayerIDInvalid
	bestDelta := float32(math32.MaxFloat32)

	for i := range players {
		rival := &players[i]
		if rival.ID == me.ID || rival.Finished {
			continue
		}
		delta := rival.Z - me.Z
		if delta > 0 && delta < bestDelta {
			best = rival.ID
			bestDelta = delta
		}
	}

	return best
}

func clampSteer(steering float32) float32 {
	if steering > 1 {
		return 1
	}
	if steering < -1 {
		return -1
	}
	return steering
}
