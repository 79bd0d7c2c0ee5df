// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"github.com/SoftbearStudios/drift/sim"
)

const (
	// bufferCap bounds samples kept per remote entity.
	bufferCap = 32

	// RenderDelayMs offsets render time behind wall clock so a bracketing
	// pair of samples is usually available: a fixed latency traded for
	// smooth motion.
	RenderDelayMs = 100
)

// EntityState is the interpolated pose of one remote car.
type EntityState struct {
	Position sim.Vec2f
	Yaw      sim.Angle
	Speed    float32
}

// Lerp blends two states: position linearly, yaw along the shortest arc.
func (state EntityState) Lerp(other EntityState, alpha float32) EntityState {
	return EntityState{
		Position: state.Position.Lerp(other.Position, alpha),
		Yaw:      state.Yaw.Lerp(other.Yaw, alpha),
		Speed:    sim.Lerp(state.Speed, other.Speed, alpha),
	}
}

// Sample is one buffered remote-entity snapshot.
type Sample struct {
	Sequence uint32
	TimeMs   int64
	State    EntityState
}

// Buffer is a bounded, time-ordered sample buffer for one remote entity.
// Local cars never go through it; they are predicted and corrected instead.
type Buffer struct {
	samples []Sample
}

// Push inserts a sample in time order, dropping duplicates by sequence and
// evicting the oldest sample when full.
func (buffer *Buffer) Push(sample Sample) {
	for i := range buffer.samples {
		if buffer.samples[i].Sequence == sample.Sequence {
			return
		}
	}

	// Samples almost always arrive in order; walk back from the end.
	i := len(buffer.samples)
	for i > 0 && buffer.samples[i-1].TimeMs > sample.TimeMs {
		i--
	}
	buffer.samples = append(buffer.samples, Sample{})
	copy(buffer.samples[i+1:], buffer.samples[i:])
	buffer.samples[i] = sample

	if len(buffer.samples) > bufferCap {
		copy(buffer.samples, buffer.samples[1:])
		buffer.samples = buffer.samples[:bufferCap]
	}
}

// Len is the number of buffered samples.
func (buffer *Buffer) Len() int {
	return len(buffer.samples)
}

// Sample returns the interpolated state at targetTimeMs, or nil when the
// buffer is empty. With a single sample that sample is returned. Past the
// newest sample the result clamps to the newest; there is no extrapolation.
func (buffer *Buffer) Sample(targetTimeMs int64) *EntityState {
	n := len(buffer.samples)
	if n == 0 {
		return nil
	}
	if n == 1 {
		state := buffer.samples[0].State
		return &state
	}

	// Last sample at or before the target.
	before := -1
	for i := n - 1; i >= 0; i-- {
		if buffer.samples[i].TimeMs <= targetTimeMs {
			before = i
			break
		}
	}

	if before == -1 {
		// Target precedes everything buffered; clamp to the oldest.
		state := buffer.samples[0].State
		return &state
	}
	if before == n-1 {
		// No sample after the target; clamp to the newest.
		state := buffer.samples[n-1].State
		return &state
	}

	a := buffer.samples[before]
	b := buffer.samples[before+1]

	var alpha float32
	if span := b.TimeMs - a.TimeMs; span > 0 {
		alpha = float32(targetTimeMs-a.TimeMs) / float32(span)
	}
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}

	state := a.State.Lerp(b.State, alpha)
	return &state
}

// InterpolationSystem holds one Buffer per remote entity.
type InterpolationSystem struct {
	buffers map[sim.PlayerID]*Buffer
}

func NewInterpolationSystem() *InterpolationSystem {
	return &InterpolationSystem{
		buffers: make(map[sim.PlayerID]*Buffer),
	}
}

// Observe records one remote player's state from a snapshot.
func (system *InterpolationSystem) Observe(id sim.PlayerID, sample Sample) {
	buffer := system.buffers[id]
	if buffer == nil {
		buffer = &Buffer{}
		system.buffers[id] = buffer
	}
	buffer.Push(sample)
}

// At samples every tracked entity at renderTimeMs. Entities with empty
// buffers are omitted.
func (system *InterpolationSystem) At(renderTimeMs int64) map[sim.PlayerID]EntityState {
	out := make(map[sim.PlayerID]EntityState, len(system.buffers))
	for id, buffer := range system.buffers {
		if state := buffer.Sample(renderTimeMs); state != nil {
			out[id] = *state
		}
	}
	return out
}

// Forget drops a remote entity's buffer when it leaves the room.
func (system *InterpolationSystem) Forget(id sim.PlayerID) {
	delete(system.buffers, id)
}
