// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// Controls is the raw steering/throttle intent of one client emission tick.
type Controls struct {
	Throttle  float32 `json:"throttle"` // [-1, 1]
	Steering  float32 `json:"steering"` // [-1, 1]
	Brake     bool    `json:"brake,omitempty"`
	Boost     bool    `json:"boost,omitempty"`
	Handbrake bool    `json:"handbrake,omitempty"`
}

// Sanitize clamps axes into range. Out-of-range values come from stale or
// adversarial clients and are clamped rather than rejected.
func (controls Controls) Sanitize() Controls {
	controls.Throttle = clamp(controls.Throttle, -1, 1)
	controls.Steering = clamp(controls.Steering, -1, 1)
	return controls
}

// InputFrame is one client control frame. Seq is monotonic per player.
type InputFrame struct {
	Seq                     uint32   `json:"seq"`
	TimestampMs             int64    `json:"timestampMs"`
	Controls                Controls `json:"controls"`
	AckSnapshotSeq          uint32   `json:"ackSnapshotSeq,omitempty"`
	CruiseControlEnabled    bool     `json:"cruiseControlEnabled,omitempty"`
	PrecisionOverrideActive bool     `json:"precisionOverrideActive,omitempty"`
}

const inputQueueCap = 8

// InputQueue buffers incoming frames for one player between ticks. The
// network receive path is the producer, the tick the consumer. Only the
// newest frame matters per consumption; intermediates are discarded, not
// replayed. Whether a burst of frames after a stall should instead be
// coalesced is an open policy question; current behavior keeps newest-wins.
type InputQueue struct {
	frames [inputQueueCap]InputFrame
	len    int
}

// Push inserts a frame. Frames with a sequence already buffered are
// duplicates and dropped. When full, the oldest frame is evicted.
func (queue *InputQueue) Push(frame InputFrame) {
	for i := 0; i < queue.len; i++ {
		if queue.frames[i].Seq == frame.Seq {
			return
		}
	}

	if queue.len == inputQueueCap {
		copy(queue.frames[:], queue.frames[1:])
		queue.len--
	}
	queue.frames[queue.len] = frame
	queue.len++
}

// ConsumeLatest returns the newest buffered frame with Seq > lastProcessed
// and empties the queue. ok is false when no such frame exists, in which
// case the caller reuses the player's last known input.
func (queue *InputQueue) ConsumeLatest(lastProcessed uint32) (frame InputFrame, ok bool) {
	for i := 0; i < queue.len; i++ {
		f := queue.frames[i]
		if f.Seq <= lastProcessed {
			continue
		}
		if !ok || f.Seq > frame.Seq {
			frame = f
			ok = true
		}
	}
	queue.len = 0
	return
}

// Len is the number of buffered frames.
func (queue *InputQueue) Len() int {
	return queue.len
}
