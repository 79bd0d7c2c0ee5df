// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"reflect"
	"sync"
	"unsafe"

	"github.com/SoftbearStudios/drift/sim"
	jsoniter "github.com/json-iterator/go"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// The snapshot is the byte-budgeted hot path: players, hazards, and
	// powerups marshal as positional arrays, not objects.
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(sim.SnapshotPlayer{}).String(), encodeSnapshotPlayer, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(sim.SnapshotHazard{}).String(), encodeSnapshotHazard, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(sim.SnapshotPowerup{}).String(), encodeSnapshotPowerup, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(sim.SnapshotPlayer{}).String(), decodeSnapshotPlayer)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(sim.SnapshotHazard{}).String(), decodeSnapshotHazard)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(sim.SnapshotPowerup{}).String(), decodeSnapshotPowerup)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

// centi rounds to 2 decimals; centimeter precision is plenty for rendering
// and keeps position floats short on the wire.
func centi(f float32) float32 {
	if f < 0 {
		return float32(int32(f*100-0.5)) / 100
	}
	return float32(int32(f*100+0.5)) / 100
}

// Positional layout:
// [id, x, z, yaw, speed, driftState, boostTier, lap, checkpoint, lastSeq, finished, [effectType, remainingMs, ...]]
func encodeSnapshotPlayer(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	player := (*sim.SnapshotPlayer)(ptr)

	stream.WriteArrayStart()
	stream.WriteUint32(uint32(player.ID))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(player.X))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(player.Z))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(player.Yaw))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(player.Speed))
	stream.WriteMore()
	stream.WriteUint8(uint8(player.DriftState))
	stream.WriteMore()
	stream.WriteUint8(player.BoostTier)
	stream.WriteMore()
	stream.WriteUint8(player.Lap)
	stream.WriteMore()
	stream.WriteUint8(player.Checkpoint)
	stream.WriteMore()
	stream.WriteUint32(player.LastSeq)
	stream.WriteMore()
	if player.Finished {
		stream.WriteUint8(1)
	} else {
		stream.WriteUint8(0)
	}
	stream.WriteMore()
	stream.WriteArrayStart()
	for i, effect := range player.Effects {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteUint8(uint8(effect.Type))
		stream.WriteMore()
		stream.WriteInt32(effect.RemainingMs)
	}
	stream.WriteArrayEnd()
	stream.WriteArrayEnd()
}

func decodeSnapshotPlayer(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	player := (*sim.SnapshotPlayer)(ptr)
	*player = sim.SnapshotPlayer{}

	index := 0
	iter.ReadArrayCB(func(i *jsoniter.Iterator) bool {
		switch index {
		case 0:
			player.ID = sim.PlayerID(i.ReadUint32())
		case 1:
			player.X = i.ReadFloat32()
		case 2:
			player.Z = i.ReadFloat32()
		case 3:
			player.Yaw = i.ReadFloat32()
		case 4:
			player.Speed = i.ReadFloat32()
		case 5:
			player.DriftState = sim.DriftState(i.ReadUint8())
		case 6:
			player.BoostTier = i.ReadUint8()
		case 7:
			player.Lap = i.ReadUint8()
		case 8:
			player.Checkpoint = i.ReadUint8()
		case 9:
			player.LastSeq = i.ReadUint32()
		case 10:
			player.Finished = i.ReadUint8() != 0
		case 11:
			var flat []int32
			i.ReadVal(&flat)
			for j := 0; j+1 < len(flat); j += 2 {
				player.Effects = append(player.Effects, sim.SnapshotEffect{
					Type:        sim.EffectType(flat[j]),
					RemainingMs: flat[j+1],
				})
			}
		default:
			i.Skip()
		}
		index++
		return true
	})
}

// [id, type, x, z]
func encodeSnapshotHazard(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	hazard := (*sim.SnapshotHazard)(ptr)

	stream.WriteArrayStart()
	stream.WriteUint16(hazard.ID)
	stream.WriteMore()
	stream.WriteUint8(uint8(hazard.Type))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(hazard.X))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(hazard.Z))
	stream.WriteArrayEnd()
}

func decodeSnapshotHazard(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	hazard := (*sim.SnapshotHazard)(ptr)
	*hazard = sim.SnapshotHazard{}

	index := 0
	iter.ReadArrayCB(func(i *jsoniter.Iterator) bool {
		switch index {
		case 0:
			hazard.ID = i.ReadUint16()
		case 1:
			hazard.Type = sim.HazardType(i.ReadUint8())
		case 2:
			hazard.X = i.ReadFloat32()
		case 3:
			hazard.Z = i.ReadFloat32()
		default:
			i.Skip()
		}
		index++
		return true
	})
}

// [id, type, x, z, active]
func encodeSnapshotPowerup(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	powerup := (*sim.SnapshotPowerup)(ptr)

	stream.WriteArrayStart()
	stream.WriteUint16(powerup.ID)
	stream.WriteMore()
	stream.WriteUint8(uint8(powerup.Type))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(powerup.X))
	stream.WriteMore()
	stream.WriteFloat32Lossy(centi(powerup.Z))
	stream.WriteMore()
	if powerup.Active {
		stream.WriteUint8(1)
	} else {
		stream.WriteUint8(0)
	}
	stream.WriteArrayEnd()
}

func decodeSnapshotPowerup(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	powerup := (*sim.SnapshotPowerup)(ptr)
	*powerup = sim.SnapshotPowerup{}

	index := 0
	iter.ReadArrayCB(func(i *jsoniter.Iterator) bool {
		switch index {
		case 0:
			powerup.ID = i.ReadUint16()
		case 1:
			powerup.Type = sim.PowerupType(i.ReadUint8())
		case 2:
			powerup.X = i.ReadFloat32()
		case 3:
			powerup.Z = i.ReadFloat32()
		case 4:
			powerup.Active = i.ReadUint8() != 0
		default:
			i.Skip()
		}
		index++
		return true
	})
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

func decodeMessage(ptr unsafe.Pointer, topLevelIter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)

	// Read bytes so can read twice
	messageBytes := topLevelIter.SkipAndAppendBytes(*bufPtr)

	// Pool iterator with previous pool
	pool := topLevelIter.Pool()
	iter := pool.BorrowIterator(messageBytes)
	defer pool.ReturnIterator(iter)

	// Interface of *inbound
	var in interface{}

	// Doesn't have to read twice if type is first field
	// If type is found c is > 0
	for c := 0; c < 3; c++ {
		iter.ResetBytes(messageBytes)
		iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
			if field == "type" {
				// Not already read
				if in == nil {
					messageTypeBytes := i.ReadStringAsSlice()
					inboundType, ok := inboundMessageTypes[messageType(messageTypeBytes)]
					if !ok {
						inboundType = reflect.TypeOf(InvalidInbound{})
					}
					in = reflect.New(inboundType).Interface()

					if !ok {
						in.(*InvalidInbound).messageType = messageType(messageTypeBytes)
					}

					c++
				} else {
					i.Skip()
				}
				return true
			} else if field == "data" {
				// Found type
				if c > 0 {
					i.ReadVal(in)
					c++
					return false // Finished
				} else {
					i.Skip()
				}
			} else {
				i.Skip()
			}
			return true
		})

		if err := iter.Error; err != nil {
			topLevelIter.Error = err
			return
		}

		// No message type
		if c == 0 {
			topLevelIter.Error = errors.New("no inbound message type")
			return
		}
	}

	// Pool messageBytes
	*bufPtr = messageBytes[:0]
	decodeMessagePool.Put(bufPtr)

	// Store data
	message := (*Message)(ptr)
	message.Data = reflect.Indirect(reflect.ValueOf(in)).Interface()
}
