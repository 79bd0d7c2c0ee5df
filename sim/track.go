// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"github.com/aquilax/go-perlin"
)

// Hazard is a track hazard. ExpiresAtMs is zero for seeded hazards, which
// persist for the whole race; deployed slicks expire.
type Hazard struct {
	ID          uint16     `json:"id"`
	Type        HazardType `json:"type"`
	Position    Vec2f      `json:"pos"`
	Radius      float32    `json:"r,omitempty"`
	OwnerID     PlayerID   `json:"owner,omitempty"`
	ExpiresAtMs int64      `json:"-"`
}

// Powerup is a collectible pad. While RespawnAtMs is in the future the pad
// is inactive.
type Powerup struct {
	ID          uint16      `json:"id"`
	Type        PowerupType `json:"type"`
	Position    Vec2f       `json:"pos"`
	RespawnAtMs int64       `json:"-"`
}

// Track is the static per-room layout. Everything here derives solely from
// the room seed, so two rooms with the same seed agree bit for bit.
type Track struct {
	ID         uint8
	Seed       int64
	TotalLaps  int
	LapLength  float32
	BoundaryX  float32
	Hazards    []Hazard
	Powerups   []Powerup
	nextHazard uint16
}

// hazardDensity thresholds the perlin field; higher cuts fewer hazards.
const (
	trackNoiseAlpha   = 2.0
	trackNoiseBeta    = 2.0
	trackNoiseOctaves = 3
	hazardNoiseCut    = 0.25
	powerupNoiseCut   = -0.2
	layoutStepMeters  = 10.0
	maxSeededHazards  = 12
	maxSeededPowerups = 24
)

// NewTrack lays out hazards and powerup pads by sampling a perlin field
// seeded by the room seed and walking the lap at a fixed stride. The field
// decides both whether a slot is occupied and its lateral placement.
func NewTrack(seed int64, totalLaps int) *Track {
	if totalLaps <= 0 {
		totalLaps = TrackDefaultLaps
	}

	track := &Track{
		Seed:      seed,
		TotalLaps: totalLaps,
		LapLength: TrackLapLength,
		BoundaryX: TrackBoundaryX,
	}

	field := perlin.NewPerlin(trackNoiseAlpha, trackNoiseBeta, trackNoiseOctaves, seed)
	lateral := perlin.NewPerlin(trackNoiseAlpha, trackNoiseBeta, trackNoiseOctaves, seed+1)

	// Skip the first stretch so nothing spawns on the starting grid.
	for z := layoutStepMeters * 4; z < float64(TrackLapLength); z += layoutStepMeters {
		sample := field.Noise2D(z*0.02, 7.5)
		x := float32(lateral.Noise2D(z*0.05, 13.25)) * (TrackBoundaryX - 4)

		switch {
		case sample > hazardNoiseCut && len(track.Hazards) < maxSeededHazards:
			kind := HazardOilSlick
			if sample > hazardNoiseCut*2 {
				kind = HazardDebris
			}
			track.Hazards = append(track.Hazards, Hazard{
				ID:       track.nextHazardID(),
				Type:     kind,
				Position: Vec2f{X: x, Z: float32(z)},
				Radius:   hazardRadius,
			})
		case sample < powerupNoiseCut && len(track.Powerups) < maxSeededPowerups:
			kind := PowerupSpeedPad
			if sample < powerupNoiseCut*2 {
				kind = PowerupShieldPad
			}
			track.Powerups = append(track.Powerups, Powerup{
				ID:       uint16(len(track.Powerups) + 1),
				Type:     kind,
				Position: Vec2f{X: x, Z: float32(z)},
			})
		}
	}

	return track
}

func (track *Track) nextHazardID() uint16 {
	track.nextHazard++
	return track.nextHazard
}

// CheckpointZ is the longitudinal position of the index-th checkpoint
// within a lap.
func (track *Track) CheckpointZ(index int) float32 {
	return track.LapLength * float32(index) / TrackCheckpoints
}

// LapZ maps an absolute longitudinal position onto the lap loop.
func (track *Track) LapZ(z float32) float32 {
	z -= track.LapLength * float32(int(z/track.LapLength))
	if z < 0 {
		z += track.LapLength
	}
	return z
}
