// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// PlayerID identifies a player within a room. Zero is invalid.
type PlayerID uint32

const PlayerIDInvalid = PlayerID(0)

// VehicleClass selects the handling profile of a car.
type VehicleClass uint8

const (
	VehicleBalanced VehicleClass = iota
	VehicleSpeedster
	VehicleTank
	VehicleClassCount
)

// VehicleClassData is the static handling profile of a VehicleClass.
type VehicleClassData struct {
	Label        string
	Mass         float32
	Acceleration float32 // multiplier on carAcceleration
	TopSpeed     float32 // m/s before effects

	// StunScale scales the duration of incoming stuns.
	// IntensityScale scales the magnitude of collected speed powerups.
	StunScale      float32
	IntensityScale float32

	// AbilityUses caps per-race activations per AbilityType.
	AbilityUses [AbilityTypeCount]uint8
}

var vehicleClassData = [VehicleClassCount]VehicleClassData{
	VehicleBalanced: {
		Label:          "balanced",
		Mass:           1000,
		Acceleration:   1.0,
		TopSpeed:       32,
		StunScale:      1.0,
		IntensityScale: 1.0,
		AbilityUses:    [AbilityTypeCount]uint8{AbilityBoostBurst: 3, AbilityStunShot: 3, AbilityOilDrop: 3},
	},
	VehicleSpeedster: {
		Label:          "speedster",
		Mass:           800,
		Acceleration:   1.15,
		TopSpeed:       36,
		StunScale:      1.0,
		IntensityScale: 2.0, // double speed-burst magnitude
		AbilityUses:    [AbilityTypeCount]uint8{AbilityBoostBurst: 4, AbilityStunShot: 2, AbilityOilDrop: 2},
	},
	VehicleTank: {
		Label:          "tank",
		Mass:           1400,
		Acceleration:   0.85,
		TopSpeed:       29,
		StunScale:      0.5, // halve incoming stun
		IntensityScale: 1.0,
		AbilityUses:    [AbilityTypeCount]uint8{AbilityBoostBurst: 2, AbilityStunShot: 4, AbilityOilDrop: 4},
	},
}

func (class VehicleClass) Valid() bool {
	return class < VehicleClassCount
}

func (class VehicleClass) Data() *VehicleClassData {
	return &vehicleClassData[class]
}

// ColorID is a client-selected livery. Purely cosmetic.
type ColorID uint8

const ColorIDCount = 12

// EffectType is a status effect. Effects are unique per type on a player;
// duplicates merge, never stack.
type EffectType uint8

const (
	EffectStun EffectType = iota
	EffectSlow
	EffectSpeedBurst
	EffectShield
	EffectTypeCount
)

var effectTypeLabels = [EffectTypeCount]string{"stun", "slow", "speedBurst", "shield"}

func (effectType EffectType) Valid() bool {
	return effectType < EffectTypeCount
}

func (effectType EffectType) Label() string {
	if !effectType.Valid() {
		return "unknown"
	}
	return effectTypeLabels[effectType]
}

// AbilityType is an activatable ability.
type AbilityType uint8

const (
	AbilityBoostBurst AbilityType = iota // self speed burst
	AbilityStunShot                      // projectile that stuns on hit
	AbilityOilDrop                       // deployable slick behind the car
	AbilityTypeCount
)

var abilityCooldownMs = [AbilityTypeCount]int64{
	AbilityBoostBurst: 6000,
	AbilityStunShot:   4000,
	AbilityOilDrop:    5000,
}

var abilityTypeLabels = [AbilityTypeCount]string{"boostBurst", "stunShot", "oilDrop"}

func (abilityType AbilityType) Valid() bool {
	return abilityType < AbilityTypeCount
}

func (abilityType AbilityType) CooldownMs() int64 {
	return abilityCooldownMs[abilityType]
}

func (abilityType AbilityType) Label() string {
	if !abilityType.Valid() {
		return "unknown"
	}
	return abilityTypeLabels[abilityType]
}

// PowerupType is a collectible pad on the track.
type PowerupType uint8

const (
	PowerupSpeedPad PowerupType = iota
	PowerupShieldPad
	PowerupTypeCount
)

// HazardType is a static or deployed track hazard.
type HazardType uint8

const (
	HazardOilSlick HazardType = iota
	HazardDebris
	HazardTypeCount
)
