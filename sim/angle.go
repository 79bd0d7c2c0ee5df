// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Angle is a yaw in radians. Zero faces +Z (down the track).
type Angle float32

func ToAngle(f float32) Angle {
	return Angle(f)
}

func (angle Angle) Float() float32 {
	return float32(angle)
}

// Vec2f is the unit heading vector of the angle.
func (angle Angle) Vec2f() Vec2f {
	sin, cos := math32.Sincos(float32(angle))
	return Vec2f{
		X: sin,
		Z: cos,
	}
}

func (angle Angle) ClampMagnitude(max Angle) Angle {
	if angle < -max {
		return -max
	}
	if angle > max {
		return max
	}
	return angle
}

// Diff returns the signed shortest difference angle - otherAngle in (-Pi, Pi].
func (angle Angle) Diff(otherAngle Angle) (difference Angle) {
	difference = angle - otherAngle
	const mod = Angle(math32.Pi * 2)

	if difference >= mod || difference < -mod {
		difference = Angle(math32.Mod(float32(difference), float32(mod)))
	}

	if difference < Angle(-math32.Pi) {
		difference += Angle(math32.Pi * 2)
	} else if difference >= Angle(math32.Pi) {
		difference -= Angle(math32.Pi * 2)
	}
	return
}

// Lerp blends toward otherAngle along the shortest arc.
func (angle Angle) Lerp(otherAngle Angle, factor float32) Angle {
	delta := otherAngle.Diff(angle)
	return angle + delta*Angle(factor)
}

func (angle Angle) Abs() Angle {
	return Angle(math32.Abs(float32(angle)))
}

func (angle Angle) String() string {
	return fmt.Sprintf("%.01f degrees", float32(angle)*180/math32.Pi)
}
