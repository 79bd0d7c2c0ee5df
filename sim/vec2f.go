// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"github.com/chewxy/math32"
)

// Vec2f is a point or vector on the track plane.
// X is lateral (across the track), Z is longitudinal (along the track).
type Vec2f struct {
	X float32 `json:"x"`
	Z float32 `json:"z"`
}

func (vec Vec2f) Add(otherVec Vec2f) Vec2f {
	vec.X += otherVec.X
	vec.Z += otherVec.Z
	return vec
}

func (vec Vec2f) Sub(otherVec Vec2f) Vec2f {
	vec.X -= otherVec.X
	vec.Z -= otherVec.Z
	return vec
}

func (vec Vec2f) Mul(factor float32) Vec2f {
	vec.X *= factor
	vec.Z *= factor
	return vec
}

func (vec Vec2f) AddScaled(otherVec Vec2f, factor float32) Vec2f {
	vec.X += otherVec.X * factor
	vec.Z += otherVec.Z * factor
	return vec
}

func (vec Vec2f) Dot(otherVec Vec2f) float32 {
	return vec.X*otherVec.X + vec.Z*otherVec.Z
}

func (vec Vec2f) Angle() Angle {
	return Angle(math32.Atan2(vec.X, vec.Z))
}

func (vec Vec2f) Length() float32 {
	return math32.Hypot(vec.X, vec.Z)
}

func (vec Vec2f) LengthSquared() float32 {
	return vec.X*vec.X + vec.Z*vec.Z
}

func (vec Vec2f) Distance(otherVec Vec2f) float32 {
	return vec.Sub(otherVec).Length()
}

func (vec Vec2f) DistanceSquared(otherVec Vec2f) float32 {
	x := vec.X - otherVec.X
	z := vec.Z - otherVec.Z
	return x*x + z*z
}

func (vec Vec2f) Norm() Vec2f {
	length := vec.Length()
	if length == 0 {
		return Vec2f{}
	}
	return vec.Mul(1.0 / length)
}

// ClampLength limits the vector's magnitude without changing its direction.
func (vec Vec2f) ClampLength(maxLength float32) Vec2f {
	l2 := vec.LengthSquared()
	if l2 <= maxLength*maxLength {
		return vec
	}
	return vec.Mul(maxLength / math32.Sqrt(l2))
}

func Lerp(a, b, factor float32) float32 {
	return a + (b-a)*factor
}

func (vec Vec2f) Lerp(otherVec Vec2f, factor float32) Vec2f {
	vec.X = Lerp(vec.X, otherVec.X, factor)
	vec.Z = Lerp(vec.Z, otherVec.Z, factor)
	return vec
}
