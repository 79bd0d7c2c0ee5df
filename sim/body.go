// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"github.com/chewxy/math32"
)

// Body is the rigid body of one car. Exactly one exists per active player;
// it is destroyed when the player is removed.
type Body struct {
	Position Vec2f
	Velocity Vec2f
	Yaw      Angle

	Mass   float32
	Radius float32
	// ForwardExtent is the distance from body center to the front bumper.
	// Lap/finish detection uses it so a bumper crossing the line counts.
	ForwardExtent float32
}

// ForwardSpeed is the velocity component along the body's heading.
// Negative while reversing.
func (body *Body) ForwardSpeed() float32 {
	return body.Velocity.Dot(body.Yaw.Vec2f())
}

// PlanarSpeed is the magnitude of the body's velocity.
func (body *Body) PlanarSpeed() float32 {
	return body.Velocity.Length()
}

// Integrate advances the body by dt seconds under the given controls.
// frictionLateral scales how hard lateral velocity is damped; the drift
// state machine lowers it while sliding. speedFactor scales top speed and
// acceleration (status effects). Returns nothing; mutates the body.
func (body *Body) Integrate(dt float32, controls Controls, class *VehicleClassData, frictionLateral, speedFactor float32) {
	forward := body.Yaw.Vec2f()
	lateral := Vec2f{X: forward.Z, Z: -forward.X}

	forwardSpeed := body.Velocity.Dot(forward)
	lateralSpeed := body.Velocity.Dot(lateral)

	// Steering authority ramps up with speed so a parked car can't pivot.
	steerAuthority := min32(math32.Abs(forwardSpeed)/carSteerRefSpeed, 1)
	yawRate := controls.Steering * carSteerRate * steerAuthority
	if forwardSpeed < 0 {
		yawRate = -yawRate
	}
	body.Yaw += Angle(yawRate * dt)
	body.Yaw = body.Yaw.Diff(0) // renormalize into (-Pi, Pi]

	accel := controls.Throttle * carAcceleration * class.Acceleration * speedFactor
	if controls.Throttle < 0 {
		accel *= carReverseFactor
	}
	if controls.Brake {
		if forwardSpeed > 0 {
			accel -= carBrakeDecel
		} else if forwardSpeed < 0 {
			accel += carBrakeDecel
		}
	}

	forwardSpeed += accel * dt
	forwardSpeed -= forwardSpeed * carDrag * dt

	topSpeed := class.TopSpeed * speedFactor
	forwardSpeed = clamp(forwardSpeed, -topSpeed*carReverseFactor, topSpeed)

	// Lateral velocity bleeds off at the grip rate. While drifting the
	// multiplier is below one and the car carries its slide.
	lateralSpeed -= lateralSpeed * carLateralGrip * frictionLateral * dt

	// Recompose with the (possibly rotated) heading.
	forward = body.Yaw.Vec2f()
	lateral = Vec2f{X: forward.Z, Z: -forward.X}
	body.Velocity = forward.Mul(forwardSpeed).AddScaled(lateral, lateralSpeed)
	body.Velocity = body.Velocity.ClampLength(GuardrailSpeed)

	body.Position = body.Position.AddScaled(body.Velocity, dt)
}

// ApplyForwardImpulse adds a delta-velocity along the body's heading,
// bounded by the guardrail.
func (body *Body) ApplyForwardImpulse(deltaVelocity float32) {
	body.Velocity = body.Velocity.AddScaled(body.Yaw.Vec2f(), deltaVelocity).ClampLength(GuardrailSpeed)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp(val, minimum, maximum float32) float32 {
	return min32(max32(val, minimum), maximum)
}
