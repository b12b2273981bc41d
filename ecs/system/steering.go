package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/common"
)

const (
	defaultSmoothing = 100
	// headingGate is how far off-heading a rotate-first agent may be and
	// still thrust.
	headingGate = 3

	circleAttackTurnGate = 70
	circleAttackTurnRate = 6
)

// MoveOptions tune SeekVector.
type MoveOptions struct {
	// Smoothing is the distance over which speed ramps near the halt radius.
	Smoothing float64
	// KeepDistance reverses the agent when it is well inside the halt radius
	// instead of stopping it.
	KeepDistance bool
	// Arrive damps the approach using the agent's current velocity.
	Arrive bool
	// Offset is added to the seek vector before the final length is applied.
	Offset *cp.Vector
}

// SeekVector computes the desired velocity for an agent at from heading to
// to. It reports false when there is nothing to apply: the result was zero
// or not a finite number.
func SeekVector(from, to, vel cp.Vector, speed, accel, haltRadius float64, opts MoveOptions) (cp.Vector, bool) {
	smoothing := opts.Smoothing
	if smoothing <= 0 {
		smoothing = defaultSmoothing
	}

	vec := to.Sub(from)

	length := 1.0
	if haltRadius > 0.001 {
		length = cp.Clamp((from.Distance(to)-haltRadius)/smoothing, -1, 1)
	}

	vec = common.SetLength(vec, speed*length)

	if opts.Arrive && accel > 0 {
		damp := vel.Mult(-2 / accel).Add(to.Sub(from))
		vec = common.Limit(vec.Add(damp), speed*length)
	}

	switch {
	case length < -0.5:
		if opts.KeepDistance {
			vec = vec.Neg()
		} else {
			vec = cp.Vector{}
		}
	case length < 0:
		vec = cp.Vector{}
	}

	if opts.Offset != nil {
		vec = common.SetLength(vec.Add(*opts.Offset), speed*length)
	}

	if !common.Finite(vec) || common.IsZero(vec) {
		return cp.Vector{}, false
	}
	return vec, true
}

// PrefSpeed is the agent's cruising speed.
func (c *AIController) PrefSpeed() float64 {
	if c.agent == nil {
		return 0
	}
	return c.agent.Speed()
}

// MoveTo steers toward target and halts at haltRadius. Flying agents back
// off when they overshoot.
func (c *AIController) MoveTo(target cp.Vector, haltRadius float64) {
	if c.agent == nil {
		return
	}
	c.MoveToWith(target, haltRadius, MoveOptions{
		Smoothing:    defaultSmoothing,
		KeepDistance: c.agent.Flying(),
	})
}

func (c *AIController) MoveToWith(target cp.Vector, haltRadius float64, opts MoveOptions) {
	a := c.agent
	if a == nil || c.caps.typ == nil {
		return
	}

	vec, ok := SeekVector(a.Position(), target, a.Velocity(), c.PrefSpeed(), c.caps.typ.Accel, haltRadius, opts)
	if !ok {
		return
	}
	c.thrust(vec)
}

// thrust applies a desired velocity. Agents that must face their direction
// of travel turn first and only accelerate once roughly aligned.
func (c *AIController) thrust(vec cp.Vector) {
	a := c.agent
	typ := c.caps.typ
	if typ != nil && !typ.OmniMovement && typ.RotateMoveFirst {
		angle := common.Angle(vec)
		a.LookAt(angle)
		if common.AngleWithin(a.Rotation(), angle, headingGate) {
			a.MovePref(vec)
		}
		return
	}
	a.MovePref(vec)
}

// Circle orbits target. Inside circleLength the heading is bent away from the
// target in proportion to how deep the agent is.
func (c *AIController) Circle(target cp.Vector, circleLength, speed float64) {
	a := c.agent
	if a == nil {
		return
	}

	vec := target.Sub(a.Position())
	if l := vec.Length(); circleLength > 0 && l < circleLength {
		vec = common.RotateDeg(vec, (circleLength-l)/circleLength*180)
	}
	a.MovePref(common.SetLength(vec, speed))
}

// CircleAttack makes strafing runs over the current target: the agent keeps
// flying straight while it is close and facing away, and otherwise turns
// toward the target at a limited rate.
func (c *AIController) CircleAttack(circleLength float64) {
	a := c.agent
	if a == nil || c.target.None() {
		return
	}

	pos := a.Position()
	vec := c.target.Position().Sub(pos)
	velAngle := common.Angle(a.Velocity())
	diff := common.AngleDist(common.AngleTo(pos, c.target.Position()), a.Rotation())

	if diff > circleAttackTurnGate && vec.Length() < circleLength {
		vec = common.SetAngle(vec, velAngle)
	} else {
		vec = common.SetAngle(vec, common.MoveToward(velAngle, common.Angle(vec), circleAttackTurnRate))
	}

	a.MovePref(common.SetLength(vec, c.PrefSpeed()))
}
