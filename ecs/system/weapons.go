package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/common"
	"github.com/milk9111/dronecore/ecs/component"
)

const (
	// rotateBackTime is how long a mount idles before returning to rest.
	rotateBackTime = 300
	// restTolerance is the angular slack for a mount at rest: 0.01 rad,
	// expressed in degrees like every other angle here.
	restTolerance   = 0.01 * 180 / math.Pi
	restAimDistance = 5

	payloadDropRange = 75
)

// ShouldShoot gates weapon fire intent. Repairing agents never shoot.
func (c *AIController) ShouldShoot() bool {
	return c.task.State != component.StateRepairing
}

// ShouldFire masks the trigger of every mount after aiming.
func (c *AIController) ShouldFire() bool {
	return c.task.State != component.StateRepairing
}

func (c *AIController) updateWeapons(dt float64) {
	a := c.agent
	typ := c.caps.typ
	if a == nil || typ == nil {
		return
	}

	rotation := a.Rotation() - 90
	ret := c.Retarget()

	if ret {
		c.target = c.hooks.FindMainTarget(c, a.Position(), a.Range(), typ.TargetAir, typ.TargetGround)
	}

	c.noTargetTime += dt

	if c.Invalid(c.target) {
		if !c.target.None() {
			c.hooks.TargetInvalidated(c)
		}
		c.target = component.NoTarget
	} else {
		c.noTargetTime = 0
	}

	shooting := false
	for _, m := range a.Mounts() {
		if m == nil || m.Weapon == nil {
			continue
		}
		w := m.Weapon
		if !w.Controllable || w.NoAttack {
			continue
		}
		if !w.AIControllable {
			m.Rotate = false
			continue
		}

		mountPos := a.Position().Add(common.RotateDeg(cp.Vector{X: w.X, Y: w.Y}, rotation))

		if typ.SingleTarget {
			m.Target = c.target
		} else {
			if ret {
				air, ground := true, true
				if w.Bullet != nil {
					air, ground = w.Bullet.CollidesAir, w.Bullet.CollidesGround
				}
				m.Target = c.FindTarget(mountPos, w.Range, air, ground)
			}
			if c.CheckTarget(m.Target, mountPos, w.Range) {
				m.Target = component.NoTarget
			}
		}

		shoot := false
		if !m.Target.None() {
			shoot = m.Target.Within(mountPos, w.Range+m.Target.HitSize()/2) && c.ShouldShoot()

			if typ.AutoDropBombs && !shoot {
				shoot = c.updateBomberTarget()
			}

			speed := 0.0
			if w.Bullet != nil {
				speed = w.Bullet.Speed
			}
			m.Aim = Intercept(a.Position(), m.Target.Position(), m.Target.Velocity(), speed)
		}

		m.Shoot = shoot
		m.Rotate = shoot
		if !c.ShouldFire() {
			m.Shoot = false
		}
		shooting = shooting || m.Shoot

		if m.Target.None() && !shoot &&
			!common.AngleWithin(m.Rotation, w.BaseRotation, restTolerance) &&
			c.noTargetTime >= rotateBackTime {
			m.Rotate = true
			m.Aim = mountPos.Add(common.Trns(a.Rotation()+w.BaseRotation, restAimDistance))
		}

		if shoot {
			a.SetAim(m.Aim)
		}
	}

	a.SetShooting(shooting)
}

// updateBomberTarget keeps a ground target under the agent for bombers and
// reports whether one exists.
func (c *AIController) updateBomberTarget() bool {
	a := c.agent
	bt := c.bomberTarget
	if bt.None() || !bt.Added() || !bt.Within(a.Position(), a.HitSize()/2+bt.HitSize()/2) {
		c.bomberTarget = component.NoTarget
		if c.env.Index != nil {
			c.bomberTarget = c.env.Index.ClosestTarget(a.Team(), a.Position(), a.HitSize(),
				func(u component.Agent) bool { return !u.Flying() },
				func(component.Structure) bool { return true })
		}
	}
	return !c.bomberTarget.None()
}

// StopShooting releases the trigger on every mount.
func (c *AIController) StopShooting() {
	if c.agent == nil {
		return
	}
	for _, m := range c.agent.Mounts() {
		if m != nil {
			m.Shoot = false
		}
	}
	c.agent.SetShooting(false)
}

// releaseMounts stops fire and rotation on every mount.
func (c *AIController) releaseMounts() {
	if c.agent == nil {
		return
	}
	for _, m := range c.agent.Mounts() {
		if m != nil {
			m.Rotate = false
		}
	}
	c.StopShooting()
}

// FaceTarget turns omni-directional agents toward the lead point of their
// target, or along their velocity when there is nothing to face.
func (c *AIController) FaceTarget() {
	a := c.agent
	typ := c.caps.typ
	if a == nil || typ == nil || !typ.OmniMovement {
		return
	}

	if !c.CheckTarget(c.target, a.Position(), a.Range()) && typ.FaceTarget && typ.HasWeapons() {
		speed := 0.0
		if w := typ.Weapons[0]; w != nil && w.Bullet != nil {
			speed = w.Bullet.Speed
		}
		aim := Intercept(a.Position(), c.target.Position(), c.target.Velocity(), speed)
		a.LookAt(common.AngleTo(a.Position(), aim))
		return
	}
	c.FaceMovement()
}

// FaceMovement turns the agent along its velocity while it is moving.
func (c *AIController) FaceMovement() {
	a := c.agent
	if a == nil {
		return
	}
	if vel := a.Velocity(); vel.LengthSq() > 0.0001 {
		a.LookAt(common.Angle(vel))
	}
}

// UpdateVisuals keeps flying agents hovering and pointed along their
// preferred heading.
func (c *AIController) UpdateVisuals() {
	a := c.agent
	if a == nil || !a.Flying() {
		return
	}
	if c.caps.typ != nil && c.caps.typ.Wobble && c.caps.wobbler != nil {
		c.caps.wobbler.Wobble()
	}
	a.LookAt(c.prefRotation())
}

func (c *AIController) prefRotation() float64 {
	a := c.agent
	if vel := a.Velocity(); vel.LengthSq() > 0.0001 {
		return common.Angle(vel)
	}
	return a.Rotation()
}

// UnloadPayloads drops a carried agent onto a structure target in reach.
func (c *AIController) UnloadPayloads() bool {
	p := c.caps.payload
	if p == nil || c.agent == nil {
		return false
	}
	if _, ok := c.target.Structure(); !ok {
		return false
	}
	if !p.HasPayload() || !p.PayloadIsAgent() {
		return false
	}
	if !c.target.Within(c.agent.Position(), math.Max(c.agent.Range()+1, payloadDropRange)) {
		return false
	}
	return p.DropLastPayload()
}
