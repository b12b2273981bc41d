package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/common"
	"github.com/milk9111/dronecore/ecs/component"
)

// Hooks are the strategy extension points of an AIController.
type Hooks interface {
	// UpdateMovement steers the agent when the repair task is not moving it.
	UpdateMovement(c *AIController)
	// FindMainTarget selects the main combat target on a retarget tick.
	FindMainTarget(c *AIController, pos cp.Vector, rng float64, air, ground bool) component.Target
	// TargetInvalidated runs when a held main target becomes invalid.
	TargetInvalidated(c *AIController)
}

// BaseHooks targets the closest hostile and does not move.
type BaseHooks struct{}

func (BaseHooks) UpdateMovement(*AIController) {}

func (BaseHooks) FindMainTarget(c *AIController, pos cp.Vector, rng float64, air, ground bool) component.Target {
	return c.FindTarget(pos, rng, air, ground)
}

func (BaseHooks) TargetInvalidated(*AIController) {}

// GroundHooks walk the flow field toward the enemy core and hold position
// once it is in firing range.
type GroundHooks struct {
	BaseHooks

	core component.Target
}

func (h *GroundHooks) UpdateMovement(c *AIController) {
	a := c.Agent()
	if a == nil {
		return
	}

	h.core = c.ClosestEnemyCore(h.core)
	pos := a.Position()

	if !h.core.None() && h.core.Within(pos, a.Range()/1.3+h.core.HitSize()/2) {
		c.SetTarget(h.core)
		for _, m := range a.Mounts() {
			if m == nil || m.Weapon == nil || !m.Weapon.Controllable {
				continue
			}
			if m.Weapon.Bullet == nil || m.Weapon.Bullet.CollidesGround {
				m.Target = h.core
			}
		}
	}

	if h.core.None() || !h.core.Within(pos, a.Range()*0.5) {
		c.Pathfind(GoalEnemyCore)
	}

	c.FaceTarget()
}

// FlyingHooks chase the main target through the air, preferring the enemy
// core when it is in range. Without a target the agent returns to the
// nearest spawn.
type FlyingHooks struct {
	BaseHooks

	// CircleTarget selects strafing runs instead of hovering at range.
	CircleTarget bool
	CircleLength float64
	ReturnRadius float64
}

const (
	defaultCircleLength = 120
	defaultReturnRadius = 130
)

func (h *FlyingHooks) UpdateMovement(c *AIController) {
	a := c.Agent()
	if a == nil {
		return
	}

	c.UnloadPayloads()

	t := c.Target()
	if !t.None() && c.Type().HasWeapons() {
		if h.CircleTarget {
			c.CircleAttack(orDefault(h.CircleLength, defaultCircleLength))
		} else {
			c.MoveTo(t.Position(), a.Range()*0.8)
			a.LookAt(common.AngleTo(a.Position(), t.Position()))
		}
		return
	}

	if t.None() {
		if sp, ok := c.ClosestSpawner(); ok {
			c.MoveTo(sp, orDefault(h.ReturnRadius, defaultReturnRadius))
		}
	}
}

func (h *FlyingHooks) FindMainTarget(c *AIController, pos cp.Vector, rng float64, air, ground bool) component.Target {
	core := c.TargetFlag(pos, component.FlagCore, true)
	if !core.None() && core.Within(pos, rng) {
		return core
	}
	if t := c.FindTarget(pos, rng, air, ground); !t.None() {
		return t
	}
	return core
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
