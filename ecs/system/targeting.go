package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs/component"
)

// Retarget reports whether the main target search is due this tick. The
// search runs every 40 ticks while untargeted and every 90 otherwise.
func (c *AIController) Retarget() bool {
	interval := float64(retargetIntervalTracked)
	if c.target.None() {
		interval = retargetIntervalIdle
	}
	return c.timers.Get(component.TimerTarget, interval)
}

// FindTarget returns the closest hostile within rng of pos that the agent is
// able to engage.
func (c *AIController) FindTarget(pos cp.Vector, rng float64, air, ground bool) component.Target {
	if c.agent == nil || c.env.Index == nil {
		return component.NoTarget
	}

	underBlocks := c.caps.typ != nil && c.caps.typ.TargetUnderBlocks
	agents := func(u component.Agent) bool {
		return (u.Flying() && air) || (!u.Flying() && ground)
	}
	structures := func(s component.Structure) bool {
		return ground && (underBlocks || !s.UnderBullets())
	}
	return c.env.Index.ClosestTarget(c.agent.Team(), pos, rng, agents, structures)
}

// Invalid reports whether t can no longer be pursued at any range.
func (c *AIController) Invalid(t component.Target) bool {
	if c.agent == nil {
		return true
	}
	return InvalidTarget(t, c.agent.Team(), c.agent.Position(), math.MaxFloat64)
}

// CheckTarget reports whether t is unusable from pos at rng.
func (c *AIController) CheckTarget(t component.Target, pos cp.Vector, rng float64) bool {
	if c.agent == nil {
		return true
	}
	return InvalidTarget(t, c.agent.Team(), pos, rng)
}

// InvalidTarget reports whether t is missing, gone, not hostile to team or
// out of rng (padded by the target's half size) from pos. A range of
// math.MaxFloat64 disables the distance check.
func InvalidTarget(t component.Target, team component.Team, pos cp.Vector, rng float64) bool {
	if t.None() || !t.Added() {
		return true
	}
	if !team.Hostile(t.Entity().Team()) {
		return true
	}
	if rng != math.MaxFloat64 && !t.Within(pos, rng+t.HitSize()/2) {
		return true
	}
	return false
}

// TargetFlag returns the structure carrying flag closest to pos, owned by an
// enemy team when enemy is set and by the agent's own team otherwise.
func (c *AIController) TargetFlag(pos cp.Vector, flag component.BlockFlag, enemy bool) component.Target {
	if c.agent == nil || c.env.Index == nil || c.agent.Team() == component.Derelict {
		return component.NoTarget
	}

	var best component.Structure
	bestDist := math.Inf(1)
	for _, s := range c.env.Index.Flagged(c.agent.Team(), flag, enemy) {
		if s == nil || !s.Added() {
			continue
		}
		if d := pos.Distance(s.Position()); d < bestDist {
			best = s
			bestDist = d
		}
	}
	return component.StructureTarget(best)
}

// ClosestSpawner returns the spawn point nearest the agent.
func (c *AIController) ClosestSpawner() (cp.Vector, bool) {
	if c.agent == nil || c.env.Index == nil {
		return cp.Vector{}, false
	}

	pos := c.agent.Position()
	var best cp.Vector
	found := false
	bestDist := math.Inf(1)
	for _, sp := range c.env.Index.Spawns() {
		if d := pos.Distance(sp); d < bestDist {
			best = sp
			bestDist = d
			found = true
		}
	}
	return best, found
}

// ClosestEnemyCore returns the nearest hostile core. The lookup runs once
// per core-search interval; in between the cached core is returned while it
// stays valid.
func (c *AIController) ClosestEnemyCore(cached component.Target) component.Target {
	if c.agent == nil {
		return component.NoTarget
	}
	if !c.timers.Get(component.TimerCoreSearch, coreSearchInterval) {
		if c.Invalid(cached) {
			return component.NoTarget
		}
		return cached
	}
	return c.TargetFlag(c.agent.Position(), component.FlagCore, true)
}

// updateTargeting refreshes combat targets and weapon mounts. Nothing is
// searched while the agent is repairing and every mount is released.
func (c *AIController) updateTargeting(dt float64) {
	if c.task.State == component.StateRepairing {
		c.releaseMounts()
		return
	}
	if c.caps.typ.HasWeapons() {
		c.updateWeapons(dt)
	}
}
