package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/common"
	"github.com/milk9111/dronecore/ecs/component"
)

// AgentSpec describes an agent to spawn.
type AgentSpec struct {
	Team     component.Team
	Position cp.Vector
	Rotation float64
	Type     *component.AgentType

	HitSize     float64
	Speed       float64
	Range       float64
	RotateSpeed float64
	Flying      bool
	Health      float64
	// Payloads is the number of carried agents that can be dropped.
	Payloads int
}

// Agent is the world's implementation of component.Agent.
type Agent struct {
	world  *World
	handle Entity
	added  bool

	team     component.Team
	pos      cp.Vector
	vel      cp.Vector
	rotation float64
	typ      *component.AgentType
	mounts   []*component.Mount

	hitSize     float64
	speed       float64
	rng         float64
	rotateSpeed float64
	flying      bool

	health    float64
	maxHealth float64
	payloads  int
	dropped   int

	aim      cp.Vector
	shooting bool
	moved    bool
	wobble   float64
}

func (a *Agent) Handle() Entity { return a.handle }

func (a *Agent) ID() int { return a.handle.Key() }

func (a *Agent) Team() component.Team { return a.team }

func (a *Agent) Position() cp.Vector { return a.pos }

func (a *Agent) Velocity() cp.Vector { return a.vel }

func (a *Agent) HitSize() float64 { return a.hitSize }

func (a *Agent) Added() bool { return a.added }

func (a *Agent) Rotation() float64 { return a.rotation }

func (a *Agent) Flying() bool { return a.flying }

func (a *Agent) Speed() float64 { return a.speed }

func (a *Agent) Range() float64 { return a.rng }

func (a *Agent) Type() *component.AgentType { return a.typ }

func (a *Agent) Mounts() []*component.Mount { return a.mounts }

func (a *Agent) Aim() cp.Vector { return a.aim }

func (a *Agent) Shooting() bool { return a.shooting }

func (a *Agent) Health() float64 { return a.health }

func (a *Agent) MaxHealth() float64 { return a.maxHealth }

func (a *Agent) SetHealth(v float64) {
	a.health = cp.Clamp(v, 0, a.maxHealth)
}

// SetPosition teleports the agent.
func (a *Agent) SetPosition(p cp.Vector) {
	a.pos = p
}

func (a *Agent) SetVelocity(v cp.Vector) {
	a.vel = v
}

func (a *Agent) CellOn() (component.Cell, bool) {
	if a.world == nil {
		return component.Cell{}, false
	}
	c := a.world.CellOf(a.pos)
	return c, a.world.InBounds(c)
}

func (a *Agent) CanPass(c component.Cell) bool {
	if a.world == nil {
		return false
	}
	return a.world.Passable(c, a.flying)
}

// MovePref accelerates toward v. The change per call is capped at the type's
// acceleration fraction of |v|; agents without a type snap to v.
func (a *Agent) MovePref(v cp.Vector) {
	a.moved = true
	accel := 0.0
	if a.typ != nil {
		accel = a.typ.Accel
	}
	if accel <= 0 {
		a.vel = v
		return
	}
	a.vel = a.vel.Add(common.Limit(v.Sub(a.vel), accel*v.Length()))
}

// LookAt turns toward angle by at most the rotate speed.
func (a *Agent) LookAt(angle float64) {
	if a.rotateSpeed <= 0 {
		a.rotation = common.Mod360(angle)
		return
	}
	a.rotation = common.Mod360(common.MoveToward(a.rotation, angle, a.rotateSpeed))
}

func (a *Agent) SetAim(p cp.Vector) { a.aim = p }

func (a *Agent) SetShooting(shooting bool) { a.shooting = shooting }

func (a *Agent) Wobble() {
	a.wobble++
}

func (a *Agent) HasPayload() bool { return a.payloads > 0 }

func (a *Agent) PayloadIsAgent() bool { return a.payloads > 0 }

func (a *Agent) DropLastPayload() bool {
	if a.payloads <= 0 {
		return false
	}
	a.payloads--
	a.dropped++
	return true
}

// Dropped counts payloads released so far.
func (a *Agent) Dropped() int { return a.dropped }

// step integrates one tick of motion. Agents that were not driven this tick
// coast to a stop.
func (a *Agent) step(dt float64) {
	if !a.moved {
		decay := 1.0
		if a.typ != nil && a.typ.Accel > 0 {
			decay = a.typ.Accel
		}
		a.vel = a.vel.Mult(1 - cp.Clamp(decay*dt, 0, 1))
	}
	a.moved = false
	a.pos = a.pos.Add(a.vel.Mult(dt))
	if a.world != nil {
		a.pos = a.world.clampToBounds(a.pos)
	}
}
