package component

import "github.com/jakecoffman/cp"

// Entity is anything a controller can target: an agent or a structure.
// Implementations are owned by the simulation; Added reports whether the
// entity is still present and is the only thing read from a stale reference.
type Entity interface {
	ID() int
	Team() Team
	Position() cp.Vector
	Velocity() cp.Vector
	HitSize() float64
	Added() bool
}

// Structure is a static entity occupying a grid cell.
type Structure interface {
	Entity
	Cell() Cell
	Damaged() bool
	UnderBullets() bool
	Flags() BlockFlag
}

// Agent is the mobile entity a controller drives. Controllers hold a
// non-owning reference and only mutate it through the actuator methods.
type Agent interface {
	Entity
	Rotation() float64
	Flying() bool
	Speed() float64
	Range() float64
	Type() *AgentType
	Mounts() []*Mount
	CellOn() (Cell, bool)
	CanPass(c Cell) bool

	MovePref(v cp.Vector)
	LookAt(angle float64)
	SetAim(p cp.Vector)
	SetShooting(shooting bool)
}

// PayloadCarrier is implemented by agents that can carry and drop payloads.
type PayloadCarrier interface {
	HasPayload() bool
	PayloadIsAgent() bool
	DropLastPayload() bool
}

// Wobbler is implemented by flying agents with an idle hover animation.
type Wobbler interface {
	Wobble()
}

// Healthy exposes hit points for agents that have them.
type Healthy interface {
	Health() float64
	MaxHealth() float64
}
