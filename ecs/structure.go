package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs/component"
)

// StructureSpec describes a structure to place on the grid.
type StructureSpec struct {
	Team         component.Team
	Cell         component.Cell
	Size         float64
	Health       float64
	MaxHealth    float64
	Flags        component.BlockFlag
	UnderBullets bool
}

// Structure is the world's implementation of component.Structure.
type Structure struct {
	world  *World
	handle Entity
	added  bool

	team         component.Team
	cell         component.Cell
	pos          cp.Vector
	size         float64
	health       float64
	maxHealth    float64
	flags        component.BlockFlag
	underBullets bool
}

func (s *Structure) Handle() Entity { return s.handle }

func (s *Structure) ID() int { return s.handle.Key() }

func (s *Structure) Team() component.Team { return s.team }

func (s *Structure) Position() cp.Vector { return s.pos }

func (s *Structure) Velocity() cp.Vector { return cp.Vector{} }

func (s *Structure) HitSize() float64 { return s.size }

func (s *Structure) Added() bool { return s.added }

func (s *Structure) Cell() component.Cell { return s.cell }

func (s *Structure) Damaged() bool { return s.health < s.maxHealth }

func (s *Structure) UnderBullets() bool { return s.underBullets }

func (s *Structure) Flags() component.BlockFlag { return s.flags }

func (s *Structure) Health() float64 { return s.health }

func (s *Structure) MaxHealth() float64 { return s.maxHealth }

// SetHealth clamps v into [0, max] and reports damage to the world.
func (s *Structure) SetHealth(v float64) {
	prev := s.health
	s.health = cp.Clamp(v, 0, s.maxHealth)
	if s.world != nil && s.health < prev {
		s.world.events.Push(Event{Type: EventStructureDamaged, Entity: s.handle})
	}
}
