package ecs

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs/component"
)

const DefaultCellSize = 8

// World owns agents and structures on a fixed grid and answers the spatial
// queries controllers make.
type World struct {
	entities entityStore
	events   EventQueue

	agents     SparseSet[*Agent]
	structures SparseSet[*Structure]

	cells  map[component.Cell]*Structure
	solid  map[component.Cell]bool
	spawns []cp.Vector

	width    int
	height   int
	cellSize float64

	// version changes whenever passability changes.
	version uint64
	tick    uint64
}

// NewWorld creates an empty width x height grid.
func NewWorld(width, height int, cellSize float64) *World {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &World{
		cells:    map[component.Cell]*Structure{},
		solid:    map[component.Cell]bool{},
		width:    width,
		height:   height,
		cellSize: cellSize,
	}
}

func (w *World) Width() int { return w.width }

func (w *World) Height() int { return w.height }

func (w *World) Version() uint64 { return w.version }

func (w *World) Tick() uint64 { return w.tick }

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive()
}

func (w *World) AddAgent(spec AgentSpec) *Agent {
	h := w.entities.create()
	a := &Agent{
		world:       w,
		handle:      h,
		added:       true,
		team:        spec.Team,
		pos:         spec.Position,
		rotation:    spec.Rotation,
		typ:         spec.Type,
		hitSize:     spec.HitSize,
		speed:       spec.Speed,
		rng:         spec.Range,
		rotateSpeed: spec.RotateSpeed,
		flying:      spec.Flying,
		health:      spec.Health,
		maxHealth:   spec.Health,
		payloads:    spec.Payloads,
	}
	if spec.Type != nil {
		a.mounts = component.NewMounts(spec.Type.Weapons)
	}
	w.agents.Set(h.ID, a)
	w.events.Push(Event{Type: EventAgentAdded, Entity: h})
	return a
}

// AddStructure places a structure. It returns nil when the cell is out of
// bounds or already occupied.
func (w *World) AddStructure(spec StructureSpec) *Structure {
	if !w.InBounds(spec.Cell) {
		return nil
	}
	if _, taken := w.cells[spec.Cell]; taken {
		return nil
	}

	maxHealth := spec.MaxHealth
	if maxHealth <= 0 {
		maxHealth = spec.Health
	}
	size := spec.Size
	if size <= 0 {
		size = w.cellSize
	}

	h := w.entities.create()
	s := &Structure{
		world:        w,
		handle:       h,
		added:        true,
		team:         spec.Team,
		cell:         spec.Cell,
		pos:          w.CellCenter(spec.Cell),
		size:         size,
		health:       spec.Health,
		maxHealth:    maxHealth,
		flags:        spec.Flags,
		underBullets: spec.UnderBullets,
	}
	w.structures.Set(h.ID, s)
	w.cells[spec.Cell] = s
	w.version++
	w.events.Push(Event{Type: EventStructureAdded, Entity: h})
	return s
}

// Remove takes an entity out of the simulation. Stale references observe
// Added() == false from then on.
func (w *World) Remove(e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	if a, ok := w.agents.Get(e.ID); ok {
		a.added = false
		w.agents.Remove(e.ID)
		w.events.Push(Event{Type: EventAgentRemoved, Entity: e})
	}
	if s, ok := w.structures.Get(e.ID); ok {
		s.added = false
		w.structures.Remove(e.ID)
		delete(w.cells, s.cell)
		w.version++
		w.events.Push(Event{Type: EventStructureRemoved, Entity: e})
	}
	return w.entities.destroy(e)
}

func (w *World) Agents() []*Agent {
	return w.agents.Values()
}

func (w *World) Structures() []*Structure {
	return w.structures.Values()
}

func (w *World) Agent(e Entity) (*Agent, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	return w.agents.Get(e.ID)
}

func (w *World) Structure(e Entity) (*Structure, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	return w.structures.Get(e.ID)
}

func (w *World) AddSpawn(p cp.Vector) {
	w.spawns = append(w.spawns, p)
	w.version++
}

func (w *World) Spawns() []cp.Vector {
	return w.spawns
}

// SetSolid marks a cell as impassable terrain.
func (w *World) SetSolid(c component.Cell, solid bool) {
	if solid {
		w.solid[c] = true
	} else {
		delete(w.solid, c)
	}
	w.version++
}

func (w *World) Solid(c component.Cell) bool {
	return w.solid[c]
}

func (w *World) InBounds(c component.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < w.width && c.Y < w.height
}

// Passable reports whether an agent can enter c. Ground agents are blocked
// by terrain and structures; flying agents only by the grid edge.
func (w *World) Passable(c component.Cell, flying bool) bool {
	if !w.InBounds(c) {
		return false
	}
	if flying {
		return true
	}
	if w.solid[c] {
		return false
	}
	_, occupied := w.cells[c]
	return !occupied
}

func (w *World) StructureAt(c component.Cell) component.Structure {
	if s, ok := w.cells[c]; ok && s.added {
		return s
	}
	return nil
}

func (w *World) CellOf(p cp.Vector) component.Cell {
	return component.Cell{
		X: int(math.Floor(p.X / w.cellSize)),
		Y: int(math.Floor(p.Y / w.cellSize)),
	}
}

func (w *World) CellCenter(c component.Cell) cp.Vector {
	return cp.Vector{
		X: (float64(c.X) + 0.5) * w.cellSize,
		Y: (float64(c.Y) + 0.5) * w.cellSize,
	}
}

func (w *World) CellSize() float64 {
	return w.cellSize
}

func (w *World) clampToBounds(p cp.Vector) cp.Vector {
	return cp.Vector{
		X: cp.Clamp(p.X, 0, float64(w.width)*w.cellSize),
		Y: cp.Clamp(p.Y, 0, float64(w.height)*w.cellSize),
	}
}

// ClosestTarget returns the nearest hostile agent accepted by agents within
// radius of pos, padded by its half size. Structures are only considered
// when no agent qualifies.
func (w *World) ClosestTarget(team component.Team, pos cp.Vector, radius float64,
	agents func(component.Agent) bool, structures func(component.Structure) bool) component.Target {
	if agents != nil {
		var best *Agent
		bestDist := math.Inf(1)
		for _, a := range w.agents.Values() {
			if !a.added || !team.Hostile(a.team) || !agents(a) {
				continue
			}
			d := a.pos.Distance(pos)
			if d > radius+a.hitSize/2 || d >= bestDist {
				continue
			}
			best, bestDist = a, d
		}
		if best != nil {
			return component.AgentTarget(best)
		}
	}

	if structures != nil {
		var best *Structure
		bestDist := math.Inf(1)
		for _, s := range w.structures.Values() {
			if !s.added || !team.Hostile(s.team) || !structures(s) {
				continue
			}
			d := s.pos.Distance(pos)
			if d > radius+s.size/2 || d >= bestDist {
				continue
			}
			best, bestDist = s, d
		}
		if best != nil {
			return component.StructureTarget(best)
		}
	}
	return component.NoTarget
}

func (w *World) Flagged(team component.Team, flag component.BlockFlag, enemy bool) []component.Structure {
	var out []component.Structure
	for _, s := range w.structures.Values() {
		if !s.added || s.flags&flag == 0 {
			continue
		}
		if enemy && !team.Hostile(s.team) {
			continue
		}
		if !enemy && s.team != team {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Step integrates agent motion by dt ticks.
func (w *World) Step(dt float64) {
	for _, a := range w.agents.Values() {
		a.step(dt)
	}
	w.tick++
}
