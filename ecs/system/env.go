package system

import (
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs/component"
)

// TargetIndex answers spatial queries over the live entities of the
// simulation.
type TargetIndex interface {
	// ClosestTarget returns the nearest entity hostile to team within radius
	// of pos. Agents are considered before structures; either filter may be
	// nil to skip that kind entirely.
	ClosestTarget(team component.Team, pos cp.Vector, radius float64,
		agents func(component.Agent) bool, structures func(component.Structure) bool) component.Target
	// Flagged lists structures carrying flag that belong to team, or to any
	// team hostile to it when enemy is set.
	Flagged(team component.Team, flag component.BlockFlag, enemy bool) []component.Structure
	Spawns() []cp.Vector
}

// Grid maps world positions onto the structure grid.
type Grid interface {
	StructureAt(c component.Cell) component.Structure
	CellOf(p cp.Vector) component.Cell
	CellCenter(c component.Cell) cp.Vector
	CellSize() float64
}

// NavField yields the next cell along a precomputed flow field toward goal.
type NavField interface {
	NextCell(team component.Team, costClass, goal int, from component.Cell) (component.Cell, bool)
}

// Goals understood by NavField implementations.
const (
	GoalEnemyCore = iota
	GoalSpawn
)

// Observer receives state changes of the repair task. Calls are
// best-effort; an observer must not block the tick.
type Observer interface {
	StateChanged(change component.StateChange)
}

type ObserverFunc func(component.StateChange)

func (f ObserverFunc) StateChanged(change component.StateChange) {
	if f != nil {
		f(change)
	}
}

// Env bundles the read-only collaborators a controller consults during a
// tick. Any field may be nil; the operations that need it then do nothing.
type Env struct {
	Index    TargetIndex
	Grid     Grid
	Nav      NavField
	Observer Observer
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
