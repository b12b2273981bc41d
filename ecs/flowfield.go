package ecs

import (
	"container/heap"

	"github.com/milk9111/dronecore/ecs/component"
)

// Goals a FlowField can route toward.
const (
	GoalEnemyCore = iota
	GoalSpawn
)

// Cost classes. Ground units are blocked by terrain and structures; legged
// units walk over structures.
const (
	CostGround = iota
	CostLegs
)

const (
	costCardinal    = 10
	costDiagonal    = 14
	costUnreachable = 1<<30 - 1
)

// neighbor offsets: N, NE, E, SE, S, SW, W, NW
var dirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

type flowKey struct {
	team component.Team
	cost int
	goal int
}

type flowGrid struct {
	version uint64
	dist    []int
}

// FlowField computes weighted Dijkstra distance fields over the world grid,
// one per (team, cost class, goal), and recomputes a field lazily when the
// world's passability changes.
type FlowField struct {
	world  *World
	fields map[flowKey]*flowGrid
}

func NewFlowField(w *World) *FlowField {
	return &FlowField{world: w, fields: map[flowKey]*flowGrid{}}
}

// NextCell returns the neighbor of from with the lowest distance to goal.
// From a goal cell it returns from itself.
func (f *FlowField) NextCell(team component.Team, costClass, goal int, from component.Cell) (component.Cell, bool) {
	w := f.world
	if w == nil || !w.InBounds(from) {
		return from, false
	}

	g := f.field(flowKey{team: team, cost: costClass, goal: goal})
	idx := from.Y*w.width + from.X
	cur := g.dist[idx]
	if cur == 0 {
		return from, true
	}

	blocked := f.blocked(costClass, g)
	best := from
	bestDist := cur
	for _, d := range dirVectors {
		nx, ny := from.X+d[0], from.Y+d[1]
		if nx < 0 || ny < 0 || nx >= w.width || ny >= w.height {
			continue
		}
		nd := g.dist[ny*w.width+nx]
		if nd >= bestDist {
			continue
		}
		if d[0] != 0 && d[1] != 0 && (blocked(from.X+d[0], from.Y) || blocked(from.X, from.Y+d[1])) {
			continue
		}
		best = component.Cell{X: nx, Y: ny}
		bestDist = nd
	}

	if best == from {
		return from, false
	}
	return best, true
}

// Distance returns the weighted distance from c to goal, or -1.
func (f *FlowField) Distance(team component.Team, costClass, goal int, c component.Cell) int {
	if f.world == nil || !f.world.InBounds(c) {
		return -1
	}
	g := f.field(flowKey{team: team, cost: costClass, goal: goal})
	d := g.dist[c.Y*f.world.width+c.X]
	if d >= costUnreachable {
		return -1
	}
	return d
}

func (f *FlowField) field(key flowKey) *flowGrid {
	g, ok := f.fields[key]
	if ok && g.version == f.world.version && len(g.dist) == f.world.width*f.world.height {
		return g
	}
	if g == nil {
		g = &flowGrid{}
		f.fields[key] = g
	}
	f.compute(key, g)
	return g
}

func (f *FlowField) goals(key flowKey) []component.Cell {
	w := f.world
	var out []component.Cell
	switch key.goal {
	case GoalEnemyCore:
		for _, s := range w.Flagged(key.team, component.FlagCore, true) {
			out = append(out, s.Cell())
		}
	case GoalSpawn:
		for _, p := range w.spawns {
			if c := w.CellOf(p); w.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// blocked reports impassable cells. Goal cells stay enterable so that
// structure goals are reachable.
func (f *FlowField) blocked(costClass int, g *flowGrid) func(x, y int) bool {
	w := f.world
	return func(x, y int) bool {
		c := component.Cell{X: x, Y: y}
		if !w.InBounds(c) || w.solid[c] {
			return true
		}
		if costClass == CostLegs {
			return false
		}
		if _, occupied := w.cells[c]; occupied {
			return g.dist[y*w.width+x] != 0
		}
		return false
	}
}

func (f *FlowField) compute(key flowKey, g *flowGrid) {
	w := f.world
	size := w.width * w.height
	if cap(g.dist) < size {
		g.dist = make([]int, size)
	}
	g.dist = g.dist[:size]
	for i := range g.dist {
		g.dist[i] = costUnreachable
	}
	g.version = w.version

	pq := &cellHeap{}
	for _, c := range f.goals(key) {
		idx := c.Y*w.width + c.X
		g.dist[idx] = 0
		heap.Push(pq, cellEntry{idx: idx, dist: 0})
	}

	blocked := f.blocked(key.cost, g)
	for pq.Len() > 0 {
		e := heap.Pop(pq).(cellEntry)
		if e.dist > g.dist[e.idx] {
			continue
		}
		cx, cy := e.idx%w.width, e.idx/w.width
		for i, d := range dirVectors {
			nx, ny := cx+d[0], cy+d[1]
			if blocked(nx, ny) {
				continue
			}
			if d[0] != 0 && d[1] != 0 && (blocked(cx+d[0], cy) || blocked(cx, cy+d[1])) {
				continue
			}
			cost := costCardinal
			if i%2 == 1 {
				cost = costDiagonal
			}
			nIdx := ny*w.width + nx
			if nd := e.dist + cost; nd < g.dist[nIdx] {
				g.dist[nIdx] = nd
				heap.Push(pq, cellEntry{idx: nIdx, dist: nd})
			}
		}
	}
}

type cellEntry struct {
	idx  int
	dist int
}

type cellHeap []cellEntry

func (h cellHeap) Len() int           { return len(h) }
func (h cellHeap) Less(i, j int) bool { return h[i].dist < h[j].dist }
func (h cellHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)        { *h = append(*h, x.(cellEntry)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
