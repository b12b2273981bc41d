package ecs

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld(10, 10, 8)
			agents := make([]*Agent, 0, c.create)
			for i := 0; i < c.create; i++ {
				agents = append(agents, w.AddAgent(AgentSpec{Team: 1}))
			}
			if len(w.Agents()) != c.create {
				t.Fatalf("expected %d agents, got %d", c.create, len(w.Agents()))
			}
			if c.destroyIndex >= 0 {
				victim := agents[c.destroyIndex]
				if !w.Remove(victim.Handle()) {
					t.Fatalf("Remove should return true for alive entity")
				}
				if w.IsAlive(victim.Handle()) {
					t.Fatalf("entity should not be alive after removal")
				}
				if victim.Added() {
					t.Fatalf("stale reference should observe Added() == false")
				}
				if w.Remove(victim.Handle()) {
					t.Fatalf("second Remove should return false")
				}
				if len(w.Agents()) != c.create-1 {
					t.Fatalf("expected %d agents after removal, got %d", c.create-1, len(w.Agents()))
				}
			}
		})
	}
}

func TestEntityReuseBumpsGeneration(t *testing.T) {
	w := NewWorld(4, 4, 8)
	first := w.AddAgent(AgentSpec{Team: 1})
	w.Remove(first.Handle())
	second := w.AddAgent(AgentSpec{Team: 1})

	if second.Handle().ID != first.Handle().ID {
		t.Fatalf("expected slot reuse, got ids %d and %d", first.Handle().ID, second.Handle().ID)
	}
	if second.ID() == first.ID() {
		t.Fatalf("reused slot should yield a new agent id")
	}
	if _, ok := w.Agent(first.Handle()); ok {
		t.Fatalf("stale handle should not resolve")
	}
}

func TestSparseSetRemoveSwapsLast(t *testing.T) {
	var s SparseSet[string]
	s.Set(1, "a")
	s.Set(2, "b")
	s.Set(3, "c")

	if !s.Remove(1) {
		t.Fatalf("Remove(1) should succeed")
	}
	if s.Has(1) {
		t.Fatalf("1 should be gone")
	}
	if v, ok := s.Get(3); !ok || v != "c" {
		t.Fatalf("Get(3) = %q, %v", v, ok)
	}
	if s.Len() != 2 || s.Entities()[0] != 3 {
		t.Fatalf("expected last element swapped into the hole, got %v", s.Entities())
	}
	s.Set(3, "z")
	if v, _ := s.Get(3); v != "z" {
		t.Fatalf("Set should update in place, got %q", v)
	}
}

func TestAddStructureRejectsTakenAndOutOfBounds(t *testing.T) {
	w := NewWorld(4, 4, 8)
	if w.AddStructure(StructureSpec{Team: 1, Cell: component.Cell{X: 1, Y: 1}, Health: 10}) == nil {
		t.Fatalf("first structure should be placed")
	}
	if w.AddStructure(StructureSpec{Team: 1, Cell: component.Cell{X: 1, Y: 1}, Health: 10}) != nil {
		t.Fatalf("occupied cell should be rejected")
	}
	if w.AddStructure(StructureSpec{Team: 1, Cell: component.Cell{X: 4, Y: 0}, Health: 10}) != nil {
		t.Fatalf("out of bounds cell should be rejected")
	}
	if w.Passable(component.Cell{X: 1, Y: 1}, false) {
		t.Fatalf("structure cell should block ground agents")
	}
	if !w.Passable(component.Cell{X: 1, Y: 1}, true) {
		t.Fatalf("structure cell should not block flying agents")
	}
}

func TestStructureAtReturnsUntypedNil(t *testing.T) {
	w := NewWorld(4, 4, 8)
	if s := w.StructureAt(component.Cell{X: 2, Y: 2}); s != nil {
		t.Fatalf("empty cell should return a nil interface, got %#v", s)
	}
}

func TestStructureDamageEvents(t *testing.T) {
	w := NewWorld(4, 4, 8)
	s := w.AddStructure(StructureSpec{Team: 1, Cell: component.Cell{X: 0, Y: 0}, Health: 100})
	w.Events().Drain()

	if s.Damaged() {
		t.Fatalf("full health structure should not be damaged")
	}
	s.SetHealth(60)
	if !s.Damaged() {
		t.Fatalf("structure below max health should be damaged")
	}
	s.SetHealth(80)

	events := w.Events().Drain()
	if len(events) != 1 || events[0].Type != EventStructureDamaged {
		t.Fatalf("expected one damage event, got %v", events)
	}
	if w.Events().Len() != 0 {
		t.Fatalf("drain should empty the queue")
	}
}

func TestClosestTargetPrefersAgents(t *testing.T) {
	w := NewWorld(20, 20, 8)
	pos := cp.Vector{X: 80, Y: 80}

	core := w.AddStructure(StructureSpec{Team: 2, Cell: w.CellOf(pos), Health: 100, Flags: component.FlagCore})
	enemy := w.AddAgent(AgentSpec{Team: 2, Position: cp.Vector{X: 120, Y: 80}, HitSize: 8})
	w.AddAgent(AgentSpec{Team: 1, Position: cp.Vector{X: 82, Y: 80}})
	w.AddAgent(AgentSpec{Team: component.Derelict, Position: cp.Vector{X: 81, Y: 80}})

	all := func(component.Agent) bool { return true }
	allS := func(component.Structure) bool { return true }

	got := w.ClosestTarget(1, pos, 100, all, allS)
	if a, ok := got.Agent(); !ok || a.ID() != enemy.ID() {
		t.Fatalf("expected the hostile agent, got %v", got.Kind())
	}

	got = w.ClosestTarget(1, pos, 100, nil, allS)
	if s, ok := got.Structure(); !ok || s.ID() != core.ID() {
		t.Fatalf("expected the core with agents skipped, got %v", got.Kind())
	}

	// hit size pads the radius: 40 away, radius 36 + 8/2
	got = w.ClosestTarget(1, pos, 36, all, nil)
	if got.None() {
		t.Fatalf("padded radius should include the agent")
	}
	got = w.ClosestTarget(1, pos, 35, all, nil)
	if !got.None() {
		t.Fatalf("agent outside the padded radius should be ignored")
	}
}

func TestFlagged(t *testing.T) {
	w := NewWorld(10, 10, 8)
	w.AddStructure(StructureSpec{Team: 1, Cell: component.Cell{X: 0, Y: 0}, Health: 1, Flags: component.FlagCore})
	w.AddStructure(StructureSpec{Team: 2, Cell: component.Cell{X: 5, Y: 5}, Health: 1, Flags: component.FlagCore | component.FlagTurret})
	w.AddStructure(StructureSpec{Team: 2, Cell: component.Cell{X: 6, Y: 6}, Health: 1, Flags: component.FlagTurret})
	w.AddStructure(StructureSpec{Team: component.Derelict, Cell: component.Cell{X: 7, Y: 7}, Health: 1, Flags: component.FlagCore})

	if n := len(w.Flagged(1, component.FlagCore, true)); n != 1 {
		t.Fatalf("expected 1 enemy core, got %d", n)
	}
	if n := len(w.Flagged(1, component.FlagCore, false)); n != 1 {
		t.Fatalf("expected 1 own core, got %d", n)
	}
	if n := len(w.Flagged(1, component.FlagTurret, true)); n != 2 {
		t.Fatalf("expected 2 enemy turrets, got %d", n)
	}
}

func TestAgentMotion(t *testing.T) {
	w := NewWorld(10, 10, 10)
	typ := &component.AgentType{Accel: 0.5}
	a := w.AddAgent(AgentSpec{Team: 1, Position: cp.Vector{X: 50, Y: 50}, Type: typ, RotateSpeed: 10})

	a.MovePref(cp.Vector{X: 4})
	if a.Velocity().X != 2 {
		t.Fatalf("acceleration should cap the change at half of |v|, got %v", a.Velocity())
	}
	w.Step(1)
	if a.Position().X != 52 {
		t.Fatalf("expected x=52 after step, got %v", a.Position().X)
	}

	w.Step(1)
	if a.Velocity().X != 1 {
		t.Fatalf("undriven agent should coast down, got %v", a.Velocity())
	}

	a.SetPosition(cp.Vector{X: 99, Y: 50})
	a.SetVelocity(cp.Vector{X: 50})
	a.MovePref(cp.Vector{X: 50})
	w.Step(1)
	if a.Position().X != 100 {
		t.Fatalf("agent should be clamped to the world edge, got %v", a.Position())
	}

	a.LookAt(90)
	if a.Rotation() != 10 {
		t.Fatalf("LookAt should turn by at most the rotate speed, got %v", a.Rotation())
	}
}

func TestSchedulerRunsSystemsInOrder(t *testing.T) {
	var order []string
	s := NewScheduler(
		SystemFunc(func(*World, float64) { order = append(order, "a") }),
	)
	s.Add(SystemFunc(func(*World, float64) { order = append(order, "b") }))
	s.Add(nil)

	s.Update(NewWorld(1, 1, 8), 1)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
	if len(s.Systems()) != 2 {
		t.Fatalf("nil system should be ignored")
	}
}

type tickCounter struct{ n int }

func (c *tickCounter) Update(float64) { c.n++ }

func TestControllerSystemTicksControllers(t *testing.T) {
	c := &tickCounter{}
	sys := NewControllerSystem()
	sys.Add(c)
	sys.Add(nil)

	w := NewWorld(4, 4, 8)
	NewScheduler(sys, NewMotionSystem()).Update(w, 1)

	if c.n != 1 || sys.Len() != 1 {
		t.Fatalf("expected one tick on one controller, got %d on %d", c.n, sys.Len())
	}
	if w.Tick() != 1 {
		t.Fatalf("motion system should step the world, tick=%d", w.Tick())
	}
}
