package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/common"
	"github.com/milk9111/dronecore/ecs"
	"github.com/milk9111/dronecore/ecs/component"
)

func TestGroundHooksHoldAtCore(t *testing.T) {
	w := ecs.NewWorld(100, 20, 8)
	core := w.AddStructure(ecs.StructureSpec{Team: 2, Cell: component.Cell{X: 20, Y: 10}, Health: 100, Flags: component.FlagCore})
	typ := testType(testWeapon(80, 0))
	pos := core.Position().Add(cp.Vector{X: -40})
	a := addAgent(w, 1, pos, typ, false)

	h := &GroundHooks{}
	c := NewAIController(testEnv(w, nil), WithSeed(1), WithHooks(h))
	c.Bind(a)
	c.Timers().Reset(component.TimerCoreSearch, coreSearchInterval)

	h.UpdateMovement(c)

	if !c.Target().Same(component.StructureTarget(core)) {
		t.Fatalf("core in range should become the main target")
	}
	if !a.Mounts()[0].Target.Same(component.StructureTarget(core)) {
		t.Fatalf("ground mounts should be pointed at the core")
	}
	if !common.IsZero(a.Velocity()) {
		t.Fatalf("agent within half range should hold position, got %v", a.Velocity())
	}
}

func TestGroundHooksWalkTowardCore(t *testing.T) {
	w := ecs.NewWorld(100, 20, 8)
	core := w.AddStructure(ecs.StructureSpec{Team: 2, Cell: component.Cell{X: 90, Y: 10}, Health: 100, Flags: component.FlagCore})
	a := addAgent(w, 1, w.CellCenter(component.Cell{X: 10, Y: 10}), testType(), false)

	h := &GroundHooks{}
	c := NewAIController(testEnv(w, nil), WithSeed(1), WithHooks(h))
	c.Bind(a)
	c.Timers().Reset(component.TimerCoreSearch, coreSearchInterval)

	h.UpdateMovement(c)

	if !c.Target().None() {
		t.Fatalf("distant core should not be targeted")
	}
	if !h.core.Same(component.StructureTarget(core)) {
		t.Fatalf("the core should be remembered between searches")
	}
	approx(t, a.Velocity(), cp.Vector{X: 2})
}

func TestFlyingHooksFindMainTarget(t *testing.T) {
	w := ecs.NewWorld(100, 100, 8)
	pos := cp.Vector{X: 400, Y: 400}
	a := addAgent(w, 1, pos, testType(), true)
	enemy := addAgent(w, 2, pos.Add(cp.Vector{X: 30}), testType(), false)
	core := w.AddStructure(ecs.StructureSpec{Team: 2, Cell: w.CellOf(pos.Add(cp.Vector{Y: 300})), Health: 100, Flags: component.FlagCore})

	h := &FlyingHooks{}
	c := NewAIController(testEnv(w, nil), WithSeed(1), WithHooks(h))
	c.Bind(a)

	if got := h.FindMainTarget(c, pos, 100, true, true); !got.Same(component.AgentTarget(enemy)) {
		t.Fatalf("out-of-range core: expected the nearby enemy")
	}
	if got := h.FindMainTarget(c, pos, 400, true, true); !got.Same(component.StructureTarget(core)) {
		t.Fatalf("core in range should be preferred")
	}

	w.Remove(enemy.Handle())
	if got := h.FindMainTarget(c, pos, 100, true, true); !got.Same(component.StructureTarget(core)) {
		t.Fatalf("with nothing in range the core is the fallback target")
	}
}

func TestFlyingHooksReturnToSpawn(t *testing.T) {
	w := ecs.NewWorld(100, 100, 8)
	pos := cp.Vector{X: 400, Y: 400}
	w.AddSpawn(cp.Vector{X: 100, Y: 400})
	a := addAgent(w, 1, pos, testType(), true)

	h := &FlyingHooks{}
	c := NewAIController(testEnv(w, nil), WithSeed(1), WithHooks(h))
	c.Bind(a)

	h.UpdateMovement(c)
	approx(t, a.Velocity(), cp.Vector{X: -2})

	a.SetVelocity(cp.Vector{})
	a.SetPosition(cp.Vector{X: 220, Y: 400})
	h.UpdateMovement(c)
	if !common.IsZero(a.Velocity()) {
		t.Fatalf("agent inside the return radius should hover, got %v", a.Velocity())
	}
}

func TestFlyingHooksEngage(t *testing.T) {
	w := ecs.NewWorld(100, 100, 8)
	pos := cp.Vector{X: 400, Y: 400}
	a := addAgent(w, 1, pos, testType(testWeapon(80, 5)), true)
	enemy := addAgent(w, 2, pos.Add(cp.Vector{Y: 300}), testType(), false)

	h := &FlyingHooks{}
	c := NewAIController(testEnv(w, nil), WithSeed(1), WithHooks(h))
	c.Bind(a)
	c.SetTarget(component.AgentTarget(enemy))

	h.UpdateMovement(c)
	approx(t, a.Velocity(), cp.Vector{Y: 2})
	if a.Rotation() != 90 {
		t.Fatalf("agent should face the target, got %v", a.Rotation())
	}

	h.CircleTarget = true
	a.SetVelocity(cp.Vector{Y: 1})
	h.UpdateMovement(c)
	if a.Velocity().Length() < 1.99 {
		t.Fatalf("strafing should run at full speed, got %v", a.Velocity())
	}
}
