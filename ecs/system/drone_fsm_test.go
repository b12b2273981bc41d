package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs"
	"github.com/milk9111/dronecore/ecs/component"
)

type fsmFixture struct {
	world *ecs.World
	agent *ecs.Agent
	ctrl  *AIController
	log   *changeLog
}

// newFSMFixture binds a weaponless ground agent with a damaged friendly
// structure offset from it. The agent never moves unless the test moves it.
func newFSMFixture(t *testing.T, offset cp.Vector) *fsmFixture {
	t.Helper()
	w := ecs.NewWorld(100, 100, 8)
	pos := cp.Vector{X: 400, Y: 400}
	a := addAgent(w, 1, pos, testType(), false)
	if offset != (cp.Vector{}) {
		addDamaged(w, 1, pos.Add(offset))
	}
	log := &changeLog{}
	c := NewAIController(testEnv(w, log), WithSeed(7))
	c.Bind(a)
	return &fsmFixture{world: w, agent: a, ctrl: c, log: log}
}

// run ticks until the state changes or limit is reached and returns the tick
// of the change, or -1.
func (f *fsmFixture) run(limit int) int {
	start := len(f.log.changes)
	for i := 1; i <= limit; i++ {
		f.ctrl.Update(1)
		if len(f.log.changes) > start {
			return i
		}
	}
	return -1
}

func (f *fsmFixture) structure() *ecs.Structure {
	return f.world.Structures()[0]
}

func TestBindReportsInitialState(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{})
	if got := f.log.states(); len(got) != 1 || got[0] != component.StateIdle {
		t.Fatalf("expected a single idle report on bind, got %v", got)
	}
	if f.log.changes[0].AgentID != f.agent.ID() {
		t.Fatalf("report should carry the agent id")
	}
}

func TestRepairCycle(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 20})

	steps := []struct {
		want component.DroneState
		at   int
	}{
		{component.StateMoving, idleDiscoveryDwell},
		{component.StateRepairing, 1},
		{component.StateWaiting, repairDuration},
		{component.StateIdle, waitingDwell},
	}
	for _, s := range steps {
		at := f.run(1000)
		if at != s.at || f.log.last() != s.want {
			t.Fatalf("expected %v after %d ticks, got %v after %d", s.want, s.at, f.log.last(), at)
		}
	}

	task := f.ctrl.Task()
	if task.Target.IsSet() || task.Progress != 0 {
		t.Fatalf("returning to idle should clear the task, got %+v", task)
	}
	if len(f.log.changes) != 5 {
		t.Fatalf("expected exactly one report per transition, got %v", f.log.states())
	}
}

func TestDiscoveryIgnoresFarAndForeignStructures(t *testing.T) {
	cases := []struct {
		name   string
		offset cp.Vector
		team   component.Team
		health float64
	}{
		{"too_far", cp.Vector{X: 210}, 1, 40},
		{"other_team", cp.Vector{X: 20}, 2, 40},
		{"not_damaged", cp.Vector{X: 20}, 1, 100},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFSMFixture(t, cp.Vector{})
			f.world.AddStructure(ecs.StructureSpec{
				Team:      c.team,
				Cell:      f.world.CellOf(f.agent.Position().Add(c.offset)),
				Health:    c.health,
				MaxHealth: 100,
			})
			if f.ctrl.FindDamagedStructure() != nil {
				t.Fatalf("structure should not be discovered")
			}
			if at := f.run(500); at != -1 {
				t.Fatalf("expected to stay idle, changed after %d ticks", at)
			}
		})
	}
}

func TestFindDamagedStructurePicksClosest(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 100})
	near := addDamaged(f.world, 1, f.agent.Position().Add(cp.Vector{Y: -60}))

	if got := f.ctrl.FindDamagedStructure(); got != near {
		t.Fatalf("expected the closer structure")
	}
}

func TestRepairHysteresis(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 20})
	f.run(idleDiscoveryDwell)
	f.run(1)
	if f.ctrl.State() != component.StateRepairing {
		t.Fatalf("expected repairing, got %v", f.ctrl.State())
	}

	target := f.structure().Position()
	place := func(dist float64) {
		f.agent.SetPosition(target.Add(cp.Vector{X: -dist}))
	}

	place(45)
	tick(f.ctrl, 10)
	if f.ctrl.State() != component.StateRepairing {
		t.Fatalf("45 away is inside the leave radius, got %v", f.ctrl.State())
	}
	if f.ctrl.Task().Progress != 10 {
		t.Fatalf("progress should keep accumulating, got %v", f.ctrl.Task().Progress)
	}

	place(51)
	tick(f.ctrl, 1)
	if f.ctrl.State() != component.StateMoving {
		t.Fatalf("51 away should send the agent back to moving, got %v", f.ctrl.State())
	}

	f.agent.SetVelocity(cp.Vector{})
	place(45)
	tick(f.ctrl, 1)
	if f.ctrl.State() != component.StateMoving {
		t.Fatalf("45 away is outside the arrive radius, got %v", f.ctrl.State())
	}

	place(40)
	tick(f.ctrl, 1)
	if f.ctrl.State() != component.StateRepairing || f.ctrl.Task().Progress != 0 {
		t.Fatalf("arriving should restart repairing from zero, got %v %v", f.ctrl.State(), f.ctrl.Task().Progress)
	}
}

func TestMovingTimesOut(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 150})
	f.run(idleDiscoveryDwell)
	if f.ctrl.State() != component.StateMoving {
		t.Fatalf("expected moving, got %v", f.ctrl.State())
	}

	// the agent is never stepped, so it cannot arrive
	if at := f.run(1000); at != movingTimeout+1 {
		t.Fatalf("expected timeout after %d ticks, got %d", movingTimeout+1, at)
	}
	if f.ctrl.State() != component.StateIdle || f.ctrl.Task().Target.IsSet() {
		t.Fatalf("timeout should return to idle without a target")
	}
}

func TestMovingTargetRemoved(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 150})
	f.run(idleDiscoveryDwell)
	f.world.Remove(f.structure().Handle())

	if at := f.run(5); at != 1 || f.ctrl.State() != component.StateIdle {
		t.Fatalf("removed structure should end the trip immediately, got %v after %d", f.ctrl.State(), at)
	}
}

func TestRepairingTargetRemoved(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{X: 20})
	f.run(idleDiscoveryDwell)
	f.run(1)
	tick(f.ctrl, 5)
	f.world.Remove(f.structure().Handle())

	if at := f.run(5); at != 1 || f.ctrl.State() != component.StateIdle {
		t.Fatalf("removed structure should end the repair, got %v after %d", f.ctrl.State(), at)
	}
	if f.ctrl.Task().Progress != 0 {
		t.Fatalf("progress should be cleared")
	}
}

func TestStochasticDiscoveryRate(t *testing.T) {
	w := ecs.NewWorld(10, 10, 100)
	a := addAgent(w, 1, cp.Vector{X: 500, Y: 500}, testType(), false)
	c := NewAIController(testEnv(w, nil), WithSeed(99))
	c.Bind(a)

	const ticks = 100000
	tick(c, ticks)

	rolls := ticks - idleDiscoveryDwell + 1
	got := float64(c.DiscoveryAttempts()) / float64(rolls)
	if got < 0.017 || got > 0.023 {
		t.Fatalf("discovery rate %.4f, want about %.2f", got, discoveryChance)
	}
	if c.State() != component.StateIdle {
		t.Fatalf("nothing to repair, expected idle")
	}
}

func TestForceStateAlwaysReports(t *testing.T) {
	f := newFSMFixture(t, cp.Vector{})
	f.ctrl.ForceState(component.StateIdle)
	f.ctrl.ForceState(component.StateWaiting)

	got := f.log.states()
	want := []component.DroneState{component.StateIdle, component.StateIdle, component.StateWaiting}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if at := f.run(1000); at != waitingDwell || f.ctrl.State() != component.StateIdle {
		t.Fatalf("forced waiting should still expire after %d ticks, got %d", waitingDwell, at)
	}
}
