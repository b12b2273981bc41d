package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs"
	"github.com/milk9111/dronecore/ecs/component"
)

type changeLog struct {
	changes []component.StateChange
}

func (l *changeLog) StateChanged(c component.StateChange) {
	l.changes = append(l.changes, c)
}

func (l *changeLog) states() []component.DroneState {
	out := make([]component.DroneState, 0, len(l.changes))
	for _, c := range l.changes {
		out = append(out, c.To)
	}
	return out
}

func (l *changeLog) last() component.DroneState {
	if len(l.changes) == 0 {
		return component.StateIdle
	}
	return l.changes[len(l.changes)-1].To
}

func testEnv(w *ecs.World, obs Observer) Env {
	return Env{Index: w, Grid: w, Nav: ecs.NewFlowField(w), Observer: obs}
}

func testType(weapons ...*component.Weapon) *component.AgentType {
	return &component.AgentType{
		Name:         "test",
		OmniMovement: true,
		TargetAir:    true,
		TargetGround: true,
		Weapons:      weapons,
	}
}

func testWeapon(rng, bulletSpeed float64) *component.Weapon {
	return &component.Weapon{
		Name:           "gun",
		Range:          rng,
		Controllable:   true,
		AIControllable: true,
		Bullet:         &component.Bullet{Speed: bulletSpeed, CollidesAir: true, CollidesGround: true},
	}
}

func addAgent(w *ecs.World, team component.Team, pos cp.Vector, typ *component.AgentType, flying bool) *ecs.Agent {
	return w.AddAgent(ecs.AgentSpec{
		Team:     team,
		Position: pos,
		Rotation: 90,
		Type:     typ,
		HitSize:  8,
		Speed:    2,
		Range:    100,
		Flying:   flying,
		Health:   100,
	})
}

// addDamaged places a damaged structure of team at the cell containing pos.
func addDamaged(w *ecs.World, team component.Team, pos cp.Vector) *ecs.Structure {
	return w.AddStructure(ecs.StructureSpec{
		Team:      team,
		Cell:      w.CellOf(pos),
		Health:    40,
		MaxHealth: 100,
	})
}

func tick(c Controller, n int) {
	for i := 0; i < n; i++ {
		c.Update(1)
	}
}

func approx(t *testing.T, got, want cp.Vector) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Fatalf("got %v, want %v", got, want)
	}
}
