package prefabs

import (
	"errors"
	"testing"

	"github.com/milk9111/dronecore/ecs/component"
)

func TestParseBlockFlags(t *testing.T) {
	tests := []struct {
		names   []string
		want    component.BlockFlag
		wantErr bool
	}{
		{names: nil, want: 0},
		{names: []string{"core"}, want: component.FlagCore},
		{names: []string{" Turret ", "repair"}, want: component.FlagTurret | component.FlagRepair},
		{names: []string{"factory", "factory"}, want: component.FlagFactory},
		{names: []string{"moat"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseBlockFlags(tt.names)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseBlockFlags(%v) err = %v", tt.names, err)
		}
		if got != tt.want {
			t.Fatalf("ParseBlockFlags(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestScenarioBuild(t *testing.T) {
	spec, err := LoadScenarioSpec("scenario.yaml")
	if err != nil {
		t.Fatalf("LoadScenarioSpec: %v", err)
	}

	loads := 0
	w, placed, err := spec.Build(func(name string) (*DroneSpec, error) {
		loads++
		return LoadDroneSpec(name)
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if loads != 2 {
		t.Fatalf("expected one load per profile, got %d", loads)
	}
	if len(placed) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(placed))
	}
	if len(w.Agents()) != 3 {
		t.Fatalf("world has %d agents", len(w.Agents()))
	}
	if len(w.Structures()) != 4 {
		t.Fatalf("world has %d structures", len(w.Structures()))
	}
	if len(w.Spawns()) != 1 {
		t.Fatalf("world has %d spawns", len(w.Spawns()))
	}
	if !w.Solid(component.Cell{X: 30, Y: 21}) {
		t.Fatalf("expected cell 30,21 to be solid")
	}

	if placed[0].Agent.Type() != placed[1].Agent.Type() {
		t.Fatalf("agents of one profile should share an agent type")
	}
	if placed[0].Agent.Type() == placed[2].Agent.Type() {
		t.Fatalf("agents of different profiles should not share an agent type")
	}
	if placed[2].Agent.Team() != component.Team(2) || placed[2].Agent.Flying() {
		t.Fatalf("unexpected crawler placement")
	}
}

func TestScenarioBuild_Errors(t *testing.T) {
	loadErr := errors.New("boom")

	tests := []struct {
		name string
		spec ScenarioSpec
		load ProfileLoader
	}{
		{
			name: "bad flag",
			spec: ScenarioSpec{Width: 4, Height: 4, CellSize: 8, Structures: []StructureSpec{{Name: "x", Flags: []string{"moat"}}}},
		},
		{
			name: "out of bounds",
			spec: ScenarioSpec{Width: 4, Height: 4, CellSize: 8, Structures: []StructureSpec{{Name: "x", Cell: CellSpec{X: 9, Y: 9}, Health: 1}}},
		},
		{
			name: "profile",
			spec: ScenarioSpec{Width: 4, Height: 4, CellSize: 8, Agents: []PlacementSpec{{Profile: "any"}}},
			load: func(string) (*DroneSpec, error) { return nil, loadErr },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load := tt.load
			if load == nil {
				load = LoadDroneSpec
			}
			if _, _, err := tt.spec.Build(load); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
