package prefabs

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dronecore/ecs"
	"github.com/milk9111/dronecore/ecs/component"
)

// ScenarioSpec lays out a world for the headless driver.
type ScenarioSpec struct {
	Name       string          `yaml:"name"`
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	CellSize   float64         `yaml:"cell_size"`
	Spawns     []PointSpec     `yaml:"spawns"`
	Solid      []CellSpec      `yaml:"solid"`
	Structures []StructureSpec `yaml:"structures"`
	Agents     []PlacementSpec `yaml:"agents"`
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type CellSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type StructureSpec struct {
	Name         string   `yaml:"name"`
	Team         int      `yaml:"team"`
	Cell         CellSpec `yaml:"cell"`
	Size         float64  `yaml:"size"`
	Health       float64  `yaml:"health"`
	MaxHealth    float64  `yaml:"max_health"`
	Flags        []string `yaml:"flags"`
	UnderBullets bool     `yaml:"under_bullets"`
}

// PlacementSpec places one agent built from a drone profile.
type PlacementSpec struct {
	Profile  string  `yaml:"profile"`
	Team     int     `yaml:"team"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

var blockFlags = map[string]component.BlockFlag{
	"core":    component.FlagCore,
	"turret":  component.FlagTurret,
	"factory": component.FlagFactory,
	"repair":  component.FlagRepair,
}

func ParseBlockFlags(names []string) (component.BlockFlag, error) {
	var out component.BlockFlag
	for _, n := range names {
		f, ok := blockFlags[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown block flag %q", n)
		}
		out |= f
	}
	return out, nil
}

func LoadScenarioSpec(name string) (*ScenarioSpec, error) {
	spec, err := LoadSpec[ScenarioSpec](name)
	if err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: %s: world size must be positive", name)
	}
	return &spec, nil
}

// Placed is an agent created from a scenario together with its profile.
type Placed struct {
	Agent   *ecs.Agent
	Profile *DroneSpec
}

// ProfileLoader resolves a profile name, typically LoadDroneSpec.
type ProfileLoader func(name string) (*DroneSpec, error)

// Build creates the world described by s. Profiles are loaded once per name
// and agents of the same profile share one AgentType.
func (s ScenarioSpec) Build(load ProfileLoader) (*ecs.World, []Placed, error) {
	w := ecs.NewWorld(s.Width, s.Height, s.CellSize)

	for _, p := range s.Spawns {
		w.AddSpawn(cp.Vector{X: p.X, Y: p.Y})
	}
	for _, c := range s.Solid {
		w.SetSolid(component.Cell{X: c.X, Y: c.Y}, true)
	}

	for i, st := range s.Structures {
		flags, err := ParseBlockFlags(st.Flags)
		if err != nil {
			return nil, nil, fmt.Errorf("structure %d (%s): %w", i, st.Name, err)
		}
		placed := w.AddStructure(ecs.StructureSpec{
			Team:         component.Team(st.Team),
			Cell:         component.Cell{X: st.Cell.X, Y: st.Cell.Y},
			Size:         st.Size,
			Health:       st.Health,
			MaxHealth:    st.MaxHealth,
			Flags:        flags,
			UnderBullets: st.UnderBullets,
		})
		if placed == nil {
			return nil, nil, fmt.Errorf("structure %d (%s): cell %d,%d is out of bounds or taken", i, st.Name, st.Cell.X, st.Cell.Y)
		}
	}

	profiles := map[string]*DroneSpec{}
	types := map[string]*component.AgentType{}
	var out []Placed
	for i, p := range s.Agents {
		prof, ok := profiles[p.Profile]
		if !ok {
			var err error
			prof, err = load(p.Profile)
			if err != nil {
				return nil, nil, fmt.Errorf("agent %d: %w", i, err)
			}
			profiles[p.Profile] = prof
			types[p.Profile] = prof.Agent.AgentType()
		}

		a := w.AddAgent(ecs.AgentSpec{
			Team:        component.Team(p.Team),
			Position:    cp.Vector{X: p.X, Y: p.Y},
			Rotation:    p.Rotation,
			Type:        types[p.Profile],
			HitSize:     prof.Agent.HitSize,
			Speed:       prof.Agent.Speed,
			Range:       prof.Agent.Range,
			RotateSpeed: prof.Agent.RotateSpeed,
			Flying:      prof.Agent.Flying,
			Health:      prof.Agent.Health,
			Payloads:    prof.Agent.Payloads,
		})
		out = append(out, Placed{Agent: a, Profile: prof})
	}
	return w, out, nil
}
