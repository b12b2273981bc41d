package prefabs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/milk9111/dronecore/ecs/component"
	"gopkg.in/yaml.v3"
)

// ErrUnknownProfile is returned when a drone profile cannot be found.
var ErrUnknownProfile = errors.New("prefabs: unknown profile")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Strategies a profile may select.
const (
	StrategyBase   = "base"
	StrategyGround = "ground"
	StrategyFlying = "flying"
)

// DroneSpec is a drone profile: the agent type, its strategy and the
// conditions under which a scripted fallback takes over.
type DroneSpec struct {
	Name         string       `yaml:"name"`
	Strategy     string       `yaml:"strategy"`
	CircleTarget bool         `yaml:"circle_target"`
	CircleLength float64      `yaml:"circle_length"`
	Agent        AgentSpec    `yaml:"agent"`
	Fallback     FallbackSpec `yaml:"fallback"`
}

type AgentSpec struct {
	Name        string  `yaml:"name"`
	Flying      bool    `yaml:"flying"`
	HitSize     float64 `yaml:"hit_size"`
	Speed       float64 `yaml:"speed"`
	Range       float64 `yaml:"range"`
	RotateSpeed float64 `yaml:"rotate_speed"`
	Health      float64 `yaml:"health"`
	Accel       float64 `yaml:"accel"`
	Payloads    int     `yaml:"payloads"`

	OmniMovement    bool `yaml:"omni_movement"`
	RotateMoveFirst bool `yaml:"rotate_move_first"`
	FaceTarget      bool `yaml:"face_target"`
	SingleTarget    bool `yaml:"single_target"`
	AutoDropBombs   bool `yaml:"auto_drop_bombs"`
	Wobble          bool `yaml:"wobble"`

	TargetAir         *bool `yaml:"target_air"`
	TargetGround      *bool `yaml:"target_ground"`
	TargetUnderBlocks bool  `yaml:"target_under_blocks"`
	PathCost          int   `yaml:"path_cost"`

	Weapons []WeaponSpec `yaml:"weapons"`
}

type WeaponSpec struct {
	Name           string      `yaml:"name"`
	X              float64     `yaml:"x"`
	Y              float64     `yaml:"y"`
	Range          float64     `yaml:"range"`
	BaseRotation   float64     `yaml:"base_rotation"`
	Controllable   *bool       `yaml:"controllable"`
	AIControllable *bool       `yaml:"ai_controllable"`
	NoAttack       bool        `yaml:"no_attack"`
	Bullet         *BulletSpec `yaml:"bullet"`
}

type BulletSpec struct {
	Speed          float64 `yaml:"speed"`
	CollidesAir    *bool   `yaml:"collides_air"`
	CollidesGround *bool   `yaml:"collides_ground"`
}

// FallbackSpec configures delegation. When is an expression over the agent
// environment; an empty When disables the fallback.
type FallbackSpec struct {
	When   string `yaml:"when"`
	Script string `yaml:"script"`
}

func (f FallbackSpec) Enabled() bool {
	return strings.TrimSpace(f.When) != "" && strings.TrimSpace(f.Script) != ""
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// LoadDroneSpec loads and validates a drone profile.
func LoadDroneSpec(name string) (*DroneSpec, error) {
	spec, err := LoadSpec[DroneSpec](name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
		}
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &spec, nil
}

func (s DroneSpec) Validate() error {
	switch s.Strategy {
	case "", StrategyBase, StrategyGround, StrategyFlying:
	default:
		return fmt.Errorf("unknown strategy %q", s.Strategy)
	}
	if s.Agent.Speed < 0 {
		return fmt.Errorf("agent speed must not be negative")
	}
	if s.Agent.Range < 0 {
		return fmt.Errorf("agent range must not be negative")
	}
	for i, w := range s.Agent.Weapons {
		if w.Range < 0 {
			return fmt.Errorf("weapon %d (%s): range must not be negative", i, w.Name)
		}
	}
	return nil
}

// AgentType builds the capability data the controller binds against.
func (s AgentSpec) AgentType() *component.AgentType {
	t := &component.AgentType{
		Name:              s.Name,
		OmniMovement:      s.OmniMovement,
		RotateMoveFirst:   s.RotateMoveFirst,
		FaceTarget:        s.FaceTarget,
		SingleTarget:      s.SingleTarget,
		AutoDropBombs:     s.AutoDropBombs,
		Wobble:            s.Wobble,
		TargetAir:         boolOr(s.TargetAir, true),
		TargetGround:      boolOr(s.TargetGround, true),
		TargetUnderBlocks: s.TargetUnderBlocks,
		Accel:             s.Accel,
		PathCost:          s.PathCost,
	}
	for _, w := range s.Weapons {
		t.Weapons = append(t.Weapons, w.Weapon())
	}
	return t
}

func (w WeaponSpec) Weapon() *component.Weapon {
	out := &component.Weapon{
		Name:           w.Name,
		X:              w.X,
		Y:              w.Y,
		Range:          w.Range,
		BaseRotation:   w.BaseRotation,
		Controllable:   boolOr(w.Controllable, true),
		AIControllable: boolOr(w.AIControllable, true),
		NoAttack:       w.NoAttack,
	}
	if w.Bullet != nil {
		out.Bullet = &component.Bullet{
			Speed:          w.Bullet.Speed,
			CollidesAir:    boolOr(w.Bullet.CollidesAir, true),
			CollidesGround: boolOr(w.Bullet.CollidesGround, true),
		}
	}
	return out
}

// Apply copies tuning from t into dst in place, keeping dst's weapon list
// so that existing mounts stay attached. It returns false when the weapon
// counts differ and only the scalar fields were updated.
func Apply(dst, t *component.AgentType) bool {
	if dst == nil || t == nil {
		return false
	}
	weapons := dst.Weapons
	*dst = *t
	dst.Weapons = weapons
	if len(weapons) != len(t.Weapons) {
		return false
	}
	for i := range weapons {
		if weapons[i] != nil && t.Weapons[i] != nil {
			*weapons[i] = *t.Weapons[i]
		}
	}
	return true
}
