package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
)

// ScriptHooks drive movement from a tengo script. The script defines
//
//	update := func(engine, state) { ... }
//
// and is called once per movement tick. state is a map that persists
// between calls.
type ScriptHooks struct {
	BaseHooks

	name      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
}

const scriptDispatch = `
update(__engine, __state)
`

func NewScriptHooks(name string, src []byte) (*ScriptHooks, error) {
	if strings.TrimSpace(string(src)) == "" {
		return nil, fmt.Errorf("script %q is empty", name)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script %q: %w", name, err)
	}

	return &ScriptHooks{
		name:      name,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (h *ScriptHooks) Name() string {
	return h.name
}

func (h *ScriptHooks) UpdateMovement(c *AIController) {
	if err := h.run(buildScriptEngine(c)); err != nil {
		log := c.Logger()
		log.Warn().Err(err).Str("script", h.name).Msg("script update failed")
	}
}

func (h *ScriptHooks) run(engine *tengo.ImmutableMap) error {
	if err := h.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := h.compiled.Set("__state", h.stateData); err != nil {
		return err
	}
	return h.compiled.Run()
}

// NewScriptedController builds a controller whose movement is scripted. It
// is the usual fallback handed to a Delegate.
func NewScriptedController(env Env, name string, src []byte, opts ...Option) (*AIController, error) {
	hooks, err := NewScriptHooks(name, src)
	if err != nil {
		return nil, err
	}
	return NewAIController(env, append(opts, WithHooks(hooks))...), nil
}

func buildScriptEngine(c *AIController) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("position", func(args ...tengo.Object) (tengo.Object, error) {
		a := c.Agent()
		if a == nil {
			return vectorObject(cp.Vector{}), nil
		}
		return vectorObject(a.Position()), nil
	})

	fn("has_target", func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(!c.Target().None()), nil
	})

	fn("target_position", func(args ...tengo.Object) (tengo.Object, error) {
		t := c.Target()
		if t.None() {
			return tengo.UndefinedValue, nil
		}
		return vectorObject(t.Position()), nil
	})

	fn("target_kind", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: c.Target().Kind().String()}, nil
	})

	fn("find_target", func(args ...tengo.Object) (tengo.Object, error) {
		a := c.Agent()
		if a == nil {
			return tengo.FalseValue, nil
		}
		rng := a.Range()
		if len(args) > 0 {
			if v, ok := objectAsFloat(args[0]); ok {
				rng = v
			}
		}
		typ := c.Type()
		air, ground := true, true
		if typ != nil {
			air, ground = typ.TargetAir, typ.TargetGround
		}
		t := c.FindTarget(a.Position(), rng, air, ground)
		if !t.None() {
			c.SetTarget(t)
		}
		return boolObject(!t.None()), nil
	})

	fn("move_to", func(args ...tengo.Object) (tengo.Object, error) {
		p, n, ok := vectorArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		radius := 0.0
		if len(args) > n {
			radius, _ = objectAsFloat(args[n])
		}
		c.MoveTo(p, radius)
		return tengo.TrueValue, nil
	})

	fn("circle", func(args ...tengo.Object) (tengo.Object, error) {
		p, n, ok := vectorArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		radius := float64(defaultCircleLength)
		if len(args) > n {
			if v, ok := objectAsFloat(args[n]); ok {
				radius = v
			}
		}
		c.Circle(p, radius, c.PrefSpeed())
		return tengo.TrueValue, nil
	})

	fn("circle_attack", func(args ...tengo.Object) (tengo.Object, error) {
		radius := float64(defaultCircleLength)
		if len(args) > 0 {
			if v, ok := objectAsFloat(args[0]); ok {
				radius = v
			}
		}
		c.CircleAttack(radius)
		return tengo.TrueValue, nil
	})

	fn("pathfind", func(args ...tengo.Object) (tengo.Object, error) {
		goal := GoalEnemyCore
		if len(args) > 0 {
			if v, ok := objectAsFloat(args[0]); ok {
				goal = int(v)
			}
		}
		c.Pathfind(goal)
		return tengo.TrueValue, nil
	})

	fn("face_target", func(args ...tengo.Object) (tengo.Object, error) {
		c.FaceTarget()
		return tengo.TrueValue, nil
	})

	fn("face_movement", func(args ...tengo.Object) (tengo.Object, error) {
		c.FaceMovement()
		return tengo.TrueValue, nil
	})

	fn("stop_shooting", func(args ...tengo.Object) (tengo.Object, error) {
		c.StopShooting()
		return tengo.TrueValue, nil
	})

	fn("state", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: c.State().String()}, nil
	})

	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		log := c.Logger()
		log.Debug().Msg(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// vectorArgs reads either (x, y) or ([x, y]) from the head of args and
// reports how many arguments it consumed.
func vectorArgs(args []tengo.Object) (cp.Vector, int, bool) {
	if len(args) == 0 {
		return cp.Vector{}, 0, false
	}
	if arr, ok := args[0].(*tengo.Array); ok {
		if len(arr.Value) < 2 {
			return cp.Vector{}, 1, false
		}
		x, okX := objectAsFloat(arr.Value[0])
		y, okY := objectAsFloat(arr.Value[1])
		return cp.Vector{X: x, Y: y}, 1, okX && okY
	}
	if len(args) < 2 {
		return cp.Vector{}, len(args), false
	}
	x, okX := objectAsFloat(args[0])
	y, okY := objectAsFloat(args[1])
	return cp.Vector{X: x, Y: y}, 2, okX && okY
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
