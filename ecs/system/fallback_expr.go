package system

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/milk9111/dronecore/ecs/component"
	"github.com/rs/zerolog"
)

// AgentEnv is the environment fallback expressions are evaluated against.
type AgentEnv struct {
	ID             int
	Team           int
	X              float64
	Y              float64
	Flying         bool
	Speed          float64
	Range          float64
	Health         float64
	MaxHealth      float64
	HealthFraction float64
	HasWeapons     bool
	Shooting       bool
	HasTarget      bool
	State          string
	NoTargetTime   float64
}

// NewAgentEnv snapshots the agent driven by c. Task and combat fields are
// filled in when c is an AIController.
func NewAgentEnv(c Controller) AgentEnv {
	var env AgentEnv
	if c == nil {
		return env
	}
	a := c.Agent()
	if a == nil {
		return env
	}

	pos := a.Position()
	env.ID = a.ID()
	env.Team = int(a.Team())
	env.X, env.Y = pos.X, pos.Y
	env.Flying = a.Flying()
	env.Speed = a.Speed()
	env.Range = a.Range()
	env.HasWeapons = a.Type().HasWeapons()
	env.HealthFraction = 1

	if ai, ok := c.(*AIController); ok {
		env.State = ai.State().String()
		env.HasTarget = !ai.Target().None()
		env.NoTargetTime = ai.NoTargetTime()
	}
	if h, ok := a.(component.Healthy); ok {
		env.Health = h.Health()
		env.MaxHealth = h.MaxHealth()
		if env.MaxHealth > 0 {
			env.HealthFraction = env.Health / env.MaxHealth
		}
	}
	for _, m := range a.Mounts() {
		if m != nil && m.Shoot {
			env.Shooting = true
			break
		}
	}
	return env
}

// ExprPredicate is a FallbackPredicate written as a boolean expression over
// AgentEnv, e.g. `HealthFraction < 0.25 && !HasTarget`.
type ExprPredicate struct {
	src     string
	program *vm.Program
	log     zerolog.Logger
}

func CompileFallbackPredicate(src string, log zerolog.Logger) (*ExprPredicate, error) {
	prog, err := expr.Compile(src, expr.Env(AgentEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile fallback predicate %q: %w", src, err)
	}
	return &ExprPredicate{src: src, program: prog, log: log}, nil
}

func (p *ExprPredicate) Source() string {
	return p.src
}

// UseFallback evaluates the expression. Evaluation errors keep the primary
// controller in charge.
func (p *ExprPredicate) UseFallback(primary Controller) bool {
	out, err := vm.Run(p.program, NewAgentEnv(primary))
	if err != nil {
		p.log.Warn().Err(err).Str("predicate", p.src).Msg("fallback predicate failed")
		return false
	}
	use, ok := out.(bool)
	return ok && use
}
