package main

import (
	"fmt"

	"github.com/milk9111/dronecore/ecs/system"
	"github.com/milk9111/dronecore/prefabs"
	"github.com/rs/zerolog"
)

// pilot is the controller stack of one agent.
type pilot struct {
	placed   prefabs.Placed
	primary  *system.AIController
	delegate *system.Delegate
}

func hooksFor(spec *prefabs.DroneSpec) system.Hooks {
	switch spec.Strategy {
	case prefabs.StrategyGround:
		return &system.GroundHooks{}
	case prefabs.StrategyFlying:
		return &system.FlyingHooks{CircleTarget: spec.CircleTarget, CircleLength: spec.CircleLength}
	default:
		return system.BaseHooks{}
	}
}

func fallbackPredicate(spec *prefabs.DroneSpec, log zerolog.Logger) (system.FallbackPredicate, error) {
	if !spec.Fallback.Enabled() {
		return nil, nil
	}
	p, err := system.CompileFallbackPredicate(spec.Fallback.When, log)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", spec.Name, err)
	}
	return p, nil
}

// newPilot wires the primary controller, its delegate and the lazily built
// scripted fallback for one placed agent.
func newPilot(env system.Env, placed prefabs.Placed, seed uint64, log zerolog.Logger) (*pilot, error) {
	spec := placed.Profile
	agentLog := log.With().Str("profile", spec.Name).Logger()

	primary := system.NewAIController(env,
		system.WithHooks(hooksFor(spec)),
		system.WithLogger(agentLog),
		system.WithSeed(seed),
	)

	pred, err := fallbackPredicate(spec, agentLog)
	if err != nil {
		return nil, err
	}

	var factory system.FallbackFactory
	if pred != nil {
		script := spec.Fallback.Script
		factory = func() system.Controller {
			src, err := prefabs.LoadScript(script)
			if err != nil {
				agentLog.Error().Err(err).Str("script", script).Msg("fallback script unavailable")
				return nil
			}
			fb, err := system.NewScriptedController(env, script, src,
				system.WithLogger(agentLog.With().Bool("fallback", true).Logger()),
				system.WithSeed(seed^0xfa11bac),
			)
			if err != nil {
				agentLog.Error().Err(err).Str("script", script).Msg("fallback script rejected")
				return nil
			}
			return fb
		}
	}

	d := system.NewDelegate(primary, pred, factory, system.WithDelegateLogger(agentLog))
	d.Bind(placed.Agent)
	return &pilot{placed: placed, primary: primary, delegate: d}, nil
}
