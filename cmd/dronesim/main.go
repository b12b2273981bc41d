package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/dronecore/config"
	"github.com/milk9111/dronecore/ecs"
	"github.com/milk9111/dronecore/ecs/component"
	"github.com/milk9111/dronecore/ecs/system"
	"github.com/milk9111/dronecore/logging"
	"github.com/milk9111/dronecore/prefabs"
	"github.com/milk9111/dronecore/statelog"
	"github.com/rs/zerolog"
)

func main() {
	configDir := flag.String("config", ".", "directory containing dronesim.yaml")
	ticks := flag.Int("ticks", -1, "number of ticks to simulate (overrides sim.ticks)")
	scenario := flag.String("scenario", "", "scenario file in prefabs/ (overrides sim.scenario)")
	seed := flag.Uint64("seed", 0, "random seed (overrides sim.seed)")
	watch := flag.Bool("watch", false, "reload profiles when files under prefabs/ change")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *ticks >= 0 {
		cfg.Sim.Ticks = *ticks
	}
	if *scenario != "" {
		cfg.Sim.Scenario = *scenario
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if *watch {
		cfg.Sim.Watch = true
	}

	log, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}
}

func openRecorder(cfg config.Config, log zerolog.Logger) *statelog.Recorder {
	var sinks []statelog.Sink
	if cfg.UsesFileSink() {
		sinks = append(sinks, statelog.NewFileSink(cfg.Log.Dir, cfg.Log.File, statelog.WithFileLogger(log)))
	}
	if cfg.UsesSQLiteSink() {
		sinks = append(sinks, statelog.NewSQLiteSink(cfg.Log.SQLitePath, log))
	}
	rec := statelog.NewRecorder(log, sinks...)
	if err := rec.Open(); err != nil {
		log.Warn().Err(err).Msg("continuing without some state sinks")
	}
	return rec
}

func run(cfg config.Config, log zerolog.Logger) error {
	scen, err := prefabs.LoadScenarioSpec(cfg.Sim.Scenario)
	if err != nil {
		return err
	}

	world, placed, err := scen.Build(func(name string) (*prefabs.DroneSpec, error) {
		if name == "" {
			name = cfg.Sim.Profile
		}
		return prefabs.LoadDroneSpec(name)
	})
	if err != nil {
		return fmt.Errorf("build scenario %s: %w", scen.Name, err)
	}

	rec := openRecorder(cfg, log)
	defer func() {
		if err := rec.Close(); err != nil {
			log.Warn().Err(err).Msg("closing state sinks")
		}
	}()
	rec.Note(fmt.Sprintf("scenario %s with %d agents", scen.Name, len(placed)))

	env := system.Env{
		Index:    world,
		Grid:     world,
		Nav:      ecs.NewFlowField(world),
		Observer: rec,
	}

	controllers := ecs.NewControllerSystem()
	pilots := make([]*pilot, 0, len(placed))
	for i, p := range placed {
		pl, err := newPilot(env, p, cfg.Sim.Seed+uint64(i), log)
		if err != nil {
			return err
		}
		pilots = append(pilots, pl)
		controllers.Add(pl.delegate)
	}

	sched := ecs.NewScheduler(controllers, ecs.NewMotionSystem())

	var reload <-chan string
	if cfg.Sim.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Warn().Err(err).Msg("profile watcher unavailable")
		} else {
			defer w.Close()
			reload = w.Events
		}
	}

	log.Info().
		Str("scenario", scen.Name).
		Int("agents", len(pilots)).
		Int("ticks", cfg.Sim.Ticks).
		Msg("simulation started")

	for tick := 1; tick <= cfg.Sim.Ticks; tick++ {
		drainReloads(reload, pilots, log)

		sched.Update(world, 1)

		for _, evt := range world.Events().Drain() {
			log.Debug().Str("event", string(evt.Type)).Stringer("entity", evt.Entity).Int("tick", tick).Msg("world event")
		}
	}

	for _, p := range pilots {
		a := p.placed.Agent
		log.Info().
			Int("agent", a.ID()).
			Str("profile", p.placed.Profile.Name).
			Str("state", p.primary.State().String()).
			Bool("fallback", p.delegate.Delegating()).
			Float64("x", a.Position().X).
			Float64("y", a.Position().Y).
			Msg("final state")
	}
	return nil
}

// drainReloads applies pending profile edits between ticks.
func drainReloads(events <-chan string, pilots []*pilot, log zerolog.Logger) {
	if events == nil {
		return
	}
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return
			}
			applyReload(path, pilots, log)
		default:
			return
		}
	}
}

func applyReload(path string, pilots []*pilot, log zerolog.Logger) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
		log.Info().Str("file", name).Msg("script changed; applies to fallbacks built from now on")
		return
	}

	spec, err := prefabs.LoadDroneSpec(name)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("profile reload skipped")
		return
	}

	typ := spec.Agent.AgentType()
	applied := map[*component.AgentType]bool{}
	for _, p := range pilots {
		if p.placed.Profile.Name != spec.Name {
			continue
		}
		agentType := p.placed.Agent.Type()
		if !applied[agentType] {
			if !prefabs.Apply(agentType, typ) {
				log.Warn().Str("profile", spec.Name).Msg("weapon count changed; only movement tuning reloaded")
			}
			applied[agentType] = true
		}
		pred, err := fallbackPredicate(spec, log)
		if err != nil {
			log.Warn().Err(err).Msg("fallback predicate reload skipped")
			continue
		}
		p.delegate.SetPredicate(pred)
	}
	log.Info().Str("profile", spec.Name).Msg("profile reloaded")
}
