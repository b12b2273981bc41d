package system

import (
	"github.com/milk9111/dronecore/ecs/component"
	"github.com/rs/zerolog"
)

// FallbackPredicate decides, once per tick, whether the fallback controller
// should run instead of the primary one.
type FallbackPredicate interface {
	UseFallback(primary Controller) bool
}

type PredicateFunc func(primary Controller) bool

func (f PredicateFunc) UseFallback(primary Controller) bool {
	return f != nil && f(primary)
}

// FallbackFactory builds the fallback controller. A nil result means there
// is no fallback and the primary keeps running.
type FallbackFactory func() Controller

// Delegate runs a primary controller and hands whole ticks to a lazily built
// fallback while the predicate holds. The primary is not touched during a
// delegated tick, so its timers and task are frozen.
type Delegate struct {
	primary   Controller
	predicate FallbackPredicate
	factory   FallbackFactory
	fallback  Controller
	log       zerolog.Logger

	delegating bool
}

type DelegateOption func(*Delegate)

func WithDelegateLogger(log zerolog.Logger) DelegateOption {
	return func(d *Delegate) {
		d.log = log
	}
}

func NewDelegate(primary Controller, predicate FallbackPredicate, factory FallbackFactory, opts ...DelegateOption) *Delegate {
	d := &Delegate{
		primary:   primary,
		predicate: predicate,
		factory:   factory,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Delegate) Bind(agent component.Agent) {
	d.primary.Bind(agent)
}

func (d *Delegate) Agent() component.Agent {
	return d.primary.Agent()
}

func (d *Delegate) Primary() Controller {
	return d.primary
}

// Fallback returns the fallback controller if it has been built.
func (d *Delegate) Fallback() Controller {
	return d.fallback
}

// Delegating reports whether the last tick ran on the fallback.
func (d *Delegate) Delegating() bool {
	return d.delegating
}

// SetPredicate swaps the predicate, e.g. after a profile reload.
func (d *Delegate) SetPredicate(p FallbackPredicate) {
	d.predicate = p
}

func (d *Delegate) Update(dt float64) {
	agent := d.primary.Agent()
	if agent == nil {
		return
	}

	if d.predicate != nil && d.predicate.UseFallback(d.primary) {
		if fb := d.resolveFallback(); fb != nil {
			if fb.Agent() != agent {
				fb.Bind(agent)
			}
			if !d.delegating {
				d.log.Debug().Int("agent", agent.ID()).Msg("delegating to fallback controller")
			}
			d.delegating = true
			recordDelegation()
			fb.Update(dt)
			return
		}
	}

	if d.delegating {
		d.log.Debug().Int("agent", agent.ID()).Msg("primary controller resumed")
	}
	d.delegating = false
	d.primary.Update(dt)
}

func (d *Delegate) resolveFallback() Controller {
	if d.fallback != nil || d.factory == nil {
		return d.fallback
	}
	d.fallback = d.factory()
	return d.fallback
}
