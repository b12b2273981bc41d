package system

import (
	"context"
	"sync"

	"github.com/milk9111/dronecore/ecs/component"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/milk9111/dronecore/ecs/system"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	transitions metric.Int64Counter
	delegations metric.Int64Counter
}

var (
	instrumentsOnce sync.Once
	inst            instruments
)

// loadInstruments creates the counters against the global provider, which
// is a no-op unless the host installs one. Instruments that fail to register
// stay nil and are skipped.
func loadInstruments() instruments {
	instrumentsOnce.Do(func() {
		m := meter()
		if c, err := m.Int64Counter(
			"drone.state.transitions",
			metric.WithDescription("Repair task state transitions"),
		); err == nil {
			inst.transitions = c
		}
		if c, err := m.Int64Counter(
			"drone.controller.delegations",
			metric.WithDescription("Ticks executed by a fallback controller"),
		); err == nil {
			inst.delegations = c
		}
	})
	return inst
}

func recordTransition(change component.StateChange) {
	if c := loadInstruments().transitions; c != nil {
		c.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("from", change.From.Code()),
			attribute.String("to", change.To.Code()),
		))
	}
}

func recordDelegation() {
	if c := loadInstruments().delegations; c != nil {
		c.Add(context.Background(), 1)
	}
}
