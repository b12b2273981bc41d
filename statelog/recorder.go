package statelog

import (
	"errors"
	"sync"
	"time"

	"github.com/milk9111/dronecore/ecs/component"
	"github.com/rs/zerolog"
)

// Recorder fans state changes out to sinks. It only forwards a change when
// the agent's state differs from the last one it recorded, and it never
// surfaces sink failures to the caller.
type Recorder struct {
	mu    sync.Mutex
	sinks []Sink
	last  map[int]component.DroneState
	now   func() time.Time
	log   zerolog.Logger
}

func NewRecorder(log zerolog.Logger, sinks ...Sink) *Recorder {
	return &Recorder{
		sinks: sinks,
		last:  map[int]component.DroneState{},
		now:   time.Now,
		log:   log,
	}
}

// Open opens every sink. Failures are logged and joined; the recorder keeps
// working with whatever sinks did open.
func (r *Recorder) Open() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Open(); err != nil {
			r.log.Error().Err(err).Msg("state sink unavailable")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StateChanged records change unless it repeats the agent's last state.
func (r *Recorder) StateChanged(change component.StateChange) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.last[change.AgentID]; ok && prev == change.To {
		return
	}
	r.last[change.AgentID] = change.To

	r.appendLocked(Entry{Time: r.now(), AgentID: change.AgentID, State: change.To.Code()})
}

// Note records a free-form message.
func (r *Recorder) Note(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(Entry{Time: r.now(), AgentID: -1, Message: msg})
}

func (r *Recorder) appendLocked(e Entry) {
	for _, s := range r.sinks {
		if err := s.Append(e); err != nil {
			r.log.Warn().Err(err).Int("agent", e.AgentID).Str("state", e.State).Msg("state sink append failed")
		}
	}
}

// Last returns the most recently recorded state of agent.
func (r *Recorder) Last(agentID int) (component.DroneState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.last[agentID]
	return s, ok
}

func (r *Recorder) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
