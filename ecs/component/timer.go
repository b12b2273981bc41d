package component

// TimerID names an interval counter in a TimerSet.
type TimerID int

const (
	// TimerTarget throttles the main target search.
	TimerTarget TimerID = iota
	// TimerCoreSearch throttles strategy-level objective lookups.
	TimerCoreSearch

	timerCount
)

// TimerSet is a fixed collection of interval counters measured in simulated
// ticks.
type TimerSet struct {
	elapsed [timerCount]float64
}

// Advance adds dt ticks to every counter.
func (s *TimerSet) Advance(dt float64) {
	for i := range s.elapsed {
		s.elapsed[i] += dt
	}
}

// Get reports whether at least interval ticks have elapsed on id and, if so,
// restarts that counter.
func (s *TimerSet) Get(id TimerID, interval float64) bool {
	if id < 0 || id >= timerCount {
		return false
	}
	if s.elapsed[id] >= interval {
		s.elapsed[id] = 0
		return true
	}
	return false
}

// Reset sets the elapsed ticks of id.
func (s *TimerSet) Reset(id TimerID, elapsed float64) {
	if id < 0 || id >= timerCount {
		return
	}
	s.elapsed[id] = elapsed
}

func (s *TimerSet) Elapsed(id TimerID) float64 {
	if id < 0 || id >= timerCount {
		return 0
	}
	return s.elapsed[id]
}
