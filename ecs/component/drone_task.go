package component

// DroneState is a state of the unsupervised repair task.
type DroneState uint8

const (
	StateIdle DroneState = iota
	StateMoving
	StateRepairing
	StateWaiting
)

var droneStateCodes = [...]string{"S1", "S2", "S3", "S4"}
var droneStateNames = [...]string{"idle", "moving", "repairing", "waiting"}

// Code returns the short state code written to the state log.
func (s DroneState) Code() string {
	if int(s) < len(droneStateCodes) {
		return droneStateCodes[s]
	}
	return "S?"
}

func (s DroneState) String() string {
	if int(s) < len(droneStateNames) {
		return droneStateNames[s]
	}
	return "unknown"
}

// ParseDroneState accepts either a state code ("S3") or a name ("repairing").
func ParseDroneState(v string) (DroneState, bool) {
	for i := range droneStateCodes {
		if v == droneStateCodes[i] || v == droneStateNames[i] {
			return DroneState(i), true
		}
	}
	return StateIdle, false
}

// StructureRef is a weak reference to a structure. Get returns nil once the
// structure has left the simulation.
type StructureRef struct {
	s Structure
}

func RefStructure(s Structure) StructureRef {
	return StructureRef{s: s}
}

func (r StructureRef) Get() Structure {
	if r.s == nil || !r.s.Added() {
		return nil
	}
	return r.s
}

// IsSet reports whether a structure was assigned, even if it is gone now.
func (r StructureRef) IsSet() bool {
	return r.s != nil
}

// StateChange is the single notification a transition emits.
type StateChange struct {
	AgentID int
	From    DroneState
	To      DroneState
}

// RepairTask is the full state of the repair automaton for one controller.
type RepairTask struct {
	State    DroneState
	Dwell    float64
	Target   StructureRef
	Progress float64
	// Logged is set once any state has been reported for the bound agent.
	Logged bool
}

// Transition moves the task to next. It is a no-op when next is the current
// state and a state was already reported; otherwise the dwell counter is
// restarted and exactly one StateChange is returned.
func (t RepairTask) Transition(agentID int, next DroneState) (RepairTask, *StateChange) {
	if t.State == next && t.Logged {
		return t, nil
	}
	change := &StateChange{AgentID: agentID, From: t.State, To: next}
	t.State = next
	t.Dwell = 0
	t.Logged = true
	return t, change
}
