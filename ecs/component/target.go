package component

import "github.com/jakecoffman/cp"

// TargetKind tags the variant held by a Target.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetAgent
	TargetStructure
)

func (k TargetKind) String() string {
	switch k {
	case TargetAgent:
		return "agent"
	case TargetStructure:
		return "structure"
	default:
		return "none"
	}
}

// Target is a tagged union of nothing, an agent or a structure. The zero
// value is TargetNone.
type Target struct {
	kind      TargetKind
	agent     Agent
	structure Structure
}

var NoTarget = Target{}

func AgentTarget(a Agent) Target {
	if a == nil {
		return NoTarget
	}
	return Target{kind: TargetAgent, agent: a}
}

func StructureTarget(s Structure) Target {
	if s == nil {
		return NoTarget
	}
	return Target{kind: TargetStructure, structure: s}
}

// TargetOf wraps an entity, picking the variant by its dynamic type.
func TargetOf(e Entity) Target {
	switch v := e.(type) {
	case Agent:
		return AgentTarget(v)
	case Structure:
		return StructureTarget(v)
	default:
		return NoTarget
	}
}

func (t Target) Kind() TargetKind { return t.kind }

func (t Target) None() bool { return t.kind == TargetNone }

func (t Target) Agent() (Agent, bool) {
	return t.agent, t.kind == TargetAgent
}

func (t Target) Structure() (Structure, bool) {
	return t.structure, t.kind == TargetStructure
}

// Entity returns the held entity, or nil for TargetNone.
func (t Target) Entity() Entity {
	switch t.kind {
	case TargetAgent:
		return t.agent
	case TargetStructure:
		return t.structure
	default:
		return nil
	}
}

// Added reads the presence flag of the held entity.
func (t Target) Added() bool {
	e := t.Entity()
	return e != nil && e.Added()
}

// Same reports whether both targets hold the same entity.
func (t Target) Same(o Target) bool {
	if t.kind != o.kind {
		return false
	}
	if t.kind == TargetNone {
		return true
	}
	return t.Entity().ID() == o.Entity().ID()
}

func (t Target) Position() cp.Vector {
	if e := t.Entity(); e != nil {
		return e.Position()
	}
	return cp.Vector{}
}

func (t Target) Velocity() cp.Vector {
	if e := t.Entity(); e != nil {
		return e.Velocity()
	}
	return cp.Vector{}
}

func (t Target) HitSize() float64 {
	if e := t.Entity(); e != nil {
		return e.HitSize()
	}
	return 0
}

// Within reports whether the target lies within dist of p.
func (t Target) Within(p cp.Vector, dist float64) bool {
	if t.None() {
		return false
	}
	return t.Position().Distance(p) <= dist
}
