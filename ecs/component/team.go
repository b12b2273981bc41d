package component

// Team identifies a faction. Derelict structures belong to no one and are
// never treated as hostile or friendly.
type Team int

const Derelict Team = 0

// Hostile reports whether other is an enemy of t.
func (t Team) Hostile(other Team) bool {
	return t != other && t != Derelict && other != Derelict
}

// BlockFlag tags structures for indexed lookups (e.g. the enemy core).
type BlockFlag uint32

const (
	FlagCore BlockFlag = 1 << iota
	FlagTurret
	FlagFactory
	FlagRepair
)

// Cell is a discrete grid coordinate.
type Cell struct {
	X int
	Y int
}
