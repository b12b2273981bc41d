package component

// AgentType is the capability data of an agent, resolved once when a
// controller binds to it.
type AgentType struct {
	Name string

	OmniMovement    bool
	RotateMoveFirst bool
	FaceTarget      bool
	SingleTarget    bool
	AutoDropBombs   bool
	Wobble          bool

	TargetAir         bool
	TargetGround      bool
	TargetUnderBlocks bool

	// Accel is the fraction of speed gained per tick; used for arrival damping.
	Accel    float64
	PathCost int

	Weapons []*Weapon
}

func (t *AgentType) HasWeapons() bool {
	return t != nil && len(t.Weapons) > 0
}
