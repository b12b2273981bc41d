package component

import "github.com/jakecoffman/cp"

// Bullet describes the projectile a weapon fires.
type Bullet struct {
	Speed          float64
	CollidesAir    bool
	CollidesGround bool
}

// Weapon is the static definition of a mount slot.
type Weapon struct {
	Name string
	// X, Y is the local offset from the agent center, before rotation.
	X, Y         float64
	Range        float64
	BaseRotation float64

	Controllable   bool
	AIControllable bool
	NoAttack       bool

	Bullet *Bullet
}

// Mount is the runtime state of one weapon slot on an agent.
type Mount struct {
	Weapon   *Weapon
	Target   Target
	Aim      cp.Vector
	Rotation float64
	Shoot    bool
	Rotate   bool
}

// NewMounts builds one mount per weapon. The slice length is fixed for the
// lifetime of the agent.
func NewMounts(weapons []*Weapon) []*Mount {
	out := make([]*Mount, 0, len(weapons))
	for _, w := range weapons {
		rot := 0.0
		if w != nil {
			rot = w.BaseRotation
		}
		out = append(out, &Mount{Weapon: w, Rotation: rot})
	}
	return out
}
