package system

import (
	"math"

	"github.com/milk9111/dronecore/ecs/component"
)

const (
	idleDiscoveryDwell = 60
	movingTimeout      = 600
	waitingDwell       = 120
	repairDuration     = 300

	// discoveryChance is the per-tick probability of a second scan while idle.
	discoveryChance = 0.02
	discoveryRadius = 200

	approachRadius = 32
	arriveRadius   = 40
	leaveRadius    = 50
)

// updateTask advances the repair automaton by one tick.
func (c *AIController) updateTask(dt float64) {
	c.task.Dwell += dt

	switch c.task.State {
	case component.StateIdle:
		c.updateIdle()
	case component.StateMoving:
		c.updateMoving()
	case component.StateRepairing:
		c.updateRepairing(dt)
	case component.StateWaiting:
		c.updateWaiting()
	}
}

func (c *AIController) updateIdle() {
	if c.task.Dwell < idleDiscoveryDwell {
		return
	}

	if s := c.FindDamagedStructure(); s != nil {
		c.startMoving(s)
		return
	}

	if c.rng.Float64() < discoveryChance {
		c.discoveryAttempts++
		if s := c.FindDamagedStructure(); s != nil {
			c.startMoving(s)
		}
	}
}

func (c *AIController) startMoving(s component.Structure) {
	c.task.Target = component.RefStructure(s)
	c.transition(component.StateMoving)
}

func (c *AIController) updateMoving() {
	s := c.task.Target.Get()
	if s == nil {
		c.task.Target = component.StructureRef{}
		c.transition(component.StateIdle)
		return
	}

	c.MoveTo(s.Position(), approachRadius)

	if c.agent.Position().Distance(s.Position()) <= arriveRadius {
		c.task.Progress = 0
		c.transition(component.StateRepairing)
		return
	}

	if c.task.Dwell > movingTimeout {
		c.log.Debug().Int("structure", s.ID()).Msg("gave up moving to structure")
		c.task.Target = component.StructureRef{}
		c.transition(component.StateIdle)
	}
}

func (c *AIController) updateRepairing(dt float64) {
	s := c.task.Target.Get()
	if s == nil {
		c.task.Target = component.StructureRef{}
		c.task.Progress = 0
		c.transition(component.StateIdle)
		return
	}

	if c.agent.Position().Distance(s.Position()) > leaveRadius {
		c.transition(component.StateMoving)
		return
	}

	c.task.Progress += dt
	if c.task.Progress >= repairDuration {
		c.transition(component.StateWaiting)
	}
}

func (c *AIController) updateWaiting() {
	if c.task.Dwell < waitingDwell {
		return
	}
	c.task.Target = component.StructureRef{}
	c.task.Progress = 0
	c.transition(component.StateIdle)
}

// FindDamagedStructure returns the closest damaged structure of the agent's
// own team within the discovery radius, or nil.
func (c *AIController) FindDamagedStructure() component.Structure {
	if c.agent == nil || c.env.Grid == nil {
		return nil
	}

	grid := c.env.Grid
	size := grid.CellSize()
	if size <= 0 {
		return nil
	}

	pos := c.agent.Position()
	team := c.agent.Team()
	origin := grid.CellOf(pos)
	span := int(math.Ceil(discoveryRadius / size))

	var best component.Structure
	bestDist := math.Inf(1)
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			s := grid.StructureAt(component.Cell{X: origin.X + dx, Y: origin.Y + dy})
			if s == nil || !s.Added() || s.Team() != team || !s.Damaged() {
				continue
			}
			d := pos.Distance(s.Position())
			if d >= discoveryRadius || d >= bestDist {
				continue
			}
			best = s
			bestDist = d
		}
	}
	return best
}

// transition applies a state change and reports it. Unchanged states are
// dropped once they have been reported.
func (c *AIController) transition(next component.DroneState) {
	task, change := c.task.Transition(c.agentID(), next)
	c.task = task
	if change == nil {
		return
	}

	c.log.Debug().
		Str("from", change.From.String()).
		Str("to", change.To.String()).
		Msg("drone state changed")
	recordTransition(*change)

	if c.env.Observer != nil {
		c.env.Observer.StateChanged(*change)
	}
}
