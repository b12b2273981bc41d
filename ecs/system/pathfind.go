package system

import "github.com/milk9111/dronecore/common"

// Pathfind steps the agent one cell along the flow field toward goal and
// stops once it stands on the goal cell.
func (c *AIController) Pathfind(goal int) {
	c.PathfindWith(goal, true)
}

func (c *AIController) PathfindWith(goal int, stopAtGoal bool) {
	a := c.agent
	if a == nil || c.caps.typ == nil || c.env.Nav == nil || c.env.Grid == nil {
		return
	}

	cell, ok := a.CellOn()
	if !ok {
		return
	}

	next, ok := c.env.Nav.NextCell(a.Team(), c.caps.typ.PathCost, goal, cell)
	if !ok {
		return
	}
	if (next == cell && stopAtGoal) || !a.CanPass(next) {
		return
	}

	center := c.env.Grid.CellCenter(next)
	a.MovePref(common.Trns(common.AngleTo(a.Position(), center), c.PrefSpeed()))
}
