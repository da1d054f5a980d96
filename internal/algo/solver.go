package algo

import "github.com/elektrokombinacija/mapf-cbs/internal/grid"

// Constraint prohibits a single agent from either occupying a cell at a
// time (vertex constraint, P1==P2, T1==T2) or traversing an edge between
// consecutive timesteps (edge constraint, T2==T1+1, P1!=P2). The two kinds
// are discriminated by isEdge, not by a separate tag field, mirroring the
// t1==t2 convention in the constraint language.
type Constraint struct {
	P1, P2 grid.Point
	T1, T2 int
}

func (c Constraint) isEdge() bool { return c.T1 != c.T2 }

// vertexConstraint builds a constraint forbidding p at time t.
func vertexConstraint(p grid.Point, t int) Constraint {
	return Constraint{P1: p, P2: p, T1: t, T2: t}
}

// edgeConstraint builds a constraint forbidding the move from `from` at
// time t to `to` at time t+1.
func edgeConstraint(from, to grid.Point, t int) Constraint {
	return Constraint{P1: from, P2: to, T1: t, T2: t + 1}
}

// Conflict is a collision between two agents' paths, detected at the
// earliest timestep it occurs. A vertex conflict has T1==T2 and P1==P2; a
// swap conflict has T2==T1+1 and P1!=P2, with P1/P2 oriented from Agent1's
// perspective (Agent1 goes P1->P2 while Agent2 goes P2->P1).
type Conflict struct {
	Agent1, Agent2 int
	P1, P2         grid.Point
	T1, T2         int
}

func (c *Conflict) isEdge() bool { return c.T1 != c.T2 }

// findFirstConflict scans a path table for the earliest conflict, vertex
// conflicts before swap conflicts within the same timestep, per-timestep
// pair iteration in agent-id order so the result is reproducible across
// runs (see the high-level planner's determinism requirement).
func findFirstConflict(paths grid.PathTable) *Conflict {
	maxLen := 0
	for _, p := range paths {
		if len(p) > maxLen {
			maxLen = len(p)
		}
	}

	for t := 0; t < maxLen; t++ {
		for a1 := 0; a1 < len(paths); a1++ {
			p1, ok1 := paths[a1].At(t)
			if !ok1 {
				continue
			}
			for a2 := a1 + 1; a2 < len(paths); a2++ {
				p2, ok2 := paths[a2].At(t)
				if !ok2 {
					continue
				}
				if p1 == p2 {
					return &Conflict{Agent1: a1, Agent2: a2, P1: p1, P2: p1, T1: t, T2: t}
				}
			}
		}

		if t == 0 {
			continue
		}
		prevT := t - 1
		for a1 := 0; a1 < len(paths); a1++ {
			cur1, ok1 := paths[a1].At(t)
			prev1, okp1 := paths[a1].At(prevT)
			if !ok1 || !okp1 {
				continue
			}
			for a2 := a1 + 1; a2 < len(paths); a2++ {
				cur2, ok2 := paths[a2].At(t)
				prev2, okp2 := paths[a2].At(prevT)
				if !ok2 || !okp2 {
					continue
				}
				if prev1 == cur2 && prev2 == cur1 {
					return &Conflict{
						Agent1: a1, Agent2: a2,
						P1: prev1, P2: cur1,
						T1: prevT, T2: t,
					}
				}
			}
		}
	}

	return nil
}
