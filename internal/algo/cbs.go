package algo

import (
	"container/heap"

	"github.com/charmbracelet/log"
	"github.com/elektrokombinacija/mapf-cbs/internal/grid"
)

// Plan is the external result of a successful Search: one conflict-free
// path per agent plus the bookkeeping the spec's testable properties are
// phrased over.
type Plan struct {
	PathTable          grid.PathTable
	CostSum            int
	Makespan           int
	ConflictCount      int
	HighLevelNodeCount int
	LowLevelNodeCount  int
}

// node is a high-level search tree node: a constraint set (per agent) plus
// the path table that already satisfies it. Nodes are immutable once
// pushed onto the open set; splitting produces two fresh nodes via copies
// rather than mutating a shared parent.
type node struct {
	constraints map[int][]Constraint
	paths       grid.PathTable
	costs       []int
	costSum     int
	heapIdx     int
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].costSum < h[j].costSum }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].heapIdx, h[j].heapIdx = i, j }
func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// invariantViolation is raised (via panic) when a popped node's path table
// fails to satisfy its own constraint set — an internal bug, never a user
// input error. It is never returned as a regular error; Search either
// returns a valid Plan or (nil, false) for genuine infeasibility.
type invariantViolation struct{ msg string }

func (e *invariantViolation) Error() string { return "cbs: internal invariant violation: " + e.msg }

// checkSatisfies panics with an invariantViolation if any agent's path in
// n violates one of n's own constraints for that agent. This runs once per
// popped node; it is cheap relative to the A* replan that produced the
// node, and it is the last line of defense against a wrong Plan reaching
// the caller (§7: "the core aborts rather than returning a wrong plan").
func (n *node) checkSatisfies() {
	for agent, cons := range n.constraints {
		path := n.paths[agent]
		for _, c := range cons {
			if !c.isEdge() {
				if p, ok := path.At(c.T1); ok && p == c.P1 {
					panic(&invariantViolation{msg: "agent path occupies a vertex its own constraint forbids"})
				}
				continue
			}
			from, okFrom := path.At(c.T1)
			to, okTo := path.At(c.T2)
			if okFrom && okTo && from == c.P1 && to == c.P2 {
				panic(&invariantViolation{msg: "agent path traverses an edge its own constraint forbids"})
			}
		}
	}
}

// addConstraint returns a copy of n's constraint map with c appended to
// agent's list if not already present (set semantics — duplicate
// constraints are never re-added). n itself is left unchanged.
func (n *node) addConstraint(agent int, c Constraint) map[int][]Constraint {
	out := make(map[int][]Constraint, len(n.constraints))
	for a, cs := range n.constraints {
		out[a] = append([]Constraint(nil), cs...)
	}
	for _, existing := range out[agent] {
		if existing == c {
			return out
		}
	}
	out[agent] = append(out[agent], c)
	return out
}

// planAll replans every agent's path against n's constraint set. It
// returns the low-level node count spent doing so, or false if any agent
// is infeasible under its own constraints — the baseline's "replan
// everyone on every split" rule, kept (rather than the single-agent
// optimization) so HighLevelNodeCount/LowLevelNodeCount line up with the
// reference implementation's counters.
func planAll(env *grid.Environment, n *node) (int, bool) {
	n.paths = make(grid.PathTable, env.NumAgents)
	n.costs = make([]int, env.NumAgents)
	lowLevelNodes := 0

	for agent := 0; agent < env.NumAgents; agent++ {
		result := planPath(env, env.Starts[agent], env.Goals[agent], n.constraints[agent])
		if result == nil {
			return lowLevelNodes, false
		}
		lowLevelNodes += result.expanded
		n.paths[agent] = result.path
		n.costs[agent] = result.cost
	}

	n.costSum = 0
	for _, c := range n.costs {
		n.costSum += c
	}
	return lowLevelNodes, true
}

// Search runs Conflict-Based Search over env: a best-first tree over
// constraint sets, each node validated by replanning every agent's path
// with the low-level planner. It returns the optimal sum-of-costs
// conflict-free Plan, or (nil, false) if any single-agent subproblem is
// infeasible under env (including the unconstrained root — MAPF as a whole
// is all-or-nothing, there is no partial result).
func Search(env *grid.Environment) (*Plan, bool) {
	root := &node{constraints: make(map[int][]Constraint)}
	lowLevelNodes, ok := planAll(env, root)
	if !ok {
		log.Debug("cbs: root infeasible, no single-agent path exists for some agent")
		return nil, false
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, root)

	highLevelNodes := 0
	conflictCount := 0

	for open.Len() > 0 {
		n := heap.Pop(open).(*node)
		n.checkSatisfies()

		conflict := findFirstConflict(n.paths)
		if conflict == nil {
			makespan := 0
			for _, p := range n.paths {
				if len(p) > makespan {
					makespan = len(p)
				}
			}
			log.Info("cbs: solution found", "cost_sum", n.costSum, "makespan", makespan, "high_level_nodes", highLevelNodes, "low_level_nodes", lowLevelNodes)
			return &Plan{
				PathTable:          n.paths,
				CostSum:            n.costSum,
				Makespan:           makespan,
				ConflictCount:      conflictCount,
				HighLevelNodeCount: highLevelNodes,
				LowLevelNodeCount:  lowLevelNodes,
			}, true
		}

		conflictCount++
		log.Debug("cbs: conflict found", "agent1", conflict.Agent1, "agent2", conflict.Agent2, "t1", conflict.T1, "t2", conflict.T2, "is_edge", conflict.isEdge())

		for _, child := range splitOnConflict(conflict) {
			child.n.constraints = n.addConstraint(child.agent, child.constraint)
			lln, ok := planAll(env, child.n)
			if !ok {
				continue
			}
			lowLevelNodes += lln
			highLevelNodes++
			heap.Push(open, child.n)
		}
	}

	return nil, false
}

// childSpec names which agent a split child constrains and with what
// constraint, deferring the actual node construction to Search so the
// constraint map can be built from the parent being expanded.
type childSpec struct {
	agent      int
	constraint Constraint
	n          *node
}

// splitOnConflict builds the two constraints a conflict resolves into: for
// a vertex conflict, each agent is forbidden the shared cell at the shared
// time; for a swap conflict, each agent is forbidden the edge it actually
// traversed, with the point pair reversed for the second agent since it
// crossed the opposite direction.
func splitOnConflict(c *Conflict) [2]childSpec {
	if !c.isEdge() {
		shared := vertexConstraint(c.P1, c.T1)
		return [2]childSpec{
			{agent: c.Agent1, constraint: shared, n: &node{}},
			{agent: c.Agent2, constraint: shared, n: &node{}},
		}
	}
	return [2]childSpec{
		{agent: c.Agent1, constraint: edgeConstraint(c.P1, c.P2, c.T1), n: &node{}},
		{agent: c.Agent2, constraint: edgeConstraint(c.P2, c.P1, c.T1), n: &node{}},
	}
}
