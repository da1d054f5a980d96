// Package algo implements the two-level CBS/A* search: a time-expanded
// single-agent A* (the low-level planner) and the conflict-based search
// tree that drives it (the high-level planner).
package algo

import (
	"container/heap"

	"github.com/charmbracelet/log"
	"github.com/elektrokombinacija/mapf-cbs/internal/grid"
)

// state is a time-expanded search node: a cell at a timestep. g equals the
// timestep because every action (wait or axial move) costs 1.
type state struct {
	p grid.Point
	t int
}

// astarNode is a node on the A* open/closed sets. Nodes live in an arena
// (planPath's `arena` slice) and reference their parent by arena index,
// in place of the reference implementation's separately allocated id-keyed
// map.
type astarNode struct {
	s        state
	g        int
	h        int
	parent   int // arena index of the parent; self-index at the root
	arenaIdx int
	heapIdx  int // position in the open-set heap, maintained by container/heap
}

func (n *astarNode) f() int { return n.g + n.h }

// astarHeap is a min-heap on f, tie-breaking toward larger h (equivalently
// smaller g). This is the opposite of the usual A* tie-break; it is kept
// deliberately to match the reference solver's node ordering on ties (see
// the low-level planner's open-set ordering rule). Both orderings are
// optimal since ties only occur among equal-f nodes.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f() != h[j].f() {
		return h[i].f() < h[j].f()
	}
	return h[i].h > h[j].h
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// lowLevelResult is what the low-level planner returns on success.
type lowLevelResult struct {
	path     grid.Path
	cost     int
	expanded int
}

// violatesVertex reports whether occupying p at time t is forbidden for
// this agent by any vertex constraint.
func violatesVertex(constraints []Constraint, p grid.Point, t int) bool {
	for _, c := range constraints {
		if !c.isEdge() && c.P1 == p && c.T1 == t {
			return true
		}
	}
	return false
}

// violatesEdge reports whether moving from `from` at time t to `to` at time
// t+1 is forbidden for this agent by any edge constraint.
func violatesEdge(constraints []Constraint, from, to grid.Point, t int) bool {
	for _, c := range constraints {
		if c.isEdge() && c.P1 == from && c.P2 == to && c.T2 == t+1 {
			return true
		}
	}
	return false
}

// planPath runs time-indexed A* for a single agent from start to goal,
// honoring the given constraints. It returns nil if the open set empties
// without reaching the goal (infeasible under these constraints).
//
// Nodes are kept in an arena for parent-pointer path reconstruction (the
// reference implementation's id-keyed map, here just a growable slice).
// A second map, bestG, keyed by (point, time), suppresses re-expansion of
// dominated duplicate states — the safe optimization the baseline permits
// without affecting optimality, since every action costs exactly 1.
func planPath(env *grid.Environment, start, goal grid.Point, constraints []Constraint) *lowLevelResult {
	open := &astarHeap{}
	heap.Init(open)

	var arena []*astarNode
	bestG := make(map[state]int)

	root := &astarNode{
		s: state{p: start, t: 0},
		g: 0,
		h: start.Manhattan(goal),
	}
	root.arenaIdx = 0
	root.parent = 0
	arena = append(arena, root)
	heap.Push(open, root)
	bestG[root.s] = 0

	expanded := 0

	// After the last constrained timestep the grid is static, so an optimal
	// path reaches the goal at most DimX*DimY steps later. States past that
	// horizon are never generated, which lets the open set empty when the
	// goal is unreachable instead of waiting forever.
	cells := env.DimX * env.DimY
	horizon := cells
	for _, c := range constraints {
		if c.T2+cells > horizon {
			horizon = c.T2 + cells
		}
	}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*astarNode)

		if cur.s.p == goal {
			return &lowLevelResult{
				path:     reconstructPath(arena, cur.arenaIdx),
				cost:     cur.g,
				expanded: expanded,
			}
		}

		if best, ok := bestG[cur.s]; ok && best < cur.g {
			continue
		}

		nextT := cur.s.t + 1
		if nextT > horizon {
			continue
		}

		tryExpand := func(p grid.Point) {
			if violatesVertex(constraints, p, nextT) {
				return
			}
			if violatesEdge(constraints, cur.s.p, p, cur.s.t) {
				return
			}
			next := state{p: p, t: nextT}
			g := cur.g + 1
			if best, ok := bestG[next]; ok && best <= g {
				return
			}
			bestG[next] = g
			node := &astarNode{
				s:      next,
				g:      g,
				h:      p.Manhattan(goal),
				parent: cur.arenaIdx,
			}
			node.arenaIdx = len(arena)
			arena = append(arena, node)
			heap.Push(open, node)
			expanded++
		}

		tryExpand(cur.s.p) // wait
		for _, nbr := range env.Neighbors(cur.s.p) {
			tryExpand(nbr)
		}
	}

	log.Debug("low-level planner exhausted open set", "start", start, "goal", goal, "expanded", expanded)
	return nil
}

// reconstructPath walks parent pointers from arena[goalIdx] back to the
// root and reverses the result.
func reconstructPath(arena []*astarNode, goalIdx int) grid.Path {
	var path grid.Path
	idx := goalIdx
	for {
		path = append(grid.Path{arena[idx].s.p}, path...)
		if arena[idx].parent == idx {
			break
		}
		idx = arena[idx].parent
	}
	return path
}
