// Package grid defines the static map and value types shared by the
// low-level and high-level planners: grid cells, the environment they
// move through, and the path/plan shapes both levels produce.
package grid

import "fmt"

// Point is an integer grid cell. Value-typed: equality and hashing are by
// coordinate, so Point can key a map directly.
type Point struct {
	X, Y int
}

// Manhattan returns the 4-connected distance between p and other.
func (p Point) Manhattan(other Point) int {
	return absInt(p.X-other.X) + absInt(p.Y-other.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// neighborOffsets lists the four axial moves. Order doesn't affect
// optimality, only which equal-cost path is found first.
var neighborOffsets = [4]Point{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// Path is an agent's cell sequence indexed by timestep; Path[0] is its
// start, Path[len-1] is its goal. Cost is len(Path)-1.
type Path []Point

// Cost returns the number of move/wait actions in the path.
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// At returns the agent's position at time t, or false if the agent's path
// has already ended by then (it is treated as absent, not as staying put —
// the high-level planner's conflict detection relies on this).
func (p Path) At(t int) (Point, bool) {
	if t < 0 || t >= len(p) {
		return Point{}, false
	}
	return p[t], true
}

// PathTable holds one Path per agent, indexed by agent id.
type PathTable []Path

// Environment is the immutable MAPF instance: agent count, start/goal
// cells, grid extents, and static obstacles.
type Environment struct {
	NumAgents int
	Starts    []Point
	Goals     []Point
	DimX      int
	DimY      int
	obstacles map[Point]struct{}
}

// NewEnvironment validates and constructs an Environment. It returns an
// error rather than panicking because invalid input is a caller mistake,
// not an internal invariant failure — see the package errors.
func NewEnvironment(numAgents int, starts, goals []Point, dimX, dimY int, obstacles []Point) (*Environment, error) {
	if numAgents < 1 {
		return nil, fmt.Errorf("grid: %w: got %d", ErrTooFewAgents, numAgents)
	}
	if len(starts) != numAgents || len(goals) != numAgents {
		return nil, fmt.Errorf("grid: %w: %d starts, %d goals, %d agents", ErrLengthMismatch, len(starts), len(goals), numAgents)
	}
	if dimX < 1 || dimY < 1 {
		return nil, fmt.Errorf("grid: %w: dim_x=%d dim_y=%d", ErrOutOfBounds, dimX, dimY)
	}

	obstacleSet := make(map[Point]struct{}, len(obstacles))
	for _, o := range obstacles {
		obstacleSet[o] = struct{}{}
	}

	env := &Environment{
		NumAgents: numAgents,
		Starts:    append([]Point(nil), starts...),
		Goals:     append([]Point(nil), goals...),
		DimX:      dimX,
		DimY:      dimY,
		obstacles: obstacleSet,
	}

	for i := 0; i < numAgents; i++ {
		if !env.InBounds(starts[i]) {
			return nil, fmt.Errorf("grid: agent %d start %v: %w", i, starts[i], ErrOutOfBounds)
		}
		if !env.InBounds(goals[i]) {
			return nil, fmt.Errorf("grid: agent %d goal %v: %w", i, goals[i], ErrOutOfBounds)
		}
		if env.IsObstacle(starts[i]) {
			return nil, fmt.Errorf("grid: agent %d start %v: %w", i, starts[i], ErrStartOnObstacle)
		}
		if env.IsObstacle(goals[i]) {
			return nil, fmt.Errorf("grid: agent %d goal %v: %w", i, goals[i], ErrGoalOnObstacle)
		}
	}

	return env, nil
}

// InBounds reports whether p falls within [0, DimX) x [0, DimY).
func (e *Environment) InBounds(p Point) bool {
	return p.X >= 0 && p.X < e.DimX && p.Y >= 0 && p.Y < e.DimY
}

// IsObstacle reports whether p is a static obstacle.
func (e *Environment) IsObstacle(p Point) bool {
	_, blocked := e.obstacles[p]
	return blocked
}

// Neighbors returns the in-bounds, non-obstacle cells reachable from p by a
// single axial move (wait is handled separately by callers — it is always
// legal unless a constraint forbids it).
func (e *Environment) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range neighborOffsets {
		n := Point{X: p.X + d.X, Y: p.Y + d.Y}
		if e.InBounds(n) && !e.IsObstacle(n) {
			out = append(out, n)
		}
	}
	return out
}
