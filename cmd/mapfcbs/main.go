// Command mapfcbs runs a couple of illustrative CBS searches and prints
// the resulting plans. It takes no flags and reads no files — building an
// Environment and parsing a wire format are both out of scope for the core
// (see SPEC_FULL.md); this is a demo harness, not a CLI.
package main

import (
	"github.com/charmbracelet/log"
	"github.com/elektrokombinacija/mapf-cbs/internal/algo"
	"github.com/elektrokombinacija/mapf-cbs/internal/grid"
)

func main() {
	log.SetLevel(log.InfoLevel)

	log.Info("=== MAPF-CBS demo ===")

	log.Info("--- head-on swap, 100x100 empty grid ---")
	runDemo(headOnSwap())

	log.Info("--- corridor behind an obstacle wall ---")
	runDemo(corridorWithObstacle())
}

func runDemo(env *grid.Environment, err error) {
	if err != nil {
		log.Error("invalid environment", "err", err)
		return
	}

	plan, ok := algo.Search(env)
	if !ok {
		log.Info("no solution (infeasible)")
		return
	}

	log.Info("solved",
		"cost_sum", plan.CostSum,
		"makespan", plan.Makespan,
		"conflicts_resolved", plan.ConflictCount,
		"high_level_nodes", plan.HighLevelNodeCount,
		"low_level_nodes", plan.LowLevelNodeCount,
	)
	for agent, path := range plan.PathTable {
		log.Info("agent path", "agent", agent, "cost", path.Cost(), "path", path)
	}
}

// headOnSwap is scenario 3 from the spec's end-to-end test list: two
// agents starting across from each other's goals on a large empty grid.
func headOnSwap() (*grid.Environment, error) {
	return grid.NewEnvironment(
		2,
		[]grid.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		[]grid.Point{{X: 10, Y: 0}, {X: 0, Y: 0}},
		100, 100,
		nil,
	)
}

// corridorWithObstacle gives a single agent a short corridor blocked by a
// wall of obstacles on one side, forcing a detour.
func corridorWithObstacle() (*grid.Environment, error) {
	var obstacles []grid.Point
	for y := 0; y < 4; y++ {
		obstacles = append(obstacles, grid.Point{X: 2, Y: y})
	}

	return grid.NewEnvironment(
		1,
		[]grid.Point{{X: 0, Y: 0}},
		[]grid.Point{{X: 4, Y: 0}},
		5, 5,
		obstacles,
	)
}
