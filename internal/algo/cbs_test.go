package algo

import (
	"testing"

	"github.com/elektrokombinacija/mapf-cbs/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearch_HeadOnSwap is scenario 3 from the spec's end-to-end list: two
// agents swapping ends of a 100x100 empty grid must detour one of them by
// one step, adding 2 to the sum of costs.
func TestSearch_HeadOnSwap(t *testing.T) {
	env, err := grid.NewEnvironment(
		2,
		[]grid.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		[]grid.Point{{X: 10, Y: 0}, {X: 0, Y: 0}},
		100, 100,
		nil,
	)
	require.NoError(t, err)

	plan, ok := Search(env)
	require.True(t, ok)
	assert.Equal(t, 22, plan.CostSum)
	assertConflictFree(t, plan.PathTable)
	assertRespectsEnv(t, env, plan.PathTable)
}

// TestSearch_Infeasible is scenario 6: a goal boxed in on all sides by
// obstacles has no feasible single-agent path, so Search must report
// absent rather than any partial plan.
func TestSearch_Infeasible(t *testing.T) {
	goal := grid.Point{X: 5, Y: 5}
	obstacles := []grid.Point{
		{X: goal.X - 1, Y: goal.Y},
		{X: goal.X + 1, Y: goal.Y},
		{X: goal.X, Y: goal.Y - 1},
		{X: goal.X, Y: goal.Y + 1},
	}
	env, err := grid.NewEnvironment(1, []grid.Point{{X: 0, Y: 0}}, []grid.Point{goal}, 20, 20, obstacles)
	require.NoError(t, err)

	plan, ok := Search(env)
	assert.False(t, ok)
	assert.Nil(t, plan)
}

// TestSearch_NoConflictTrivial covers the no-split case: disjoint agents
// on an empty grid need no constraints at all.
func TestSearch_NoConflictTrivial(t *testing.T) {
	env, err := grid.NewEnvironment(
		2,
		[]grid.Point{{X: 0, Y: 0}, {X: 9, Y: 9}},
		[]grid.Point{{X: 3, Y: 0}, {X: 9, Y: 6}},
		10, 10,
		nil,
	)
	require.NoError(t, err)

	plan, ok := Search(env)
	require.True(t, ok)
	assert.Equal(t, 0, plan.HighLevelNodeCount)
	assert.Equal(t, 0, plan.ConflictCount)
	assertConflictFree(t, plan.PathTable)
}

// TestSearch_FourWayCrossing stresses vertex and swap splitting together
// on four agents converging on the center of a small grid.
func TestSearch_FourWayCrossing(t *testing.T) {
	env, err := grid.NewEnvironment(
		4,
		[]grid.Point{{X: 0, Y: 2}, {X: 4, Y: 2}, {X: 2, Y: 0}, {X: 2, Y: 4}},
		[]grid.Point{{X: 4, Y: 2}, {X: 0, Y: 2}, {X: 2, Y: 4}, {X: 2, Y: 0}},
		5, 5,
		nil,
	)
	require.NoError(t, err)

	plan, ok := Search(env)
	require.True(t, ok)
	assertConflictFree(t, plan.PathTable)
	assertRespectsEnv(t, env, plan.PathTable)

	wantCostSum := 0
	for _, p := range plan.PathTable {
		wantCostSum += p.Cost()
	}
	assert.Equal(t, wantCostSum, plan.CostSum)
}

// TestSearch_DeterministicCostAcrossRuns checks the law that repeated
// Search calls on the same environment agree on cost_sum even though the
// arbitrary open-set tie-break could in principle choose different paths.
func TestSearch_DeterministicCostAcrossRuns(t *testing.T) {
	env, err := grid.NewEnvironment(
		3,
		[]grid.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}},
		[]grid.Point{{X: 5, Y: 5}, {X: 0, Y: 5}, {X: 5, Y: 0}},
		6, 6,
		nil,
	)
	require.NoError(t, err)

	first, ok := Search(env)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		plan, ok := Search(env)
		require.True(t, ok)
		assert.Equal(t, first.CostSum, plan.CostSum)
	}
}

// TestSearch_ReflectionSymmetry checks the mirrored-grid law: swapping
// every agent's start and goal across a reflected (same-shape) environment
// yields the same cost_sum.
func TestSearch_ReflectionSymmetry(t *testing.T) {
	starts := []grid.Point{{X: 0, Y: 0}, {X: 7, Y: 0}}
	goals := []grid.Point{{X: 7, Y: 7}, {X: 0, Y: 7}}

	env, err := grid.NewEnvironment(2, starts, goals, 8, 8, nil)
	require.NoError(t, err)
	plan, ok := Search(env)
	require.True(t, ok)

	reflected, err := grid.NewEnvironment(2, goals, starts, 8, 8, nil)
	require.NoError(t, err)
	reflectedPlan, ok := Search(reflected)
	require.True(t, ok)

	assert.Equal(t, plan.CostSum, reflectedPlan.CostSum)
}

func assertConflictFree(t *testing.T, paths grid.PathTable) {
	t.Helper()
	assert.Nil(t, findFirstConflict(paths), "expected no conflict in solved plan")
}

func assertRespectsEnv(t *testing.T, env *grid.Environment, paths grid.PathTable) {
	t.Helper()
	for agent, path := range paths {
		require.NotEmpty(t, path, "agent %d has empty path", agent)
		assert.Equal(t, env.Starts[agent], path[0], "agent %d does not start at its start", agent)
		assert.Equal(t, env.Goals[agent], path[len(path)-1], "agent %d does not end at its goal", agent)
		for i, p := range path {
			assert.True(t, env.InBounds(p), "agent %d cell %v out of bounds", agent, p)
			assert.False(t, env.IsObstacle(p), "agent %d cell %v is an obstacle", agent, p)
			if i > 0 {
				assert.LessOrEqual(t, path[i-1].Manhattan(p), 1, "agent %d move %v->%v is not a single axial step or wait", agent, path[i-1], p)
			}
		}
	}
}
