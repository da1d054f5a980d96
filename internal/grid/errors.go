package grid

import "errors"

// Sentinel errors for Environment construction. Wrapped with fmt.Errorf in
// NewEnvironment to attach the offending value; callers can still match
// with errors.Is.
var (
	// ErrTooFewAgents indicates NumAgents < 1.
	ErrTooFewAgents = errors.New("grid: number of agents must be at least 1")
	// ErrLengthMismatch indicates starts/goals don't have NumAgents entries.
	ErrLengthMismatch = errors.New("grid: starts/goals length must equal number of agents")
	// ErrOutOfBounds indicates a point or dimension falls outside the grid.
	ErrOutOfBounds = errors.New("grid: point out of bounds")
	// ErrStartOnObstacle indicates an agent's start coincides with an obstacle.
	ErrStartOnObstacle = errors.New("grid: start cell is an obstacle")
	// ErrGoalOnObstacle indicates an agent's goal coincides with an obstacle.
	ErrGoalOnObstacle = errors.New("grid: goal cell is an obstacle")
)
