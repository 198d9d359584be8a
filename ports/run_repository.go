package ports

import (
	"context"

	"policysim/domain/core"
	"policysim/domain/simulation"
)

// RunRepository stores completed simulation runs
type RunRepository interface {
	// Save persists a run
	Save(ctx context.Context, run *simulation.Run) error

	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]*simulation.Run, error)

	// Get retrieves a run by ID
	Get(ctx context.Context, id core.RunID) (*simulation.Run, error)
}
