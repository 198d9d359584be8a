package ports

import (
	"context"

	"policysim/domain/simulation"
)

// Scorer runs a simulation on the remote scoring service
type Scorer interface {
	Simulate(ctx context.Context, payload simulation.Payload) (*simulation.Result, error)
}
