package app

import (
	"context"

	"golang.org/x/sync/singleflight"

	"policysim/domain/core"
	"policysim/domain/policy"
	"policysim/internal"
	"policysim/internal/errors"
	"policysim/ports"
)

// PolicyService loads single policy records for the detail page.
// Concurrent requests for the same ID share one upstream call.
type PolicyService struct {
	source ports.PolicySource
	group  singleflight.Group
	log    *internal.Logger
}

// NewPolicyService creates a detail loader
func NewPolicyService(source ports.PolicySource, logger *internal.Logger) *PolicyService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PolicyService{source: source, log: logger.WithComponent("Policy")}
}

// Detail fetches and interprets one policy. A blank ID fails locally
// without contacting the server.
func (s *PolicyService) Detail(ctx context.Context, rawID string) (*policy.DetailView, error) {
	id, err := core.ParsePolicyID(rawID)
	if err != nil {
		return nil, errors.InvalidInput("Policy ID is missing.")
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id.String(), func() (interface{}, error) {
		return s.source.FetchPolicy(fetchCtx, id)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		s.log.Debug("policy %s served from a shared fetch", id)
	}

	view := policy.NewDetailView(*res.Val.(*policy.Policy))
	return &view, nil
}
