package ports

import (
	"context"
	"net/url"

	"policysim/domain/core"
	"policysim/domain/policy"
)

// PolicySource reads the remote policy catalog
type PolicySource interface {
	// FetchPolicies returns the collection, optionally narrowed server-side
	// by facet query parameters
	FetchPolicies(ctx context.Context, query url.Values) ([]policy.Policy, error)

	// FetchPolicy returns one record merged with its simulated scores
	FetchPolicy(ctx context.Context, id core.PolicyID) (*policy.Policy, error)
}
