package simulation

import (
	"time"

	"policysim/domain/core"
)

// Run is one completed simulation kept in the run history
type Run struct {
	ID          core.RunID `json:"id"`
	Fingerprint core.Hash  `json:"fingerprint"`
	Payload     Payload    `json:"payload"`
	Result      Result     `json:"result"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewRun records a successful result together with the request that produced it
func NewRun(payload Payload, result Result) (*Run, error) {
	fp, err := core.Fingerprint(payload)
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:          core.NewRunID(),
		Fingerprint: fp,
		Payload:     payload,
		Result:      result,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Tier is the run's badge tier
func (r *Run) Tier() Tier {
	return TierOf(r.Result.Badge)
}
