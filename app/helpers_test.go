package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"policysim/domain/core"
	"policysim/domain/policy"
	"policysim/domain/simulation"
	"policysim/internal"
	"policysim/ports"

	"github.com/stretchr/testify/mock"
)

var quietLogger = internal.NewLogger(internal.LogLevelError)

// MockScorer is a testify mock of ports.Scorer
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Simulate(ctx context.Context, payload simulation.Payload) (*simulation.Result, error) {
	args := m.Called(ctx, payload)
	if r, ok := args.Get(0).(*simulation.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRunRepository is a testify mock of ports.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, run *simulation.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRunRepository) List(ctx context.Context, limit int) ([]*simulation.Run, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*simulation.Run), args.Error(1)
}

func (m *MockRunRepository) Get(ctx context.Context, id core.RunID) (*simulation.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*simulation.Run), args.Error(1)
}

// funcSource answers each FetchPolicies call with fetch(n), n counting from 1
type funcSource struct {
	calls  int32
	fetch  func(n int) ([]policy.Policy, error)
	detail func(id core.PolicyID) (*policy.Policy, error)
}

func (f *funcSource) FetchPolicies(ctx context.Context, query url.Values) ([]policy.Policy, error) {
	n := atomic.AddInt32(&f.calls, 1)
	return f.fetch(int(n))
}

func (f *funcSource) FetchPolicy(ctx context.Context, id core.PolicyID) (*policy.Policy, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.detail(id)
}

// funcScorer answers each Simulate call with run(n), n counting from 1
type funcScorer struct {
	calls int32
	run   func(n int) (*simulation.Result, error)
}

func (f *funcScorer) Simulate(ctx context.Context, payload simulation.Payload) (*simulation.Result, error) {
	n := atomic.AddInt32(&f.calls, 1)
	return f.run(int(n))
}

type recordingSink struct {
	mu     sync.Mutex
	events []ports.ViewEvent
}

func (s *recordingSink) Publish(e ports.ViewEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func makePolicies(n int, iso string) []policy.Policy {
	out := make([]policy.Policy, n)
	for i := range out {
		out[i] = policy.Policy{
			ID:         core.PolicyID(fmt.Sprintf("%s-%02d", iso, i+1)),
			Name:       fmt.Sprintf("Policy %d", i+1),
			CountryISO: iso,
			Country:    iso + "-land",
			Status:     policy.StatusInForce,
		}
	}
	return out
}

// policiesJSON renders n catalog records, alternating between KE and DE
func policiesJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		iso, name := "KE", "Kenya"
		if i%2 == 1 {
			iso, name = "DE", "Germany"
		}
		items[i] = fmt.Sprintf(`{"policy_id":"P-%02d","policy_name":"Policy %d","country":%q,"country_iso":%q,"policy_status":"In force","start_date":2015}`,
			i+1, i+1, name, iso)
	}
	return "[" + strings.Join(items, ",") + "]"
}
