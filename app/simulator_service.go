package app

import (
	"context"
	"sync"
	"time"

	"policysim/domain/core"
	"policysim/domain/simulation"
	"policysim/internal"
	"policysim/internal/errors"
	"policysim/internal/metrics"
	"policysim/ports"
)

// SimulatorService owns the simulation config and the last applied result.
// Each Run takes a ticket; only the newest ticket's outcome is applied and
// a failure never clears a previously shown result.
type SimulatorService struct {
	scorer  ports.Scorer
	runs    ports.RunRepository
	sink    ports.EventSink
	metrics *metrics.Recorder
	log     *internal.Logger
	seq     *core.Sequencer

	mu           sync.RWMutex
	config       simulation.Config
	result       *simulation.Result
	resultConfig simulation.Config
	lastRunID    core.RunID
	loading      bool
	err          error
}

// SimulatorView is a consistent snapshot of the simulator page
type SimulatorView struct {
	Config         simulation.Config          `json:"config"`
	Bounds         []simulation.Bound         `json:"bounds"`
	Loading        bool                       `json:"loading"`
	Error          string                     `json:"error,omitempty"`
	Result         *simulation.Result         `json:"result,omitempty"`
	Interpretation *simulation.Interpretation `json:"interpretation,omitempty"`
	RunID          core.RunID                 `json:"run_id,omitempty"`
}

// NewSimulatorService creates a simulator holding the default config. runs
// may be nil, in which case results are not kept beyond the current one.
func NewSimulatorService(scorer ports.Scorer, runs ports.RunRepository, sink ports.EventSink, rec *metrics.Recorder, logger *internal.Logger) *SimulatorService {
	if sink == nil {
		sink = ports.NopSink{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SimulatorService{
		scorer:  scorer,
		runs:    runs,
		sink:    sink,
		metrics: rec,
		log:     logger.WithComponent("Simulator"),
		seq:     core.NewSequencer(),
		config:  simulation.Defaults(),
	}
}

// Config returns a copy of the current config
func (s *SimulatorService) Config() simulation.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Set assigns one policy parameter
func (s *SimulatorService) Set(field string, value interface{}) error {
	return s.Update(func(c *simulation.Config) error {
		return c.Set(field, value)
	})
}

// Update applies edits to a copy of the config and commits them only if
// every edit succeeds.
func (s *SimulatorService) Update(edit func(c *simulation.Config) error) error {
	s.mu.Lock()
	next := s.config
	if err := edit(&next); err != nil {
		s.mu.Unlock()
		return errors.InvalidInput(err.Error())
	}
	s.config = next
	s.mu.Unlock()

	s.publish(ports.EventConfigChanged, nil)
	return nil
}

// Reset restores the default config and discards the current result and
// error. A run still in flight is superseded and will not be applied.
func (s *SimulatorService) Reset() {
	s.seq.Next()
	s.mu.Lock()
	s.config.Reset()
	s.result = nil
	s.resultConfig = simulation.Config{}
	s.lastRunID = ""
	s.loading = false
	s.err = nil
	s.mu.Unlock()

	s.publish(ports.EventConfigChanged, map[string]interface{}{"reset": true})
	s.publish(ports.EventResultChanged, nil)
}

// Run sends the current config to the scoring service. If another Run or a
// Reset happens before the response arrives, the response is dropped and
// errors.ErrSuperseded is returned.
func (s *SimulatorService) Run(ctx context.Context) (*simulation.Result, error) {
	ticket := s.seq.Next()
	s.mu.Lock()
	snapshot := s.config
	s.loading = true
	s.mu.Unlock()

	payload := snapshot.Payload()
	result, runErr := s.scorer.Simulate(ctx, payload)

	s.mu.Lock()
	if !s.seq.IsLatest(ticket) {
		s.mu.Unlock()
		s.metrics.ObserveStale("simulation")
		s.log.Debug("dropping superseded simulation response (ticket %d)", ticket)
		return nil, errors.ErrSuperseded
	}
	s.loading = false

	if runErr != nil {
		s.err = runErr
		s.mu.Unlock()
		s.metrics.ObserveSimulation("failed")
		s.log.Warn("simulation failed: %v", runErr)
		s.publish(ports.EventSimulationFailed, map[string]interface{}{"error": errors.UserMessage(runErr)})
		return nil, runErr
	}

	s.result = result
	s.resultConfig = snapshot
	s.err = nil
	s.lastRunID = ""
	s.mu.Unlock()

	s.metrics.ObserveSimulation(string(simulation.TierOf(result.Badge)))
	s.record(ctx, ticket, payload, *result)
	s.publish(ports.EventResultChanged, map[string]interface{}{"badge": result.Badge})
	return result, nil
}

// record stores a successful run when history is configured. Storage
// failures are logged and never surface as simulation failures.
func (s *SimulatorService) record(ctx context.Context, ticket core.Ticket, payload simulation.Payload, result simulation.Result) {
	if s.runs == nil {
		return
	}
	run, err := simulation.NewRun(payload, result)
	if err == nil {
		err = s.runs.Save(ctx, run)
	}
	if err != nil {
		s.log.Error("failed to store simulation run: %v", err)
		return
	}

	s.mu.Lock()
	if s.seq.IsLatest(ticket) {
		s.lastRunID = run.ID
	}
	s.mu.Unlock()
}

// View returns a snapshot of the simulator state with the result interpreted
// against the config that produced it.
func (s *SimulatorService) View() SimulatorView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := SimulatorView{
		Config:  s.config,
		Bounds:  simulation.Bounds,
		Loading: s.loading,
		RunID:   s.lastRunID,
	}
	if s.err != nil {
		view.Error = errors.UserMessage(s.err)
	}
	if s.result != nil {
		r := *s.result
		cfg := s.resultConfig
		view.Result = &r
		view.Interpretation = simulation.Interpret(&r, &cfg, cfg.StartYear)
	}
	return view
}

// History lists stored runs, newest first
func (s *SimulatorService) History(ctx context.Context, limit int) ([]*simulation.Run, error) {
	if s.runs == nil {
		return nil, errors.Unavailable("Run history is not configured.")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.runs.List(ctx, limit)
}

// GetRun loads one stored run
func (s *SimulatorService) GetRun(ctx context.Context, id core.RunID) (*simulation.Run, error) {
	if s.runs == nil {
		return nil, errors.Unavailable("Run history is not configured.")
	}
	return s.runs.Get(ctx, id)
}

func (s *SimulatorService) publish(eventType string, data map[string]interface{}) {
	s.sink.Publish(ports.ViewEvent{
		Topic:     ports.TopicSimulator,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
