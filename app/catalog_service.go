package app

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"policysim/domain/catalog"
	"policysim/domain/core"
	"policysim/domain/policy"
	"policysim/internal"
	"policysim/internal/errors"
	"policysim/internal/metrics"
	"policysim/ports"
)

// CatalogService owns the fetched policy collection and everything derived
// from it: the facet index, the current selection, the filtered view and
// the pagination window. All derived state is recomputed, never patched,
// when its inputs change.
type CatalogService struct {
	source  ports.PolicySource
	sink    ports.EventSink
	metrics *metrics.Recorder
	log     *internal.Logger
	seq     *core.Sequencer

	mu         sync.RWMutex
	collection []policy.Policy
	index      *catalog.FacetIndex
	selection  catalog.Selection
	filtered   []policy.Policy
	pager      *catalog.Pager
	loading    bool
	err        error
	fetchedAt  time.Time
}

// CatalogView is a consistent snapshot of the catalog page
type CatalogView struct {
	Items          []policy.Policy          `json:"items"`
	Shown          int                      `json:"shown"`
	Total          int                      `json:"total"`
	CollectionSize int                      `json:"collection_size"`
	HasMore        bool                     `json:"has_more"`
	Summary        string                   `json:"summary"`
	Selection      map[catalog.Facet]string `json:"selection"`
	ActiveCount    int                      `json:"active_count"`
	ActiveFilters  []catalog.ActiveFilter   `json:"active_filters"`
	Options        catalog.Options          `json:"options"`
	Loading        bool                     `json:"loading"`
	Error          string                   `json:"error,omitempty"`
	FetchedAt      *time.Time               `json:"fetched_at,omitempty"`
}

// NewCatalogService creates an empty catalog; call Refresh to load it
func NewCatalogService(source ports.PolicySource, pageSize int, sink ports.EventSink, rec *metrics.Recorder, logger *internal.Logger) *CatalogService {
	if sink == nil {
		sink = ports.NopSink{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CatalogService{
		source:    source,
		sink:      sink,
		metrics:   rec,
		log:       logger.WithComponent("Catalog"),
		seq:       core.NewSequencer(),
		index:     catalog.BuildFacetIndex(nil),
		selection: catalog.Selection{},
		filtered:  []policy.Policy{},
		pager:     catalog.NewPager(pageSize),
	}
}

// Refresh fetches the full collection. Only the most recently issued
// refresh may land: an older one that completes later returns
// errors.ErrSuperseded and changes nothing. A failed refresh keeps the
// previous collection and records the error for display.
func (s *CatalogService) Refresh(ctx context.Context) error {
	return s.refresh(ctx, nil)
}

// RefreshNarrowed asks the server for only the policies matching sel and
// makes sel the current selection. Facet options then cover the narrowed
// collection only.
func (s *CatalogService) RefreshNarrowed(ctx context.Context, sel catalog.Selection) error {
	s.mu.Lock()
	s.selection = sel.Clone()
	s.recomputeLocked()
	s.mu.Unlock()
	return s.refresh(ctx, sel.QueryParams())
}

func (s *CatalogService) refresh(ctx context.Context, query url.Values) error {
	ticket := s.seq.Next()
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	fetched, fetchErr := s.source.FetchPolicies(ctx, query)

	s.mu.Lock()
	if !s.seq.IsLatest(ticket) {
		s.mu.Unlock()
		s.metrics.ObserveStale("catalog")
		s.log.Debug("dropping superseded catalog response (ticket %d, latest %d)", ticket, s.seq.Current())
		return errors.ErrSuperseded
	}
	s.loading = false

	if fetchErr != nil {
		s.err = fetchErr
		s.mu.Unlock()
		s.log.Warn("catalog fetch failed: %v", fetchErr)
		s.publish(ports.EventCatalogFailed, map[string]interface{}{"error": errors.UserMessage(fetchErr)})
		return fetchErr
	}

	s.collection = dedupe(fetched, s.log)
	s.index = catalog.BuildFacetIndex(s.collection)
	s.err = nil
	s.fetchedAt = time.Now().UTC()
	s.recomputeLocked()
	total, filtered := len(s.collection), len(s.filtered)
	s.mu.Unlock()

	s.log.Info("loaded %d policies", total)
	s.publish(ports.EventCollectionChanged, map[string]interface{}{"collection_size": total, "total": filtered})
	return nil
}

// SetFilter constrains one facet; "all" or "" lifts the constraint. It
// reports whether the selection changed, in which case pagination restarts.
func (s *CatalogService) SetFilter(facet catalog.Facet, value string) bool {
	s.mu.Lock()
	changed := s.selection.Set(facet, value)
	if changed {
		s.recomputeLocked()
	}
	total := len(s.filtered)
	s.mu.Unlock()

	if changed {
		s.publish(ports.EventSelectionChanged, map[string]interface{}{"facet": string(facet), "value": value, "total": total})
	}
	return changed
}

// ApplySelection replaces the whole selection at once
func (s *CatalogService) ApplySelection(sel catalog.Selection) bool {
	s.mu.Lock()
	next := catalog.Selection{}
	for _, f := range catalog.Facets {
		next.Set(f, sel.Value(f))
	}
	changed := false
	for _, f := range catalog.Facets {
		if next.Value(f) != s.selection.Value(f) {
			changed = true
		}
	}
	if changed {
		s.selection = next
		s.recomputeLocked()
	}
	total := len(s.filtered)
	s.mu.Unlock()

	if changed {
		s.publish(ports.EventSelectionChanged, map[string]interface{}{"total": total})
	}
	return changed
}

// ClearFilters removes every constraint
func (s *CatalogService) ClearFilters() bool {
	return s.ApplySelection(catalog.Selection{})
}

// LoadMore reveals the next page. ok is false when the window already
// covers the whole filtered collection.
func (s *CatalogService) LoadMore() (appended []policy.Policy, hasMore bool, ok bool) {
	s.mu.Lock()
	appended, ok = s.pager.LoadMore(s.filtered)
	hasMore = s.pager.HasMore(len(s.filtered))
	shown := s.pager.Loaded()
	s.mu.Unlock()

	if ok {
		s.publish(ports.EventPageLoaded, map[string]interface{}{"appended": len(appended), "shown": shown, "has_more": hasMore})
	}
	return appended, hasMore, ok
}

// View returns a snapshot of the visible catalog state
func (s *CatalogService) View() CatalogView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.pager.Window(s.filtered)
	items := make([]policy.Policy, len(window))
	copy(items, window)

	view := CatalogView{
		Items:          items,
		Shown:          len(items),
		Total:          len(s.filtered),
		CollectionSize: len(s.collection),
		HasMore:        s.pager.HasMore(len(s.filtered)),
		Summary:        fmt.Sprintf("Showing %d of %d policies", len(items), len(s.filtered)),
		Selection:      s.selection.Normalize(),
		ActiveCount:    s.selection.ActiveCount(),
		ActiveFilters:  catalog.ActiveFilters(s.selection, s.index),
		Options:        s.index.Options(),
		Loading:        s.loading,
	}
	if s.err != nil {
		view.Error = errors.UserMessage(s.err)
	}
	if !s.fetchedAt.IsZero() {
		at := s.fetchedAt
		view.FetchedAt = &at
	}
	return view
}

// Filtered returns a copy of the whole filtered collection, regardless of paging
func (s *CatalogService) Filtered() []policy.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]policy.Policy, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Selection returns a copy of the current selection
func (s *CatalogService) Selection() catalog.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Clone()
}

// recomputeLocked rebuilds the filtered view and restarts pagination
func (s *CatalogService) recomputeLocked() {
	s.filtered = catalog.Apply(s.collection, s.selection)
	s.pager.Reset(len(s.filtered))
	s.metrics.SetCatalogSizes(len(s.collection), len(s.filtered))
}

func (s *CatalogService) publish(eventType string, data map[string]interface{}) {
	s.sink.Publish(ports.ViewEvent{
		Topic:     ports.TopicCatalog,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// dedupe keeps the first record for each policy ID
func dedupe(in []policy.Policy, logger *internal.Logger) []policy.Policy {
	seen := make(map[core.PolicyID]struct{}, len(in))
	out := make([]policy.Policy, 0, len(in))
	for _, p := range in {
		if _, dup := seen[p.ID]; dup {
			logger.Warn("duplicate policy_id %q dropped", p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
