package ports

import "time"

// Event topics
const (
	TopicCatalog   = "catalog"
	TopicSimulator = "simulator"
)

// View event types
const (
	EventCollectionChanged = "catalog.collection_changed"
	EventSelectionChanged  = "catalog.selection_changed"
	EventPageLoaded        = "catalog.page_loaded"
	EventCatalogFailed     = "catalog.failed"
	EventConfigChanged     = "simulator.config_changed"
	EventResultChanged     = "simulator.result_changed"
	EventSimulationFailed  = "simulator.failed"
)

// ViewEvent tells observers that some derived view must be recomputed
type ViewEvent struct {
	Topic     string                 `json:"topic"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventSink receives view events. Publish must not block.
type EventSink interface {
	Publish(event ViewEvent)
}

// NopSink discards every event
type NopSink struct{}

func (NopSink) Publish(ViewEvent) {}
