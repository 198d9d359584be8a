package api

import (
	"policysim/internal"
	"policysim/ports"
)

// FanoutSink publishes every view event to several sinks in order
type FanoutSink []ports.EventSink

// Publish forwards the event to each non-nil sink
func (f FanoutSink) Publish(event ports.ViewEvent) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(event)
		}
	}
}

// LogSink writes view events to the trace log
type LogSink struct {
	log *internal.Logger
}

// NewLogSink creates a sink that logs under the [Events] component
func NewLogSink(logger *internal.Logger) *LogSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LogSink{log: logger.WithComponent("Events")}
}

// Publish logs the event
func (s *LogSink) Publish(event ports.ViewEvent) {
	s.log.Trace("%s %s %v", event.Topic, event.Type, event.Data)
}
