package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"policysim/internal"
	"policysim/internal/metrics"
	"policysim/ports"

	"github.com/gin-gonic/gin"
)

// Topics a client may subscribe to
var Topics = []string{ports.TopicCatalog, ports.TopicSimulator}

// SSEHub fans view events out to Server-Sent Event clients by topic.
// It implements ports.EventSink.
type SSEHub struct {
	clients   map[string]map[chan ports.ViewEvent]bool
	clientsMu sync.RWMutex
	broadcast chan ports.ViewEvent
	done      chan struct{}
	closeOnce sync.Once

	metrics      *metrics.Recorder
	log          *internal.Logger
	pingInterval time.Duration
}

// NewSSEHub creates a hub and starts its broadcast loop
func NewSSEHub(rec *metrics.Recorder, logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:      make(map[string]map[chan ports.ViewEvent]bool),
		broadcast:    make(chan ports.ViewEvent, 100),
		done:         make(chan struct{}),
		metrics:      rec,
		log:          logger.WithComponent("SSE"),
		pingInterval: 30 * time.Second,
	}

	go hub.run()
	return hub
}

// run delivers broadcast events until Close
func (h *SSEHub) run() {
	for {
		select {
		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.Topic] {
				select {
				case clientChan <- event:
				default:
					h.log.Warn("client channel full for topic %s, skipping %s", event.Topic, event.Type)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Publish queues an event for every client of its topic. It never blocks;
// when the queue is full the event is dropped.
func (h *SSEHub) Publish(event ports.ViewEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("broadcast channel full, dropping event: %s", event.Type)
	}
}

// Subscribe registers a client for one topic. The returned cancel function
// unregisters it and closes the channel.
func (h *SSEHub) Subscribe(topic string) (<-chan ports.ViewEvent, func()) {
	ch := make(chan ports.ViewEvent, 10)

	h.clientsMu.Lock()
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[chan ports.ViewEvent]bool)
	}
	h.clients[topic][ch] = true
	count := len(h.clients[topic])
	h.clientsMu.Unlock()

	h.metrics.AddSSEClients(1)
	h.log.Debug("client registered for topic %s (total clients: %d)", topic, count)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.clientsMu.Lock()
			if clients, ok := h.clients[topic]; ok {
				delete(clients, ch)
				if len(clients) == 0 {
					delete(h.clients, topic)
				}
			}
			close(ch)
			h.clientsMu.Unlock()
			h.metrics.AddSSEClients(-1)
			h.log.Debug("client unregistered from topic %s", topic)
		})
	}
	return ch, cancel
}

// HandleSSE streams one topic's events. The event name is the view event type.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic parameter required"})
		return
	}
	if !validTopic(topic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown topic: " + topic})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	events, cancel := h.Subscribe(topic)
	defer cancel()

	// Tell the client it is subscribed before the first real event
	c.SSEvent("ready", `{"topic":"`+topic+`"}`)
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				h.log.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.Type, string(eventJSON))
			return true

		case <-ticker.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}

// ClientCount returns the number of clients subscribed to a topic
func (h *SSEHub) ClientCount(topic string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[topic])
}

// Close stops the broadcast loop and ends every open stream
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func validTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}
