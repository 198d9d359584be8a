package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes Prometheus metrics for the upstream clients and the
// view services. A nil *Recorder records nothing.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	staleResponses   *prometheus.CounterVec
	simulationRuns   *prometheus.CounterVec
	catalogSize      prometheus.Gauge
	filteredSize     prometheus.Gauge
	sseClients       prometheus.Gauge
}

// NewRecorder registers metrics with the provided registry
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policysim_upstream_requests_total",
			Help: "Requests made to the policy and scoring services by endpoint and status code",
		}, []string{"endpoint", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "policysim_upstream_request_duration_seconds",
			Help:    "Latency of upstream requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policysim_stale_responses_total",
			Help: "Responses discarded because a newer request of the same kind was issued",
		}, []string{"kind"}),
		simulationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policysim_simulation_runs_total",
			Help: "Applied simulation outcomes grouped by tier or failure",
		}, []string{"outcome"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "policysim_catalog_policies",
			Help: "Policies in the current full collection",
		}),
		filteredSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "policysim_catalog_filtered_policies",
			Help: "Policies matching the current selection",
		}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "policysim_sse_clients",
			Help: "Connected event stream clients",
		}),
	}

	reg.MustRegister(
		r.upstreamRequests,
		r.upstreamDuration,
		r.staleResponses,
		r.simulationRuns,
		r.catalogSize,
		r.filteredSize,
		r.sseClients,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveUpstream records one upstream call. code 0 means no response.
func (r *Recorder) ObserveUpstream(endpoint string, code int, d time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	r.upstreamRequests.WithLabelValues(endpoint, label).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveStale counts a superseded response
func (r *Recorder) ObserveStale(kind string) {
	if r == nil {
		return
	}
	r.staleResponses.WithLabelValues(kind).Inc()
}

// ObserveSimulation counts an applied simulation outcome
func (r *Recorder) ObserveSimulation(outcome string) {
	if r == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	r.simulationRuns.WithLabelValues(outcome).Inc()
}

// SetCatalogSizes publishes the full and filtered collection sizes
func (r *Recorder) SetCatalogSizes(total, filtered int) {
	if r == nil {
		return
	}
	r.catalogSize.Set(float64(total))
	r.filteredSize.Set(float64(filtered))
}

// AddSSEClients adjusts the connected stream client gauge
func (r *Recorder) AddSSEClients(delta int) {
	if r == nil {
		return
	}
	r.sseClients.Add(float64(delta))
}
