package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns every sample of one metric family keyed by its label values
func gather(t *testing.T, reg *prometheus.Registry, name string) map[string]*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]*dto.Metric{}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, lp := range m.GetLabel() {
				key += lp.GetName() + "=" + lp.GetValue() + ","
			}
			out[key] = m
		}
	}
	return out
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveUpstream("policies", 200, time.Millisecond)
		r.ObserveStale("catalog")
		r.ObserveSimulation("Gold")
		r.SetCatalogSizes(10, 5)
		r.AddSSEClients(1)
	})
}

func TestObserveUpstreamLabelsCodes(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveUpstream("policies", 200, 10*time.Millisecond)
	r.ObserveUpstream("policies", 200, 20*time.Millisecond)
	r.ObserveUpstream("simulate", 0, time.Second)

	samples := gather(t, reg, "policysim_upstream_requests_total")
	require.Contains(t, samples, "code=200,endpoint=policies,")
	assert.Equal(t, 2.0, samples["code=200,endpoint=policies,"].GetCounter().GetValue())
	require.Contains(t, samples, "code=error,endpoint=simulate,")
	assert.Equal(t, 1.0, samples["code=error,endpoint=simulate,"].GetCounter().GetValue())
}

func TestGaugesAndOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.SetCatalogSizes(20, 8)
	r.AddSSEClients(2)
	r.AddSSEClients(-1)
	r.ObserveSimulation("")
	r.ObserveStale("simulation")

	assert.Equal(t, 20.0, gather(t, reg, "policysim_catalog_policies")[""].GetGauge().GetValue())
	assert.Equal(t, 8.0, gather(t, reg, "policysim_catalog_filtered_policies")[""].GetGauge().GetValue())
	assert.Equal(t, 1.0, gather(t, reg, "policysim_sse_clients")[""].GetGauge().GetValue())
	assert.Contains(t, gather(t, reg, "policysim_simulation_runs_total"), "outcome=unknown,")
	assert.Contains(t, gather(t, reg, "policysim_stale_responses_total"), "kind=simulation,")
}
