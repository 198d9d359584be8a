package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"policysim/domain/simulation"
	"policysim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{PolicyURL: srv.URL + "/"})
}

func TestFetchPoliciesForwardsFacets(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/policies", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"policy_id":"A","country_iso":"KE","start_date":2015.0},{"policy_id":"B","end_date":"None"}]`)
	})

	policies, err := client.FetchPolicies(context.Background(), url.Values{"country_iso": {"KE"}})

	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "KE", gotQuery.Get("country_iso"))
	assert.Equal(t, 2015, policies[0].StartYear.Value)
	assert.False(t, policies[1].EndYear.Valid)
}

func TestFetchPoliciesFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchPolicies(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, "Failed to fetch policies: 503", errors.UserMessage(err))
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestFetchPolicy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/policy/P-1":
			_, _ = io.WriteString(w, `{"policy_id":"P-1","carbonScore":72,"temperatureTrajectory":[1.0,1.1],"years":[2015,2016]}`)
		case "/api/policy/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ctx := context.Background()

	p, err := client.FetchPolicy(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, "72", p.CarbonScore.String())
	assert.Equal(t, []int{2015, 2016}, p.Years)

	_, err = client.FetchPolicy(ctx, "missing")
	assert.Equal(t, "Policy not found", errors.UserMessage(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = client.FetchPolicy(ctx, "other")
	assert.Equal(t, "Failed to fetch policy: 500", errors.UserMessage(err))
}

func TestFetchPolicyMissingIDMakesNoRequest(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := client.FetchPolicy(context.Background(), "")

	assert.Equal(t, "Policy ID is missing.", errors.UserMessage(err))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Zero(t, calls)
}

func TestSimulatePostsWireShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/simulate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "location")
		assert.Contains(t, body, "startYear")
		assert.Contains(t, body, "endYear")
		assert.Len(t, body["policies"], 10)

		_, _ = io.WriteString(w, `{"badge":"Gold","carbonScore":"80","temperatureTrajectory":[1.1,1.2,1.3],
			"suggestedPolicy":{"carbonTaxRate":30,"renewableSubsidy":60,"adaptationInvestment":6}}`)
	})

	result, err := client.Simulate(context.Background(), simulation.NewConfig().Payload())

	require.NoError(t, err)
	assert.Equal(t, "Gold", result.Badge)
	assert.Equal(t, "80", result.CarbonScore.String())
	assert.Equal(t, []float64{1.1, 1.2, 1.3}, result.TemperatureTrajectory)
	assert.Equal(t, "60", result.Suggested(simulation.FieldRenewableSubsidy))
}

func TestSimulateErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", http.StatusBadRequest, `{"message":"End year must follow start year"}`, "End year must follow start year"},
		{"json error key", http.StatusInternalServerError, `{"error":"division by zero"}`, "division by zero"},
		{"not json", http.StatusInternalServerError, `<html>oops</html>`, "HTTP error! status: 500"},
		{"empty body", http.StatusBadGateway, ``, "HTTP error! status: 502"},
		{"json without message", http.StatusInternalServerError, `{"detail":1}`, "HTTP error! status: 500"},
		{"error reported with 200", http.StatusOK, `{"error":"Missing required field: location"}`, "Missing required field: location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Simulate(context.Background(), simulation.NewConfig().Payload())

			require.Error(t, err)
			assert.Equal(t, tt.want, errors.UserMessage(err))
		})
	}
}

func TestSimulateSeparateScoringURL(t *testing.T) {
	scoring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"badge":"Bronze"}`)
	}))
	defer scoring.Close()

	client := NewClient(ClientConfig{PolicyURL: "http://127.0.0.1:1", ScoringURL: scoring.URL})
	result, err := client.Simulate(context.Background(), simulation.NewConfig().Payload())

	require.NoError(t, err)
	assert.Equal(t, simulation.TierBronze, simulation.TierOf(result.Badge))
	assert.Empty(t, simulation.ChartSeries(result, 2020))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(ClientConfig{PolicyURL: srv.URL})

	_, err := client.FetchPolicies(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
	assert.Equal(t, "An error occurred while fetching policies.", errors.UserMessage(err))
}
