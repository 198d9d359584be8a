package simulation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartSeriesPairsYears(t *testing.T) {
	r := &Result{TemperatureTrajectory: []float64{1.1, 1.2, 1.3}}

	series := ChartSeries(r, 2020)

	assert.Equal(t, []ChartPoint{
		{Year: 2020, Temperature: 1.1},
		{Year: 2021, Temperature: 1.2},
		{Year: 2022, Temperature: 1.3},
	}, series)
}

func TestChartSeriesLengthMatchesTrajectory(t *testing.T) {
	for _, n := range []int{0, 1, 7, 81} {
		traj := make([]float64, n)
		for i := range traj {
			traj[i] = float64(i) / 10
		}
		series := ChartSeries(&Result{TemperatureTrajectory: traj}, 1990)
		require.Len(t, series, n)
		for i, p := range series {
			assert.Equal(t, 1990+i, p.Year)
			assert.Equal(t, traj[i], p.Temperature)
		}
	}
}

func TestChartSeriesMissingTrajectory(t *testing.T) {
	assert.Empty(t, ChartSeries(nil, 2020))
	assert.Empty(t, ChartSeries(&Result{}, 2020))
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		badge string
		want  Tier
	}{
		{"Gold", TierGold},
		{"Silver", TierSilver},
		{"Bronze", TierBronze},
		{"gold", TierUnknown},
		{"Platinum", TierUnknown},
		{"", TierUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierOf(tt.badge), "badge %q", tt.badge)
	}
}

func TestInterpretGoldResult(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{
		"badge": "Gold",
		"carbonScore": "80",
		"temperatureTrajectory": [1.1, 1.2, 1.3]
	}`), &r))

	in := Interpret(&r, NewConfig(), 2020)
	require.NotNil(t, in)

	assert.Equal(t, TierGold, in.Tier)
	assert.Equal(t, "80", in.Scores.Carbon)
	assert.Equal(t, "N/A", in.Scores.Justice)
	assert.Equal(t, []ChartPoint{
		{Year: 2020, Temperature: 1.1},
		{Year: 2021, Temperature: 1.2},
		{Year: 2022, Temperature: 1.3},
	}, in.Chart)
	assert.Equal(t, "N/A", in.Suggestion.CarbonTaxRate)
	assert.Empty(t, in.Deltas)
}

func TestDeltas(t *testing.T) {
	c := NewConfig()
	suggested := map[string]interface{}{
		"adaptationInvestment": 6.0,
		"carbonTaxRate":        50.0,
		"fossilFuelPhaseout":   "fast",
		"zeroWaste":            true,
	}

	deltas := Deltas(c, suggested)
	require.Len(t, deltas, 4)

	assert.Equal(t, FieldCarbonTaxRate, deltas[0].Field)
	assert.Equal(t, 20.0, deltas[0].Current)
	require.NotNil(t, deltas[0].Change)
	assert.InDelta(t, 30.0, *deltas[0].Change, 1e-9)

	assert.Equal(t, FieldFossilFuelPhaseout, deltas[1].Field)
	assert.Equal(t, "medium", deltas[1].Current)
	assert.Nil(t, deltas[1].Change)

	assert.Equal(t, FieldAdaptationInvestment, deltas[2].Field)
	require.NotNil(t, deltas[2].Change)
	assert.InDelta(t, 1.0, *deltas[2].Change, 1e-9)

	assert.Equal(t, "zeroWaste", deltas[3].Field)
	assert.Nil(t, deltas[3].Current)
}

func TestSummarize(t *testing.T) {
	series := SeriesFrom([]float64{1.0, 1.5, 2.0, 1.5}, 2020)

	s := Summarize(series)
	require.NotNil(t, s)

	assert.Equal(t, 4, s.Points)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 2.0, s.Max)
	assert.InDelta(t, 1.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.5, s.Median, 1e-9)
	assert.InDelta(t, 0.5, s.Change, 1e-9)
	assert.Equal(t, 2022, s.PeakYear)
	// least-squares slope is 0.2 per year
	assert.InDelta(t, 2.0, s.TrendPerDecade, 1e-6)

	assert.Nil(t, Summarize(nil))
	single := Summarize(SeriesFrom([]float64{1.2}, 2020))
	require.NotNil(t, single)
	assert.Zero(t, single.TrendPerDecade)
}

func TestCommentaryHTML(t *testing.T) {
	out := CommentaryHTML("Strong **carbon** gains.\n\n<script>alert(1)</script>")
	assert.Contains(t, out, "<strong>carbon</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Empty(t, CommentaryHTML("   "))
}

func TestScoreDecoding(t *testing.T) {
	var v struct {
		A Score `json:"a"`
		B Score `json:"b"`
		C Score `json:"c"`
		D Score `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 72, "b": "80", "c": null}`), &v))

	assert.Equal(t, "72", v.A.String())
	f, ok := v.B.Float()
	assert.True(t, ok)
	assert.Equal(t, 80.0, f)
	assert.Equal(t, "N/A", v.C.String())
	assert.False(t, v.D.Present())
}

func TestScoreKeepsServerFormatting(t *testing.T) {
	var in struct {
		Carbon  Score `json:"carbonScore"`
		Justice Score `json:"justiceScore"`
		Econ    Score `json:"economicPressure"`
		Missing Score `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"carbonScore":"80","justiceScore":"72.50","economicPressure":41.5}`), &in))

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"carbonScore":"80","justiceScore":"72.50","economicPressure":41.5,"missing":null}`, string(out))

	var again struct {
		Justice Score `json:"justiceScore"`
	}
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, "72.50", again.Justice.String())
	f, ok := again.Justice.Float()
	assert.True(t, ok)
	assert.Equal(t, 72.5, f)
}
