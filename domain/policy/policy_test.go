package policy

import (
	"encoding/json"
	"testing"

	"policysim/domain/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusStyleOf(t *testing.T) {
	tests := []struct {
		status string
		color  string
		label  string
		known  bool
	}{
		{"In force", ColorGreen, "In force", true},
		{"Superseded", ColorOrange, "Superseded", true},
		{"Planned", ColorBlue, "Planned", true},
		{"Ended", ColorRed, "Ended", true},
		{"in force", ColorNeutral, "in force", false},
		{"Draft", ColorNeutral, "Draft", false},
		{"", ColorNeutral, "Unknown", false},
	}

	for _, tt := range tests {
		style := StatusStyleOf(tt.status)
		assert.Equal(t, tt.color, style.Color, "status %q", tt.status)
		assert.Equal(t, tt.label, style.Label, "status %q", tt.status)
		assert.Equal(t, tt.known, style.Known, "status %q", tt.status)
	}
}

func TestDecodeTolerantFields(t *testing.T) {
	raw := `{
		"policy_id": "P-1",
		"policy_name": "Feed-in tariff",
		"country": "Kenya",
		"country_iso": "KE",
		"policy_status": "In force",
		"sector": "Electricity and heat",
		"start_date": 2012.0,
		"end_date": null,
		"decision_date": "2011",
		"economicPressure": 55
	}`

	var p Policy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "P-1", p.ID.String())
	assert.Equal(t, NewYear(2012), p.StartYear)
	assert.False(t, p.EndYear.Valid)
	assert.Equal(t, NewYear(2011), p.DecisionYear)
	assert.Equal(t, "N/A", p.CarbonScore.String())
	assert.Equal(t, "55", p.EconomicPressure.String())
}

func TestYearRejectsGarbage(t *testing.T) {
	var y Year
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &y))
	assert.NoError(t, json.Unmarshal([]byte(`""`), &y))
	assert.False(t, y.Valid)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"Energy", "R&D", `"Clean" air`, "Trade's"},
		SplitTags("Energy, R&amp;D ,&quot;Clean&quot; air,Trade&#39;s"))
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags("   "))
}

func TestTimelineOf(t *testing.T) {
	tests := []struct {
		name string
		p    Policy
		want Timeline
	}{
		{"start and end", Policy{StartYear: NewYear(2015), EndYear: NewYear(2030)}, Timeline{"2015", "2030"}},
		{"decision fallback", Policy{DecisionYear: NewYear(2014)}, Timeline{"2014", "Ongoing"}},
		{"nothing known", Policy{}, Timeline{"N/A", "Ongoing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimelineOf(tt.p))
		})
	}
}

func TestEconomicImpactLabel(t *testing.T) {
	assert.Equal(t, "High", EconomicImpactLabel(simulation.NewScore(71)))
	assert.Equal(t, "Moderate", EconomicImpactLabel(simulation.NewScore(70)))
	assert.Equal(t, "Moderate", EconomicImpactLabel(simulation.NewScore(41)))
	assert.Equal(t, "Low", EconomicImpactLabel(simulation.NewScore(40)))
	assert.Equal(t, "N/A", EconomicImpactLabel(simulation.Score{}))
}

func TestBaseYear(t *testing.T) {
	assert.Equal(t, 2021, BaseYear(Policy{Years: []int{2021, 2022}, StartYear: NewYear(2010)}))
	assert.Equal(t, 2010, BaseYear(Policy{StartYear: NewYear(2010), DecisionYear: NewYear(2009)}))
	assert.Equal(t, 2009, BaseYear(Policy{DecisionYear: NewYear(2009)}))
	assert.Equal(t, DefaultBaseYear, BaseYear(Policy{}))
}

func TestStrengthsAndWeaknesses(t *testing.T) {
	analysed := Policy{Strength: "* Broad coverage * Clear targets *", Weakness: "Weak enforcement"}
	assert.Equal(t, []string{"Broad coverage", "Clear targets"}, Strengths(analysed))
	assert.Equal(t, []string{"Weak enforcement"}, Weaknesses(analysed))

	bare := Policy{Sector: "Transport,Buildings", Instrument: "Fiscal incentives, Regulation"}
	assert.Equal(t, []string{
		"Focuses on Transport sector emissions",
		"Utilizes Fiscal incentives as primary instrument",
		"Flexible implementation timeline",
	}, Strengths(bare))
	assert.Len(t, Weaknesses(bare), 2)
}

func TestNewDetailView(t *testing.T) {
	p := Policy{
		ID:                    "P-9",
		Status:                "Planned",
		Instrument:            "Tax",
		StartYear:             NewYear(2018),
		TemperatureTrajectory: []float64{1.0, 1.1},
		CarbonScore:           simulation.NewScore(64),
	}

	view := NewDetailView(p)

	assert.Equal(t, ColorBlue, view.Status.Color)
	assert.Equal(t, []string{"Tax"}, view.Instruments)
	assert.Equal(t, "64", view.Scores.Carbon)
	assert.Equal(t, "N/A", view.Scores.Justice)
	assert.Equal(t, "N/A", view.Decision)
	assert.Equal(t, []simulation.ChartPoint{{Year: 2018, Temperature: 1.0}, {Year: 2019, Temperature: 1.1}}, view.Trajectory)
}
