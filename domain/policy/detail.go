package policy

import (
	"html"
	"strings"

	"policysim/domain/simulation"
)

// DefaultBaseYear anchors a trajectory when the record carries no year at all
const DefaultBaseYear = 2000

// DetailView is the presentation-ready form of a single policy record
type DetailView struct {
	Policy      Policy                  `json:"policy"`
	Status      StatusStyle             `json:"status"`
	Instruments []string                `json:"instruments"`
	Sectors     []string                `json:"sectors"`
	Types       []string                `json:"types"`
	Timeline    Timeline                `json:"timeline"`
	Decision    string                  `json:"decision"`
	Scores      ScoreCard               `json:"scores"`
	Trajectory  []simulation.ChartPoint `json:"trajectory"`
	Strengths   []string                `json:"strengths"`
	Weaknesses  []string                `json:"weaknesses"`
}

// Timeline is the displayed implementation window
type Timeline struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ScoreCard holds display strings for the three scores
type ScoreCard struct {
	Carbon         string `json:"carbon"`
	Justice        string `json:"justice"`
	EconomicImpact string `json:"economic_impact"`
}

// NewDetailView derives everything the detail page shows from one record
func NewDetailView(p Policy) DetailView {
	return DetailView{
		Policy:      p,
		Status:      StatusStyleOf(p.Status),
		Instruments: SplitTags(p.Instrument),
		Sectors:     SplitTags(p.Sector),
		Types:       SplitTags(p.Type),
		Timeline:    TimelineOf(p),
		Decision:    orNA(p.DecisionYear.String()),
		Scores: ScoreCard{
			Carbon:         p.CarbonScore.String(),
			Justice:        p.JusticeScore.String(),
			EconomicImpact: EconomicImpactLabel(p.EconomicPressure),
		},
		Trajectory: simulation.SeriesFrom(p.TemperatureTrajectory, BaseYear(p)),
		Strengths:  Strengths(p),
		Weaknesses: Weaknesses(p),
	}
}

// SplitTags splits a comma-joined tag list, trimming each entry and
// decoding HTML entities. Empty input yields no tags.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, html.UnescapeString(strings.TrimSpace(part)))
	}
	return out
}

// TimelineOf falls back from start to decision year, and shows an open end as ongoing
func TimelineOf(p Policy) Timeline {
	from := "N/A"
	switch {
	case p.StartYear.Valid:
		from = p.StartYear.String()
	case p.DecisionYear.Valid:
		from = p.DecisionYear.String()
	}
	to := "Ongoing"
	if p.EndYear.Valid {
		to = p.EndYear.String()
	}
	return Timeline{From: from, To: to}
}

// EconomicImpactLabel buckets economic pressure: above 70 is High, above 40 Moderate
func EconomicImpactLabel(pressure simulation.Score) string {
	v, ok := pressure.Float()
	if !ok {
		return "N/A"
	}
	switch {
	case v > 70:
		return "High"
	case v > 40:
		return "Moderate"
	default:
		return "Low"
	}
}

// BaseYear is the year the first trajectory entry belongs to
func BaseYear(p Policy) int {
	switch {
	case len(p.Years) > 0:
		return p.Years[0]
	case p.StartYear.Valid:
		return p.StartYear.Value
	case p.DecisionYear.Valid:
		return p.DecisionYear.Value
	default:
		return DefaultBaseYear
	}
}

// Strengths lists the analysed strengths, or generic ones built from the record
func Strengths(p Policy) []string {
	if items := simulation.SplitBullets(p.Strength); len(items) > 0 {
		return items
	}
	return []string{
		"Focuses on " + firstTag(p.Sector) + " sector emissions",
		"Utilizes " + firstTag(p.Instrument) + " as primary instrument",
		"Flexible implementation timeline",
	}
}

// Weaknesses lists the analysed weaknesses, or generic improvement areas
func Weaknesses(p Policy) []string {
	if items := simulation.SplitBullets(p.Weakness); len(items) > 0 {
		return items
	}
	return []string{
		"Consider integrating with complementary policies",
		"Enhance monitoring and enforcement mechanisms",
	}
}

func firstTag(tags string) string {
	return strings.TrimSpace(strings.Split(tags, ",")[0])
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
