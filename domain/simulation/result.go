package simulation

import (
	"sort"
	"strconv"
	"strings"
)

// Result is the scoring service's answer to one simulation request
type Result struct {
	PolicyName            string                 `json:"policyName"`
	Description           string                 `json:"description"`
	Years                 []int                  `json:"years,omitempty"`
	TemperatureTrajectory []float64              `json:"temperatureTrajectory"`
	CarbonScore           Score                  `json:"carbonScore"`
	JusticeScore          Score                  `json:"justiceScore"`
	EconomicPressure      Score                  `json:"economicPressure"`
	Badge                 string                 `json:"badge"`
	SuggestedPolicy       map[string]interface{} `json:"suggestedPolicy"`
	SuggestedPolicyName   string                 `json:"suggestedPolicyName"`
	AIComment             string                 `json:"aiComment"`
	Strength              string                 `json:"strength,omitempty"`
	Weakness              string                 `json:"weakness,omitempty"`
}

// Suggested formats one suggested parameter for display, "N/A" when absent
func (r *Result) Suggested(field string) string {
	if r == nil || r.SuggestedPolicy == nil {
		return "N/A"
	}
	v, ok := r.SuggestedPolicy[field]
	if !ok || v == nil {
		return "N/A"
	}
	return formatValue(v)
}

// Tier is the qualitative rating of a simulation outcome
type Tier string

const (
	TierGold    Tier = "Gold"
	TierSilver  Tier = "Silver"
	TierBronze  Tier = "Bronze"
	TierUnknown Tier = "Unknown"
)

// TierOf takes the server's badge verbatim when it is a known tier
func TierOf(badge string) Tier {
	switch t := Tier(badge); t {
	case TierGold, TierSilver, TierBronze:
		return t
	default:
		return TierUnknown
	}
}

// ChartPoint is one year of a temperature trajectory
type ChartPoint struct {
	Year        int     `json:"year"`
	Temperature float64 `json:"temperature"`
}

// ChartSeries pairs each trajectory entry with startYear+index. A nil result
// or missing trajectory gives an empty series.
func ChartSeries(r *Result, startYear int) []ChartPoint {
	if r == nil {
		return []ChartPoint{}
	}
	return SeriesFrom(r.TemperatureTrajectory, startYear)
}

// SeriesFrom pairs values with consecutive years starting at startYear
func SeriesFrom(trajectory []float64, startYear int) []ChartPoint {
	points := make([]ChartPoint, len(trajectory))
	for i, t := range trajectory {
		points[i] = ChartPoint{Year: startYear + i, Temperature: t}
	}
	return points
}

// Delta compares a current parameter against the suggested one
type Delta struct {
	Field     string      `json:"field"`
	Current   interface{} `json:"current"`
	Suggested interface{} `json:"suggested"`
	Change    *float64    `json:"change,omitempty"`
}

// Deltas lists every suggested parameter next to its current value. Known
// parameters come first in display order, unknown keys follow sorted.
// Change is set only when both sides are numeric.
func Deltas(c *Config, suggested map[string]interface{}) []Delta {
	if len(suggested) == 0 {
		return []Delta{}
	}

	var extra []string
	for field := range suggested {
		if _, ok := BoundOf(field); !ok {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)

	order := make([]string, 0, len(suggested))
	for _, b := range Bounds {
		if _, ok := suggested[b.Field]; ok {
			order = append(order, b.Field)
		}
	}
	order = append(order, extra...)

	deltas := make([]Delta, 0, len(order))
	for _, field := range order {
		d := Delta{Field: field, Suggested: suggested[field]}
		if c != nil {
			if cur, ok := c.Get(field); ok {
				d.Current = cur
				a, aok := toFloat(cur)
				b, bok := toFloat(suggested[field])
				if aok && bok {
					change := b - a
					d.Change = &change
				}
			}
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// SplitBullets splits "*"-separated analysis text into trimmed, non-empty items
func SplitBullets(text string) []string {
	var out []string
	for _, item := range strings.Split(text, "*") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "N/A"
}
