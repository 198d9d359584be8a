package simulation

// Interpretation is everything the result panel shows, derived from one result
type Interpretation struct {
	Tier           Tier               `json:"tier"`
	Badge          string             `json:"badge"`
	Scores         Scores             `json:"scores"`
	Chart          []ChartPoint       `json:"chart"`
	Summary        *TrajectorySummary `json:"summary,omitempty"`
	Suggestion     Suggestion         `json:"suggestion"`
	Deltas         []Delta            `json:"deltas"`
	CommentaryHTML string             `json:"commentary_html,omitempty"`
	Strengths      []string           `json:"strengths,omitempty"`
	Weaknesses     []string           `json:"weaknesses,omitempty"`
}

// Scores holds the three display strings
type Scores struct {
	Carbon           string `json:"carbon"`
	Justice          string `json:"justice"`
	EconomicPressure string `json:"economic_pressure"`
}

// Suggestion is the recommended-policy card
type Suggestion struct {
	Name                 string `json:"name"`
	CarbonTaxRate        string `json:"carbon_tax_rate"`
	RenewableSubsidy     string `json:"renewable_subsidy"`
	AdaptationInvestment string `json:"adaptation_investment"`
}

// Interpret derives the presentation fields of a result. The chart is keyed
// from startYear, the year the request was issued with.
func Interpret(r *Result, c *Config, startYear int) *Interpretation {
	if r == nil {
		return nil
	}

	chart := ChartSeries(r, startYear)
	return &Interpretation{
		Tier:  TierOf(r.Badge),
		Badge: r.Badge,
		Scores: Scores{
			Carbon:           r.CarbonScore.String(),
			Justice:          r.JusticeScore.String(),
			EconomicPressure: r.EconomicPressure.String(),
		},
		Chart:   chart,
		Summary: Summarize(chart),
		Suggestion: Suggestion{
			Name:                 r.SuggestedPolicyName,
			CarbonTaxRate:        r.Suggested(FieldCarbonTaxRate),
			RenewableSubsidy:     r.Suggested(FieldRenewableSubsidy),
			AdaptationInvestment: r.Suggested(FieldAdaptationInvestment),
		},
		Deltas:         Deltas(c, r.SuggestedPolicy),
		CommentaryHTML: CommentaryHTML(r.AIComment),
		Strengths:      SplitBullets(r.Strength),
		Weaknesses:     SplitBullets(r.Weakness),
	}
}
