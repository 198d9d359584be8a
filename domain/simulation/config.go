package simulation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Policy parameter names as they appear on the wire
const (
	FieldCarbonTaxRate        = "carbonTaxRate"
	FieldRenewableSubsidy     = "renewableSubsidy"
	FieldFossilFuelPhaseout   = "fossilFuelPhaseout"
	FieldDeforestationBan     = "deforestationBan"
	FieldEducationCampaigns   = "educationCampaigns"
	FieldGreenJobsInitiative  = "greenJobsInitiative"
	FieldIndustryRegulations  = "industryRegulations"
	FieldJusticeLensStrength  = "justiceLensStrength"
	FieldAdaptationInvestment = "adaptationInvestment"
	FieldCarbonCaptureRAndD   = "carbonCaptureRAndD"
)

// Kind is the value type of a policy parameter
type Kind string

const (
	KindNumber   Kind = "number"
	KindSwitch   Kind = "switch"
	KindCategory Kind = "category"
)

// Bound describes one policy parameter: its type, default and legal range
type Bound struct {
	Field   string      `json:"field"`
	Kind    Kind        `json:"kind"`
	Max     float64     `json:"max,omitempty"`
	Options []string    `json:"options,omitempty"`
	Default interface{} `json:"default"`
}

// Bounds lists the ten policy parameters in display order
var Bounds = []Bound{
	{Field: FieldCarbonTaxRate, Kind: KindNumber, Max: 200, Default: 20.0},
	{Field: FieldRenewableSubsidy, Kind: KindNumber, Max: 100, Default: 50.0},
	{Field: FieldFossilFuelPhaseout, Kind: KindCategory, Options: []string{"fast", "medium", "slow"}, Default: "medium"},
	{Field: FieldDeforestationBan, Kind: KindSwitch, Default: true},
	{Field: FieldEducationCampaigns, Kind: KindNumber, Max: 100, Default: 50.0},
	{Field: FieldGreenJobsInitiative, Kind: KindNumber, Max: 10, Default: 5.0},
	{Field: FieldIndustryRegulations, Kind: KindCategory, Options: []string{"high", "medium", "low"}, Default: "medium"},
	{Field: FieldJusticeLensStrength, Kind: KindNumber, Max: 100, Default: 50.0},
	{Field: FieldAdaptationInvestment, Kind: KindNumber, Max: 10, Default: 5.0},
	{Field: FieldCarbonCaptureRAndD, Kind: KindNumber, Max: 10, Default: 5.0},
}

// BoundOf looks up a parameter by wire name
func BoundOf(field string) (Bound, bool) {
	for _, b := range Bounds {
		if b.Field == field {
			return b, true
		}
	}
	return Bound{}, false
}

// Clamp limits a numeric parameter to [0, max]. The config never clamps on
// its own; input layers call this before Set.
func Clamp(field string, v float64) float64 {
	b, ok := BoundOf(field)
	if !ok || b.Kind != KindNumber {
		return v
	}
	if v < 0 {
		return 0
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Location is where the simulation is run
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Policies holds the ten tunable policy parameters
type Policies struct {
	CarbonTaxRate        float64 `json:"carbonTaxRate"`
	RenewableSubsidy     float64 `json:"renewableSubsidy"`
	FossilFuelPhaseout   string  `json:"fossilFuelPhaseout"`
	DeforestationBan     bool    `json:"deforestationBan"`
	EducationCampaigns   float64 `json:"educationCampaigns"`
	GreenJobsInitiative  float64 `json:"greenJobsInitiative"`
	IndustryRegulations  string  `json:"industryRegulations"`
	JusticeLensStrength  float64 `json:"justiceLensStrength"`
	AdaptationInvestment float64 `json:"adaptationInvestment"`
	CarbonCaptureRAndD   float64 `json:"carbonCaptureRAndD"`
}

// Config is the full simulation input
type Config struct {
	Location  Location `json:"location"`
	StartYear int      `json:"startYear"`
	EndYear   int      `json:"endYear"`
	Policies  Policies `json:"policies"`

	// Optional labels echoed back by the scoring service
	PolicyName  string `json:"policyName,omitempty"`
	Description string `json:"description,omitempty"`
}

// Payload is the exact JSON body posted to the scoring endpoint
type Payload struct {
	Location    Location `json:"location"`
	StartYear   int      `json:"startYear"`
	EndYear     int      `json:"endYear"`
	Policies    Policies `json:"policies"`
	PolicyName  string   `json:"policyName,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		Location:  Location{Name: "Kenya", Lat: -1.2921, Lon: 36.8219},
		StartYear: 2020,
		EndYear:   2100,
		Policies: Policies{
			CarbonTaxRate:        20,
			RenewableSubsidy:     50,
			FossilFuelPhaseout:   "medium",
			DeforestationBan:     true,
			EducationCampaigns:   50,
			GreenJobsInitiative:  5,
			IndustryRegulations:  "medium",
			JusticeLensStrength:  50,
			AdaptationInvestment: 5,
			CarbonCaptureRAndD:   5,
		},
	}
}

// NewConfig returns a config holding the defaults
func NewConfig() *Config {
	c := Defaults()
	return &c
}

// Reset restores every parameter, the location and the year range in a
// single assignment.
func (c *Config) Reset() {
	*c = Defaults()
}

// Payload builds the request body
func (c *Config) Payload() Payload {
	return Payload{
		Location:    c.Location,
		StartYear:   c.StartYear,
		EndYear:     c.EndYear,
		Policies:    c.Policies,
		PolicyName:  c.PolicyName,
		Description: c.Description,
	}
}

// Set assigns one policy parameter. Values are type-checked only; numeric
// values are not clamped. Categorical values must be one of their options.
func (c *Config) Set(field string, value interface{}) error {
	b, ok := BoundOf(field)
	if !ok {
		return fmt.Errorf("unknown policy parameter %q", field)
	}

	switch b.Kind {
	case KindNumber:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s expects a number, got %T", field, value)
		}
		*c.number(field) = f
	case KindSwitch:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s expects a boolean, got %T", field, value)
		}
		c.Policies.DeforestationBan = v
	case KindCategory:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s expects a string, got %T", field, value)
		}
		if !contains(b.Options, s) {
			return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(b.Options, ", "), s)
		}
		*c.category(field) = s
	}
	return nil
}

// SetString parses raw text according to the parameter's kind and sets it
func (c *Config) SetString(field, raw string) error {
	b, ok := BoundOf(field)
	if !ok {
		return fmt.Errorf("unknown policy parameter %q", field)
	}
	raw = strings.TrimSpace(raw)

	switch b.Kind {
	case KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", field, raw)
		}
		return c.Set(field, f)
	case KindSwitch:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", field, raw)
		}
		return c.Set(field, v)
	default:
		return c.Set(field, raw)
	}
}

// Get returns the current value of a policy parameter
func (c *Config) Get(field string) (interface{}, bool) {
	b, ok := BoundOf(field)
	if !ok {
		return nil, false
	}
	switch b.Kind {
	case KindNumber:
		return *c.number(field), true
	case KindSwitch:
		return c.Policies.DeforestationBan, true
	default:
		return *c.category(field), true
	}
}

// Values returns the policy parameters keyed by wire name
func (c *Config) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(Bounds))
	for _, b := range Bounds {
		v, _ := c.Get(b.Field)
		out[b.Field] = v
	}
	return out
}

// Fields returns the wire names in sorted order
func Fields() []string {
	out := make([]string, 0, len(Bounds))
	for _, b := range Bounds {
		out = append(out, b.Field)
	}
	sort.Strings(out)
	return out
}

func (c *Config) number(field string) *float64 {
	switch field {
	case FieldCarbonTaxRate:
		return &c.Policies.CarbonTaxRate
	case FieldRenewableSubsidy:
		return &c.Policies.RenewableSubsidy
	case FieldEducationCampaigns:
		return &c.Policies.EducationCampaigns
	case FieldGreenJobsInitiative:
		return &c.Policies.GreenJobsInitiative
	case FieldJusticeLensStrength:
		return &c.Policies.JusticeLensStrength
	case FieldAdaptationInvestment:
		return &c.Policies.AdaptationInvestment
	case FieldCarbonCaptureRAndD:
		return &c.Policies.CarbonCaptureRAndD
	}
	panic("simulation: not a numeric parameter: " + field)
}

func (c *Config) category(field string) *string {
	switch field {
	case FieldFossilFuelPhaseout:
		return &c.Policies.FossilFuelPhaseout
	case FieldIndustryRegulations:
		return &c.Policies.IndustryRegulations
	}
	panic("simulation: not a categorical parameter: " + field)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
