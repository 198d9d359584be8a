package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"policysim/domain/core"
	"policysim/domain/simulation"
)

// Known lifecycle statuses reported by the catalog server
const (
	StatusInForce    = "In force"
	StatusSuperseded = "Superseded"
	StatusPlanned    = "Planned"
	StatusEnded      = "Ended"
)

// Policy is one catalog record as served by the policy API. The detail
// endpoint returns the same record merged with a simulation of it, so the
// scoring fields are only populated there.
type Policy struct {
	ID          core.PolicyID `json:"policy_id"`
	Name        string        `json:"policy_name"`
	Description string        `json:"policy_description"`
	Country     string        `json:"country"`
	CountryISO  string        `json:"country_iso"`
	Status      string        `json:"policy_status"`
	Type        string        `json:"policy_type"`
	Instrument  string        `json:"policy_instrument"`
	Sector      string        `json:"sector"`

	StartYear    Year `json:"start_date"`
	EndYear      Year `json:"end_date"`
	DecisionYear Year `json:"decision_date"`

	Years                 []int            `json:"years,omitempty"`
	TemperatureTrajectory []float64        `json:"temperatureTrajectory,omitempty"`
	CarbonScore           simulation.Score `json:"carbonScore"`
	JusticeScore          simulation.Score `json:"justiceScore"`
	EconomicPressure      simulation.Score `json:"economicPressure"`
	Badge                 string           `json:"badge,omitempty"`
	SuggestedPolicyName   string           `json:"suggestedPolicyName,omitempty"`
	AIComment             string           `json:"aiComment,omitempty"`
	Strength              string           `json:"strength,omitempty"`
	Weakness              string           `json:"weakness,omitempty"`
}

// Year is an optional calendar year. The server emits integers, floats,
// numeric strings or null depending on the source row.
type Year struct {
	Value int
	Valid bool
}

// NewYear returns a present year
func NewYear(y int) Year {
	return Year{Value: y, Valid: true}
}

// UnmarshalJSON accepts 2015, 2015.0, "2015" and null
func (y *Year) UnmarshalJSON(data []byte) error {
	*y = Year{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "nan") {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid year %q", s)
		}
		y.Value, y.Valid = int(f), true
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid year %s", string(data))
	}
	if math.IsNaN(f) {
		return nil
	}
	y.Value, y.Valid = int(f), true
	return nil
}

// MarshalJSON writes the integer year or null
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(y.Value)), nil
}

func (y Year) String() string {
	if !y.Valid {
		return ""
	}
	return strconv.Itoa(y.Value)
}
