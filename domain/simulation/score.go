package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Score is a server-computed score. It may arrive as a number or a
// preformatted string, or be missing entirely.
type Score struct {
	raw    string
	value  float64
	num    bool
	quoted bool
}

// NewScore returns a numeric score
func NewScore(v float64) Score {
	return Score{raw: strconv.FormatFloat(v, 'f', -1, 64), value: v, num: true}
}

// UnmarshalJSON accepts numbers, strings and null
func (s *Score) UnmarshalJSON(data []byte) error {
	*s = Score{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s.raw = strings.TrimSpace(str)
		s.quoted = s.raw != ""
		if f, err := strconv.ParseFloat(s.raw, 64); err == nil {
			s.value, s.num = f, true
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid score %s", string(data))
	}
	*s = NewScore(f)
	return nil
}

// MarshalJSON re-emits the score as received: number, string or null.
// A string keeps the server's formatting even when it is numeric.
func (s Score) MarshalJSON() ([]byte, error) {
	switch {
	case s.quoted:
		return json.Marshal(s.raw)
	case s.num:
		return json.Marshal(s.value)
	case s.raw != "":
		return json.Marshal(s.raw)
	default:
		return []byte("null"), nil
	}
}

// Present reports whether the server sent anything for this score
func (s Score) Present() bool {
	return s.raw != ""
}

// Float returns the numeric value and whether one exists
func (s Score) Float() (float64, bool) {
	return s.value, s.num
}

// String formats the score for display, "N/A" when absent
func (s Score) String() string {
	if s.raw == "" {
		return "N/A"
	}
	return s.raw
}
