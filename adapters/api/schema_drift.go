package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
)

// DriftSeverity ranks a change in the shape of the policy collection
type DriftSeverity int

const (
	DriftSeverityNone DriftSeverity = iota
	DriftSeverityLow
	DriftSeverityHigh
)

func (s DriftSeverity) String() string {
	switch s {
	case DriftSeverityLow:
		return "low"
	case DriftSeverityHigh:
		return "high"
	}
	return "none"
}

// ChangeType is the kind of field change
type ChangeType string

const (
	ChangeFieldAdded   ChangeType = "field_added"
	ChangeFieldRemoved ChangeType = "field_removed"
	ChangeTypeChanged  ChangeType = "type_changed"
)

// FieldChange describes one field that differs from the baseline
type FieldChange struct {
	Field    string
	Type     ChangeType
	OldType  string
	NewType  string
	Severity DriftSeverity
}

func (c FieldChange) String() string {
	switch c.Type {
	case ChangeTypeChanged:
		return fmt.Sprintf("%s changed from %s to %s", c.Field, c.OldType, c.NewType)
	case ChangeFieldRemoved:
		return fmt.Sprintf("%s no longer present", c.Field)
	}
	return fmt.Sprintf("%s added (%s)", c.Field, c.NewType)
}

// SchemaFingerprint maps each top-level field of a policy record to the
// JSON type seen for it. A field seen with several types is "mixed".
type SchemaFingerprint map[string]string

// SchemaDriftReport lists the differences between two fingerprints
type SchemaDriftReport struct {
	Severity DriftSeverity
	Changes  []FieldChange
}

// criticalFields are the policy fields the catalog filters and displays on.
// Losing one of them is high severity.
var criticalFields = map[string]bool{
	"policy_id":         true,
	"policy_name":       true,
	"country":           true,
	"country_iso":       true,
	"policy_status":     true,
	"sector":            true,
	"policy_instrument": true,
}

// SchemaDriftDetector remembers the shape of the last policy collection and
// reports how the next one differs
type SchemaDriftDetector struct {
	mu       sync.Mutex
	baseline SchemaFingerprint
}

func NewSchemaDriftDetector() *SchemaDriftDetector {
	return &SchemaDriftDetector{}
}

// ComputeSchemaFingerprint scans a JSON array of policy objects
func ComputeSchemaFingerprint(body []byte) SchemaFingerprint {
	fp := SchemaFingerprint{}
	gjson.ParseBytes(body).ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			return true
		}
		record.ForEach(func(key, value gjson.Result) bool {
			kind := jsonType(value)
			if kind == "null" {
				if _, seen := fp[key.String()]; !seen {
					fp[key.String()] = kind
				}
				return true
			}
			switch prev, seen := fp[key.String()]; {
			case !seen, prev == "null":
				fp[key.String()] = kind
			case prev != kind:
				fp[key.String()] = "mixed"
			}
			return true
		})
		return true
	})
	return fp
}

// Observe fingerprints body, compares it with the previous collection and
// makes it the new baseline. The first observation reports no drift. An
// empty collection is ignored.
func (d *SchemaDriftDetector) Observe(body []byte) *SchemaDriftReport {
	current := ComputeSchemaFingerprint(body)
	if len(current) == 0 {
		return &SchemaDriftReport{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	baseline := d.baseline
	d.baseline = current
	if baseline == nil {
		return &SchemaDriftReport{}
	}
	return Compare(baseline, current)
}

// Compare reports field changes from baseline to current, sorted by field
func Compare(baseline, current SchemaFingerprint) *SchemaDriftReport {
	report := &SchemaDriftReport{}

	for field, oldType := range baseline {
		newType, ok := current[field]
		switch {
		case !ok:
			sev := DriftSeverityLow
			if criticalFields[field] {
				sev = DriftSeverityHigh
			}
			report.add(FieldChange{Field: field, Type: ChangeFieldRemoved, OldType: oldType, Severity: sev})
		case oldType != newType && oldType != "null" && newType != "null":
			sev := DriftSeverityLow
			if criticalFields[field] {
				sev = DriftSeverityHigh
			}
			report.add(FieldChange{Field: field, Type: ChangeTypeChanged, OldType: oldType, NewType: newType, Severity: sev})
		}
	}
	for field, newType := range current {
		if _, ok := baseline[field]; !ok {
			report.add(FieldChange{Field: field, Type: ChangeFieldAdded, NewType: newType, Severity: DriftSeverityLow})
		}
	}

	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Field < report.Changes[j].Field
	})
	return report
}

func (r *SchemaDriftReport) add(c FieldChange) {
	r.Changes = append(r.Changes, c)
	if c.Severity > r.Severity {
		r.Severity = c.Severity
	}
}

func jsonType(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "bool"
	case gjson.Null:
		return "null"
	}
	if v.IsArray() {
		return "array"
	}
	return "object"
}
