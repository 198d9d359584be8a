package catalog

import (
	"fmt"
	"net/url"

	"policysim/domain/policy"
)

// Facet is one filterable policy attribute. Its value is also the query
// parameter name understood by the policy API.
type Facet string

const (
	FacetCountry    Facet = "country_iso"
	FacetStatus     Facet = "policy_status"
	FacetSector     Facet = "sector"
	FacetInstrument Facet = "policy_instrument"
)

// AllValue is the sentinel meaning "no constraint on this facet"
const AllValue = "all"

// Facets lists every facet in display order
var Facets = []Facet{FacetCountry, FacetStatus, FacetSector, FacetInstrument}

// ParseFacet validates a facet name
func ParseFacet(name string) (Facet, error) {
	for _, f := range Facets {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown facet %q", name)
}

// Value returns the policy field a facet filters on
func (f Facet) Value(p policy.Policy) string {
	switch f {
	case FacetCountry:
		return p.CountryISO
	case FacetStatus:
		return p.Status
	case FacetSector:
		return p.Sector
	case FacetInstrument:
		return p.Instrument
	}
	return ""
}

// Selection maps facets to the single value each is constrained to.
// A facet that is absent, empty or "all" imposes no constraint.
type Selection map[Facet]string

// Set constrains a facet, or lifts the constraint for "" and "all". It
// reports whether the effective selection changed.
func (s Selection) Set(f Facet, value string) bool {
	before := s.Value(f)
	if value == "" || value == AllValue {
		delete(s, f)
	} else {
		s[f] = value
	}
	return s.Value(f) != before
}

// Value returns the facet's effective value, AllValue when unconstrained
func (s Selection) Value(f Facet) string {
	if v, ok := s[f]; ok && v != "" && v != AllValue {
		return v
	}
	return AllValue
}

// Active reports whether the facet constrains the collection
func (s Selection) Active(f Facet) bool {
	return s.Value(f) != AllValue
}

// ActiveCount is the number of constrained facets
func (s Selection) ActiveCount() int {
	n := 0
	for _, f := range Facets {
		if s.Active(f) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for f, v := range s {
		out[f] = v
	}
	return out
}

// Normalize spells out every facet with its effective value, "all" for the
// unconstrained ones
func (s Selection) Normalize() map[Facet]string {
	out := make(map[Facet]string, len(Facets))
	for _, f := range Facets {
		out[f] = s.Value(f)
	}
	return out
}

// QueryParams encodes the constrained facets as policy API query parameters
func (s Selection) QueryParams() url.Values {
	q := url.Values{}
	for _, f := range Facets {
		if s.Active(f) {
			q.Set(string(f), s.Value(f))
		}
	}
	return q
}

// SelectionFromQuery reads facet values out of query parameters, ignoring
// anything that is not a facet
func SelectionFromQuery(q url.Values) Selection {
	s := Selection{}
	for _, f := range Facets {
		s.Set(f, q.Get(string(f)))
	}
	return s
}

// Apply returns the policies that match every constrained facet exactly,
// preserving collection order. It never modifies its inputs.
func Apply(collection []policy.Policy, sel Selection) []policy.Policy {
	active := make([]Facet, 0, len(Facets))
	for _, f := range Facets {
		if sel.Active(f) {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		out := make([]policy.Policy, len(collection))
		copy(out, collection)
		return out
	}

	out := make([]policy.Policy, 0, len(collection))
	for _, p := range collection {
		if matches(p, sel, active) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p policy.Policy, sel Selection, active []Facet) bool {
	for _, f := range active {
		if f.Value(p) != sel.Value(f) {
			return false
		}
	}
	return true
}

// ActiveFilter is one constrained facet as shown in the filter chips
type ActiveFilter struct {
	Facet Facet  `json:"facet"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ActiveFilters lists the constrained facets in display order. Country chips
// are labelled "Name (ISO)" when the country is known to the index.
func ActiveFilters(sel Selection, idx *FacetIndex) []ActiveFilter {
	out := []ActiveFilter{}
	for _, f := range Facets {
		if !sel.Active(f) {
			continue
		}
		v := sel.Value(f)
		label := v
		if f == FacetCountry && idx != nil {
			if name, ok := idx.countries[v]; ok {
				label = countryLabel(name, v)
			}
		}
		out = append(out, ActiveFilter{Facet: f, Value: v, Label: label})
	}
	return out
}
