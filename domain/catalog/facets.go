package catalog

import (
	"fmt"
	"sort"

	"policysim/domain/policy"
)

// FacetIndex holds the distinct facet values seen in a full collection.
// It is rebuilt whenever the collection changes and never reflects the
// current selection, so a user can always broaden a filter back out.
type FacetIndex struct {
	countries   map[string]string // ISO -> display name, last seen wins
	statuses    map[string]struct{}
	sectors     map[string]struct{}
	instruments map[string]struct{}
}

// Option is one entry of a country dropdown
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options are the sorted choices for every facet
type Options struct {
	Countries   []Option `json:"countries"`
	Statuses    []string `json:"statuses"`
	Sectors     []string `json:"sectors"`
	Instruments []string `json:"instruments"`
}

// BuildFacetIndex scans the unfiltered collection. Empty values are skipped;
// a country needs both an ISO code and a name to be listed.
func BuildFacetIndex(collection []policy.Policy) *FacetIndex {
	idx := &FacetIndex{
		countries:   make(map[string]string),
		statuses:    make(map[string]struct{}),
		sectors:     make(map[string]struct{}),
		instruments: make(map[string]struct{}),
	}
	for _, p := range collection {
		if p.CountryISO != "" && p.Country != "" {
			idx.countries[p.CountryISO] = p.Country
		}
		if p.Status != "" {
			idx.statuses[p.Status] = struct{}{}
		}
		if p.Sector != "" {
			idx.sectors[p.Sector] = struct{}{}
		}
		if p.Instrument != "" {
			idx.instruments[p.Instrument] = struct{}{}
		}
	}
	return idx
}

// CountryName returns the display name recorded for an ISO code
func (idx *FacetIndex) CountryName(iso string) (string, bool) {
	if idx == nil {
		return "", false
	}
	name, ok := idx.countries[iso]
	return name, ok
}

// Options lists countries sorted by display name and labelled "Name (ISO)",
// and every other facet sorted lexicographically.
func (idx *FacetIndex) Options() Options {
	if idx == nil {
		return Options{Countries: []Option{}, Statuses: []string{}, Sectors: []string{}, Instruments: []string{}}
	}

	countries := make([]Option, 0, len(idx.countries))
	for iso, name := range idx.countries {
		countries = append(countries, Option{Value: iso, Label: countryLabel(name, iso)})
	}
	sort.Slice(countries, func(i, j int) bool {
		ni, nj := idx.countries[countries[i].Value], idx.countries[countries[j].Value]
		if ni != nj {
			return ni < nj
		}
		return countries[i].Value < countries[j].Value
	})

	return Options{
		Countries:   countries,
		Statuses:    sortedKeys(idx.statuses),
		Sectors:     sortedKeys(idx.sectors),
		Instruments: sortedKeys(idx.instruments),
	}
}

// Labels returns just the country option labels, in order
func (o Options) Labels() []string {
	out := make([]string, len(o.Countries))
	for i, c := range o.Countries {
		out[i] = c.Label
	}
	return out
}

func countryLabel(name, iso string) string {
	return fmt.Sprintf("%s (%s)", name, iso)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
