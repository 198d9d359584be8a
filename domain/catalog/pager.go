package catalog

import "policysim/domain/policy"

// DefaultPageSize is how many policies each page adds
const DefaultPageSize = 15

// Pager tracks how much of the current filtered collection is visible.
// It stores only a count; the window is always cut from whatever filtered
// slice the caller currently holds.
type Pager struct {
	pageSize int
	loaded   int
}

// NewPager creates a pager. Non-positive sizes fall back to DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// Reset shows the first page of a new filtered collection of the given size
func (p *Pager) Reset(filteredCount int) {
	p.loaded = min(p.pageSize, filteredCount)
}

// LoadMore reveals the next page of filtered. It returns the newly visible
// policies, or ok == false without changing state when nothing is left.
func (p *Pager) LoadMore(filtered []policy.Policy) (appended []policy.Policy, ok bool) {
	total := len(filtered)
	if p.loaded > total {
		p.loaded = total
	}
	if p.loaded == total {
		return nil, false
	}

	end := min(p.loaded+p.pageSize, total)
	appended = filtered[p.loaded:end:end]
	p.loaded = end
	return appended, true
}

// Window is the visible prefix of filtered
func (p *Pager) Window(filtered []policy.Policy) []policy.Policy {
	n := min(p.loaded, len(filtered))
	return filtered[:n:n]
}

// HasMore reports whether a filtered collection of size total has hidden entries
func (p *Pager) HasMore(total int) bool {
	return p.loaded < total
}

// Loaded is the number of visible entries
func (p *Pager) Loaded() int {
	return p.loaded
}

// PageSize is the number of entries each page adds
func (p *Pager) PageSize() int {
	return p.pageSize
}
