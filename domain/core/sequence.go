package core

import (
	"sync/atomic"
)

// Ticket identifies one issued request of a given kind.
type Ticket int64

// Sequencer hands out monotonically increasing tickets for one kind of
// request. An outcome may only be applied while its ticket is the latest
// one issued; anything older has been superseded.
type Sequencer struct {
	current int64
}

// NewSequencer creates a sequencer whose first ticket is 1
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next issues a new ticket atomically.
func (s *Sequencer) Next() Ticket {
	return Ticket(atomic.AddInt64(&s.current, 1))
}

// Current returns the last issued ticket without incrementing.
func (s *Sequencer) Current() Ticket {
	return Ticket(atomic.LoadInt64(&s.current))
}

// IsLatest reports whether t is still the most recently issued ticket.
func (s *Sequencer) IsLatest(t Ticket) bool {
	return s.Current() == t
}
