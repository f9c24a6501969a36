package checkout

import (
	"time"

	"libreria/internal/domain/cart"
)

// State is a step of the checkout flow.
type State string

const (
	StateIdle       State = "idle"
	StateFormEntry  State = "form_entry"
	StateSubmitting State = "submitting"
	StateFailed     State = "failed"
	StateSuccess    State = "success"
)

// String returns the state name (for logging).
func (s State) String() string { return string(s) }

// IsTerminal reports whether the flow has completed.
func (s State) IsTerminal() bool { return s == StateSuccess }

// transitions is the flow's transition table. It is independent of any
// rendering layer; the orchestrator consults it before every move.
var transitions = map[State][]State{
	StateIdle:       {StateFormEntry},
	StateFormEntry:  {StateSubmitting, StateIdle},
	StateSubmitting: {StateSuccess, StateFailed},
	StateFailed:     {StateFormEntry},
	StateSuccess:    {},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Snapshot freezes the cart contents and total at the moment checkout
// begins. It is never re-read from the server mid-flow, so the totals shown
// to the buyer cannot drift even if the underlying cart changes
// concurrently.
type Snapshot struct {
	Items      []cart.Item
	Total      float64
	CapturedAt time.Time
}

// TakeSnapshot captures the given cart as an ordered item list plus total.
// POST: Total matches cart.Derive on the same cart
func TakeSnapshot(c cart.Cart, now time.Time) Snapshot {
	items := make([]cart.Item, 0, len(c))
	for _, it := range c {
		items = append(items, it)
	}
	return Snapshot{
		Items:      items,
		Total:      cart.Derive(c).Total,
		CapturedAt: now,
	}
}

// Viable reports whether the snapshot can start a checkout: at least one
// item and a positive total.
func (s Snapshot) Viable() bool {
	return len(s.Items) > 0 && s.Total > 0
}
