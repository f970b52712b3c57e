package models

import "time"

// LifecycleState представляет статусы турнира, соответствующие ENUM в БД.
// The lifecycle is tournament-wide and independent of individual match state.
type LifecycleState string

const (
	LifecycleHidden      LifecycleState = "HIDDEN"
	LifecycleDevelopment LifecycleState = "DEVELOPMENT"
	LifecyclePublic      LifecycleState = "PUBLIC"
	LifecycleLocked      LifecycleState = "LOCKED"
	LifecycleLive        LifecycleState = "LIVE"
	LifecycleCompleted   LifecycleState = "COMPLETED"
	LifecycleCancelled   LifecycleState = "CANCELLED"
)

// lifecycleTransitions is the total transition table: every non-terminal
// state has an explicit allowed set, terminal states map to nil.
var lifecycleTransitions = map[LifecycleState][]LifecycleState{
	LifecycleHidden:      {LifecycleDevelopment, LifecycleCancelled},
	LifecycleDevelopment: {LifecyclePublic, LifecycleCancelled},
	LifecyclePublic:      {LifecycleLocked, LifecycleCancelled},
	LifecycleLocked:      {LifecycleLive, LifecycleCancelled},
	LifecycleLive:        {LifecycleCompleted, LifecycleCancelled},
	LifecycleCompleted:   nil,
	LifecycleCancelled:   nil,
}

// Valid reports whether s is a known lifecycle state.
func (s LifecycleState) Valid() bool {
	_, ok := lifecycleTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s LifecycleState) Terminal() bool {
	return s.Valid() && len(lifecycleTransitions[s]) == 0
}

// AllowedTransitions returns the states reachable from s in one step.
func (s LifecycleState) AllowedTransitions() []LifecycleState {
	next := lifecycleTransitions[s]
	out := make([]LifecycleState, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether next is in s's allowed set.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	for _, candidate := range lifecycleTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Tournament is the engine's view of an event: identity plus lifecycle.
// Everything else about the event (tickets, venue, payouts) belongs to the
// surrounding product and never enters the engine.
type Tournament struct {
	EventID int            `json:"event_id" db:"event_id"`
	Name    string         `json:"name" db:"name"`
	Status  LifecycleState `json:"status" db:"status"`
	// StateReachedAt records when each lifecycle state was first entered.
	StateReachedAt map[LifecycleState]time.Time `json:"state_reached_at,omitempty" db:"-"`
	CreatedAt      time.Time                    `json:"created_at" db:"created_at"`
}
