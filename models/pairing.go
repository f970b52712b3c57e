package models

import "time"

// PairingStatus mirrors the registration subsystem's lifecycle for a team
// entry. The engine only ever reads CONFIRMED pairings.
type PairingStatus string

const (
	PairingPendingPayment PairingStatus = "PENDING_PAYMENT"
	PairingConfirmed      PairingStatus = "CONFIRMED"
	PairingWithdrawn      PairingStatus = "WITHDRAWN"
)

// Pairing is a confirmed team (pair of players) entered in a category. Owned
// by the registration subsystem; immutable once referenced by a match.
type Pairing struct {
	ID          int           `json:"id" db:"id"`
	EventID     int           `json:"event_id" db:"event_id"`
	CategoryID  int           `json:"category_id" db:"category_id"`
	PlayerOneID string        `json:"player_one_id" db:"player_one_id"`
	PlayerTwoID string        `json:"player_two_id" db:"player_two_id"`
	Status      PairingStatus `json:"status" db:"status"`
	// SeedRank is an optional pre-assigned seed; pairings without one sort
	// after seeded pairings, by registration time.
	SeedRank  *int      `json:"seed_rank,omitempty" db:"seed_rank"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (p *Pairing) Confirmed() bool { return p.Status == PairingConfirmed }
