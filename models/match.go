package models

import "time"

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchDone       MatchStatus = "DONE"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// Side identifies a side of a match. SideNone is used where no explicit side
// applies (e.g. the winner of a NORMAL result is derived, not declared).
type Side string

const (
	SideNone Side = ""
	SideHome Side = "A"
	SideAway Side = "B"
)

// ResultType classifies how a match result came about.
type ResultType string

const (
	ResultNormal     ResultType = "NORMAL"
	ResultWalkover   ResultType = "WALKOVER"
	ResultRetirement ResultType = "RETIREMENT"
	ResultInjury     ResultType = "INJURY"
)

// Normal reports whether the result was decided on court by the reported sets.
func (rt ResultType) Normal() bool { return rt == "" || rt == ResultNormal }

// SetScore is the games won by each side in one set (or super tie-break).
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// ScorePayload is a reported match result. For NORMAL results the winner is
// derived from set wins and never stored as ground truth; for walkovers,
// retirements and injuries WinnerSide is authoritative and Sets are optional
// context.
type ScorePayload struct {
	Sets       []SetScore `json:"sets,omitempty"`
	Result     ResultType `json:"result"`
	WinnerSide Side       `json:"winner_side,omitempty"`
	StreamURL  *string    `json:"stream_url,omitempty"`
}

// DisputeStatus is the orthogonal dispute flag on a match.
type DisputeStatus string

const (
	DisputeNone     DisputeStatus = "NONE"
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
)

// Match is a generated fixture. Matches are never deleted once a score has
// been reported, only cancelled. The second pairing slot may be nil for a bye.
type Match struct {
	ID         int     `json:"id" db:"id"`
	EventID    int     `json:"event_id" db:"event_id"`
	CategoryID int     `json:"category_id" db:"category_id"`
	Round      Round   `json:"round" db:"-"`
	RoundLabel string  `json:"round_label" db:"-"`
	GroupLabel *string `json:"group_label,omitempty" db:"group_label"`
	PairingAID *int    `json:"pairing_a_id,omitempty" db:"pairing_a_id"`
	PairingBID *int    `json:"pairing_b_id,omitempty" db:"pairing_b_id"`
	// Position is the match's order within its round; advancement targets
	// position/2 in the following round.
	Position int           `json:"position" db:"position"`
	Status   MatchStatus   `json:"status" db:"status"`
	Score    *ScorePayload `json:"score,omitempty" db:"-"`
	// WinnerPairingID is denormalized for bracket advancement; for NORMAL
	// results it is recomputed from the sets on every report.
	WinnerPairingID *int          `json:"winner_pairing_id,omitempty" db:"winner_pairing_id"`
	Dispute         DisputeStatus `json:"dispute" db:"dispute_status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// IsBye reports whether the match has a single occupant advancing unopposed.
func (m *Match) IsBye() bool {
	return (m.PairingAID != nil) != (m.PairingBID != nil)
}

// Editable is the single guard deciding whether the match score may be
// mutated by a caller with the given privilege level.
func (m *Match) Editable(privileged bool) bool {
	if m.Status == MatchCancelled {
		return false
	}
	if m.Dispute == DisputeOpen && !privileged {
		return false
	}
	return true
}

// SideOf reports which side the pairing occupies, SideNone if neither.
func (m *Match) SideOf(pairingID int) Side {
	if m.PairingAID != nil && *m.PairingAID == pairingID {
		return SideHome
	}
	if m.PairingBID != nil && *m.PairingBID == pairingID {
		return SideAway
	}
	return SideNone
}

// PairingOn returns the pairing occupying the given side, nil when vacant.
func (m *Match) PairingOn(side Side) *int {
	switch side {
	case SideHome:
		return m.PairingAID
	case SideAway:
		return m.PairingBID
	}
	return nil
}
