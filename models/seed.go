package models

import "time"

// SeedEntry is one pairing's position in the seed order feeding a knockout
// bracket, together with the group metrics that earned it.
type SeedEntry struct {
	PairingID   int    `json:"pairing_id"`
	GroupLabel  string `json:"group_label,omitempty"`
	RankInGroup int    `json:"rank_in_group"`
	Points      int    `json:"points"`
	SetDiff     int    `json:"set_diff"`
	GameDiff    int    `json:"game_diff"`
	SetsFor     int    `json:"sets_for"`
	SetsAgainst int    `json:"sets_against"`
	// Extra marks wildcard qualifiers taken from below the per-group cut.
	Extra bool `json:"extra,omitempty"`
}

// SeedSnapshot is the audit record captured at the moment a knockout bracket
// is generated (or previewed). Immutable once written.
type SeedSnapshot struct {
	ID         int         `json:"id" db:"id"`
	EventID    int         `json:"event_id" db:"event_id"`
	CategoryID int         `json:"category_id" db:"category_id"`
	Entries    []SeedEntry `json:"entries" db:"-"`
	// Override records that the snapshot was taken with unfinished group
	// matches under an owner-tier override.
	Override  bool      `json:"override" db:"override_used"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
