package models

import "time"

// Dispute tracks a contested match result. While a dispute is OPEN the match
// score is locked for non-privileged callers.
type Dispute struct {
	ID             int           `json:"id" db:"id"`
	MatchID        int           `json:"match_id" db:"match_id"`
	Status         DisputeStatus `json:"status" db:"status"`
	Reason         string        `json:"reason" db:"reason"`
	ResolutionNote *string       `json:"resolution_note,omitempty" db:"resolution_note"`
	OpenedBy       string        `json:"opened_by" db:"opened_by"`
	ResolverID     *string       `json:"resolver_id,omitempty" db:"resolver_id"`
	OpenedAt       time.Time     `json:"opened_at" db:"opened_at"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
}
