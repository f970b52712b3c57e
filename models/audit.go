package models

import "time"

// AuditEntry records a mutating engine operation for the organizer timeline.
// Writes are best effort and never fail the operation they describe.
type AuditEntry struct {
	ID         int                    `json:"id" db:"id"`
	EventID    int                    `json:"event_id" db:"event_id"`
	CategoryID *int                   `json:"category_id,omitempty" db:"category_id"`
	ActorID    string                 `json:"actor_id" db:"actor_id"`
	Action     string                 `json:"action" db:"action"`
	Details    map[string]interface{} `json:"details,omitempty" db:"-"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// Audit actions recorded by the engine.
const (
	AuditGroupsGenerated   = "groups_generated"
	AuditKnockoutGenerated = "knockout_generated"
	AuditMatchStarted      = "match_started"
	AuditScoreReported     = "score_reported"
	AuditSlotsAssigned     = "slots_assigned"
	AuditDisputeOpened     = "dispute_opened"
	AuditDisputeResolved   = "dispute_resolved"
	AuditLifecycleChanged  = "lifecycle_changed"
)
