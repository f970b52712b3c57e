package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/orya-live/padel-engine/models"
)

// AuditSink is write-only; the organizer timeline reads the table directly.
// Writes run outside the caller's transaction: the audit trail is best effort
// and must not roll back with the operation it describes.
type AuditSink interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

type postgresAuditSink struct {
	db *sql.DB
}

func NewPostgresAuditSink(db *sql.DB) AuditSink {
	return &postgresAuditSink{db: db}
}

func (r *postgresAuditSink) Record(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (event_id, category_id, actor_id, action, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	var detailsJSON []byte
	if entry.Details != nil {
		var err error
		if detailsJSON, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.EventID,
		entry.CategoryID,
		entry.ActorID,
		entry.Action,
		detailsJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}
