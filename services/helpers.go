package services

import (
	"context"
	"log/slog"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
)

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) Privileged() bool  { return a.Role.Privileged() }
func (a Actor) CanOverride() bool { return a.Role.CanOverride() }

// recordAudit writes the audit entry best effort: a failed write is logged
// and never fails the operation it describes.
func recordAudit(ctx context.Context, sink repositories.AuditSink, logger *slog.Logger, entry *models.AuditEntry) {
	if sink == nil {
		return
	}
	if err := sink.Record(ctx, entry); err != nil {
		logger.WarnContext(ctx, "audit write failed",
			slog.String("action", entry.Action),
			slog.Int("event_id", entry.EventID),
			slog.Any("error", err))
	}
}

func intPtr(v int) *int { return &v }
