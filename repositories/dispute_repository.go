package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/orya-live/padel-engine/models"
)

var (
	ErrDisputeNotFound     = errors.New("dispute not found")
	ErrDisputeAlreadyOpen  = errors.New("match already has an open dispute")
	ErrDisputeMatchInvalid = errors.New("dispute match conflict or invalid")
)

type DisputeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, dispute *models.Dispute) error
	GetByID(ctx context.Context, id int) (*models.Dispute, error)
	GetOpenByMatch(ctx context.Context, matchID int) (*models.Dispute, error)
	Resolve(ctx context.Context, exec SQLExecutor, id int, resolutionNote, resolverID string, resolvedAt time.Time) error
	ListByEvent(ctx context.Context, eventID int, status *models.DisputeStatus) ([]*models.Dispute, error)
}

type postgresDisputeRepository struct {
	db *sql.DB
}

func NewPostgresDisputeRepository(db *sql.DB) DisputeRepository {
	return &postgresDisputeRepository{db: db}
}

const disputeColumns = `id, match_id, status, reason, resolution_note, opened_by, resolver_id, opened_at, resolved_at`

func (r *postgresDisputeRepository) Create(ctx context.Context, exec SQLExecutor, dispute *models.Dispute) error {
	query := `
		INSERT INTO disputes (match_id, status, reason, opened_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, opened_at`

	err := exec.QueryRowContext(ctx, query,
		dispute.MatchID,
		models.DisputeOpen,
		dispute.Reason,
		dispute.OpenedBy,
	).Scan(&dispute.ID, &dispute.OpenedAt)
	if err != nil {
		return r.handleDisputeError(err)
	}
	dispute.Status = models.DisputeOpen
	return nil
}

func (r *postgresDisputeRepository) GetByID(ctx context.Context, id int) (*models.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`

	dispute, err := scanDispute(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to scan dispute %d: %w", id, err)
	}
	return dispute, nil
}

func (r *postgresDisputeRepository) GetOpenByMatch(ctx context.Context, matchID int) (*models.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE match_id = $1 AND status = $2`

	dispute, err := scanDispute(r.db.QueryRowContext(ctx, query, matchID, models.DisputeOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to scan open dispute for match %d: %w", matchID, err)
	}
	return dispute, nil
}

func (r *postgresDisputeRepository) Resolve(ctx context.Context, exec SQLExecutor, id int, resolutionNote, resolverID string, resolvedAt time.Time) error {
	query := `
		UPDATE disputes
		SET status = $1, resolution_note = $2, resolver_id = $3, resolved_at = $4
		WHERE id = $5 AND status = $6`

	result, err := exec.ExecContext(ctx, query,
		models.DisputeResolved, resolutionNote, resolverID, resolvedAt, id, models.DisputeOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve dispute %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrDisputeNotFound)
}

func (r *postgresDisputeRepository) ListByEvent(ctx context.Context, eventID int, status *models.DisputeStatus) ([]*models.Dispute, error) {
	query := `
		SELECT d.id, d.match_id, d.status, d.reason, d.resolution_note, d.opened_by,
		       d.resolver_id, d.opened_at, d.resolved_at
		FROM disputes d
		JOIN matches m ON m.id = d.match_id
		WHERE m.event_id = $1`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND d.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY d.opened_at DESC, d.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query disputes for event %d: %w", eventID, err)
	}
	defer rows.Close()

	disputes := make([]*models.Dispute, 0)
	for rows.Next() {
		dispute, scanErr := scanDispute(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan dispute row: %w", scanErr)
		}
		disputes = append(disputes, dispute)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during dispute rows iteration: %w", err)
	}
	return disputes, nil
}

func scanDispute(row rowScanner) (*models.Dispute, error) {
	dispute := &models.Dispute{}
	err := row.Scan(
		&dispute.ID,
		&dispute.MatchID,
		&dispute.Status,
		&dispute.Reason,
		&dispute.ResolutionNote,
		&dispute.OpenedBy,
		&dispute.ResolverID,
		&dispute.OpenedAt,
		&dispute.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (r *postgresDisputeRepository) handleDisputeError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "disputes_match_id_fkey":
			return ErrDisputeMatchInvalid
		// Partial unique index: one OPEN dispute per match.
		case "disputes_match_open_unique":
			return ErrDisputeAlreadyOpen
		}
	}
	return err
}
