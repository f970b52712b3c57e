package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/orya-live/padel-engine/models"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrLifecycleConflict   = errors.New("tournament status changed concurrently")
	ErrTournamentDuplicate = errors.New("tournament already exists for event")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByEventID(ctx context.Context, eventID int) (*models.Tournament, error)
	// UpdateStatus is compare-and-swap on the current state: zero rows means a
	// concurrent transition won and the caller must re-read.
	UpdateStatus(ctx context.Context, exec SQLExecutor, eventID int, from, to models.LifecycleState, reachedAt time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (event_id, name, status, state_reached_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if tournament.Status == "" {
		tournament.Status = models.LifecycleHidden
	}
	if tournament.StateReachedAt == nil {
		tournament.StateReachedAt = map[models.LifecycleState]time.Time{
			tournament.Status: time.Now().UTC(),
		}
	}
	reachedJSON, err := json.Marshal(tournament.StateReachedAt)
	if err != nil {
		return fmt.Errorf("failed to encode state timestamps: %w", err)
	}

	err = exec.QueryRowContext(ctx, query,
		tournament.EventID,
		tournament.Name,
		tournament.Status,
		reachedJSON,
	).Scan(&tournament.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTournamentDuplicate
		}
		return fmt.Errorf("failed to insert tournament for event %d: %w", tournament.EventID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByEventID(ctx context.Context, eventID int) (*models.Tournament, error) {
	query := `
		SELECT event_id, name, status, state_reached_at, created_at
		FROM tournaments WHERE event_id = $1`

	tournament := &models.Tournament{}
	var reachedJSON []byte
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&tournament.EventID,
		&tournament.Name,
		&tournament.Status,
		&reachedJSON,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament for event %d: %w", eventID, err)
	}
	if len(reachedJSON) > 0 {
		if err := json.Unmarshal(reachedJSON, &tournament.StateReachedAt); err != nil {
			return nil, fmt.Errorf("failed to decode state timestamps for event %d: %w", eventID, err)
		}
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, eventID int, from, to models.LifecycleState, reachedAt time.Time) error {
	query := `
		UPDATE tournaments
		SET status = $1,
		    state_reached_at = state_reached_at || jsonb_build_object($2::text, $3::timestamptz)
		WHERE event_id = $4 AND status = $5`

	result, err := exec.ExecContext(ctx, query, to, string(to), reachedAt, eventID, from)
	if err != nil {
		return fmt.Errorf("failed to update status for event %d: %w", eventID, err)
	}
	return checkAffectedRows(result, ErrLifecycleConflict)
}
