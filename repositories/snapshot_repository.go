package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orya-live/padel-engine/models"
)

var ErrSnapshotNotFound = errors.New("seed snapshot not found")

// SeedSnapshotRepository stores the immutable seed records captured at
// knockout generation time.
type SeedSnapshotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, snapshot *models.SeedSnapshot) error
	GetByID(ctx context.Context, id int) (*models.SeedSnapshot, error)
	ListByCategory(ctx context.Context, categoryID int) ([]*models.SeedSnapshot, error)
}

type postgresSeedSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSeedSnapshotRepository(db *sql.DB) SeedSnapshotRepository {
	return &postgresSeedSnapshotRepository{db: db}
}

func (r *postgresSeedSnapshotRepository) Create(ctx context.Context, exec SQLExecutor, snapshot *models.SeedSnapshot) error {
	query := `
		INSERT INTO seed_snapshots (event_id, category_id, entries, override_used, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	entriesJSON, err := json.Marshal(snapshot.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode seed entries: %w", err)
	}

	err = exec.QueryRowContext(ctx, query,
		snapshot.EventID,
		snapshot.CategoryID,
		entriesJSON,
		snapshot.Override,
		snapshot.CreatedBy,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert seed snapshot: %w", err)
	}
	return nil
}

func (r *postgresSeedSnapshotRepository) GetByID(ctx context.Context, id int) (*models.SeedSnapshot, error) {
	query := `
		SELECT id, event_id, category_id, entries, override_used, created_by, created_at
		FROM seed_snapshots WHERE id = $1`

	snapshot, err := scanSnapshot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to scan seed snapshot %d: %w", id, err)
	}
	return snapshot, nil
}

func (r *postgresSeedSnapshotRepository) ListByCategory(ctx context.Context, categoryID int) ([]*models.SeedSnapshot, error) {
	query := `
		SELECT id, event_id, category_id, entries, override_used, created_by, created_at
		FROM seed_snapshots WHERE category_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seed snapshots for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	snapshots := make([]*models.SeedSnapshot, 0)
	for rows.Next() {
		snapshot, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan seed snapshot row: %w", scanErr)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during seed snapshot rows iteration: %w", err)
	}
	return snapshots, nil
}

func scanSnapshot(row rowScanner) (*models.SeedSnapshot, error) {
	snapshot := &models.SeedSnapshot{}
	var entriesJSON []byte
	err := row.Scan(
		&snapshot.ID,
		&snapshot.EventID,
		&snapshot.CategoryID,
		&entriesJSON,
		&snapshot.Override,
		&snapshot.CreatedBy,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(entriesJSON) > 0 {
		if err := json.Unmarshal(entriesJSON, &snapshot.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode seed entries: %w", err)
		}
	}
	return snapshot, nil
}
