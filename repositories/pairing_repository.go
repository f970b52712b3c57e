package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orya-live/padel-engine/models"
)

var ErrPairingNotFound = errors.New("pairing not found")

// PairingRepository is read-only: pairings are owned by the registration
// subsystem, the engine only reads them.
type PairingRepository interface {
	GetByID(ctx context.Context, id int) (*models.Pairing, error)
	ListByCategory(ctx context.Context, categoryID int, status *models.PairingStatus) ([]*models.Pairing, error)
	CountConfirmedByEvent(ctx context.Context, eventID int) (int, error)
}

type postgresPairingRepository struct {
	db *sql.DB
}

func NewPostgresPairingRepository(db *sql.DB) PairingRepository {
	return &postgresPairingRepository{db: db}
}

const pairingColumns = `id, event_id, category_id, player_one_id, player_two_id, status, seed_rank, created_at`

func (r *postgresPairingRepository) GetByID(ctx context.Context, id int) (*models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE id = $1`

	pairing := &models.Pairing{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pairing.ID,
		&pairing.EventID,
		&pairing.CategoryID,
		&pairing.PlayerOneID,
		&pairing.PlayerTwoID,
		&pairing.Status,
		&pairing.SeedRank,
		&pairing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to scan pairing by id %d: %w", id, err)
	}
	return pairing, nil
}

func (r *postgresPairingRepository) ListByCategory(ctx context.Context, categoryID int, status *models.PairingStatus) ([]*models.Pairing, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + pairingColumns + ` FROM pairings WHERE category_id = $1`)

	args := []interface{}{categoryID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(2))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairings for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	pairings := make([]*models.Pairing, 0)
	for rows.Next() {
		pairing := &models.Pairing{}
		if scanErr := rows.Scan(
			&pairing.ID,
			&pairing.EventID,
			&pairing.CategoryID,
			&pairing.PlayerOneID,
			&pairing.PlayerTwoID,
			&pairing.Status,
			&pairing.SeedRank,
			&pairing.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan pairing row: %w", scanErr)
		}
		pairings = append(pairings, pairing)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pairing rows iteration: %w", err)
	}
	return pairings, nil
}

func (r *postgresPairingRepository) CountConfirmedByEvent(ctx context.Context, eventID int) (int, error) {
	query := `SELECT COUNT(*) FROM pairings WHERE event_id = $1 AND status = $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, eventID, models.PairingConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed pairings for event %d: %w", eventID, err)
	}
	return count, nil
}
