package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/orya-live/padel-engine/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchEventInvalid   = errors.New("match event conflict or invalid")
	ErrMatchPairingInvalid = errors.New("match pairing conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCategory(ctx context.Context, categoryID int, phase *models.Phase, status *models.MatchStatus) ([]*models.Match, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, score *models.ScorePayload, status models.MatchStatus, winnerPairingID *int) error
	UpdateSlots(ctx context.Context, exec SQLExecutor, id int, pairingAID, pairingBID *int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	UpdateDisputeStatus(ctx context.Context, exec SQLExecutor, id int, status models.DisputeStatus) error
	DeleteByCategoryPhase(ctx context.Context, exec SQLExecutor, categoryID int, phase models.Phase) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, event_id, category_id, round_phase, round_side, round_kind, round_number,
		round_label, group_label, pairing_a_id, pairing_b_id, position, status, score,
		winner_pairing_id, dispute_status, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(event_id, category_id, round_phase, round_side, round_kind, round_number,
			 round_label, group_label, pairing_a_id, pairing_b_id, position, status, score,
			 winner_pairing_id, dispute_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	scoreJSON, err := marshalScore(match.Score)
	if err != nil {
		return err
	}
	if match.Dispute == "" {
		match.Dispute = models.DisputeNone
	}

	err = exec.QueryRowContext(ctx, query,
		match.EventID,
		match.CategoryID,
		match.Round.Phase,
		match.Round.Side,
		match.Round.Kind,
		match.Round.Number,
		match.RoundLabel,
		match.GroupLabel,
		match.PairingAID,
		match.PairingBID,
		match.Position,
		match.Status,
		scoreJSON,
		match.WinnerPairingID,
		match.Dispute,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByCategory(ctx context.Context, categoryID int, phase *models.Phase, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE category_id = $1`)

	args := []interface{}{categoryID}
	placeholderIndex := 2

	if phase != nil {
		queryBuilder.WriteString(" AND round_phase = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *phase)
		placeholderIndex++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
	}

	queryBuilder.WriteString(" ORDER BY round_phase ASC, round_kind ASC, round_number ASC, group_label ASC NULLS FIRST, position ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE event_id = $1 ORDER BY category_id ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, score *models.ScorePayload, status models.MatchStatus, winnerPairingID *int) error {
	query := `UPDATE matches SET score = $1, status = $2, winner_pairing_id = $3 WHERE id = $4`

	scoreJSON, err := marshalScore(score)
	if err != nil {
		return err
	}
	result, err := exec.ExecContext(ctx, query, scoreJSON, status, winnerPairingID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, exec SQLExecutor, id int, pairingAID, pairingBID *int) error {
	query := `UPDATE matches SET pairing_a_id = $1, pairing_b_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, pairingAID, pairingBID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateDisputeStatus(ctx context.Context, exec SQLExecutor, id int, status models.DisputeStatus) error {
	query := `UPDATE matches SET dispute_status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// DeleteByCategoryPhase removes a phase's entire match set, used by
// regeneration to replace the fixtures atomically inside one transaction.
func (r *postgresMatchRepository) DeleteByCategoryPhase(ctx context.Context, exec SQLExecutor, categoryID int, phase models.Phase) (int64, error) {
	query := `DELETE FROM matches WHERE category_id = $1 AND round_phase = $2`
	result, err := exec.ExecContext(ctx, query, categoryID, phase)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s matches for category %d: %w", phase, categoryID, err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var scoreJSON []byte
	err := row.Scan(
		&match.ID,
		&match.EventID,
		&match.CategoryID,
		&match.Round.Phase,
		&match.Round.Side,
		&match.Round.Kind,
		&match.Round.Number,
		&match.RoundLabel,
		&match.GroupLabel,
		&match.PairingAID,
		&match.PairingBID,
		&match.Position,
		&match.Status,
		&scoreJSON,
		&match.WinnerPairingID,
		&match.Dispute,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(scoreJSON) > 0 {
		var payload models.ScorePayload
		if err := json.Unmarshal(scoreJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode score for match %d: %w", match.ID, err)
		}
		match.Score = &payload
	}
	return match, nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func marshalScore(score *models.ScorePayload) ([]byte, error) {
	if score == nil {
		return nil, nil
	}
	data, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score payload: %w", err)
	}
	return data, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_event_id_fkey", "matches_category_id_fkey":
			return ErrMatchEventInvalid
		case "matches_pairing_a_id_fkey", "matches_pairing_b_id_fkey", "matches_winner_pairing_id_fkey":
			return ErrMatchPairingInvalid
		}
	}
	return err
}
