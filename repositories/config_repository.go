package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orya-live/padel-engine/models"
)

var (
	ErrConfigNotFound        = errors.New("category config not found")
	ErrConfigVersionConflict = errors.New("category config version conflict")
)

// ConfigRepository persists the versioned category configuration. Save is
// optimistic: it bumps Version and fails with ErrConfigVersionConflict when a
// concurrent writer got there first.
type ConfigRepository interface {
	Get(ctx context.Context, categoryID int) (*models.CategoryConfig, error)
	Save(ctx context.Context, exec SQLExecutor, cfg *models.CategoryConfig) error
	MarkKnockoutGenerated(ctx context.Context, exec SQLExecutor, categoryID int, generatedBy string, overrideUsed bool) error
}

type postgresConfigRepository struct {
	db *sql.DB
}

func NewPostgresConfigRepository(db *sql.DB) ConfigRepository {
	return &postgresConfigRepository{db: db}
}

func (r *postgresConfigRepository) Get(ctx context.Context, categoryID int) (*models.CategoryConfig, error) {
	query := `
		SELECT category_id, version, format, groups, score_rules, points_table,
		       generation_version, knockout_generated_at, knockout_generated_by,
		       knockout_override_used, updated_at
		FROM category_configs
		WHERE category_id = $1`

	cfg := &models.CategoryConfig{}
	var groupsJSON, rulesJSON, pointsJSON []byte
	err := r.db.QueryRowContext(ctx, query, categoryID).Scan(
		&cfg.CategoryID,
		&cfg.Version,
		&cfg.Format,
		&groupsJSON,
		&rulesJSON,
		&pointsJSON,
		&cfg.GenerationVersion,
		&cfg.KnockoutGeneratedAt,
		&cfg.KnockoutGeneratedBy,
		&cfg.KnockoutOverrideUsed,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to scan config for category %d: %w", categoryID, err)
	}

	if len(groupsJSON) > 0 {
		if err := json.Unmarshal(groupsJSON, &cfg.Groups); err != nil {
			return nil, fmt.Errorf("failed to decode groups config for category %d: %w", categoryID, err)
		}
	}
	if len(rulesJSON) > 0 {
		rules := &models.ScoreRules{}
		if err := json.Unmarshal(rulesJSON, rules); err != nil {
			return nil, fmt.Errorf("failed to decode score rules for category %d: %w", categoryID, err)
		}
		cfg.ScoreRules = rules
	}
	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &cfg.PointsTable); err != nil {
			return nil, fmt.Errorf("failed to decode points table for category %d: %w", categoryID, err)
		}
	}
	return cfg, nil
}

func (r *postgresConfigRepository) Save(ctx context.Context, exec SQLExecutor, cfg *models.CategoryConfig) error {
	groupsJSON, err := json.Marshal(cfg.Groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups config: %w", err)
	}
	var rulesJSON []byte
	if cfg.ScoreRules != nil {
		if rulesJSON, err = json.Marshal(cfg.ScoreRules); err != nil {
			return fmt.Errorf("failed to encode score rules: %w", err)
		}
	}
	var pointsJSON []byte
	if cfg.PointsTable != nil {
		if pointsJSON, err = json.Marshal(cfg.PointsTable); err != nil {
			return fmt.Errorf("failed to encode points table: %w", err)
		}
	}

	now := time.Now().UTC()

	if cfg.Version == 0 {
		query := `
			INSERT INTO category_configs
				(category_id, version, format, groups, score_rules, points_table,
				 generation_version, updated_at)
			VALUES ($1, 1, $2, $3, $4, $5, $6, $7)`
		if _, err := exec.ExecContext(ctx, query,
			cfg.CategoryID, cfg.Format, groupsJSON, rulesJSON, pointsJSON,
			cfg.GenerationVersion, now,
		); err != nil {
			return fmt.Errorf("failed to insert config for category %d: %w", cfg.CategoryID, err)
		}
		cfg.Version = 1
		cfg.UpdatedAt = now
		return nil
	}

	query := `
		UPDATE category_configs
		SET version = version + 1, format = $1, groups = $2, score_rules = $3,
		    points_table = $4, generation_version = $5, updated_at = $6
		WHERE category_id = $7 AND version = $8`
	result, err := exec.ExecContext(ctx, query,
		cfg.Format, groupsJSON, rulesJSON, pointsJSON,
		cfg.GenerationVersion, now, cfg.CategoryID, cfg.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update config for category %d: %w", cfg.CategoryID, err)
	}
	if err := checkAffectedRows(result, ErrConfigVersionConflict); err != nil {
		return err
	}
	cfg.Version++
	cfg.UpdatedAt = now
	return nil
}

func (r *postgresConfigRepository) MarkKnockoutGenerated(ctx context.Context, exec SQLExecutor, categoryID int, generatedBy string, overrideUsed bool) error {
	query := `
		UPDATE category_configs
		SET knockout_generated_at = $1, knockout_generated_by = $2,
		    knockout_override_used = $3, updated_at = $1
		WHERE category_id = $4`
	result, err := exec.ExecContext(ctx, query, time.Now().UTC(), generatedBy, overrideUsed, categoryID)
	if err != nil {
		return fmt.Errorf("failed to mark knockout generated for category %d: %w", categoryID, err)
	}
	return checkAffectedRows(result, ErrConfigNotFound)
}
