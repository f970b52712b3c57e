package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
	"github.com/orya-live/padel-engine/scoring"
)

// GroupStandings is one group's ordered table.
type GroupStandings struct {
	Group string                `json:"group"`
	Rows  []models.StandingsRow `json:"rows"`
}

// StandingsService is pure read: it derives standings from the current match
// state and needs no locking against concurrent score reports.
type StandingsService interface {
	GetStandings(ctx context.Context, categoryID int) ([]GroupStandings, error)
}

type standingsService struct {
	matchRepo  repositories.MatchRepository
	configRepo repositories.ConfigRepository
}

func NewStandingsService(matchRepo repositories.MatchRepository, configRepo repositories.ConfigRepository) StandingsService {
	return &standingsService{matchRepo: matchRepo, configRepo: configRepo}
}

func (s *standingsService) GetStandings(ctx context.Context, categoryID int) ([]GroupStandings, error) {
	var (
		matches []*models.Match
		cfg     *models.CategoryConfig
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		phase := models.PhaseGroups
		var err error
		matches, err = s.matchRepo.ListByCategory(gCtx, categoryID, &phase, nil)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = s.configRepo.Get(gCtx, categoryID)
		if errors.Is(err, repositories.ErrConfigNotFound) {
			// Без конфигурации действуют правила по умолчанию.
			cfg = nil
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rules *models.ScoreRules
	points := models.DefaultPointsTable()
	if cfg != nil {
		rules = cfg.ScoreRules
		if cfg.PointsTable != nil {
			points = cfg.PointsTable
		}
	}

	byGroup := scoring.Compute(matches, rules, points)
	out := make([]GroupStandings, 0, len(byGroup))
	for group, rows := range byGroup {
		out = append(out, GroupStandings{Group: group, Rows: rows})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}
