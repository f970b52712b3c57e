package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/orya-live/padel-engine/brackets"
	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
	"github.com/orya-live/padel-engine/scoring"
	"github.com/orya-live/padel-engine/storage"
)

const defaultGenerationVersion = "v1"

// GroupsRequest merges the caller's configuration into the stored one before
// generating. Nil fields leave the stored value untouched.
type GroupsRequest struct {
	EventID     int                  `json:"event_id"`
	Format      models.Format        `json:"format,omitempty"`
	Groups      *models.GroupsConfig `json:"groups,omitempty"`
	ScoreRules  *models.ScoreRules   `json:"score_rules,omitempty"`
	PointsTable models.PointsTable   `json:"points_table,omitempty"`
	// Override regenerates even over already-played group matches.
	Override bool `json:"override,omitempty"`
}

// GroupsResult is the generated stage plus the config version that produced
// it, for optimistic re-submission from the organizer panel.
type GroupsResult struct {
	Matches       []*models.Match         `json:"matches"`
	Groups        []brackets.GroupSummary `json:"groups"`
	ConfigVersion int                     `json:"config_version"`
}

// KnockoutRequest selects the seed source for bracket generation. ManualSeeds
// bypasses standings entirely; AllowIncomplete generates from partial group
// results under an owner override.
type KnockoutRequest struct {
	EventID         int                `json:"event_id"`
	ManualSeeds     []models.SeedEntry `json:"manual_seeds,omitempty"`
	AllowIncomplete bool               `json:"allow_incomplete,omitempty"`
}

type KnockoutResult struct {
	Matches  []*models.Match      `json:"matches"`
	Snapshot *models.SeedSnapshot `json:"snapshot"`
}

// SeedPreview is the dry-run view of the seed order the next knockout
// generation would use. Complete is false while group matches remain.
type SeedPreview struct {
	Entries  []models.SeedEntry `json:"entries"`
	Complete bool               `json:"complete"`
}

type GenerationService interface {
	GenerateGroups(ctx context.Context, categoryID int, req GroupsRequest, actor Actor) (*GroupsResult, error)
	GenerateKnockout(ctx context.Context, categoryID int, req KnockoutRequest, actor Actor) (*KnockoutResult, error)
	PreviewSeeds(ctx context.Context, categoryID int) (*SeedPreview, error)
}

type generationService struct {
	groupGen       brackets.GroupGenerator
	knockoutGen    brackets.KnockoutGenerator
	matchRepo      repositories.MatchRepository
	pairingRepo    repositories.PairingRepository
	configRepo     repositories.ConfigRepository
	snapshotRepo   repositories.SeedSnapshotRepository
	tournamentRepo repositories.TournamentRepository
	txManager      repositories.TxManager
	locker         *ScopeLocker
	audit          repositories.AuditSink
	hub            *brackets.Hub
	archiver       *storage.SnapshotArchiver
	logger         *slog.Logger
}

func NewGenerationService(
	groupGen brackets.GroupGenerator,
	knockoutGen brackets.KnockoutGenerator,
	matchRepo repositories.MatchRepository,
	pairingRepo repositories.PairingRepository,
	configRepo repositories.ConfigRepository,
	snapshotRepo repositories.SeedSnapshotRepository,
	tournamentRepo repositories.TournamentRepository,
	txManager repositories.TxManager,
	locker *ScopeLocker,
	audit repositories.AuditSink,
	hub *brackets.Hub,
	archiver *storage.SnapshotArchiver,
	logger *slog.Logger,
) GenerationService {
	return &generationService{
		groupGen:       groupGen,
		knockoutGen:    knockoutGen,
		matchRepo:      matchRepo,
		pairingRepo:    pairingRepo,
		configRepo:     configRepo,
		snapshotRepo:   snapshotRepo,
		tournamentRepo: tournamentRepo,
		txManager:      txManager,
		locker:         locker,
		audit:          audit,
		hub:            hub,
		archiver:       archiver,
		logger:         logger,
	}
}

// GenerateGroups (re)builds the category's group stage. Regeneration over
// played matches requires an explicit privileged override; the whole swap is
// one transaction so readers never observe a half-replaced stage.
func (s *generationService) GenerateGroups(ctx context.Context, categoryID int, req GroupsRequest, actor Actor) (*GroupsResult, error) {
	if !actor.Privileged() {
		return nil, ErrNotPrivileged
	}

	unlock := s.locker.Lock(categoryLockKey(categoryID))
	defer unlock()

	if err := s.guardLifecycle(ctx, req.EventID); err != nil {
		return nil, err
	}

	cfg, err := s.loadOrInitConfig(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	applyGroupsRequest(cfg, req)

	phase := models.PhaseGroups
	existing, err := s.matchRepo.ListByCategory(ctx, categoryID, &phase, nil)
	if err != nil {
		return nil, err
	}
	if hasPlayedMatches(existing) {
		if !req.Override {
			return nil, ErrRegenerationLocked
		}
		// Wiping played results is owner territory.
		if !actor.CanOverride() {
			return nil, ErrOverrideNotAllowed
		}
	}

	status := models.PairingConfirmed
	pairings, err := s.pairingRepo.ListByCategory(ctx, categoryID, &status)
	if err != nil {
		return nil, err
	}

	stage, err := s.groupGen.GenerateGroups(ctx, brackets.GenerateGroupsParams{
		EventID:    req.EventID,
		CategoryID: categoryID,
		Pairings:   pairings,
		Config:     cfg.Groups,
		Salt:       brackets.SaltFor(req.EventID, categoryID, cfg.Format, cfg.GenerationVersion, pairingIDs(pairings)),
	})
	if err != nil {
		switch {
		case errors.Is(err, brackets.ErrNotEnoughPairings):
			return nil, fmt.Errorf("%w: %v", ErrCategoryNotAvailable, err)
		case errors.Is(err, brackets.ErrQualifyExceedsGroupSize):
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		return nil, err
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.configRepo.Save(ctx, exec, cfg); err != nil {
			if errors.Is(err, repositories.ErrConfigVersionConflict) {
				return ErrGenerationConflict
			}
			return err
		}
		if _, err := s.matchRepo.DeleteByCategoryPhase(ctx, exec, categoryID, models.PhaseGroups); err != nil {
			return err
		}
		for _, match := range stage.Matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    req.EventID,
		CategoryID: intPtr(categoryID),
		ActorID:    actor.ID,
		Action:     models.AuditGroupsGenerated,
		Details: map[string]interface{}{
			"groups":   len(stage.Groups),
			"matches":  len(stage.Matches),
			"override": req.Override,
		},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(req.EventID, brackets.MessageGroupsGenerated, stage.Groups)
	}

	return &GroupsResult{
		Matches:       stage.Matches,
		Groups:        stage.Groups,
		ConfigVersion: cfg.Version,
	}, nil
}

// GenerateKnockout builds the elimination stage from the configured seed
// source and captures an immutable seed snapshot in the same transaction.
// Once any knockout match has been played the bracket is permanently locked.
func (s *generationService) GenerateKnockout(ctx context.Context, categoryID int, req KnockoutRequest, actor Actor) (*KnockoutResult, error) {
	if !actor.Privileged() {
		return nil, ErrNotPrivileged
	}

	unlock := s.locker.Lock(categoryLockKey(categoryID))
	defer unlock()

	if err := s.guardLifecycle(ctx, req.EventID); err != nil {
		return nil, err
	}

	cfg, err := s.loadOrInitConfig(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	phase := models.PhaseKnockout
	existing, err := s.matchRepo.ListByCategory(ctx, categoryID, &phase, nil)
	if err != nil {
		return nil, err
	}
	if hasPlayedMatches(existing) {
		return nil, ErrKnockoutLocked
	}

	seeds, complete, err := s.resolveSeeds(ctx, categoryID, cfg, req.ManualSeeds)
	if err != nil {
		return nil, err
	}
	overrideUsed := false
	if !complete && len(req.ManualSeeds) == 0 {
		if !req.AllowIncomplete {
			return nil, ErrGroupsNotFinished
		}
		if !actor.CanOverride() {
			return nil, ErrOverrideNotAllowed
		}
		overrideUsed = true
	}

	bracket, err := s.knockoutGen.GenerateKnockout(ctx, brackets.GenerateKnockoutParams{
		EventID:    req.EventID,
		CategoryID: categoryID,
		Seeds:      seeds,
		Config: brackets.KnockoutConfig{
			DualBracket:       cfg.Format == models.FormatKnockoutAB,
			DoubleElimination: cfg.Format == models.FormatDoubleElimination,
		},
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNoSeeds) || errors.Is(err, brackets.ErrNotEnoughPairings) {
			return nil, fmt.Errorf("%w: %v", ErrCategoryNotAvailable, err)
		}
		return nil, err
	}

	snapshot := &models.SeedSnapshot{
		EventID:    req.EventID,
		CategoryID: categoryID,
		Entries:    seeds,
		Override:   overrideUsed,
		CreatedBy:  actor.ID,
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.matchRepo.DeleteByCategoryPhase(ctx, exec, categoryID, models.PhaseKnockout); err != nil {
			return err
		}
		for _, match := range bracket.Matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
		}
		if err := s.snapshotRepo.Create(ctx, exec, snapshot); err != nil {
			return err
		}
		return s.configRepo.MarkKnockoutGenerated(ctx, exec, categoryID, actor.ID, overrideUsed)
	})
	if err != nil {
		return nil, err
	}

	// Архивируем снапшот вне транзакции, best effort.
	if s.archiver != nil {
		if _, err := s.archiver.Archive(ctx, snapshot); err != nil {
			s.logger.WarnContext(ctx, "snapshot archive failed",
				slog.Int("snapshot_id", snapshot.ID),
				slog.Any("error", err))
		}
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    req.EventID,
		CategoryID: intPtr(categoryID),
		ActorID:    actor.ID,
		Action:     models.AuditKnockoutGenerated,
		Details: map[string]interface{}{
			"matches":     len(bracket.Matches),
			"seeds":       len(seeds),
			"snapshot_id": snapshot.ID,
			"override":    overrideUsed,
		},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(req.EventID, brackets.MessageBracketGenerated, snapshot)
	}

	return &KnockoutResult{Matches: bracket.Matches, Snapshot: snapshot}, nil
}

// PreviewSeeds computes the seed order without mutating anything.
func (s *generationService) PreviewSeeds(ctx context.Context, categoryID int) (*SeedPreview, error) {
	cfg, err := s.loadOrInitConfig(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	seeds, complete, err := s.resolveSeeds(ctx, categoryID, cfg, nil)
	if err != nil {
		return nil, err
	}
	return &SeedPreview{Entries: seeds, Complete: complete}, nil
}

// resolveSeeds picks the seed source: manual seeds verbatim, the confirmed
// entry list for direct-knockout formats, or group standings qualifiers.
func (s *generationService) resolveSeeds(ctx context.Context, categoryID int, cfg *models.CategoryConfig, manual []models.SeedEntry) ([]models.SeedEntry, bool, error) {
	if len(manual) > 0 {
		return manual, true, nil
	}

	if cfg.Format.DirectKnockout() {
		status := models.PairingConfirmed
		pairings, err := s.pairingRepo.ListByCategory(ctx, categoryID, &status)
		if err != nil {
			return nil, false, err
		}
		return directSeedsFromPairings(pairings), true, nil
	}

	phase := models.PhaseGroups
	matches, err := s.matchRepo.ListByCategory(ctx, categoryID, &phase, nil)
	if err != nil {
		return nil, false, err
	}
	seeds, complete := seedsFromStandings(matches, cfg)
	return seeds, complete, nil
}

func (s *generationService) guardLifecycle(ctx context.Context, eventID int) error {
	tournament, err := s.tournamentRepo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			// Событие без записи о турнире ещё не управляется жизненным циклом.
			return nil
		}
		return err
	}
	if tournament.Status.Terminal() {
		return fmt.Errorf("%w: tournament is %s", ErrCategoryNotAvailable, tournament.Status)
	}
	return nil
}

func (s *generationService) loadOrInitConfig(ctx context.Context, categoryID int) (*models.CategoryConfig, error) {
	cfg, err := s.configRepo.Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigNotFound) {
			return &models.CategoryConfig{
				CategoryID:        categoryID,
				Format:            models.FormatGroupsKnockout,
				Groups:            models.GroupsConfig{Mode: models.AssignAuto, Seeding: models.SeedingSnake, QualifyPerGroup: 2},
				ScoreRules:        models.DefaultScoreRules(),
				PointsTable:       models.DefaultPointsTable(),
				GenerationVersion: defaultGenerationVersion,
			}, nil
		}
		return nil, err
	}
	if cfg.GenerationVersion == "" {
		cfg.GenerationVersion = defaultGenerationVersion
	}
	return cfg, nil
}

func applyGroupsRequest(cfg *models.CategoryConfig, req GroupsRequest) {
	if req.Format != "" {
		cfg.Format = req.Format
	}
	if req.Groups != nil {
		cfg.Groups = *req.Groups
	}
	if req.ScoreRules != nil {
		rules := *req.ScoreRules
		rules.Normalize()
		cfg.ScoreRules = &rules
	}
	if req.PointsTable != nil {
		cfg.PointsTable = req.PointsTable
	}
}

// hasPlayedMatches ignores resolved byes: a bye is DONE at generation time
// and must not lock regeneration on its own.
func hasPlayedMatches(matches []*models.Match) bool {
	for _, m := range matches {
		if m.IsBye() && m.Score == nil {
			continue
		}
		if m.Status == models.MatchDone || m.Status == models.MatchInProgress {
			return true
		}
	}
	return false
}

func pairingIDs(pairings []*models.Pairing) []int {
	ids := make([]int, len(pairings))
	for i, p := range pairings {
		ids[i] = p.ID
	}
	sort.Ints(ids)
	return ids
}

func directSeedsFromPairings(pairings []*models.Pairing) []models.SeedEntry {
	ordered := make([]*models.Pairing, len(pairings))
	copy(ordered, pairings)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.SeedRank != nil && b.SeedRank != nil && *a.SeedRank != *b.SeedRank:
			return *a.SeedRank < *b.SeedRank
		case (a.SeedRank != nil) != (b.SeedRank != nil):
			return a.SeedRank != nil
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	seeds := make([]models.SeedEntry, len(ordered))
	for i, p := range ordered {
		seeds[i] = models.SeedEntry{PairingID: p.ID, RankInGroup: i + 1}
	}
	return seeds
}

// seedsFromStandings takes the top QualifyPerGroup of every group plus the
// best ExtraQualifiers from the remainder, ranked across groups.
func seedsFromStandings(matches []*models.Match, cfg *models.CategoryConfig) ([]models.SeedEntry, bool) {
	complete := true
	for _, m := range matches {
		if m.Round.Phase != models.PhaseGroups {
			continue
		}
		if m.Status == models.MatchPending || m.Status == models.MatchInProgress {
			complete = false
			break
		}
	}

	points := cfg.PointsTable
	if points == nil {
		points = models.DefaultPointsTable()
	}
	byGroup := scoring.Compute(matches, cfg.ScoreRules, points)

	qualify := cfg.Groups.QualifyPerGroup
	if qualify <= 0 {
		qualify = 2
	}

	var seeds []models.SeedEntry
	var remainder []models.SeedEntry
	labels := make([]string, 0, len(byGroup))
	for label := range byGroup {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		for idx, row := range byGroup[label] {
			entry := models.SeedEntry{
				PairingID:   row.PairingID,
				GroupLabel:  label,
				RankInGroup: idx + 1,
				Points:      row.Points,
				SetDiff:     row.SetDiff(),
				GameDiff:    row.GameDiff(),
				SetsFor:     row.SetsFor,
				SetsAgainst: row.SetsAgainst,
			}
			if idx < qualify {
				seeds = append(seeds, entry)
			} else {
				remainder = append(remainder, entry)
			}
		}
	}

	if extra := cfg.Groups.ExtraQualifiers; extra > 0 && len(remainder) > 0 {
		sort.SliceStable(remainder, func(i, j int) bool {
			return scoring.CompareSeedEntries(remainder[i], remainder[j])
		})
		if extra > len(remainder) {
			extra = len(remainder)
		}
		for i := 0; i < extra; i++ {
			wildcard := remainder[i]
			wildcard.Extra = true
			seeds = append(seeds, wildcard)
		}
	}

	sort.SliceStable(seeds, func(i, j int) bool {
		return scoring.CompareSeedEntries(seeds[i], seeds[j])
	})
	return seeds, complete
}
