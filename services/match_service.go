package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orya-live/padel-engine/brackets"
	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
	"github.com/orya-live/padel-engine/scoring"
)

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCategory(ctx context.Context, categoryID int, phase *models.Phase) ([]*models.Match, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	ReportScore(ctx context.Context, matchID int, payload models.ScorePayload, actor Actor) (*models.Match, error)
	MarkInProgress(ctx context.Context, matchID int, actor Actor) (*models.Match, error)
	AssignSlots(ctx context.Context, matchID int, pairingAID, pairingBID int, actor Actor) (*models.Match, error)
}

type matchService struct {
	matchRepo   repositories.MatchRepository
	pairingRepo repositories.PairingRepository
	configRepo  repositories.ConfigRepository
	txManager   repositories.TxManager
	locker      *ScopeLocker
	audit       repositories.AuditSink
	hub         *brackets.Hub
	logger      *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	pairingRepo repositories.PairingRepository,
	configRepo repositories.ConfigRepository,
	txManager repositories.TxManager,
	locker *ScopeLocker,
	audit repositories.AuditSink,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:   matchRepo,
		pairingRepo: pairingRepo,
		configRepo:  configRepo,
		txManager:   txManager,
		locker:      locker,
		audit:       audit,
		hub:         hub,
		logger:      logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, id)
}

func (s *matchService) ListByCategory(ctx context.Context, categoryID int, phase *models.Phase) ([]*models.Match, error) {
	return s.matchRepo.ListByCategory(ctx, categoryID, phase, nil)
}

func (s *matchService) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	return s.matchRepo.ListByEvent(ctx, eventID)
}

// ReportScore validates and stores a result, then feeds the winner (and in
// dual/double brackets the loser) into the follow-up matches. Serialized per
// category; an open dispute blocks non-privileged reporters.
func (s *matchService) ReportScore(ctx context.Context, matchID int, payload models.ScorePayload, actor Actor) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(categoryLockKey(match.CategoryID))
	defer unlock()

	// Перечитываем под локом.
	match, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchCancelled {
		return nil, ErrMatchCancelled
	}
	if !match.Editable(actor.Privileged()) {
		return nil, ErrMatchDisputed
	}
	if match.PairingAID == nil || match.PairingBID == nil {
		return nil, ErrMatchSlotsIncomplete
	}

	rules, err := s.scoreRules(ctx, match.CategoryID)
	if err != nil {
		return nil, err
	}
	winnerSide, err := scoring.Validate(payload, rules)
	if err != nil {
		return nil, err
	}
	if winnerSide == models.SideNone {
		return nil, fmt.Errorf("%w: score decides no winner", ErrValidationFailed)
	}
	winnerPtr := match.PairingOn(winnerSide)
	if winnerPtr == nil {
		return nil, ErrMatchSlotsIncomplete
	}
	winnerID := *winnerPtr

	var plan brackets.Advancement
	if match.Round.Phase == models.PhaseKnockout {
		phase := models.PhaseKnockout
		all, err := s.matchRepo.ListByCategory(ctx, match.CategoryID, &phase, nil)
		if err != nil {
			return nil, err
		}
		plan = brackets.PlanAdvancement(all, match, winnerID)

		// Correcting an already-decided match is allowed only while nothing
		// downstream has been played.
		if match.Status == models.MatchDone && match.WinnerPairingID != nil && *match.WinnerPairingID != winnerID {
			for _, assignment := range plan.Assignments {
				if assignment.Match.Status != models.MatchPending {
					return nil, ErrKnockoutLocked
				}
			}
		}
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateScore(ctx, exec, matchID, &payload, models.MatchDone, &winnerID); err != nil {
			return err
		}
		// GF2 activation seats both sides of one match; merge before writing.
		seated := make(map[int]*models.Match)
		for _, assignment := range plan.Assignments {
			target, ok := seated[assignment.Match.ID]
			if !ok {
				target = assignment.Match
				seated[assignment.Match.ID] = target
			}
			if assignment.Side == models.SideHome {
				target.PairingAID = intPtr(assignment.PairingID)
			} else {
				target.PairingBID = intPtr(assignment.PairingID)
			}
		}
		for _, target := range seated {
			if err := s.matchRepo.UpdateSlots(ctx, exec, target.ID, target.PairingAID, target.PairingBID); err != nil {
				return err
			}
		}
		for _, cancel := range plan.Cancel {
			if err := s.matchRepo.UpdateStatus(ctx, exec, cancel.ID, models.MatchCancelled); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match.Score = &payload
	match.Status = models.MatchDone
	match.WinnerPairingID = &winnerID

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    match.EventID,
		CategoryID: intPtr(match.CategoryID),
		ActorID:    actor.ID,
		Action:     models.AuditScoreReported,
		Details:    map[string]interface{}{"match_id": matchID, "winner_pairing_id": winnerID},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(match.EventID, brackets.MessageMatchUpdated, match)
	}
	return match, nil
}

// MarkInProgress flags a fully seated pending match as live. Purely a display
// signal for clocks and stream overlays; the score report decides the match.
func (s *matchService) MarkInProgress(ctx context.Context, matchID int, actor Actor) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(categoryLockKey(match.CategoryID))
	defer unlock()

	match, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchCancelled {
		return nil, ErrMatchCancelled
	}
	if !match.Editable(actor.Privileged()) {
		return nil, ErrMatchDisputed
	}
	if match.Status != models.MatchPending {
		return nil, ErrMatchNotPending
	}
	if match.PairingAID == nil || match.PairingBID == nil {
		return nil, ErrMatchSlotsIncomplete
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateStatus(ctx, exec, matchID, models.MatchInProgress)
	})
	if err != nil {
		return nil, err
	}

	match.Status = models.MatchInProgress

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    match.EventID,
		CategoryID: intPtr(match.CategoryID),
		ActorID:    actor.ID,
		Action:     models.AuditMatchStarted,
		Details:    map[string]interface{}{"match_id": matchID},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(match.EventID, brackets.MessageMatchUpdated, match)
	}
	return match, nil
}

// AssignSlots manually seats pairings into a pending knockout match.
// Privileged only; both pairings must be confirmed in the same category and
// unused elsewhere in the round.
func (s *matchService) AssignSlots(ctx context.Context, matchID int, pairingAID, pairingBID int, actor Actor) (*models.Match, error) {
	if !actor.Privileged() {
		return nil, ErrNotPrivileged
	}
	if pairingAID == pairingBID {
		return nil, ErrDuplicatePairing
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(categoryLockKey(match.CategoryID))
	defer unlock()

	match, err = s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchPending || match.Score != nil {
		return nil, ErrMatchNotPending
	}

	for _, pairingID := range []int{pairingAID, pairingBID} {
		pairing, err := s.pairingRepo.GetByID(ctx, pairingID)
		if err != nil {
			if errors.Is(err, repositories.ErrPairingNotFound) {
				return nil, ErrPairingInvalid
			}
			return nil, err
		}
		if !pairing.Confirmed() || pairing.CategoryID != match.CategoryID {
			return nil, ErrPairingInvalid
		}
	}

	siblings, err := s.matchRepo.ListByCategory(ctx, match.CategoryID, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, sibling := range siblings {
		if sibling.ID == matchID || sibling.Round != match.Round {
			continue
		}
		for _, pairingID := range []int{pairingAID, pairingBID} {
			if sibling.SideOf(pairingID) != models.SideNone {
				return nil, fmt.Errorf("%w: pairing %d in match %d", ErrPairingAlreadyAssigned, pairingID, sibling.ID)
			}
		}
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateSlots(ctx, exec, matchID, intPtr(pairingAID), intPtr(pairingBID))
	})
	if err != nil {
		return nil, err
	}

	match.PairingAID = intPtr(pairingAID)
	match.PairingBID = intPtr(pairingBID)

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    match.EventID,
		CategoryID: intPtr(match.CategoryID),
		ActorID:    actor.ID,
		Action:     models.AuditSlotsAssigned,
		Details:    map[string]interface{}{"match_id": matchID, "pairing_a": pairingAID, "pairing_b": pairingBID},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(match.EventID, brackets.MessageMatchUpdated, match)
	}
	return match, nil
}

func (s *matchService) scoreRules(ctx context.Context, categoryID int) (*models.ScoreRules, error) {
	cfg, err := s.configRepo.Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cfg.ScoreRules, nil
}
