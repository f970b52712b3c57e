package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/orya-live/padel-engine/brackets"
	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
)

// DisputeService tracks score disputes. An open dispute freezes the match for
// non-privileged callers until a privileged resolver closes it.
type DisputeService interface {
	Open(ctx context.Context, matchID int, reason string, actor Actor) (*models.Dispute, error)
	Resolve(ctx context.Context, matchID int, resolutionNote string, actor Actor) (*models.Dispute, error)
	ListByEvent(ctx context.Context, eventID int, status *models.DisputeStatus) ([]*models.Dispute, error)
}

type disputeService struct {
	disputeRepo repositories.DisputeRepository
	matchRepo   repositories.MatchRepository
	txManager   repositories.TxManager
	locker      *ScopeLocker
	audit       repositories.AuditSink
	hub         *brackets.Hub
	logger      *slog.Logger
}

func NewDisputeService(
	disputeRepo repositories.DisputeRepository,
	matchRepo repositories.MatchRepository,
	txManager repositories.TxManager,
	locker *ScopeLocker,
	audit repositories.AuditSink,
	hub *brackets.Hub,
	logger *slog.Logger,
) DisputeService {
	return &disputeService{
		disputeRepo: disputeRepo,
		matchRepo:   matchRepo,
		txManager:   txManager,
		locker:      locker,
		audit:       audit,
		hub:         hub,
		logger:      logger,
	}
}

func (s *disputeService) Open(ctx context.Context, matchID int, reason string, actor Actor) (*models.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrValidationFailed
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
	if match.Status == models.MatchCancelled {
		return nil, ErrMatchCancelled
	}
	if match.Dispute == models.DisputeOpen {
		return nil, repositories.ErrDisputeAlreadyOpen
	}

	dispute := &models.Dispute{
		MatchID:  matchID,
		Reason:   reason,
		OpenedBy: actor.ID,
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.disputeRepo.Create(ctx, exec, dispute); err != nil {
			return err
		}
		return s.matchRepo.UpdateDisputeStatus(ctx, exec, matchID, models.DisputeOpen)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    match.EventID,
		CategoryID: intPtr(match.CategoryID),
		ActorID:    actor.ID,
		Action:     models.AuditDisputeOpened,
		Details:    map[string]interface{}{"match_id": matchID, "reason": reason},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(match.EventID, brackets.MessageDisputeChanged, dispute)
	}
	return dispute, nil
}

func (s *disputeService) Resolve(ctx context.Context, matchID int, resolutionNote string, actor Actor) (*models.Dispute, error) {
	if !actor.Privileged() {
		return nil, ErrNotPrivileged
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(categoryLockKey(match.CategoryID))
	defer unlock()

	dispute, err := s.disputeRepo.GetOpenByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrDisputeNotFound) {
			return nil, repositories.ErrDisputeNotFound
		}
		return nil, err
	}

	resolvedAt := time.Now().UTC()
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.disputeRepo.Resolve(ctx, exec, dispute.ID, resolutionNote, actor.ID, resolvedAt); err != nil {
			return err
		}
		return s.matchRepo.UpdateDisputeStatus(ctx, exec, matchID, models.DisputeResolved)
	})
	if err != nil {
		return nil, err
	}

	dispute.Status = models.DisputeResolved
	dispute.ResolutionNote = &resolutionNote
	dispute.ResolverID = &actor.ID
	dispute.ResolvedAt = &resolvedAt

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID:    match.EventID,
		CategoryID: intPtr(match.CategoryID),
		ActorID:    actor.ID,
		Action:     models.AuditDisputeResolved,
		Details:    map[string]interface{}{"match_id": matchID, "dispute_id": dispute.ID},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(match.EventID, brackets.MessageDisputeChanged, dispute)
	}
	return dispute, nil
}

func (s *disputeService) ListByEvent(ctx context.Context, eventID int, status *models.DisputeStatus) ([]*models.Dispute, error) {
	return s.disputeRepo.ListByEvent(ctx, eventID, status)
}
