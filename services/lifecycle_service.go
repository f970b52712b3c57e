package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orya-live/padel-engine/brackets"
	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
)

// LifecycleService drives the tournament-wide state machine. Transitions are
// privileged, serialized per event, and recorded with a timestamp.
type LifecycleService interface {
	Get(ctx context.Context, eventID int) (*models.Tournament, error)
	AllowedTransitions(ctx context.Context, eventID int) ([]models.LifecycleState, error)
	Transition(ctx context.Context, eventID int, to models.LifecycleState, actor Actor) (*models.Tournament, error)
}

type lifecycleService struct {
	tournamentRepo repositories.TournamentRepository
	pairingRepo    repositories.PairingRepository
	txManager      repositories.TxManager
	locker         *ScopeLocker
	audit          repositories.AuditSink
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewLifecycleService(
	tournamentRepo repositories.TournamentRepository,
	pairingRepo repositories.PairingRepository,
	txManager repositories.TxManager,
	locker *ScopeLocker,
	audit repositories.AuditSink,
	hub *brackets.Hub,
	logger *slog.Logger,
) LifecycleService {
	return &lifecycleService{
		tournamentRepo: tournamentRepo,
		pairingRepo:    pairingRepo,
		txManager:      txManager,
		locker:         locker,
		audit:          audit,
		hub:            hub,
		logger:         logger,
	}
}

func (s *lifecycleService) Get(ctx context.Context, eventID int) (*models.Tournament, error) {
	return s.tournamentRepo.GetByEventID(ctx, eventID)
}

func (s *lifecycleService) AllowedTransitions(ctx context.Context, eventID int) ([]models.LifecycleState, error) {
	tournament, err := s.tournamentRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return tournament.Status.AllowedTransitions(), nil
}

func (s *lifecycleService) Transition(ctx context.Context, eventID int, to models.LifecycleState, actor Actor) (*models.Tournament, error) {
	if !actor.Privileged() {
		return nil, ErrNotPrivileged
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, to)
	}

	unlock := s.locker.Lock(eventLockKey(eventID))
	defer unlock()

	tournament, err := s.tournamentRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	from := tournament.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to == models.LifecycleLocked {
		confirmed, err := s.pairingRepo.CountConfirmedByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to count confirmed pairings: %w", err)
		}
		if confirmed == 0 {
			return nil, ErrNothingToLock
		}
	}

	reachedAt := time.Now().UTC()
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.UpdateStatus(ctx, exec, eventID, from, to, reachedAt)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrLifecycleConflict) {
			return nil, ErrGenerationConflict
		}
		return nil, err
	}

	tournament.Status = to
	if tournament.StateReachedAt == nil {
		tournament.StateReachedAt = make(map[models.LifecycleState]time.Time)
	}
	tournament.StateReachedAt[to] = reachedAt

	recordAudit(ctx, s.audit, s.logger, &models.AuditEntry{
		EventID: eventID,
		ActorID: actor.ID,
		Action:  models.AuditLifecycleChanged,
		Details: map[string]interface{}{"from": from, "to": to},
	})
	if s.hub != nil {
		s.hub.NotifyEvent(eventID, brackets.MessageLifecycleChanged, map[string]interface{}{
			"event_id": eventID,
			"from":     from,
			"to":       to,
		})
	}
	return tournament, nil
}
