package services

import (
	"context"
	"errors"
	"testing"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
)

type disputeFixture struct {
	service  DisputeService
	matches  *fakeMatchRepo
	disputes *fakeDisputeRepo
	audit    *fakeAuditSink
}

func newDisputeFixture() *disputeFixture {
	matches := newFakeMatchRepo()
	disputes := newFakeDisputeRepo()
	audit := &fakeAuditSink{}
	service := NewDisputeService(disputes, matches, fakeTxManager{}, NewScopeLocker(), audit, nil, testLogger())
	return &disputeFixture{service: service, matches: matches, disputes: disputes, audit: audit}
}

func (f *disputeFixture) seedMatch() *models.Match {
	a, b := 101, 102
	round := models.GroupRound(1)
	return f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1,
		Round: round, RoundLabel: round.Label(),
		PairingAID: &a, PairingBID: &b,
	})
}

func TestOpenDispute(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()

	dispute, err := f.service.Open(context.Background(), match.ID, "score was entered backwards", staffActor)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dispute.Status != models.DisputeOpen {
		t.Errorf("dispute status = %s, want OPEN", dispute.Status)
	}
	if dispute.OpenedBy != staffActor.ID {
		t.Errorf("opened by = %s, want %s", dispute.OpenedBy, staffActor.ID)
	}

	reloaded, _ := f.matches.GetByID(context.Background(), match.ID)
	if reloaded.Dispute != models.DisputeOpen {
		t.Errorf("match dispute flag = %s, want OPEN", reloaded.Dispute)
	}
	if actions := f.audit.actions(); len(actions) != 1 || actions[0] != models.AuditDisputeOpened {
		t.Errorf("audit actions = %v", actions)
	}
}

func TestOpenDisputeRequiresReason(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()

	_, err := f.service.Open(context.Background(), match.ID, "   ", staffActor)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}
}

func TestOpenDisputeOnlyOncePerMatch(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()

	if _, err := f.service.Open(context.Background(), match.ID, "wrong set count", staffActor); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_, err := f.service.Open(context.Background(), match.ID, "still wrong", staffActor)
	if !errors.Is(err, repositories.ErrDisputeAlreadyOpen) {
		t.Fatalf("second Open err = %v, want ErrDisputeAlreadyOpen", err)
	}
}

func TestOpenDisputeRejectsCancelledMatch(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()
	f.matches.UpdateStatus(context.Background(), nil, match.ID, models.MatchCancelled)

	_, err := f.service.Open(context.Background(), match.ID, "irrelevant", staffActor)
	if !errors.Is(err, ErrMatchCancelled) {
		t.Fatalf("err = %v, want ErrMatchCancelled", err)
	}
}

func TestResolveDispute(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()
	if _, err := f.service.Open(context.Background(), match.ID, "duplicate entry", staffActor); err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err := f.service.Resolve(context.Background(), match.ID, "kept the second entry", staffActor)
	if !errors.Is(err, ErrNotPrivileged) {
		t.Fatalf("staff resolve err = %v, want ErrNotPrivileged", err)
	}

	dispute, err := f.service.Resolve(context.Background(), match.ID, "kept the second entry", organizerActor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dispute.Status != models.DisputeResolved {
		t.Errorf("dispute status = %s, want RESOLVED", dispute.Status)
	}
	if dispute.ResolutionNote == nil || *dispute.ResolutionNote != "kept the second entry" {
		t.Errorf("resolution note = %v", dispute.ResolutionNote)
	}
	if dispute.ResolverID == nil || *dispute.ResolverID != organizerActor.ID {
		t.Errorf("resolver = %v, want %s", dispute.ResolverID, organizerActor.ID)
	}
	if dispute.ResolvedAt == nil {
		t.Error("resolved at is nil")
	}

	reloaded, _ := f.matches.GetByID(context.Background(), match.ID)
	if reloaded.Dispute != models.DisputeResolved {
		t.Errorf("match dispute flag = %s, want RESOLVED", reloaded.Dispute)
	}

	// The match can be disputed again after resolution.
	if _, err := f.service.Open(context.Background(), match.ID, "new concern", staffActor); err != nil {
		t.Errorf("reopen after resolve: %v", err)
	}
}

func TestResolveWithoutOpenDispute(t *testing.T) {
	f := newDisputeFixture()
	match := f.seedMatch()

	_, err := f.service.Resolve(context.Background(), match.ID, "nothing to do", organizerActor)
	if !errors.Is(err, repositories.ErrDisputeNotFound) {
		t.Fatalf("err = %v, want ErrDisputeNotFound", err)
	}
}

func TestListDisputesByStatus(t *testing.T) {
	f := newDisputeFixture()
	first := f.seedMatch()
	second := f.seedMatch()

	if _, err := f.service.Open(context.Background(), first.ID, "first", staffActor); err != nil {
		t.Fatalf("Open first: %v", err)
	}
	if _, err := f.service.Open(context.Background(), second.ID, "second", staffActor); err != nil {
		t.Fatalf("Open second: %v", err)
	}
	if _, err := f.service.Resolve(context.Background(), first.ID, "done", organizerActor); err != nil {
		t.Fatalf("Resolve first: %v", err)
	}

	open := models.DisputeOpen
	listed, err := f.service.ListByEvent(context.Background(), 1, &open)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(listed) != 1 || listed[0].MatchID != second.ID {
		t.Errorf("open disputes = %+v, want exactly the second match", listed)
	}

	all, err := f.service.ListByEvent(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("ListByEvent all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all disputes = %d, want 2", len(all))
	}
}
