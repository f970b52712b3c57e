package services

import (
	"context"
	"errors"
	"testing"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
	"github.com/orya-live/padel-engine/scoring"
)

var (
	staffActor     = Actor{ID: "staff-1", Role: models.RoleStaff}
	organizerActor = Actor{ID: "org-1", Role: models.RoleOrganizer}
	ownerActor     = Actor{ID: "owner-1", Role: models.RoleOwner}
)

type matchServiceFixture struct {
	service  MatchService
	matches  *fakeMatchRepo
	pairings *fakePairingRepo
	configs  *fakeConfigRepo
	audit    *fakeAuditSink
}

func newMatchServiceFixture() *matchServiceFixture {
	matches := newFakeMatchRepo()
	pairings := newFakePairingRepo()
	configs := newFakeConfigRepo()
	audit := &fakeAuditSink{}
	service := NewMatchService(
		matches, pairings, configs,
		fakeTxManager{}, NewScopeLocker(), audit, nil, testLogger(),
	)
	return &matchServiceFixture{
		service:  service,
		matches:  matches,
		pairings: pairings,
		configs:  configs,
		audit:    audit,
	}
}

// seedKnockout builds SEMIFINAL x2 + FINAL for category 1 with pairings
// 101..104 seated in the semifinals.
func (f *matchServiceFixture) seedKnockout() (semi0, semi1, final *models.Match) {
	ids := []int{101, 102, 103, 104}
	semifinal := models.KnockoutRound(models.SideMain, 2)
	semi0 = f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1, Round: semifinal, RoundLabel: semifinal.Label(),
		PairingAID: &ids[0], PairingBID: &ids[1], Position: 0,
	})
	semi1 = f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1, Round: semifinal, RoundLabel: semifinal.Label(),
		PairingAID: &ids[2], PairingBID: &ids[3], Position: 1,
	})
	finalRound := models.KnockoutRound(models.SideMain, 1)
	final = f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1, Round: finalRound, RoundLabel: finalRound.Label(),
		Position: 0,
	})
	return semi0, semi1, final
}

func straightSetsWin() models.ScorePayload {
	return models.ScorePayload{
		Sets:   []models.SetScore{{A: 6, B: 3}, {A: 6, B: 4}},
		Result: models.ResultNormal,
	}
}

func TestReportScoreAdvancesWinner(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, final := f.seedKnockout()

	updated, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor)
	if err != nil {
		t.Fatalf("ReportScore: %v", err)
	}
	if updated.Status != models.MatchDone {
		t.Errorf("status = %s, want DONE", updated.Status)
	}
	if updated.WinnerPairingID == nil || *updated.WinnerPairingID != 101 {
		t.Errorf("winner = %v, want 101", updated.WinnerPairingID)
	}

	stored, _ := f.matches.GetByID(context.Background(), final.ID)
	if stored.PairingAID == nil || *stored.PairingAID != 101 {
		t.Errorf("final home slot = %v, want 101", stored.PairingAID)
	}
	if stored.PairingBID != nil {
		t.Errorf("final away slot = %v, want vacant", stored.PairingBID)
	}

	actions := f.audit.actions()
	if len(actions) != 1 || actions[0] != models.AuditScoreReported {
		t.Errorf("audit actions = %v", actions)
	}
}

func TestReportScoreWalkoverNeedsWinnerSide(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, _ := f.seedKnockout()

	_, err := f.service.ReportScore(context.Background(), semi0.ID,
		models.ScorePayload{Result: models.ResultWalkover}, staffActor)
	if !errors.Is(err, scoring.ErrWinnerRequired) {
		t.Fatalf("err = %v, want ErrWinnerRequired", err)
	}

	updated, err := f.service.ReportScore(context.Background(), semi0.ID,
		models.ScorePayload{Result: models.ResultWalkover, WinnerSide: models.SideAway}, staffActor)
	if err != nil {
		t.Fatalf("ReportScore walkover: %v", err)
	}
	if *updated.WinnerPairingID != 102 {
		t.Errorf("walkover winner = %d, want 102", *updated.WinnerPairingID)
	}
}

func TestReportScoreValidatesAgainstRules(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, _ := f.seedKnockout()
	f.configs.put(&models.CategoryConfig{
		CategoryID: 1, Version: 1,
		Format:     models.FormatGroupsKnockout,
		ScoreRules: models.DefaultScoreRules(),
	})

	bad := models.ScorePayload{
		Sets:   []models.SetScore{{A: 6, B: 6}},
		Result: models.ResultNormal,
	}
	_, err := f.service.ReportScore(context.Background(), semi0.ID, bad, staffActor)
	if !errors.Is(err, scoring.ErrInvalidScore) {
		t.Fatalf("err = %v, want ErrInvalidScore", err)
	}
}

func TestReportScoreRejectsIncompleteSlots(t *testing.T) {
	f := newMatchServiceFixture()
	_, _, final := f.seedKnockout()

	_, err := f.service.ReportScore(context.Background(), final.ID, straightSetsWin(), staffActor)
	if !errors.Is(err, ErrMatchSlotsIncomplete) {
		t.Fatalf("err = %v, want ErrMatchSlotsIncomplete", err)
	}
}

func TestReportScoreRejectsCancelledMatch(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, _ := f.seedKnockout()
	_ = f.matches.UpdateStatus(context.Background(), nil, semi0.ID, models.MatchCancelled)

	_, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor)
	if !errors.Is(err, ErrMatchCancelled) {
		t.Fatalf("err = %v, want ErrMatchCancelled", err)
	}
}

func TestReportScoreDisputedMatchBlocksStaffNotOrganizer(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, _ := f.seedKnockout()
	_ = f.matches.UpdateDisputeStatus(context.Background(), nil, semi0.ID, models.DisputeOpen)

	_, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor)
	if !errors.Is(err, ErrMatchDisputed) {
		t.Fatalf("staff err = %v, want ErrMatchDisputed", err)
	}

	if _, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), organizerActor); err != nil {
		t.Fatalf("organizer ReportScore: %v", err)
	}
}

func TestReportScoreCorrectionLockedOncePlayedDownstream(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, semi1, final := f.seedKnockout()

	for _, id := range []int{semi0.ID, semi1.ID} {
		if _, err := f.service.ReportScore(context.Background(), id, straightSetsWin(), staffActor); err != nil {
			t.Fatalf("ReportScore semifinal: %v", err)
		}
	}

	// Both semifinal winners are seated; correcting is still allowed while
	// the final stays pending.
	flipped := models.ScorePayload{
		Sets:   []models.SetScore{{A: 3, B: 6}, {A: 4, B: 6}},
		Result: models.ResultNormal,
	}
	if _, err := f.service.ReportScore(context.Background(), semi0.ID, flipped, staffActor); err != nil {
		t.Fatalf("correction before final played: %v", err)
	}
	stored, _ := f.matches.GetByID(context.Background(), final.ID)
	if stored.PairingAID == nil || *stored.PairingAID != 102 {
		t.Fatalf("final home slot = %v after correction, want 102", stored.PairingAID)
	}

	if _, err := f.service.ReportScore(context.Background(), final.ID, straightSetsWin(), staffActor); err != nil {
		t.Fatalf("ReportScore final: %v", err)
	}

	_, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor)
	if !errors.Is(err, ErrKnockoutLocked) {
		t.Fatalf("err = %v, want ErrKnockoutLocked", err)
	}
}

func TestAssignSlots(t *testing.T) {
	f := newMatchServiceFixture()
	_, _, final := f.seedKnockout()
	for id := 201; id <= 203; id++ {
		f.pairings.add(&models.Pairing{ID: id, EventID: 1, CategoryID: 1, Status: models.PairingConfirmed})
	}
	f.pairings.add(&models.Pairing{ID: 204, EventID: 1, CategoryID: 1, Status: models.PairingWithdrawn})

	if _, err := f.service.AssignSlots(context.Background(), final.ID, 201, 202, staffActor); !errors.Is(err, ErrNotPrivileged) {
		t.Errorf("staff err = %v, want ErrNotPrivileged", err)
	}
	if _, err := f.service.AssignSlots(context.Background(), final.ID, 201, 201, organizerActor); !errors.Is(err, ErrDuplicatePairing) {
		t.Errorf("duplicate err = %v, want ErrDuplicatePairing", err)
	}
	if _, err := f.service.AssignSlots(context.Background(), final.ID, 201, 204, organizerActor); !errors.Is(err, ErrPairingInvalid) {
		t.Errorf("withdrawn err = %v, want ErrPairingInvalid", err)
	}

	updated, err := f.service.AssignSlots(context.Background(), final.ID, 201, 202, organizerActor)
	if err != nil {
		t.Fatalf("AssignSlots: %v", err)
	}
	if *updated.PairingAID != 201 || *updated.PairingBID != 202 {
		t.Errorf("slots = %v/%v, want 201/202", updated.PairingAID, updated.PairingBID)
	}
}

func TestAssignSlotsRejectsPairingUsedInSameRound(t *testing.T) {
	f := newMatchServiceFixture()
	semifinal := models.KnockoutRound(models.SideMain, 2)
	a, b := 301, 302
	f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1, Round: semifinal, RoundLabel: semifinal.Label(),
		PairingAID: &a, PairingBID: &b, Position: 0,
	})
	vacant := f.matches.add(&models.Match{
		EventID: 1, CategoryID: 1, Round: semifinal, RoundLabel: semifinal.Label(),
		Position: 1,
	})
	for _, id := range []int{301, 302, 303} {
		f.pairings.add(&models.Pairing{ID: id, EventID: 1, CategoryID: 1, Status: models.PairingConfirmed})
	}

	_, err := f.service.AssignSlots(context.Background(), vacant.ID, 301, 303, organizerActor)
	if !errors.Is(err, ErrPairingAlreadyAssigned) {
		t.Fatalf("err = %v, want ErrPairingAlreadyAssigned", err)
	}
}

func TestAssignSlotsRejectsDecidedMatch(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, _ := f.seedKnockout()
	for _, id := range []int{201, 202} {
		f.pairings.add(&models.Pairing{ID: id, EventID: 1, CategoryID: 1, Status: models.PairingConfirmed})
	}
	if _, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor); err != nil {
		t.Fatalf("ReportScore: %v", err)
	}

	_, err := f.service.AssignSlots(context.Background(), semi0.ID, 201, 202, organizerActor)
	if !errors.Is(err, ErrMatchNotPending) {
		t.Fatalf("err = %v, want ErrMatchNotPending", err)
	}
}

func TestReportScoreUnknownMatch(t *testing.T) {
	f := newMatchServiceFixture()
	_, err := f.service.ReportScore(context.Background(), 999, straightSetsWin(), staffActor)
	if !errors.Is(err, repositories.ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestMarkInProgress(t *testing.T) {
	f := newMatchServiceFixture()
	semi0, _, final := f.seedKnockout()

	updated, err := f.service.MarkInProgress(context.Background(), semi0.ID, staffActor)
	if err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if updated.Status != models.MatchInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", updated.Status)
	}
	if actions := f.audit.actions(); len(actions) != 1 || actions[0] != models.AuditMatchStarted {
		t.Errorf("audit actions = %v", actions)
	}

	// A live match still accepts the final score.
	if _, err := f.service.ReportScore(context.Background(), semi0.ID, straightSetsWin(), staffActor); err != nil {
		t.Fatalf("ReportScore on live match: %v", err)
	}

	// Decided and vacant matches cannot go live.
	if _, err := f.service.MarkInProgress(context.Background(), semi0.ID, staffActor); !errors.Is(err, ErrMatchNotPending) {
		t.Errorf("decided match err = %v, want ErrMatchNotPending", err)
	}
	if _, err := f.service.MarkInProgress(context.Background(), final.ID, staffActor); !errors.Is(err, ErrMatchSlotsIncomplete) {
		t.Errorf("vacant match err = %v, want ErrMatchSlotsIncomplete", err)
	}
}
