package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxManager runs the callback without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) add(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	if m.Dispute == "" {
		m.Dispute = models.DisputeNone
	}
	stored := *m
	r.matches[m.ID] = &stored
	return m
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.add(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakeMatchRepo) ListByCategory(ctx context.Context, categoryID int, phase *models.Phase, status *models.MatchStatus) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, stored := range r.matches {
		if stored.CategoryID != categoryID {
			continue
		}
		if phase != nil && stored.Round.Phase != *phase {
			continue
		}
		if status != nil && stored.Status != *status {
			continue
		}
		m := *stored
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round.Less(out[j].Round)
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, stored := range r.matches {
		if stored.EventID == eventID {
			m := *stored
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id int, score *models.ScorePayload, status models.MatchStatus, winnerPairingID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Score = score
	stored.Status = status
	stored.WinnerPairingID = winnerPairingID
	return nil
}

func (r *fakeMatchRepo) UpdateSlots(ctx context.Context, exec repositories.SQLExecutor, id int, pairingAID, pairingBID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.PairingAID = pairingAID
	stored.PairingBID = pairingBID
	return nil
}

func (r *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Status = status
	return nil
}

func (r *fakeMatchRepo) UpdateDisputeStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.DisputeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Dispute = status
	return nil
}

func (r *fakeMatchRepo) DeleteByCategoryPhase(ctx context.Context, exec repositories.SQLExecutor, categoryID int, phase models.Phase) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, stored := range r.matches {
		if stored.CategoryID == categoryID && stored.Round.Phase == phase {
			delete(r.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakePairingRepo struct {
	mu       sync.Mutex
	pairings map[int]*models.Pairing
}

func newFakePairingRepo() *fakePairingRepo {
	return &fakePairingRepo{pairings: make(map[int]*models.Pairing)}
}

func (r *fakePairingRepo) add(p *models.Pairing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	r.pairings[p.ID] = &stored
}

func (r *fakePairingRepo) GetByID(ctx context.Context, id int) (*models.Pairing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.pairings[id]
	if !ok {
		return nil, repositories.ErrPairingNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakePairingRepo) ListByCategory(ctx context.Context, categoryID int, status *models.PairingStatus) ([]*models.Pairing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Pairing
	for _, stored := range r.pairings {
		if stored.CategoryID != categoryID {
			continue
		}
		if status != nil && stored.Status != *status {
			continue
		}
		p := *stored
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakePairingRepo) CountConfirmedByEvent(ctx context.Context, eventID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.pairings {
		if stored.EventID == eventID && stored.Status == models.PairingConfirmed {
			count++
		}
	}
	return count, nil
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[int]*models.CategoryConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: make(map[int]*models.CategoryConfig)}
}

func (r *fakeConfigRepo) put(cfg *models.CategoryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *cfg
	r.configs[cfg.CategoryID] = &stored
}

func (r *fakeConfigRepo) Get(ctx context.Context, categoryID int) (*models.CategoryConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.configs[categoryID]
	if !ok {
		return nil, repositories.ErrConfigNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakeConfigRepo) Save(ctx context.Context, exec repositories.SQLExecutor, cfg *models.CategoryConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.configs[cfg.CategoryID]
	if !ok {
		if cfg.Version != 0 {
			return repositories.ErrConfigVersionConflict
		}
		cfg.Version = 1
	} else {
		if stored.Version != cfg.Version {
			return repositories.ErrConfigVersionConflict
		}
		cfg.Version++
	}
	cfg.UpdatedAt = time.Now()
	copyCfg := *cfg
	r.configs[cfg.CategoryID] = &copyCfg
	return nil
}

func (r *fakeConfigRepo) MarkKnockoutGenerated(ctx context.Context, exec repositories.SQLExecutor, categoryID int, generatedBy string, overrideUsed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.configs[categoryID]
	if !ok {
		return repositories.ErrConfigNotFound
	}
	now := time.Now()
	stored.KnockoutGeneratedAt = &now
	stored.KnockoutGeneratedBy = &generatedBy
	stored.KnockoutOverrideUsed = overrideUsed
	return nil
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	nextID    int
	snapshots []*models.SeedSnapshot
}

func (r *fakeSnapshotRepo) Create(ctx context.Context, exec repositories.SQLExecutor, snapshot *models.SeedSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	snapshot.ID = r.nextID
	snapshot.CreatedAt = time.Now()
	stored := *snapshot
	r.snapshots = append(r.snapshots, &stored)
	return nil
}

func (r *fakeSnapshotRepo) GetByID(ctx context.Context, id int) (*models.SeedSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.snapshots {
		if s.ID == id {
			out := *s
			return &out, nil
		}
	}
	return nil, repositories.ErrSnapshotNotFound
}

func (r *fakeSnapshotRepo) ListByCategory(ctx context.Context, categoryID int) ([]*models.SeedSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SeedSnapshot
	for _, s := range r.snapshots {
		if s.CategoryID == categoryID {
			copySnap := *s
			out = append(out, &copySnap)
		}
	}
	return out, nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) put(t *models.Tournament) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *t
	r.tournaments[t.EventID] = &stored
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[tournament.EventID]; ok {
		return repositories.ErrTournamentDuplicate
	}
	if tournament.Status == "" {
		tournament.Status = models.LifecycleHidden
	}
	tournament.CreatedAt = time.Now()
	stored := *tournament
	r.tournaments[tournament.EventID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByEventID(ctx context.Context, eventID int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tournaments[eventID]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, eventID int, from, to models.LifecycleState, reachedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tournaments[eventID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if stored.Status != from {
		return repositories.ErrLifecycleConflict
	}
	stored.Status = to
	if stored.StateReachedAt == nil {
		stored.StateReachedAt = make(map[models.LifecycleState]time.Time)
	}
	stored.StateReachedAt[to] = reachedAt
	return nil
}

type fakeDisputeRepo struct {
	mu       sync.Mutex
	nextID   int
	disputes map[int]*models.Dispute
	byMatch  map[int]int
}

func newFakeDisputeRepo() *fakeDisputeRepo {
	return &fakeDisputeRepo{
		disputes: make(map[int]*models.Dispute),
		byMatch:  make(map[int]int),
	}
}

func (r *fakeDisputeRepo) Create(ctx context.Context, exec repositories.SQLExecutor, dispute *models.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byMatch[dispute.MatchID]; ok && r.disputes[id].Status == models.DisputeOpen {
		return repositories.ErrDisputeAlreadyOpen
	}
	r.nextID++
	dispute.ID = r.nextID
	dispute.Status = models.DisputeOpen
	dispute.OpenedAt = time.Now()
	stored := *dispute
	r.disputes[dispute.ID] = &stored
	r.byMatch[dispute.MatchID] = dispute.ID
	return nil
}

func (r *fakeDisputeRepo) GetByID(ctx context.Context, id int) (*models.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.disputes[id]
	if !ok {
		return nil, repositories.ErrDisputeNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakeDisputeRepo) GetOpenByMatch(ctx context.Context, matchID int) (*models.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMatch[matchID]
	if !ok || r.disputes[id].Status != models.DisputeOpen {
		return nil, repositories.ErrDisputeNotFound
	}
	out := *r.disputes[id]
	return &out, nil
}

func (r *fakeDisputeRepo) Resolve(ctx context.Context, exec repositories.SQLExecutor, id int, resolutionNote, resolverID string, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.disputes[id]
	if !ok || stored.Status != models.DisputeOpen {
		return repositories.ErrDisputeNotFound
	}
	stored.Status = models.DisputeResolved
	stored.ResolutionNote = &resolutionNote
	stored.ResolverID = &resolverID
	stored.ResolvedAt = &resolvedAt
	return nil
}

func (r *fakeDisputeRepo) ListByEvent(ctx context.Context, eventID int, status *models.DisputeStatus) ([]*models.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Dispute
	for _, stored := range r.disputes {
		if status != nil && stored.Status != *status {
			continue
		}
		d := *stored
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAuditSink struct {
	mu      sync.Mutex
	entries []*models.AuditEntry
}

func (r *fakeAuditSink) Record(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}
