package brackets

import (
	"context"
	"testing"

	"github.com/orya-live/padel-engine/models"
)

// directSeeds builds a seed list ranked purely by position, with no group
// metadata, as produced by direct manual seeding.
func directSeeds(n int) []models.SeedEntry {
	out := make([]models.SeedEntry, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.SeedEntry{PairingID: 100 + i, RankInGroup: i})
	}
	return out
}

func TestGenerateKnockoutZeroSeeds(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	_, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{EventID: 1, CategoryID: 7})
	if err != ErrNoSeeds {
		t.Fatalf("expected ErrNoSeeds, got %v", err)
	}
}

func TestGenerateKnockoutSeedPlacement(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      directSeeds(4),
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	if len(bracket.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(bracket.Matches))
	}
	semi1, semi2, final := bracket.Matches[0], bracket.Matches[1], bracket.Matches[2]

	if semi1.RoundLabel != "SEMIFINAL" || semi2.RoundLabel != "SEMIFINAL" {
		t.Errorf("first round labels = %q, %q, want SEMIFINAL", semi1.RoundLabel, semi2.RoundLabel)
	}
	if final.RoundLabel != "FINAL" {
		t.Errorf("last round label = %q, want FINAL", final.RoundLabel)
	}
	// Seed 1 meets seed 4, seed 2 meets seed 3.
	if *semi1.PairingAID != 101 || *semi1.PairingBID != 104 {
		t.Errorf("semifinal 1 = %d vs %d, want 101 vs 104", *semi1.PairingAID, *semi1.PairingBID)
	}
	if *semi2.PairingAID != 102 || *semi2.PairingBID != 103 {
		t.Errorf("semifinal 2 = %d vs %d, want 102 vs 103", *semi2.PairingAID, *semi2.PairingBID)
	}
	if final.PairingAID != nil || final.PairingBID != nil {
		t.Errorf("final should start vacant, got %v vs %v", final.PairingAID, final.PairingBID)
	}
}

func TestGenerateKnockoutByesAutoAdvance(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      directSeeds(3),
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	// Bracket of 4: two semifinals, one a bye for seed 1, plus the final.
	if len(bracket.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(bracket.Matches))
	}
	bye := bracket.Matches[0]
	if !bye.IsBye() {
		t.Fatalf("expected match at position 0 to be a bye, got %+v", bye)
	}
	if bye.Status != models.MatchDone {
		t.Errorf("bye status = %s, want DONE", bye.Status)
	}
	if bye.Score != nil {
		t.Errorf("bye carries a score payload: %+v", bye.Score)
	}
	if bye.WinnerPairingID == nil || *bye.WinnerPairingID != 101 {
		t.Errorf("bye winner = %v, want 101", bye.WinnerPairingID)
	}

	final := bracket.Matches[2]
	if final.RoundLabel != "FINAL" {
		t.Fatalf("expected final last, got %q", final.RoundLabel)
	}
	if final.PairingAID == nil || *final.PairingAID != 101 {
		t.Errorf("bye winner not fed into the final: %v", final.PairingAID)
	}
	if final.PairingBID != nil {
		t.Errorf("final slot B should await the other semifinal, got %d", *final.PairingBID)
	}
}

func TestGenerateKnockoutBracketSizes(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	tests := []struct {
		seeds       int
		wantMatches int
		wantByes    int
	}{
		{2, 1, 0},
		{5, 7, 3},
		{8, 7, 0},
		{9, 15, 7},
		{16, 15, 0},
	}
	for _, tt := range tests {
		bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
			EventID:    1,
			CategoryID: 7,
			Seeds:      directSeeds(tt.seeds),
		})
		if err != nil {
			t.Fatalf("GenerateKnockout(%d seeds): %v", tt.seeds, err)
		}
		if len(bracket.Matches) != tt.wantMatches {
			t.Errorf("%d seeds: %d matches, want %d", tt.seeds, len(bracket.Matches), tt.wantMatches)
		}
		byes := 0
		finals := 0
		for _, m := range bracket.Matches {
			// A half-seated later-round match (one bye winner fed forward,
			// the other slot still pending) is not a bye.
			if m.Status == models.MatchDone && m.Score == nil {
				byes++
			}
			if m.RoundLabel == "FINAL" {
				finals++
			}
		}
		if byes != tt.wantByes {
			t.Errorf("%d seeds: %d byes, want %d", tt.seeds, byes, tt.wantByes)
		}
		if finals != 1 {
			t.Errorf("%d seeds: %d FINAL rounds, want exactly 1", tt.seeds, finals)
		}
	}
}

func TestGenerateKnockoutAvoidsSameGroupFirstRound(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	// Qualifiers A1, B1 then the runners-up; the mirror pairing would pit A1
	// against A2.
	seeds := []models.SeedEntry{
		{PairingID: 11, GroupLabel: "A", RankInGroup: 1, Points: 9},
		{PairingID: 21, GroupLabel: "B", RankInGroup: 1, Points: 8},
		{PairingID: 22, GroupLabel: "B", RankInGroup: 2, Points: 5},
		{PairingID: 12, GroupLabel: "A", RankInGroup: 2, Points: 4},
	}
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      seeds,
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	groupOf := map[int]string{11: "A", 12: "A", 21: "B", 22: "B"}
	for _, m := range bracket.Matches {
		if m.PairingAID == nil || m.PairingBID == nil {
			continue
		}
		if groupOf[*m.PairingAID] == groupOf[*m.PairingBID] {
			t.Errorf("%s: %d vs %d come from the same group", m.RoundLabel, *m.PairingAID, *m.PairingBID)
		}
	}
}

// Three groups of two qualifiers force a same-group mirror pair while the
// top seeds sit in byes; the swap must stay inside the unconsumed slots so
// nobody is seated twice or dropped from the draw.
func TestGenerateKnockoutThreeGroupsSeatsEveryQualifierOnce(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	seeds := []models.SeedEntry{
		{PairingID: 11, GroupLabel: "A", RankInGroup: 1, Points: 9},
		{PairingID: 21, GroupLabel: "B", RankInGroup: 1, Points: 8},
		{PairingID: 31, GroupLabel: "C", RankInGroup: 1, Points: 7},
		{PairingID: 12, GroupLabel: "A", RankInGroup: 2, Points: 6},
		{PairingID: 22, GroupLabel: "B", RankInGroup: 2, Points: 5},
		{PairingID: 32, GroupLabel: "C", RankInGroup: 2, Points: 4},
	}
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      seeds,
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	seated := map[int]int{}
	for _, m := range bracket.Matches {
		if m.RoundLabel != "QUARTERFINAL" {
			continue
		}
		if m.PairingAID != nil {
			seated[*m.PairingAID]++
		}
		if m.PairingBID != nil {
			seated[*m.PairingBID]++
		}
	}
	for _, s := range seeds {
		if seated[s.PairingID] != 1 {
			t.Errorf("pairing %d seated %d times in the first round, want exactly once", s.PairingID, seated[s.PairingID])
		}
	}

	groupOf := map[int]string{11: "A", 12: "A", 21: "B", 22: "B", 31: "C", 32: "C"}
	for _, m := range bracket.Matches {
		if m.RoundLabel != "QUARTERFINAL" || m.PairingAID == nil || m.PairingBID == nil {
			continue
		}
		if groupOf[*m.PairingAID] == groupOf[*m.PairingBID] {
			t.Errorf("%d vs %d come from the same group", *m.PairingAID, *m.PairingBID)
		}
	}
}

func TestGenerateKnockoutDualBracket(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      directSeeds(8),
		Config:     KnockoutConfig{DualBracket: true},
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	counts := map[string]int{}
	for _, m := range bracket.Matches {
		counts[m.RoundLabel]++
	}
	want := map[string]int{
		"A QUARTERFINAL": 4,
		"A SEMIFINAL":    2,
		"A FINAL":        1,
		"B SEMIFINAL":    2,
		"B FINAL":        1,
	}
	for label, n := range want {
		if counts[label] != n {
			t.Errorf("round %q has %d matches, want %d (all: %v)", label, counts[label], n, counts)
		}
	}

	// The B draw starts empty; losers are seated as main-draw results land.
	for _, m := range bracket.Matches {
		if m.Round.Side == models.SideB && (m.PairingAID != nil || m.PairingBID != nil) {
			t.Errorf("consolation match %q position %d should start vacant", m.RoundLabel, m.Position)
		}
	}
}

func TestGenerateKnockoutDoubleElimination(t *testing.T) {
	gen := NewKnockoutBracketGenerator()
	bracket, err := gen.GenerateKnockout(context.Background(), GenerateKnockoutParams{
		EventID:    1,
		CategoryID: 7,
		Seeds:      directSeeds(8),
		Config:     KnockoutConfig{DoubleElimination: true},
	})
	if err != nil {
		t.Fatalf("GenerateKnockout: %v", err)
	}

	counts := map[string]int{}
	for _, m := range bracket.Matches {
		counts[m.RoundLabel]++
	}
	want := map[string]int{
		"A QUARTERFINAL": 4,
		"A SEMIFINAL":    2,
		"A FINAL":        1,
		"B L1":           2,
		"B L2":           2,
		"B L3":           1,
		"B L4":           1,
		"A GF":           1,
		"A GF2":          1,
	}
	for label, n := range want {
		if counts[label] != n {
			t.Errorf("round %q has %d matches, want %d (all: %v)", label, counts[label], n, counts)
		}
	}
	if len(bracket.Matches) != 15 {
		t.Errorf("expected 15 matches, got %d", len(bracket.Matches))
	}
}
