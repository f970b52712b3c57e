package brackets

import (
	"context"
	"sort"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/scoring"
)

type KnockoutBracketGenerator struct{}

func NewKnockoutBracketGenerator() KnockoutGenerator {
	return &KnockoutBracketGenerator{}
}

func (g *KnockoutBracketGenerator) Name() string {
	return "SingleElimination"
}

// GenerateKnockout builds the elimination draw from the ranked seed list.
// Bracket size is the next power of two; seed 1 meets the lowest seed, and a
// bye is placed opposite the highest remaining seed. First-round opponents
// from the same group are swapped apart when an alternative entrant exists.
// Byes resolve to DONE immediately and the present pairing is fed forward.
func (g *KnockoutBracketGenerator) GenerateKnockout(ctx context.Context, params GenerateKnockoutParams) (*KnockoutBracket, error) {
	if len(params.Seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if len(params.Seeds) < 2 {
		return nil, ErrNotEnoughPairings
	}

	seeds := make([]models.SeedEntry, len(params.Seeds))
	copy(seeds, params.Seeds)
	sort.SliceStable(seeds, func(i, j int) bool {
		return scoring.CompareSeedEntries(seeds[i], seeds[j])
	})

	side := models.SideMain
	if params.Config.DualBracket || params.Config.DoubleElimination {
		side = models.SideA
	}

	bracketSize := nextPowerOfTwo(len(seeds))
	entrants := make([]*models.SeedEntry, bracketSize)
	for i := range seeds {
		entrants[i] = &seeds[i]
	}

	pairs := pairEntrants(entrants)

	// Winners bracket, round by round, vacant slots in later rounds.
	rounds := make([][]*models.Match, 0)
	first := make([]*models.Match, 0, len(pairs))
	firstRound := models.KnockoutRound(side, len(pairs))
	for i, pair := range pairs {
		m := &models.Match{
			EventID:    params.EventID,
			CategoryID: params.CategoryID,
			Round:      firstRound,
			RoundLabel: firstRound.Label(),
			Position:   i,
			Status:     models.MatchPending,
		}
		if pair.a != nil {
			id := pair.a.PairingID
			m.PairingAID = &id
		}
		if pair.b != nil {
			id := pair.b.PairingID
			m.PairingBID = &id
		}
		first = append(first, m)
	}
	rounds = append(rounds, first)

	for count := len(pairs) / 2; count >= 1; count /= 2 {
		round := models.KnockoutRound(side, count)
		matches := make([]*models.Match, 0, count)
		for i := 0; i < count; i++ {
			matches = append(matches, &models.Match{
				EventID:    params.EventID,
				CategoryID: params.CategoryID,
				Round:      round,
				RoundLabel: round.Label(),
				Position:   i,
				Status:     models.MatchPending,
			})
		}
		rounds = append(rounds, matches)
	}

	resolveByes(rounds)

	bracket := &KnockoutBracket{}
	for _, round := range rounds {
		bracket.Matches = append(bracket.Matches, round...)
	}

	if params.Config.DoubleElimination {
		bracket.Matches = append(bracket.Matches, losersBracket(params, bracketSize)...)
		bracket.Matches = append(bracket.Matches, grandFinals(params)...)
	} else if params.Config.DualBracket {
		bracket.Matches = append(bracket.Matches, consolationBracket(params, len(pairs))...)
	}

	return bracket, nil
}

type seedPair struct {
	a, b *models.SeedEntry
}

// pairEntrants applies the mirror pairing (seed i vs seed size-1-i) and then
// swaps same-group first-round opponents apart where possible. Only slots
// between the current pair's ends are candidates: everything outside has been
// consumed by an earlier pair, and trading with a consumed slot would seat
// one entrant twice and drop another. Direct seeds carry no group label and
// are never swapped.
func pairEntrants(entrants []*models.SeedEntry) []seedPair {
	size := len(entrants)
	pairs := make([]seedPair, 0, size/2)
	for i := 0; i < size/2; i++ {
		mirror := size - 1 - i
		a := entrants[i]
		b := entrants[mirror]
		if a != nil && b != nil && a.GroupLabel != "" && a.GroupLabel == b.GroupLabel {
			// Scanning from the mirror end trades with the lowest remaining
			// seed first.
			for j := mirror - 1; j > i; j-- {
				cand := entrants[j]
				if cand == nil || cand.GroupLabel == a.GroupLabel {
					continue
				}
				entrants[j], entrants[mirror] = b, cand
				b = cand
				break
			}
		}
		pairs = append(pairs, seedPair{a: a, b: b})
	}
	return pairs
}

// resolveByes marks single-occupant first-round matches DONE and seats the
// advancing pairing in the following round.
func resolveByes(rounds [][]*models.Match) {
	if len(rounds) == 0 {
		return
	}
	for pos, m := range rounds[0] {
		if !m.IsBye() {
			continue
		}
		winner := m.PairingAID
		if winner == nil {
			winner = m.PairingBID
		}
		id := *winner
		m.Status = models.MatchDone
		m.WinnerPairingID = &id
		if len(rounds) > 1 {
			next := rounds[1][pos/2]
			seated := id
			if pos%2 == 0 {
				next.PairingAID = &seated
			} else {
				next.PairingBID = &seated
			}
		}
	}
}

// consolationBracket is the B draw of a dual (quadro A/B) event: a vacant
// elimination tree sized for the main draw's first-round losers. Slots fill
// as main-draw results come in.
func consolationBracket(params GenerateKnockoutParams, mainFirstRoundMatches int) []*models.Match {
	entrantCount := mainFirstRoundMatches
	if entrantCount < 2 {
		return nil
	}
	matches := make([]*models.Match, 0)
	for count := entrantCount / 2; count >= 1; count /= 2 {
		round := models.KnockoutRound(models.SideB, count)
		for i := 0; i < count; i++ {
			matches = append(matches, &models.Match{
				EventID:    params.EventID,
				CategoryID: params.CategoryID,
				Round:      round,
				RoundLabel: round.Label(),
				Position:   i,
				Status:     models.MatchPending,
			})
		}
	}
	return matches
}

// losersBracket emits the double-elimination lower bracket: alternating
// minor/major rounds, halving every second round, down to a single match.
// All slots start vacant; the engine seats losers as upper-bracket matches
// finish.
func losersBracket(params GenerateKnockoutParams, bracketSize int) []*models.Match {
	if bracketSize < 4 {
		return nil
	}
	matches := make([]*models.Match, 0)
	roundNumber := 1
	for size := bracketSize / 4; size >= 1; size /= 2 {
		for rep := 0; rep < 2; rep++ {
			round := models.LosersRound(roundNumber)
			for i := 0; i < size; i++ {
				matches = append(matches, &models.Match{
					EventID:    params.EventID,
					CategoryID: params.CategoryID,
					Round:      round,
					RoundLabel: round.Label(),
					Position:   i,
					Status:     models.MatchPending,
				})
			}
			roundNumber++
		}
	}
	return matches
}

// grandFinals emits GF and the conditional GF2 reset. GF2 stays PENDING until
// GF is decided: it is cancelled when the upper-bracket entrant wins GF.
func grandFinals(params GenerateKnockoutParams) []*models.Match {
	out := make([]*models.Match, 0, 2)
	for _, reset := range []bool{false, true} {
		round := models.GrandFinal(reset)
		out = append(out, &models.Match{
			EventID:    params.EventID,
			CategoryID: params.CategoryID,
			Round:      round,
			RoundLabel: round.Label(),
			Position:   0,
			Status:     models.MatchPending,
		})
	}
	return out
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
