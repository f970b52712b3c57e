package brackets

import (
	"sort"

	"github.com/orya-live/padel-engine/models"
)

// SlotAssignment seats a pairing into one side of a pending match.
type SlotAssignment struct {
	Match     *models.Match
	Side      models.Side
	PairingID int
}

// Advancement is the set of follow-up mutations a decided knockout match
// implies: winner (and, in dual/double brackets, loser) seatings plus any
// match cancellations (the GF2 reset when the upper-bracket entrant wins GF).
type Advancement struct {
	Assignments []SlotAssignment
	Cancel      []*models.Match
}

// PlanAdvancement computes where the winner and loser of the decided match
// go next. The matches slice must hold the category's full knockout phase;
// group matches never advance anyone.
func PlanAdvancement(matches []*models.Match, decided *models.Match, winnerID int) Advancement {
	var plan Advancement
	if decided.Round.Phase != models.PhaseKnockout {
		return plan
	}

	loserID := 0
	if decided.PairingAID != nil && *decided.PairingAID != winnerID {
		loserID = *decided.PairingAID
	} else if decided.PairingBID != nil && *decided.PairingBID != winnerID {
		loserID = *decided.PairingBID
	}

	idx := indexMatches(matches)

	switch decided.Round.Kind {
	case models.KindGrandFinal:
		plan = planGrandFinal(idx, decided, winnerID)
	case models.KindGrandFinalReset:
		// Конец сетки.
	case models.KindLosers:
		plan = planLosersRound(idx, decided, winnerID)
	default:
		plan = planUpperRound(idx, decided, winnerID, loserID)
	}
	return plan
}

type bracketIndex struct {
	// winnersRounds is the ordered main (or A-side) elimination path.
	winnersRounds []models.Round
	// consolationRounds is the B draw of a dual-bracket event.
	consolationRounds []models.Round
	byRound           map[models.Round][]*models.Match
	grandFinal        *models.Match
	grandFinalReset   *models.Match
	losersMax         int
}

func indexMatches(matches []*models.Match) *bracketIndex {
	idx := &bracketIndex{byRound: make(map[models.Round][]*models.Match)}
	winnersSeen := make(map[models.Round]bool)
	consolationSeen := make(map[models.Round]bool)

	for _, m := range matches {
		if m.Round.Phase != models.PhaseKnockout {
			continue
		}
		idx.byRound[m.Round] = append(idx.byRound[m.Round], m)
		switch m.Round.Kind {
		case models.KindGrandFinal:
			idx.grandFinal = m
		case models.KindGrandFinalReset:
			idx.grandFinalReset = m
		case models.KindLosers:
			if m.Round.Number > idx.losersMax {
				idx.losersMax = m.Round.Number
			}
		default:
			if m.Round.Side == models.SideB {
				consolationSeen[m.Round] = true
			} else {
				winnersSeen[m.Round] = true
			}
		}
	}
	for round := range winnersSeen {
		idx.winnersRounds = append(idx.winnersRounds, round)
	}
	for round := range consolationSeen {
		idx.consolationRounds = append(idx.consolationRounds, round)
	}
	sort.Slice(idx.winnersRounds, func(i, j int) bool { return idx.winnersRounds[i].Less(idx.winnersRounds[j]) })
	sort.Slice(idx.consolationRounds, func(i, j int) bool { return idx.consolationRounds[i].Less(idx.consolationRounds[j]) })
	for _, ms := range idx.byRound {
		sort.Slice(ms, func(i, j int) bool { return ms[i].Position < ms[j].Position })
	}
	return idx
}

func (idx *bracketIndex) matchAt(round models.Round, position int) *models.Match {
	for _, m := range idx.byRound[round] {
		if m.Position == position {
			return m
		}
	}
	return nil
}

func roundIndexOf(rounds []models.Round, round models.Round) int {
	for i, r := range rounds {
		if r == round {
			return i
		}
	}
	return -1
}

func planUpperRound(idx *bracketIndex, decided *models.Match, winnerID, loserID int) Advancement {
	var plan Advancement

	sequence := idx.winnersRounds
	if decided.Round.Side == models.SideB {
		sequence = idx.consolationRounds
	}
	pos := decided.Position
	i := roundIndexOf(sequence, decided.Round)
	if i < 0 {
		return plan
	}

	if i+1 < len(sequence) {
		if next := idx.matchAt(sequence[i+1], pos/2); next != nil {
			plan.Assignments = append(plan.Assignments, SlotAssignment{
				Match: next, Side: slotForPosition(pos), PairingID: winnerID,
			})
		}
	} else if idx.grandFinal != nil && decided.Round.Side != models.SideB {
		// Upper-bracket champion waits in the grand final's home slot.
		plan.Assignments = append(plan.Assignments, SlotAssignment{
			Match: idx.grandFinal, Side: models.SideHome, PairingID: winnerID,
		})
	}

	if loserID == 0 || decided.Round.Side == models.SideB {
		return plan
	}

	if idx.losersMax > 0 {
		// Double elimination: round 1 losers pair up in L1, later losers
		// join the matching major round.
		if i == 0 {
			if next := idx.matchAt(models.LosersRound(1), pos/2); next != nil {
				plan.Assignments = append(plan.Assignments, SlotAssignment{
					Match: next, Side: slotForPosition(pos), PairingID: loserID,
				})
			}
		} else if next := idx.matchAt(models.LosersRound(2*i), pos); next != nil {
			plan.Assignments = append(plan.Assignments, SlotAssignment{
				Match: next, Side: models.SideAway, PairingID: loserID,
			})
		}
	} else if len(idx.consolationRounds) > 0 && i == 0 {
		// Dual bracket: first-round losers seed the B draw.
		if next := idx.matchAt(idx.consolationRounds[0], pos/2); next != nil {
			plan.Assignments = append(plan.Assignments, SlotAssignment{
				Match: next, Side: slotForPosition(pos), PairingID: loserID,
			})
		}
	}
	return plan
}

func planLosersRound(idx *bracketIndex, decided *models.Match, winnerID int) Advancement {
	var plan Advancement
	n := decided.Round.Number
	pos := decided.Position

	if n < idx.losersMax {
		next := idx.matchAt(models.LosersRound(n+1), losersNextPosition(n, pos))
		if next != nil {
			side := models.SideHome
			if n%2 == 0 {
				side = slotForPosition(pos)
			}
			plan.Assignments = append(plan.Assignments, SlotAssignment{
				Match: next, Side: side, PairingID: winnerID,
			})
		}
	} else if idx.grandFinal != nil {
		plan.Assignments = append(plan.Assignments, SlotAssignment{
			Match: idx.grandFinal, Side: models.SideAway, PairingID: winnerID,
		})
	}
	return plan
}

// losersNextPosition: minor rounds (odd) feed the same-sized major round at
// the same position; major rounds (even) halve into the next minor round.
func losersNextPosition(n, pos int) int {
	if n%2 == 1 {
		return pos
	}
	return pos / 2
}

func slotForPosition(pos int) models.Side {
	if pos%2 == 0 {
		return models.SideHome
	}
	return models.SideAway
}

func planGrandFinal(idx *bracketIndex, decided *models.Match, winnerID int) Advancement {
	var plan Advancement
	reset := idx.grandFinalReset
	if reset == nil {
		return plan
	}
	upper := decided.PairingOn(models.SideHome)
	if upper != nil && *upper == winnerID {
		// Upper entrant never lost; the reset final is not played.
		plan.Cancel = append(plan.Cancel, reset)
		return plan
	}
	// The lower entrant evened the score; the same two meet again.
	if a := decided.PairingOn(models.SideHome); a != nil {
		plan.Assignments = append(plan.Assignments, SlotAssignment{Match: reset, Side: models.SideHome, PairingID: *a})
	}
	if b := decided.PairingOn(models.SideAway); b != nil {
		plan.Assignments = append(plan.Assignments, SlotAssignment{Match: reset, Side: models.SideAway, PairingID: *b})
	}
	return plan
}
