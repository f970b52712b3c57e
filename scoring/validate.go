// Package scoring validates reported padel scores against a category's score
// rules and folds completed group matches into standings tables.
package scoring

import (
	"errors"
	"fmt"

	"github.com/orya-live/padel-engine/models"
)

var (
	// ErrInvalidScore reports a score payload that contradicts the rules.
	ErrInvalidScore = errors.New("reported score violates the score rules")
	// ErrWinnerRequired reports a non-NORMAL result without a declared winner.
	ErrWinnerRequired = errors.New("result type requires an explicit winner side")
)

const walkoverSetGames = 6

// Validate checks a reported score against the category rules and returns the
// winning side. A nil rules pointer disables validation entirely and accepts
// any payload (legacy mode). For WALKOVER/RETIREMENT/INJURY results only the
// explicit winner side is authoritative; sets are optional context.
func Validate(payload models.ScorePayload, rules *models.ScoreRules) (models.Side, error) {
	if !payload.Result.Normal() {
		if payload.WinnerSide != models.SideHome && payload.WinnerSide != models.SideAway {
			return models.SideNone, fmt.Errorf("%w: result %s", ErrWinnerRequired, payload.Result)
		}
		return payload.WinnerSide, nil
	}

	if rules == nil {
		return winnerBySetCount(payload.Sets), nil
	}

	if len(payload.Sets) == 0 {
		return models.SideNone, fmt.Errorf("%w: no sets reported", ErrInvalidScore)
	}
	if len(payload.Sets) > rules.MaxSets {
		return models.SideNone, fmt.Errorf("%w: %d sets exceed the maximum of %d", ErrInvalidScore, len(payload.Sets), rules.MaxSets)
	}

	var aSets, bSets int
	for idx, set := range payload.Sets {
		if set.A == set.B {
			return models.SideNone, fmt.Errorf("%w: set %d is drawn %d-%d", ErrInvalidScore, idx+1, set.A, set.B)
		}
		last := idx == len(payload.Sets)-1
		superAllowed := rules.AllowSuperTieBreak && last &&
			(!rules.SuperTieBreakOnlyDecider || aSets == bSets)
		if !validRegularSet(set, rules) && !(superAllowed && validSuperTieBreak(set, rules)) {
			return models.SideNone, fmt.Errorf("%w: set %d (%d-%d) matches neither a regular set nor an allowed super tie-break", ErrInvalidScore, idx+1, set.A, set.B)
		}
		if set.A > set.B {
			aSets++
		} else {
			bSets++
		}
		// No set may follow a decided match.
		if (aSets == rules.SetsToWin || bSets == rules.SetsToWin) && !last {
			return models.SideNone, fmt.Errorf("%w: sets reported after the match was decided", ErrInvalidScore)
		}
	}

	switch {
	case aSets >= rules.SetsToWin:
		return models.SideHome, nil
	case bSets >= rules.SetsToWin:
		return models.SideAway, nil
	}
	return models.SideNone, fmt.Errorf("%w: no side reached %d set wins", ErrInvalidScore, rules.SetsToWin)
}

func validRegularSet(set models.SetScore, rules *models.ScoreRules) bool {
	winner, loser := set.A, set.B
	if loser > winner {
		winner, loser = loser, winner
	}
	diff := winner - loser
	if winner < rules.GamesToWinSet {
		return false
	}
	if winner == rules.GamesToWinSet {
		return diff >= 2
	}
	if winner == rules.GamesToWinSet+1 && diff >= 2 {
		return true
	}
	if rules.TieBreakAt > 0 && winner == rules.TieBreakTo && loser == rules.TieBreakAt {
		return true
	}
	if rules.AllowExtendedGames || rules.TieBreakAt == 0 {
		return diff >= 2
	}
	return false
}

func validSuperTieBreak(set models.SetScore, rules *models.ScoreRules) bool {
	winner, loser := set.A, set.B
	if loser > winner {
		winner, loser = loser, winner
	}
	return winner >= rules.SuperTieBreakTo && winner-loser >= rules.SuperTieBreakWinBy
}

func winnerBySetCount(sets []models.SetScore) models.Side {
	var a, b int
	for _, set := range sets {
		if set.A > set.B {
			a++
		} else if set.B > set.A {
			b++
		}
	}
	switch {
	case a > b:
		return models.SideHome
	case b > a:
		return models.SideAway
	}
	return models.SideNone
}

// WalkoverSets synthesises the conventional set line for a non-played result
// so that standings arithmetic treats it like a straight-sets win.
func WalkoverSets(winner models.Side, rules *models.ScoreRules) []models.SetScore {
	count := 2
	if rules != nil && rules.SetsToWin > 0 {
		count = rules.SetsToWin
	}
	sets := make([]models.SetScore, count)
	for i := range sets {
		if winner == models.SideHome {
			sets[i] = models.SetScore{A: walkoverSetGames, B: 0}
		} else {
			sets[i] = models.SetScore{A: 0, B: walkoverSetGames}
		}
	}
	return sets
}
