package models

// ScoreRules encodes the set / tie-break / super-tie-break numeric policy of
// a category. A rule set is immutable once attached to a category's active
// configuration; changing it never retroactively invalidates DONE matches.
type ScoreRules struct {
	SetsToWin     int `json:"sets_to_win"`
	MaxSets       int `json:"max_sets"`
	GamesToWinSet int `json:"games_to_win_set"`
	// TieBreakAt/TieBreakTo describe the set tie-break: a set reaching
	// TieBreakAt-all is decided by a tie-break game counted as TieBreakTo.
	// Zero disables the tie-break.
	TieBreakAt int `json:"tie_break_at"`
	TieBreakTo int `json:"tie_break_to"`

	AllowSuperTieBreak       bool `json:"allow_super_tie_break"`
	SuperTieBreakTo          int  `json:"super_tie_break_to"`
	SuperTieBreakWinBy       int  `json:"super_tie_break_win_by"`
	SuperTieBreakOnlyDecider bool `json:"super_tie_break_only_decider"`

	// AllowExtendedGames permits sets decided past GamesToWinSet+1 without a
	// tie-break (advantage sets).
	AllowExtendedGames bool `json:"allow_extended_games"`
}

// DefaultScoreRules returns the standard padel policy: best of three 6-game
// sets with a 7-point tie-break at 6-6 and a 10-point super tie-break as the
// decider.
func DefaultScoreRules() *ScoreRules {
	return &ScoreRules{
		SetsToWin:                2,
		MaxSets:                  3,
		GamesToWinSet:            6,
		TieBreakAt:               6,
		TieBreakTo:               7,
		AllowSuperTieBreak:       true,
		SuperTieBreakTo:          10,
		SuperTieBreakWinBy:       2,
		SuperTieBreakOnlyDecider: true,
		AllowExtendedGames:       false,
	}
}

// Normalize clamps out-of-range fields to sane values, mirroring how the
// organizer configuration path sanitizes input. Receiver is mutated.
func (r *ScoreRules) Normalize() {
	r.SetsToWin = clampInt(r.SetsToWin, 2, 1, 5)
	minMax := r.SetsToWin*2 - 1
	r.MaxSets = clampInt(r.MaxSets, minMax, r.SetsToWin, 9)
	r.GamesToWinSet = clampInt(r.GamesToWinSet, 6, 1, 9)
	if r.TieBreakAt != 0 {
		r.TieBreakAt = clampInt(r.TieBreakAt, r.GamesToWinSet, 1, 12)
		r.TieBreakTo = clampInt(r.TieBreakTo, r.TieBreakAt+1, r.TieBreakAt+1, 15)
	} else {
		r.TieBreakTo = 0
	}
	r.SuperTieBreakTo = clampInt(r.SuperTieBreakTo, 10, 5, 20)
	r.SuperTieBreakWinBy = clampInt(r.SuperTieBreakWinBy, 2, 1, 5)
}

func clampInt(v, fallback, min, max int) int {
	if v == 0 {
		v = fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
