package models

// Outcome keys the points table. Padel has no draws; only wins and losses
// accrue points.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// PointsTable maps outcomes to group-stage points.
type PointsTable map[Outcome]int

// DefaultPointsTable is the standard WIN=3 / LOSS=0 scheme.
func DefaultPointsTable() PointsTable {
	return PointsTable{OutcomeWin: 3, OutcomeLoss: 0}
}

// Points returns the table entry, falling back to the default scheme for
// missing keys.
func (t PointsTable) Points(o Outcome) int {
	if t != nil {
		if v, ok := t[o]; ok {
			return v
		}
	}
	switch o {
	case OutcomeWin:
		return 3
	default:
		return 0
	}
}

// StandingsRow is one pairing's accumulated group record. Rows are a derived
// view recomputed on demand from DONE group matches, never persisted as
// authoritative state.
type StandingsRow struct {
	PairingID    int `json:"pairing_id"`
	Points       int `json:"points"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	SetsFor      int `json:"sets_for"`
	SetsAgainst  int `json:"sets_against"`
	GamesFor     int `json:"games_for"`
	GamesAgainst int `json:"games_against"`
}

func (r StandingsRow) SetDiff() int  { return r.SetsFor - r.SetsAgainst }
func (r StandingsRow) GameDiff() int { return r.GamesFor - r.GamesAgainst }
