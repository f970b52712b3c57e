package scoring

import (
	"sort"

	"github.com/orya-live/padel-engine/models"
)

const defaultGroupLabel = "A"

// matchStats is the resolved contribution of one DONE match.
type matchStats struct {
	group    string
	aID, bID int
	winner   models.Side
	sets     []models.SetScore
}

// Compute folds DONE group matches into per-group ranked tables. It is a pure
// function of its inputs: recomputing from the same matches and rules yields
// the identical ordering.
//
// Ordering within a group: points desc, set differential desc, game
// differential desc, head-to-head when exactly two pairings remain tied,
// pairing id asc as the final deterministic tiebreaker.
func Compute(matches []*models.Match, rules *models.ScoreRules, points models.PointsTable) map[string][]models.StandingsRow {
	groups := make(map[string]map[int]*models.StandingsRow)
	ensure := func(group string, pairingID int) *models.StandingsRow {
		bucket, ok := groups[group]
		if !ok {
			bucket = make(map[int]*models.StandingsRow)
			groups[group] = bucket
		}
		row, ok := bucket[pairingID]
		if !ok {
			row = &models.StandingsRow{PairingID: pairingID}
			bucket[pairingID] = row
		}
		return row
	}

	// headToHead counts net wins of the lower pairing id over the higher one,
	// keyed per group.
	type h2hKey struct {
		group    string
		low, high int
	}
	headToHead := make(map[h2hKey]int)

	var scored []matchStats
	for _, m := range matches {
		if m.Round.Phase != models.PhaseGroups {
			continue
		}
		if m.PairingAID == nil || m.PairingBID == nil {
			continue
		}
		group := defaultGroupLabel
		if m.GroupLabel != nil && *m.GroupLabel != "" {
			group = *m.GroupLabel
		}
		// Every fixture participant gets a row even before playing.
		ensure(group, *m.PairingAID)
		ensure(group, *m.PairingBID)

		if m.Status != models.MatchDone || m.Score == nil {
			continue
		}
		winner, err := Validate(*m.Score, nil)
		if err != nil || winner == models.SideNone {
			continue
		}
		sets := m.Score.Sets
		if !m.Score.Result.Normal() && len(sets) == 0 {
			sets = WalkoverSets(winner, rules)
		}
		scored = append(scored, matchStats{
			group:  group,
			aID:    *m.PairingAID,
			bID:    *m.PairingBID,
			winner: winner,
			sets:   sets,
		})
	}

	for _, s := range scored {
		winRow, loseRow := ensure(s.group, s.aID), ensure(s.group, s.bID)
		if s.winner == models.SideAway {
			winRow, loseRow = loseRow, winRow
		}
		winRow.Points += points.Points(models.OutcomeWin)
		winRow.Wins++
		loseRow.Points += points.Points(models.OutcomeLoss)
		loseRow.Losses++

		aRow, bRow := ensure(s.group, s.aID), ensure(s.group, s.bID)
		for _, set := range s.sets {
			aRow.GamesFor += set.A
			aRow.GamesAgainst += set.B
			bRow.GamesFor += set.B
			bRow.GamesAgainst += set.A
			if set.A > set.B {
				aRow.SetsFor++
				bRow.SetsAgainst++
			} else if set.B > set.A {
				bRow.SetsFor++
				aRow.SetsAgainst++
			}
		}

		low, high := s.aID, s.bID
		delta := 1
		if s.winner == models.SideAway {
			delta = -1
		}
		if low > high {
			low, high = high, low
			delta = -delta
		}
		headToHead[h2hKey{s.group, low, high}] += delta
	}

	out := make(map[string][]models.StandingsRow, len(groups))
	for label, bucket := range groups {
		rows := make([]models.StandingsRow, 0, len(bucket))
		for _, row := range bucket {
			rows = append(rows, *row)
		}

		// Head-to-head only arbitrates ties of exactly two pairings; wider
		// ties fall through to the pairing id so the order stays total.
		type tieKey struct{ points, setDiff, gameDiff int }
		tieSizes := make(map[tieKey]int)
		for _, row := range rows {
			tieSizes[tieKey{row.Points, row.SetDiff(), row.GameDiff()}]++
		}

		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			if a.SetDiff() != b.SetDiff() {
				return a.SetDiff() > b.SetDiff()
			}
			if a.GameDiff() != b.GameDiff() {
				return a.GameDiff() > b.GameDiff()
			}
			if tieSizes[tieKey{a.Points, a.SetDiff(), a.GameDiff()}] == 2 {
				low, high := a.PairingID, b.PairingID
				invert := false
				if low > high {
					low, high = high, low
					invert = true
				}
				if net := headToHead[h2hKey{label, low, high}]; net != 0 {
					if invert {
						net = -net
					}
					return net > 0
				}
			}
			return a.PairingID < b.PairingID
		})
		out[label] = rows
	}
	return out
}

// CompareSeedEntries orders qualifier candidates across groups: group rank
// first, then points and differentials, pairing id last. Used to rank extra
// (wildcard) qualifiers and to build the seed list.
func CompareSeedEntries(a, b models.SeedEntry) bool {
	if a.RankInGroup != b.RankInGroup {
		return a.RankInGroup < b.RankInGroup
	}
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.SetDiff != b.SetDiff {
		return a.SetDiff > b.SetDiff
	}
	if a.GameDiff != b.GameDiff {
		return a.GameDiff > b.GameDiff
	}
	if a.SetsFor != b.SetsFor {
		return a.SetsFor > b.SetsFor
	}
	return a.PairingID < b.PairingID
}
