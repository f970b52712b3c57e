package brackets

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/orya-live/padel-engine/models"
)

type GroupStageGenerator struct{}

func NewGroupStageGenerator() GroupGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) Name() string {
	return "GroupStage"
}

// GenerateGroups partitions the confirmed pairings into groups and emits the
// full round-robin match set, one "Jornada n" round per circle-method step.
// Regeneration with the same salt reproduces the same draw.
func (g *GroupStageGenerator) GenerateGroups(ctx context.Context, params GenerateGroupsParams) (*GroupStage, error) {
	pairings := confirmedOnly(params.Pairings)
	if len(pairings) < 2 {
		return nil, ErrNotEnoughPairings
	}
	cfg := params.Config

	sortBySeed(pairings)
	ids := make([]int, len(pairings))
	idSet := make(map[int]struct{}, len(pairings))
	for i, p := range pairings {
		ids[i] = p.ID
		idSet[p.ID] = struct{}{}
	}

	manual := make(map[int]int)
	manualMaxIdx := -1
	if cfg.Mode == models.AssignManual {
		for pairingID, label := range cfg.ManualAssignments {
			idx, ok := groupIndex(label)
			if !ok {
				continue
			}
			if _, known := idSet[pairingID]; !known {
				continue
			}
			manual[pairingID] = idx
			if idx > manualMaxIdx {
				manualMaxIdx = idx
			}
		}
	}

	groupCount := deriveGroupCount(cfg, len(ids))
	if manualMaxIdx >= 0 && manualMaxIdx+1 > groupCount {
		groupCount = manualMaxIdx + 1
	}

	groups := make([][]int, groupCount)
	assigned := make(map[int]struct{}, len(manual))
	for _, id := range ids {
		if idx, ok := manual[id]; ok {
			groups[idx] = append(groups[idx], id)
			assigned[id] = struct{}{}
		}
	}
	remaining := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := assigned[id]; !ok {
			remaining = append(remaining, id)
		}
	}

	seeding := cfg.Seeding
	if seeding != models.SeedingNone {
		seeding = models.SeedingSnake
	}
	rng := seededRand(hashSeed(params.Salt + "|groups"))
	for idx, groupIDs := range distributeIntoGroups(remaining, groupCount, seeding, rng) {
		groups[idx] = append(groups[idx], groupIDs...)
	}

	qualify := cfg.QualifyPerGroup
	if qualify <= 0 {
		qualify = 2
	}
	largest := 0
	for _, g := range groups {
		if len(g) > largest {
			largest = len(g)
		}
	}
	if qualify > largest {
		return nil, ErrQualifyExceedsGroupSize
	}

	stage := &GroupStage{}
	for groupIdx, groupIDs := range groups {
		label := string(rune('A' + groupIdx))
		stage.Groups = append(stage.Groups, GroupSummary{Label: label, Pairings: groupIDs})
		for roundIdx, pairs := range roundRobinSchedule(groupIDs) {
			round := models.GroupRound(roundIdx + 1)
			position := 0
			for _, pair := range pairs {
				if pair.a == nil || pair.b == nil {
					continue // descanso
				}
				groupLabel := label
				a, b := *pair.a, *pair.b
				stage.Matches = append(stage.Matches, &models.Match{
					EventID:    params.EventID,
					CategoryID: params.CategoryID,
					Round:      round,
					RoundLabel: round.Label(),
					GroupLabel: &groupLabel,
					PairingAID: &a,
					PairingBID: &b,
					Position:   position,
					Status:     models.MatchPending,
				})
				position++
			}
		}
	}
	return stage, nil
}

func confirmedOnly(pairings []*models.Pairing) []*models.Pairing {
	out := make([]*models.Pairing, 0, len(pairings))
	for _, p := range pairings {
		if p.Confirmed() {
			out = append(out, p)
		}
	}
	return out
}

// sortBySeed orders pairings by pre-assigned seed rank, unseeded pairings
// after seeded ones by registration time.
func sortBySeed(pairings []*models.Pairing) {
	sort.SliceStable(pairings, func(i, j int) bool {
		a, b := pairings[i], pairings[j]
		switch {
		case a.SeedRank != nil && b.SeedRank != nil:
			if *a.SeedRank != *b.SeedRank {
				return *a.SeedRank < *b.SeedRank
			}
		case a.SeedRank != nil:
			return true
		case b.SeedRank != nil:
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// groupIndex maps a single-letter group label to its index.
func groupIndex(label string) (int, bool) {
	if len(label) != 1 {
		return 0, false
	}
	c := label[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	return int(c - 'A'), true
}

// deriveGroupCount resolves the effective group count: explicit count wins,
// then a count derived from group size, then round(sqrt(n)).
func deriveGroupCount(cfg models.GroupsConfig, n int) int {
	if cfg.GroupCount > 0 {
		return clamp(cfg.GroupCount, 1, n)
	}
	if cfg.GroupSize > 1 {
		return clamp((n+cfg.GroupSize-1)/cfg.GroupSize, 1, n)
	}
	return clamp(int(math.Round(math.Sqrt(float64(n)))), 1, n)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// distributeIntoGroups spreads ids across groupCount groups in serpentine
// order. SNAKE keeps the seeded order so top seeds land in distinct groups;
// NONE shuffles first with the deterministic rng.
func distributeIntoGroups(ids []int, groupCount int, seeding models.SeedingMode, rng func() float64) [][]int {
	ordered := ids
	if seeding == models.SeedingNone {
		ordered = shuffledCopy(ids, rng)
	}
	groups := make([][]int, groupCount)
	forward := true
	idx := 0
	for _, id := range ordered {
		groups[idx] = append(groups[idx], id)
		if forward {
			idx++
			if idx >= groupCount {
				idx = groupCount - 1
				forward = false
			}
		} else {
			idx--
			if idx < 0 {
				idx = 0
				forward = true
			}
		}
	}
	return groups
}

func shuffledCopy(ids []int, rng func() float64) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type schedulePair struct {
	a, b *int
}

// roundRobinSchedule builds the circle-method schedule: the first entrant is
// fixed while the rest rotate one slot per round. An odd entrant count gets a
// nil placeholder, producing one rest per round.
func roundRobinSchedule(ids []int) [][]schedulePair {
	teams := make([]*int, 0, len(ids)+1)
	for i := range ids {
		teams = append(teams, &ids[i])
	}
	if len(teams)%2 != 0 {
		teams = append(teams, nil)
	}
	n := len(teams)
	if n < 2 {
		return nil
	}
	rounds := make([][]schedulePair, 0, n-1)
	for round := 0; round < n-1; round++ {
		pairs := make([]schedulePair, 0, n/2)
		for i := 0; i < n/2; i++ {
			pairs = append(pairs, schedulePair{a: teams[i], b: teams[n-1-i]})
		}
		rounds = append(rounds, pairs)

		rotated := make([]*int, 0, n)
		rotated = append(rotated, teams[0], teams[n-1])
		rotated = append(rotated, teams[1:n-1]...)
		teams = rotated
	}
	return rounds
}

// hashSeed derives a 32-bit rng seed from an arbitrary string.
func hashSeed(input string) uint32 {
	sum := sha256.Sum256([]byte(input))
	return binary.BigEndian.Uint32(sum[:4])
}

// seededRand is a mulberry32 generator; draws are identical for identical
// seeds across runs, which is what makes regeneration reproducible.
func seededRand(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		state += 0x6D2B79F5
		z := state
		z = (z ^ (z >> 15)) * (z | 1)
		z ^= z + (z^(z>>7))*(z|61)
		return float64(z^(z>>14)) / 4294967296.0
	}
}

// SaltFor builds the deterministic draw salt for one generation request.
func SaltFor(eventID, categoryID int, format models.Format, generationVersion string, pairingIDs []int) string {
	return fmt.Sprintf("%d|%d|%s|%s|%v", eventID, categoryID, format, generationVersion, pairingIDs)
}
