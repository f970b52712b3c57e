// Package brackets turns a roster of confirmed pairings into tournament
// structure: round-robin group stages and elimination draws, including byes,
// dual A/B brackets and a double-elimination reset final.
package brackets

import (
	"context"
	"errors"

	"github.com/orya-live/padel-engine/models"
)

var (
	ErrNotEnoughPairings       = errors.New("not enough confirmed pairings (minimum 2)")
	ErrNoSeeds                 = errors.New("cannot generate a bracket from zero seeds")
	ErrQualifyExceedsGroupSize = errors.New("qualifiers per group exceed the largest group size")
)

// GenerateGroupsParams carries everything the group-stage generator needs.
// Salt keeps the NONE-seeding draw deterministic for a given category and
// generation version.
type GenerateGroupsParams struct {
	EventID    int
	CategoryID int
	Pairings   []*models.Pairing
	Config     models.GroupsConfig
	Salt       string
}

// GroupSummary describes the composition of one generated group.
type GroupSummary struct {
	Label    string `json:"label"`
	Pairings []int  `json:"pairings"`
}

// GroupStage is the output of group generation: the full round-robin match
// set plus the group composition.
type GroupStage struct {
	Matches []*models.Match
	Groups  []GroupSummary
}

// KnockoutConfig selects the elimination variant.
type KnockoutConfig struct {
	// DualBracket adds a B draw fed by first-round losers (quadro A/B).
	DualBracket bool
	// DoubleElimination adds losers rounds and a grand-final reset.
	DoubleElimination bool
}

// GenerateKnockoutParams carries the ranked seed order and the variant.
type GenerateKnockoutParams struct {
	EventID    int
	CategoryID int
	Seeds      []models.SeedEntry
	Config     KnockoutConfig
}

// KnockoutBracket is the generated elimination structure. Later rounds start
// with vacant slots; byes are already resolved as DONE matches.
type KnockoutBracket struct {
	Matches []*models.Match
}

// GroupGenerator builds a category's group stage.
type GroupGenerator interface {
	GenerateGroups(ctx context.Context, params GenerateGroupsParams) (*GroupStage, error)

	Name() string
}

// KnockoutGenerator builds a category's elimination bracket from seeds.
type KnockoutGenerator interface {
	GenerateKnockout(ctx context.Context, params GenerateKnockoutParams) (*KnockoutBracket, error)

	Name() string
}
