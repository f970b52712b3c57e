package models

import "time"

// Format выбирает структуру соревнования для категории.
type Format string

const (
	FormatRoundRobin        Format = "ROUND_ROBIN"
	FormatGroupsKnockout    Format = "GROUPS_KNOCKOUT"
	FormatKnockout          Format = "KNOCKOUT"
	FormatKnockoutAB        Format = "KNOCKOUT_AB"
	FormatDoubleElimination Format = "DOUBLE_ELIMINATION"
)

// KnockoutVariant reports whether the format ends in (or is) an elimination
// bracket seeded directly from the entry list.
func (f Format) DirectKnockout() bool {
	return f == FormatKnockout || f == FormatKnockoutAB || f == FormatDoubleElimination
}

// Category is an independent competition bracket within a tournament, e.g. a
// skill division. All generation operations are scoped to one category.
type Category struct {
	ID      int    `json:"id" db:"id"`
	EventID int    `json:"event_id" db:"event_id"`
	Name    string `json:"name" db:"name"`
}

// SeedingMode controls how pairings are distributed into groups.
type SeedingMode string

const (
	SeedingSnake SeedingMode = "SNAKE"
	SeedingNone  SeedingMode = "NONE"
)

// AssignMode controls whether group membership is computed or hand-assigned.
type AssignMode string

const (
	AssignAuto   AssignMode = "AUTO"
	AssignManual AssignMode = "MANUAL"
)

// GroupsConfig carries the group-stage parameters for a category. When both
// GroupCount and GroupSize are zero the count is derived from the entry list.
type GroupsConfig struct {
	Mode            AssignMode  `json:"mode"`
	GroupCount      int         `json:"group_count,omitempty"`
	GroupSize       int         `json:"group_size,omitempty"`
	QualifyPerGroup int         `json:"qualify_per_group"`
	ExtraQualifiers int         `json:"extra_qualifiers,omitempty"`
	Seeding         SeedingMode `json:"seeding"`
	// ManualAssignments pins pairings to group labels ("A".."Z"); pairings
	// not listed are auto-assigned around them.
	ManualAssignments map[int]string `json:"manual_assignments,omitempty"`
}

// CategoryConfig is the explicit, versioned configuration of a category. It
// replaces the loosely-typed settings blob the organizer UI used to mutate
// piecemeal: every write goes through ConfigStore.Save and bumps Version.
type CategoryConfig struct {
	CategoryID int          `json:"category_id" db:"category_id"`
	Version    int          `json:"version" db:"version"`
	Format     Format       `json:"format" db:"format"`
	Groups     GroupsConfig `json:"groups" db:"-"`
	// ScoreRules nil disables score validation for the category.
	ScoreRules  *ScoreRules `json:"score_rules,omitempty" db:"-"`
	PointsTable PointsTable `json:"points_table,omitempty" db:"-"`

	GenerationVersion    string     `json:"generation_version,omitempty" db:"generation_version"`
	KnockoutGeneratedAt  *time.Time `json:"knockout_generated_at,omitempty" db:"knockout_generated_at"`
	KnockoutGeneratedBy  *string    `json:"knockout_generated_by,omitempty" db:"knockout_generated_by"`
	KnockoutOverrideUsed bool       `json:"knockout_override_used,omitempty" db:"knockout_override_used"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
