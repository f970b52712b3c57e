package models

import "fmt"

// Phase разделяет матчи групповой фазы и матчей плей-офф.
type Phase string

const (
	PhaseGroups   Phase = "GROUPS"
	PhaseKnockout Phase = "KNOCKOUT"
)

// BracketSide identifies the bracket a knockout round belongs to when the
// tournament runs dual (A/B) brackets or a double-elimination losers bracket.
type BracketSide string

const (
	SideMain BracketSide = ""
	SideA    BracketSide = "A"
	SideB    BracketSide = "B"
)

// RoundKind enumerates the round shapes the engine emits. Sized rounds carry
// their entrant count (R16, R32); the canonical names take over at 8, 4 and 2
// entrants. Losers rounds and group rounds carry a round number instead.
type RoundKind int

const (
	KindSized RoundKind = iota
	KindQuarterfinal
	KindSemifinal
	KindFinal
	KindGrandFinal
	KindGrandFinalReset
	KindLosers
	KindGroupRound
)

// Round is the structured identity of a match round. Labels like "A GF2" or
// "B L3" are rendered from it, never parsed back out of free-form strings.
type Round struct {
	Phase Phase       `json:"phase"`
	Side  BracketSide `json:"side,omitempty"`
	Kind  RoundKind   `json:"kind"`
	// Number holds the entrant count for KindSized and the round number for
	// KindLosers and KindGroupRound. Zero otherwise.
	Number int `json:"number,omitempty"`
}

// GroupRound returns the round identity for group-stage matchday n.
func GroupRound(n int) Round {
	return Round{Phase: PhaseGroups, Kind: KindGroupRound, Number: n}
}

// KnockoutRound builds the round identity for a knockout round with the given
// number of matches, collapsing to the canonical names where they apply.
func KnockoutRound(side BracketSide, matchCount int) Round {
	r := Round{Phase: PhaseKnockout, Side: side}
	switch matchCount {
	case 1:
		r.Kind = KindFinal
	case 2:
		r.Kind = KindSemifinal
	case 4:
		r.Kind = KindQuarterfinal
	default:
		r.Kind = KindSized
		r.Number = matchCount * 2
	}
	return r
}

// LosersRound returns losers-bracket round n of a double-elimination draw.
func LosersRound(n int) Round {
	return Round{Phase: PhaseKnockout, Side: SideB, Kind: KindLosers, Number: n}
}

// GrandFinal returns the grand-final round, reset=true for the replay played
// when the losers-bracket entrant wins the first grand final.
func GrandFinal(reset bool) Round {
	kind := KindGrandFinal
	if reset {
		kind = KindGrandFinalReset
	}
	return Round{Phase: PhaseKnockout, Side: SideA, Kind: kind}
}

// Label renders the display label for the round ("QUARTERFINAL", "A GF2",
// "B L3", "R16", "Jornada 2").
func (r Round) Label() string {
	var base string
	switch r.Kind {
	case KindGroupRound:
		return fmt.Sprintf("Jornada %d", r.Number)
	case KindQuarterfinal:
		base = "QUARTERFINAL"
	case KindSemifinal:
		base = "SEMIFINAL"
	case KindFinal:
		base = "FINAL"
	case KindGrandFinal:
		base = "GF"
	case KindGrandFinalReset:
		base = "GF2"
	case KindLosers:
		base = fmt.Sprintf("L%d", r.Number)
	default:
		base = fmt.Sprintf("R%d", r.Number)
	}
	if r.Side != SideMain {
		return string(r.Side) + " " + base
	}
	return base
}

// Order returns a sort key such that earlier rounds compare lower. The
// ordering is total: every representable round maps to a distinct weight
// class, with the bracket side breaking ties inside one class.
func (r Round) Order() int {
	if r.Phase == PhaseGroups {
		return r.Number
	}
	const knockoutBase = 1 << 20
	switch r.Kind {
	case KindSized:
		// Bigger rounds play earlier; R64 before R16.
		return knockoutBase + (1 << 16) - r.Number
	case KindQuarterfinal:
		return knockoutBase + (1 << 16) - 8
	case KindSemifinal:
		return knockoutBase + (1 << 16) - 4
	case KindFinal:
		return knockoutBase + (1 << 16) - 2
	case KindLosers:
		return knockoutBase + (1 << 17) + r.Number
	case KindGrandFinal:
		return knockoutBase + (1 << 18)
	case KindGrandFinalReset:
		return knockoutBase + (1<<18) + 1
	}
	return knockoutBase + (1 << 19)
}

// Less orders rounds for display and advancement walks.
func (r Round) Less(other Round) bool {
	if r.Order() != other.Order() {
		return r.Order() < other.Order()
	}
	return r.Side < other.Side
}

// EntrantCount reports how many entrants the round holds, zero when the kind
// does not encode one.
func (r Round) EntrantCount() int {
	switch r.Kind {
	case KindSized:
		return r.Number
	case KindQuarterfinal:
		return 8
	case KindSemifinal:
		return 4
	case KindFinal, KindGrandFinal, KindGrandFinalReset:
		return 2
	}
	return 0
}
