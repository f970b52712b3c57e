package models

import "testing"

func TestRoundLabels(t *testing.T) {
	cases := []struct {
		round Round
		want  string
	}{
		{GroupRound(2), "Jornada 2"},
		{KnockoutRound(SideMain, 8), "R16"},
		{KnockoutRound(SideMain, 4), "QUARTERFINAL"},
		{KnockoutRound(SideMain, 2), "SEMIFINAL"},
		{KnockoutRound(SideMain, 1), "FINAL"},
		{KnockoutRound(SideA, 1), "A FINAL"},
		{KnockoutRound(SideB, 2), "B SEMIFINAL"},
		{LosersRound(3), "B L3"},
		{GrandFinal(false), "A GF"},
		{GrandFinal(true), "A GF2"},
	}
	for _, c := range cases {
		if got := c.round.Label(); got != c.want {
			t.Errorf("Label() = %q, want %q", got, c.want)
		}
	}
}

func TestRoundOrdering(t *testing.T) {
	sequence := []Round{
		GroupRound(1),
		GroupRound(2),
		KnockoutRound(SideMain, 8),
		KnockoutRound(SideMain, 4),
		KnockoutRound(SideMain, 2),
		KnockoutRound(SideMain, 1),
		LosersRound(1),
		LosersRound(2),
		GrandFinal(false),
		GrandFinal(true),
	}
	for i := 1; i < len(sequence); i++ {
		prev, cur := sequence[i-1], sequence[i]
		if !prev.Less(cur) {
			t.Errorf("expected %q to order before %q", prev.Label(), cur.Label())
		}
		if cur.Less(prev) {
			t.Errorf("ordering of %q and %q is not antisymmetric", prev.Label(), cur.Label())
		}
	}
}

func TestKnockoutRoundEntrants(t *testing.T) {
	if got := KnockoutRound(SideMain, 8).EntrantCount(); got != 16 {
		t.Errorf("R16 entrants = %d, want 16", got)
	}
	if got := KnockoutRound(SideMain, 1).EntrantCount(); got != 2 {
		t.Errorf("FINAL entrants = %d, want 2", got)
	}
}
