package models

import "testing"

func TestLifecycleTransitionTableIsTotal(t *testing.T) {
	states := []LifecycleState{
		LifecycleHidden, LifecycleDevelopment, LifecyclePublic,
		LifecycleLocked, LifecycleLive, LifecycleCompleted, LifecycleCancelled,
	}
	for _, s := range states {
		if !s.Valid() {
			t.Errorf("state %s has no transition table entry", s)
		}
		if !s.Terminal() && len(s.AllowedTransitions()) == 0 {
			t.Errorf("non-terminal state %s has an empty allowed set", s)
		}
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	path := []LifecycleState{
		LifecycleHidden, LifecycleDevelopment, LifecyclePublic,
		LifecycleLocked, LifecycleLive, LifecycleCompleted,
	}
	for i := 1; i < len(path); i++ {
		if !path[i-1].CanTransitionTo(path[i]) {
			t.Errorf("expected %s -> %s to be allowed", path[i-1], path[i])
		}
	}
}

func TestLifecycleCancellableFromNonTerminal(t *testing.T) {
	for _, s := range []LifecycleState{
		LifecycleHidden, LifecycleDevelopment, LifecyclePublic, LifecycleLocked, LifecycleLive,
	} {
		if !s.CanTransitionTo(LifecycleCancelled) {
			t.Errorf("expected %s to allow cancellation", s)
		}
	}
}

func TestLifecycleRejectsSkipsAndTerminalExits(t *testing.T) {
	if LifecycleHidden.CanTransitionTo(LifecyclePublic) {
		t.Error("HIDDEN -> PUBLIC must not skip DEVELOPMENT")
	}
	if LifecycleCompleted.CanTransitionTo(LifecycleCancelled) {
		t.Error("COMPLETED is terminal")
	}
	if LifecycleCancelled.CanTransitionTo(LifecycleHidden) {
		t.Error("CANCELLED is terminal")
	}
	if LifecycleLive.CanTransitionTo(LifecyclePublic) {
		t.Error("lifecycle must not move backwards")
	}
}
