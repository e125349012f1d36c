package models

import "testing"

func TestVoteTransitionFresh(t *testing.T) {

	change, err := VoteTransition(VoteState{}, VoteUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.AddUp || change.AddDown || change.RemoveUp || change.RemoveDown {
		t.Errorf("fresh upvote: wrong set mutations: %+v", change)
	}
	if change.VoterDelta != RepVoterDelta || change.AuthorDelta != RepAuthorDelta {
		t.Errorf("fresh upvote: wrong deltas: %+v", change)
	}
	if change.Held() != VoteUp {
		t.Errorf("fresh upvote: held = %q, want %q", change.Held(), VoteUp)
	}

	change, err = VoteTransition(VoteState{}, VoteDown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.AddDown || change.AddUp || change.RemoveUp || change.RemoveDown {
		t.Errorf("fresh downvote: wrong set mutations: %+v", change)
	}
	if change.Held() != VoteDown {
		t.Errorf("fresh downvote: held = %q, want %q", change.Held(), VoteDown)
	}
}

func TestVoteTransitionToggleOff(t *testing.T) {

	change, err := VoteTransition(VoteState{HasUpvoted: true}, VoteUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.RemoveUp || change.AddUp || change.AddDown || change.RemoveDown {
		t.Errorf("toggle off up: wrong set mutations: %+v", change)
	}
	if change.VoterDelta != -RepVoterDelta || change.AuthorDelta != -RepAuthorDelta {
		t.Errorf("toggle off up: wrong deltas: %+v", change)
	}
	if change.Held() != "" {
		t.Errorf("toggle off up: held = %q, want empty", change.Held())
	}

	change, err = VoteTransition(VoteState{HasDownvoted: true}, VoteDown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.RemoveDown || change.AddUp || change.AddDown || change.RemoveUp {
		t.Errorf("toggle off down: wrong set mutations: %+v", change)
	}
	if change.Held() != "" {
		t.Errorf("toggle off down: held = %q, want empty", change.Held())
	}
}

func TestVoteTransitionFlip(t *testing.T) {

	// down-only + up: one step, both mutations in the same change
	change, err := VoteTransition(VoteState{HasDownvoted: true}, VoteUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.RemoveDown || !change.AddUp || change.AddDown || change.RemoveUp {
		t.Errorf("flip to up: wrong set mutations: %+v", change)
	}
	if change.VoterDelta != RepVoterDelta || change.AuthorDelta != RepAuthorDelta {
		t.Errorf("flip to up: wrong deltas: %+v", change)
	}
	if change.Held() != VoteUp {
		t.Errorf("flip to up: held = %q, want %q", change.Held(), VoteUp)
	}

	change, err = VoteTransition(VoteState{HasUpvoted: true}, VoteDown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.RemoveUp || !change.AddDown || change.AddUp || change.RemoveDown {
		t.Errorf("flip to down: wrong set mutations: %+v", change)
	}
	if change.Held() != VoteDown {
		t.Errorf("flip to down: held = %q, want %q", change.Held(), VoteDown)
	}
}

// a vote followed by its toggle off must leave reputation where it started
func TestVoteTransitionRoundTripIsNeutral(t *testing.T) {

	first, err := VoteTransition(VoteState{}, VoteUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := VoteTransition(VoteState{HasUpvoted: true}, VoteUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.VoterDelta+second.VoterDelta != 0 {
		t.Errorf("voter reputation not neutral after up/up: %d", first.VoterDelta+second.VoterDelta)
	}
	if first.AuthorDelta+second.AuthorDelta != 0 {
		t.Errorf("author reputation not neutral after up/up: %d", first.AuthorDelta+second.AuthorDelta)
	}
}

func TestVoteTransitionErrors(t *testing.T) {

	_, err := VoteTransition(VoteState{}, "sideways")
	if err != ErrInvalidDirection {
		t.Errorf("invalid direction: got %v, want %v", err, ErrInvalidDirection)
	}

	// both sets claimed at once is unreachable through the API
	_, err = VoteTransition(VoteState{HasUpvoted: true, HasDownvoted: true}, VoteUp)
	if err != ErrInconsistentVoteState {
		t.Errorf("inconsistent state: got %v, want %v", err, ErrInconsistentVoteState)
	}
}
