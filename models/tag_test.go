package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRankTagAffinities(t *testing.T) {

	golang := primitive.NewObjectID()
	docker := primitive.NewObjectID()
	linux := primitive.NewObjectID()

	// golang 3x, docker 2x, linux 1x
	sequences := [][]primitive.ObjectID{
		{golang, docker},
		{golang},
		{docker, golang, linux},
	}

	ranked := rankTagAffinities(sequences, 0)
	if len(ranked) != 3 {
		t.Fatalf("got %d entries, want 3", len(ranked))
	}

	if ranked[0].ID != golang || ranked[0].Count != 3 {
		t.Errorf("rank 1: got %v (%d), want golang (3)", ranked[0].ID, ranked[0].Count)
	}
	if ranked[1].ID != docker || ranked[1].Count != 2 {
		t.Errorf("rank 2: got %v (%d), want docker (2)", ranked[1].ID, ranked[1].Count)
	}
	if ranked[2].ID != linux || ranked[2].Count != 1 {
		t.Errorf("rank 3: got %v (%d), want linux (1)", ranked[2].ID, ranked[2].Count)
	}
}

// ties must stay in first-seen order so the ranking is deterministic for
// a fixed interaction sequence
func TestRankTagAffinitiesTieBreak(t *testing.T) {

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()

	sequences := [][]primitive.ObjectID{
		{first, second},
		{third, second, first},
		{third},
	}

	// run it a few times, map iteration must not leak into the order
	for i := 0; i < 10; i++ {
		ranked := rankTagAffinities(sequences, 0)
		if len(ranked) != 3 {
			t.Fatalf("got %d entries, want 3", len(ranked))
		}
		if ranked[0].ID != first || ranked[1].ID != second || ranked[2].ID != third {
			t.Fatalf("run %d: tie order broken: %v", i, ranked)
		}
	}
}

func TestRankTagAffinitiesLimit(t *testing.T) {

	var sequences [][]primitive.ObjectID
	for i := 0; i < 5; i++ {
		sequences = append(sequences, []primitive.ObjectID{primitive.NewObjectID()})
	}

	ranked := rankTagAffinities(sequences, 3)
	if len(ranked) != 3 {
		t.Errorf("limit 3: got %d entries", len(ranked))
	}

	ranked = rankTagAffinities(nil, 3)
	if len(ranked) != 0 {
		t.Errorf("empty history: got %d entries, want 0", len(ranked))
	}
}

func TestDistinctTagIDs(t *testing.T) {

	golang := primitive.NewObjectID()
	docker := primitive.NewObjectID()

	interactions := []Interaction{
		{TagIDs: []primitive.ObjectID{golang, docker}},
		{TagIDs: []primitive.ObjectID{docker, golang}},
		{TagIDs: []primitive.ObjectID{golang}},
	}

	distinct := DistinctTagIDs(interactions)
	if len(distinct) != 2 {
		t.Fatalf("got %d ids, want 2", len(distinct))
	}
	// unweighted union in first-seen order
	if distinct[0] != golang || distinct[1] != docker {
		t.Errorf("wrong order: %v", distinct)
	}

	if got := DistinctTagIDs(nil); len(got) != 0 {
		t.Errorf("empty history: got %v, want none", got)
	}
}
