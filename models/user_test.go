package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// applying the returned update to the set and feeding it back in must
// alternate the saved state on every call
func TestSaveTransitionAlternates(t *testing.T) {

	question := primitive.NewObjectID()
	other := primitive.NewObjectID()

	update, saved := saveTransition(nil, question)
	if !saved {
		t.Errorf("first toggle should save")
	}
	if op := update[0].Key; op != "$addToSet" {
		t.Errorf("first toggle: got %s, want $addToSet", op)
	}

	update, saved = saveTransition([]primitive.ObjectID{other, question}, question)
	if saved {
		t.Errorf("second toggle should un-save")
	}
	if op := update[0].Key; op != "$pull" {
		t.Errorf("second toggle: got %s, want $pull", op)
	}

	// a different saved question does not shadow the toggle
	_, saved = saveTransition([]primitive.ObjectID{other}, question)
	if !saved {
		t.Errorf("unrelated saved entry should not block a save")
	}
}

func TestSaveTransitionTargetsQuestion(t *testing.T) {

	question := primitive.NewObjectID()

	update, _ := saveTransition(nil, question)

	fields, ok := update[0].Value.(bson.D)
	if !ok || len(fields) != 1 || fields[0].Key != "saved" {
		t.Fatalf("update does not target the saved array: %v", update)
	}
	if fields[0].Value != question {
		t.Errorf("update holds %v, want %v", fields[0].Value, question)
	}
}
