package models

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateDedupesTags(t *testing.T) {

	m := QuestionModel{}

	_, tags, err := m.Validate(Question{Title: "t", Content: "c"}, []string{"Go", "go", "docker"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2: %v", len(tags), tags)
	}
	// the first spelling wins
	if tags[0] != "Go" || tags[1] != "docker" {
		t.Errorf("wrong tags after dedupe: %v", tags)
	}

	// all duplicates of one name still satisfy the minimum
	_, tags, err = m.Validate(Question{Title: "t", Content: "c"}, []string{"Go", "GO", "gO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("got %d tags, want 1: %v", len(tags), tags)
	}
}

func TestValidateTagCount(t *testing.T) {

	m := QuestionModel{}

	_, _, err := m.Validate(Question{Title: "t", Content: "c"}, []string{" ", ""})
	if err != ErrTagCount {
		t.Errorf("blank tags only: got %v, want %v", err, ErrTagCount)
	}

	_, _, err = m.Validate(Question{Title: "t", Content: "c"}, []string{"a", "b", "c", "d"})
	if err != ErrTagCount {
		t.Errorf("four tags: got %v, want %v", err, ErrTagCount)
	}
}

// the cascade must touch answers, interactions and tags in that order and
// stop at the first failure, so a partial run never leaves a hole in the
// middle of the chain
func TestDeleteReferencesOrder(t *testing.T) {

	id := primitive.NewObjectID()
	var calls []string

	m := QuestionModel{
		DeleteAnswers: func(questionID primitive.ObjectID) error {
			if questionID != id {
				t.Errorf("DeleteAnswers got %v, want %v", questionID, id)
			}
			calls = append(calls, "answers")
			return nil
		},
		DeleteInteractions: func(questionID primitive.ObjectID) error {
			calls = append(calls, "interactions")
			return nil
		},
		DetachFromTags: func(questionID primitive.ObjectID) error {
			calls = append(calls, "tags")
			return nil
		},
	}

	if err := m.deleteReferences(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 3 || calls[0] != "answers" || calls[1] != "interactions" || calls[2] != "tags" {
		t.Errorf("wrong cascade order: %v", calls)
	}
}

func TestDeleteReferencesStopsOnError(t *testing.T) {

	boom := errors.New("boom")
	var calls []string

	m := QuestionModel{
		DeleteAnswers: func(questionID primitive.ObjectID) error {
			calls = append(calls, "answers")
			return nil
		},
		DeleteInteractions: func(questionID primitive.ObjectID) error {
			calls = append(calls, "interactions")
			return boom
		},
		DetachFromTags: func(questionID primitive.ObjectID) error {
			calls = append(calls, "tags")
			return nil
		},
	}

	err := m.deleteReferences(primitive.NewObjectID())
	if err != boom {
		t.Fatalf("got %v, want %v", err, boom)
	}

	if len(calls) != 2 {
		t.Errorf("cascade ran past the failure: %v", calls)
	}
}
