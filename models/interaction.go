package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go.mongodb.org/mongo-driver/mongo"
)

// Interaction is one append-only log entry: who did what to which content,
// with the tag ids captured at creation time. Documents are never updated;
// they are only bulk-deleted when the referenced question goes away.
type Interaction struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	UserID     primitive.ObjectID   `json:"userID" bson:"user"`
	Action     string               `json:"action" bson:"action"`
	QuestionID primitive.ObjectID   `json:"questionID,omitempty" bson:"question,omitempty"`
	AnswerID   primitive.ObjectID   `json:"answerID,omitempty" bson:"answer,omitempty"`
	TagIDs     []primitive.ObjectID `json:"tagIDs" bson:"tags"`
	CreatedTS  time.Time            `json:"createdTS" bson:"createdTS"`
}

// InteractionModel provides the append/read access to the log
type InteractionModel struct {
	Collection *mongo.Collection
}

// Record appends one interaction. Pure append, the model offers no
// update path.
func (m InteractionModel) Record(interaction Interaction) error {

	if interaction.UserID.IsZero() {
		return apperror.ErrUnauthenticated
	}

	if !lookups.ValidAction(interaction.Action) {
		return ErrUnknownAction
	}

	interaction.ID = primitive.NewObjectID()
	interaction.CreatedTS = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.Collection.InsertOne(ctx, interaction)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// ListByUser returns a user's interactions in chronological order.
// The affinity ranking depends on this order for its tie-breaking, so the
// sort is part of the contract, not cosmetics. An empty history is a valid
// result (recommendations degrade to an empty page).
func (m InteractionModel) ListByUser(userID primitive.ObjectID) ([]Interaction, error) {

	filter := bson.M{"user": userID}
	opts := options.Find().SetSort(bson.D{{Key: "createdTS", Value: 1}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var interactions []Interaction
	err = cursor.All(ctx, &interactions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return interactions, nil
}

// DeleteByQuestion removes every interaction referencing a question.
// Used by the delete cascade only - single interactions are never deleted.
func (m InteractionModel) DeleteByQuestion(questionID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.Collection.DeleteMany(ctx, bson.M{"question": questionID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// DistinctTagIDs returns the plain set union of the tag ids over a user's
// interactions, preserving first-seen order. Unlike the affinity ranking
// this is unweighted - it feeds the recommendation filter, where a tag
// either matters or it doesn't.
func DistinctTagIDs(interactions []Interaction) []primitive.ObjectID {

	seen := make(map[primitive.ObjectID]bool)
	var distinct []primitive.ObjectID

	for _, interaction := range interactions {
		for _, id := range interaction.TagIDs {
			if !seen[id] {
				seen[id] = true
				distinct = append(distinct, id)
			}
		}
	}

	return distinct
}
