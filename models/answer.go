package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Answer is the "interface" used for client communication.
// Like questions, answers carry their own vote sets; the question
// back-reference is immutable.
type Answer struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id"`
	QuestionID  primitive.ObjectID   `json:"questionID" bson:"question"`
	Content     string               `json:"content" bson:"content"`
	AuthorID    primitive.ObjectID   `json:"authorID" bson:"author"`
	AuthorName  string               `json:"authorName" bson:"-"`
	UpVoteIDs   []primitive.ObjectID `json:"upvotes" bson:"upvotes"`
	DownVoteIDs []primitive.ObjectID `json:"downvotes" bson:"downvotes"`
	CreatedTS   time.Time            `json:"createdTS" bson:"createdTS"`
}

// AnswerSearch is passed as the listing params
type AnswerSearch struct {
	QuestionID string
	Filter     string
	Page       PageRequest
}

// AnswerModel provides the logic to the interface and access to the
// database. Question and user functions are injected by the environment
// registry.
type AnswerModel struct {
	Collection *mongo.Collection
	// injected from other models
	GetQuestionTags     func(questionID primitive.ObjectID) ([]primitive.ObjectID, error)
	AttachAnswer        func(questionID primitive.ObjectID, answerID primitive.ObjectID) error
	Record              func(interaction Interaction) error
	IncrementReputation func(userID primitive.ObjectID, delta int32) error
	GetUserNameOID      func(ID primitive.ObjectID) (string, error)
}

// CreateAnswer adds an answer with its side effects: the answer id is
// pushed onto the question's answer list, the interaction is recorded with
// the question's tags and the author's reputation moves. The question is
// verified first, so answers to deleted questions are rejected instead of
// dangling.
func (m AnswerModel) CreateAnswer(answer *Answer) (string, error) {

	if answer.AuthorID.IsZero() {
		return "", apperror.ErrUnauthenticated
	}

	answer.Content = strings.TrimSpace(answer.Content)
	if answer.Content == "" {
		return "", ErrContentMissing
	}

	// existence check doubles as the tag fetch for the interaction
	tagIDs, err := m.GetQuestionTags(answer.QuestionID)
	if err != nil {
		return "", err
	}

	// set "system-fields"
	answer.ID = primitive.NewObjectID()
	answer.UpVoteIDs = []primitive.ObjectID{}
	answer.DownVoteIDs = []primitive.ObjectID{}
	answer.CreatedTS = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, answer)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	err = m.AttachAnswer(answer.QuestionID, answer.ID)
	if err != nil {
		return "", err
	}

	err = m.Record(Interaction{
		UserID:     answer.AuthorID,
		Action:     lookups.ActionAnswerQuestion,
		QuestionID: answer.QuestionID,
		AnswerID:   answer.ID,
		TagIDs:     tagIDs,
	})
	if err != nil {
		return "", err
	}

	err = m.IncrementReputation(answer.AuthorID, RepAnswerQuestion)
	if err != nil {
		return "", err
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetAnswer returns one answer
func (m AnswerModel) GetAnswer(answerID string) (*Answer, error) {

	id, err := primitive.ObjectIDFromHex(answerID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var answer Answer
	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&answer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	answer.AuthorName, _ = m.GetUserNameOID(answer.AuthorID)

	return &answer, nil
}

// ListByQuestion lists a question's answers, by default the most upvoted
// first (ordering by vote count needs a $size aggregation).
// hasNext strategy: count-then-fetch.
func (m AnswerModel) ListByQuestion(search *AnswerSearch) ([]Answer, bool, error) {

	page, err := search.Page.Normalize()
	if err != nil {
		return nil, false, err
	}

	id, err := primitive.ObjectIDFromHex(search.QuestionID)
	if err != nil {
		return nil, false, apperror.ErrNotFound
	}

	filter := bson.D{{Key: "question", Value: id}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	matchStage := bson.D{{Key: "$match", Value: filter}}

	addStage := bson.D{
		{Key: "$addFields", Value: bson.D{
			{Key: "voteCount", Value: bson.D{{Key: "$size", Value: "$upvotes"}}},
		}},
	}

	sortKey := bson.D{{Key: "voteCount", Value: -1}, {Key: "createdTS", Value: -1}}
	switch search.Filter {
	case lookups.AnswerFilterLowestUpvotes:
		sortKey = bson.D{{Key: "voteCount", Value: 1}, {Key: "createdTS", Value: -1}}
	case lookups.AnswerFilterRecent:
		sortKey = bson.D{{Key: "createdTS", Value: -1}}
	case lookups.AnswerFilterOld:
		sortKey = bson.D{{Key: "createdTS", Value: 1}}
	}

	sortStage := bson.D{{Key: "$sort", Value: sortKey}}
	skipStage := bson.D{{Key: "$skip", Value: page.Skip()}}
	limitStage := bson.D{{Key: "$limit", Value: page.PageSize}}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{
		matchStage,
		addStage,
		sortStage,
		skipStage,
		limitStage}, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// the extra voteCount field is simply not decoded
	answers := []Answer{}
	err = cursor.All(ctx, &answers)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	names := make(map[primitive.ObjectID]string)
	for i := range answers {
		if _, ok := names[answers[i].AuthorID]; !ok {
			names[answers[i].AuthorID], _ = m.GetUserNameOID(answers[i].AuthorID)
		}
		answers[i].AuthorName = names[answers[i].AuthorID]
	}

	return answers, HasNextByCount(total, page.Skip(), len(answers)), nil
}

// DeleteByQuestion removes every answer of a question (delete cascade)
func (m AnswerModel) DeleteByQuestion(questionID primitive.ObjectID) error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.Collection.DeleteMany(ctx, bson.M{"question": questionID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// AnswersByAuthor lists the answers a user gave, most upvoted first
// (profile page; same $size aggregation as ListByQuestion).
// hasNext strategy: count-then-fetch.
func (m AnswerModel) AnswersByAuthor(authorID primitive.ObjectID, page PageRequest) ([]Answer, bool, error) {

	page, err := page.Normalize()
	if err != nil {
		return nil, false, err
	}

	filter := bson.D{{Key: "author", Value: authorID}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	matchStage := bson.D{{Key: "$match", Value: filter}}

	addStage := bson.D{
		{Key: "$addFields", Value: bson.D{
			{Key: "voteCount", Value: bson.D{{Key: "$size", Value: "$upvotes"}}},
		}},
	}

	sortStage := bson.D{{Key: "$sort", Value: bson.D{
		{Key: "voteCount", Value: -1},
		{Key: "createdTS", Value: -1},
	}}}
	skipStage := bson.D{{Key: "$skip", Value: page.Skip()}}
	limitStage := bson.D{{Key: "$limit", Value: page.PageSize}}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{
		matchStage,
		addStage,
		sortStage,
		skipStage,
		limitStage}, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	answers := []Answer{}
	err = cursor.All(ctx, &answers)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	name, _ := m.GetUserNameOID(authorID)
	for i := range answers {
		answers[i].AuthorName = name
	}

	return answers, HasNextByCount(total, page.Skip(), len(answers)), nil
}

// CountByAuthor is injected into the user model for the profile stats
func (m AnswerModel) CountByAuthor(authorID primitive.ObjectID) (int64, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cnt, err := m.Collection.CountDocuments(ctx, bson.M{"author": authorID})
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return cnt, nil
}
