package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tag count limits per question
const (
	MinQuestionTags = 1
	MaxQuestionTags = 3
)

// Question is the "interface" used for client communication.
// The author is immutable after creation; upvotes and downvotes hold
// user ids and never share an element (enforced by the vote ledger).
type Question struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id"`
	Title       string               `json:"title" bson:"title"`
	Content     string               `json:"content" bson:"content"`
	TagIDs      []primitive.ObjectID `json:"tagIDs" bson:"tags"`
	TagNames    []string             `json:"tagNames" bson:"-"`
	AuthorID    primitive.ObjectID   `json:"authorID" bson:"author"`
	AuthorName  string               `json:"authorName" bson:"-"`
	UpVoteIDs   []primitive.ObjectID `json:"upvotes" bson:"upvotes"`
	DownVoteIDs []primitive.ObjectID `json:"downvotes" bson:"downvotes"`
	AnswerIDs   []primitive.ObjectID `json:"answers" bson:"answers"`
	Views       int64                `json:"views" bson:"views"`
	CreatedTS   time.Time            `json:"createdTS" bson:"createdTS"`
}

// QuestionListItem is the reduced/simplified model used for listings
type QuestionListItem struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	TagNames   []string           `json:"tagNames"`
	AuthorID   primitive.ObjectID `json:"authorID"`
	AuthorName string             `json:"authorName"`
	UpVotes    int32              `json:"upVotes"`
	Answers    int32              `json:"answers"`
	Views      int64              `json:"views"`
	CreatedTS  time.Time          `json:"createdTS"`
}

// QuestionSearch is passed as the search params
type QuestionSearch struct {
	SearchTerm string
	Filter     string
	Page       PageRequest
}

// QuestionModel provides the logic to the interface and access to the
// database. Functions of the other models are injected by the environment
// registry (package de-coupling).
type QuestionModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	Cache      *redis.Client
	// injected from other models
	GetUserNameOID      func(ID primitive.ObjectID) (string, error)
	FindOrCreateTag     func(name string, questionID primitive.ObjectID) (primitive.ObjectID, error)
	GetTag              func(tagID primitive.ObjectID) (*Tag, error)
	TagNames            func(tagIDs []primitive.ObjectID) (map[primitive.ObjectID]string, error)
	Record              func(interaction Interaction) error
	ListInteractions    func(userID primitive.ObjectID) ([]Interaction, error)
	IncrementReputation func(userID primitive.ObjectID, delta int32) error
	GetSavedIDs         func(userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteAnswers       func(questionID primitive.ObjectID) error
	DeleteInteractions  func(questionID primitive.ObjectID) error
	DetachFromTags      func(questionID primitive.ObjectID) error
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m QuestionModel) Validate(question Question, tagNames []string) (*Question, []string, error) {

	cleaned := question
	cleaned.Title = strings.TrimSpace(cleaned.Title)
	cleaned.Content = strings.TrimSpace(cleaned.Content)

	if cleaned.Title == "" {
		return nil, nil, ErrTitleMissing
	}
	if cleaned.Content == "" {
		return nil, nil, ErrContentMissing
	}

	// duplicates collapse case-insensitively, matching the tag upsert -
	// otherwise "Go" and "go" would link the question to the same tag twice
	var cleanedTags []string
	seen := make(map[string]bool)
	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(name) > MaxTagNameLength {
			return nil, nil, ErrTagNameTooLong
		}
		if seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		cleanedTags = append(cleanedTags, name)
	}

	if len(cleanedTags) < MinQuestionTags || len(cleanedTags) > MaxQuestionTags {
		return nil, nil, ErrTagCount
	}

	return &cleaned, cleanedTags, nil
}

// CreateQuestion adds a new question with its ask side effects: the tags
// are find-or-created by case-insensitive name first, then the question is
// inserted fully tagged, the ask interaction is recorded and the author's
// reputation moves. A failing tag aborts the whole ask, so a partially
// tagged question is never written.
func (m QuestionModel) CreateQuestion(question *Question, tagNames []string) (string, error) {

	if question.AuthorID.IsZero() {
		return "", apperror.ErrUnauthenticated
	}

	// set "system-fields"
	question.ID = primitive.NewObjectID()
	question.Views = 0
	question.UpVoteIDs = []primitive.ObjectID{}
	question.DownVoteIDs = []primitive.ObjectID{}
	question.AnswerIDs = []primitive.ObjectID{}
	question.CreatedTS = time.Now()

	var tagIDs []primitive.ObjectID
	for _, name := range tagNames {
		id, err := m.FindOrCreateTag(name, question.ID)
		if err != nil {
			return "", err
		}
		tagIDs = append(tagIDs, id)
	}
	question.TagIDs = tagIDs

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, question)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	err = m.Record(Interaction{
		UserID:     question.AuthorID,
		Action:     lookups.ActionAskQuestion,
		QuestionID: question.ID,
		TagIDs:     tagIDs,
	})
	if err != nil {
		return "", err
	}

	err = m.IncrementReputation(question.AuthorID, RepAskQuestion)
	if err != nil {
		return "", err
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetQuestion returns one question with tag and author names resolved
func (m QuestionModel) GetQuestion(questionID string) (*Question, error) {

	id, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	var question Question

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	names, err := m.TagNames(question.TagIDs)
	if err != nil {
		return nil, err
	}
	for _, tagID := range question.TagIDs {
		question.TagNames = append(question.TagNames, names[tagID])
	}

	// author name maybe ignored, a deleted account still shows the question
	question.AuthorName, _ = m.GetUserNameOID(question.AuthorID)

	return &question, nil
}

// GetQuestionTags returns just the tag ids (used by vote/save recording)
func (m QuestionModel) GetQuestionTags(questionID primitive.ObjectID) ([]primitive.ObjectID, error) {

	data := struct {
		TagIDs []primitive.ObjectID `bson:"tags"`
	}{}

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "tags", Value: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"_id": questionID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return data.TagIDs, nil
}

// CountView increments the view counter ($inc by id, no read-modify-write)
// and logs a view interaction for signed-in viewers. Anonymous views count
// towards the number but produce no interaction - a silent no-op, not an
// error.
func (m QuestionModel) CountView(questionID primitive.ObjectID, viewerID primitive.ObjectID, tagIDs []primitive.ObjectID) error {

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, bson.M{"_id": questionID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return apperror.ErrNotFound
	}

	if viewerID.IsZero() {
		return nil
	}

	return m.Record(Interaction{
		UserID:     viewerID,
		Action:     lookups.ActionView,
		QuestionID: questionID,
		TagIDs:     tagIDs,
	})
}

// SearchQuestions lists or searches questions.
// hasNext strategy: count-then-fetch (one CountDocuments per page); not
// race-free under concurrent asks, acceptable for a browsing list.
func (m QuestionModel) SearchQuestions(search *QuestionSearch) ([]QuestionListItem, bool, error) {

	page, err := search.Page.Normalize()
	if err != nil {
		return nil, false, err
	}

	filter := bson.D{}
	if search.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search.SearchTerm), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "content", Value: pattern}},
		}})
	}

	sortOrder := bson.D{{Key: "createdTS", Value: -1}}
	switch search.Filter {
	case lookups.QuestionFilterFrequent:
		sortOrder = bson.D{{Key: "views", Value: -1}}
	case lookups.QuestionFilterUnanswered:
		filter = append(filter, bson.E{Key: "answers", Value: bson.D{{Key: "$size", Value: 0}}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	opts := options.Find().SetSort(sortOrder).SetSkip(page.Skip()).SetLimit(page.PageSize)

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	items, err := m.listItems(questions)
	if err != nil {
		return nil, false, err
	}

	return items, HasNextByCount(total, page.Skip(), len(items)), nil
}

// RecommendedQuestions ranks content for a user from the tags of their
// interaction history: plain (unweighted) set union of the tag ids, then
// questions whose tags intersect that union, excluding the user's own.
// A user without interactions gets an empty page, not an error, and no
// fallback to unrelated content.
// hasNext strategy: count-then-fetch.
func (m QuestionModel) RecommendedQuestions(userID primitive.ObjectID, searchTerm string, page PageRequest) ([]QuestionListItem, bool, error) {

	page, err := page.Normalize()
	if err != nil {
		return nil, false, err
	}

	interactions, err := m.ListInteractions(userID)
	if err != nil {
		return nil, false, err
	}

	tagIDs := DistinctTagIDs(interactions)
	if len(tagIDs) == 0 {
		return []QuestionListItem{}, false, nil
	}

	and := bson.A{
		bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: tagIDs}}}},
		bson.D{{Key: "author", Value: bson.D{{Key: "$ne", Value: userID}}}},
	}
	if searchTerm != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(searchTerm), Options: "i"}
		and = append(and, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "content", Value: pattern}},
		}}})
	}
	filter := bson.D{{Key: "$and", Value: and}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	opts := options.Find().SetSkip(page.Skip()).SetLimit(page.PageSize)

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	items, err := m.listItems(questions)
	if err != nil {
		return nil, false, err
	}

	return items, HasNextByCount(total, page.Skip(), len(items)), nil
}

// SavedQuestions lists a user's saved set.
// hasNext strategy: over-fetch (PageSize+1, trim) - race-free within the
// single query, no count needed.
func (m QuestionModel) SavedQuestions(userID primitive.ObjectID, search *QuestionSearch) ([]QuestionListItem, bool, error) {

	page, err := search.Page.Normalize()
	if err != nil {
		return nil, false, err
	}

	savedIDs, err := m.GetSavedIDs(userID)
	if err != nil {
		return nil, false, err
	}
	if len(savedIDs) == 0 {
		return []QuestionListItem{}, false, nil
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: savedIDs}}}}
	if search.SearchTerm != "" {
		filter = append(filter, bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(search.SearchTerm), Options: "i"}})
	}

	// "most voted"/"most answered" order by array sizes, which needs an
	// aggregation; the remaining filters are plain sorted finds
	switch search.Filter {
	case lookups.SavedFilterMostVoted:
		return m.savedByArraySize(filter, "upvotes", page)
	case lookups.SavedFilterMostAnswered:
		return m.savedByArraySize(filter, "answers", page)
	}

	sortOrder := bson.D{{Key: "createdTS", Value: -1}}
	switch search.Filter {
	case lookups.SavedFilterOldest:
		sortOrder = bson.D{{Key: "createdTS", Value: 1}}
	case lookups.SavedFilterMostViewed:
		sortOrder = bson.D{{Key: "views", Value: -1}}
	}

	opts := options.Find().SetSort(sortOrder).SetSkip(page.Skip()).SetLimit(page.OverfetchLimit())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	hasNext := int64(len(questions)) > page.PageSize
	if hasNext {
		questions = questions[:page.PageSize]
	}

	items, err := m.listItems(questions)
	if err != nil {
		return nil, false, err
	}

	return items, hasNext, nil
}

// savedByArraySize sorts the saved set by the size of an array field via
// $size (same technique as the popular-tags listing).
// hasNext strategy: over-fetch.
func (m QuestionModel) savedByArraySize(filter bson.D, sizeField string, page PageRequest) ([]QuestionListItem, bool, error) {

	matchStage := bson.D{{Key: "$match", Value: filter}}

	addStage := bson.D{
		{Key: "$addFields", Value: bson.D{
			{Key: "sortKey", Value: bson.D{{Key: "$size", Value: "$" + sizeField}}},
		}},
	}

	sortStage := bson.D{{Key: "$sort", Value: bson.D{
		{Key: "sortKey", Value: -1},
		{Key: "createdTS", Value: -1},
	}}}
	skipStage := bson.D{{Key: "$skip", Value: page.Skip()}}
	limitStage := bson.D{{Key: "$limit", Value: page.OverfetchLimit()}}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{
		matchStage,
		addStage,
		sortStage,
		skipStage,
		limitStage}, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	// the extra sortKey field is simply not decoded
	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	hasNext := int64(len(questions)) > page.PageSize
	if hasNext {
		questions = questions[:page.PageSize]
	}

	items, err := m.listItems(questions)
	if err != nil {
		return nil, false, err
	}

	return items, hasNext, nil
}

// QuestionsByTag lists the questions of one tag.
// hasNext strategy: over-fetch (PageSize+1, trim).
func (m QuestionModel) QuestionsByTag(tagID primitive.ObjectID, searchTerm string, page PageRequest) (string, []QuestionListItem, bool, error) {

	page, err := page.Normalize()
	if err != nil {
		return "", nil, false, err
	}

	tag, err := m.GetTag(tagID)
	if err != nil {
		return "", nil, false, err
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: tag.QuestionIDs}}}}
	if searchTerm != "" {
		filter = append(filter, bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(searchTerm), Options: "i"}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdTS", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.OverfetchLimit())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return "", nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return "", nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	hasNext := int64(len(questions)) > page.PageSize
	if hasNext {
		questions = questions[:page.PageSize]
	}

	items, err := m.listItems(questions)
	if err != nil {
		return "", nil, false, err
	}

	return tag.Name, items, hasNext, nil
}

// hotQuestionsKey is the cache key of the sidebar list
const hotQuestionsKey = "hotQuestions"

// HotQuestions returns the currently most viewed questions.
// The list sits on every page, so it is served from the cache (redis)
// and recomputed at most once per minute.
func (m QuestionModel) HotQuestions() ([]QuestionListItem, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if m.Cache != nil {
		val, err := m.Cache.Get(ctx, hotQuestionsKey).Result()
		if err == nil {
			var items []QuestionListItem
			if json.Unmarshal([]byte(val), &items) == nil {
				return items, nil
			}
		}
		// cache miss or unreadable entry, fall through to the database
	}

	items, err := m.hotQuestionsDB(ctx)
	if err != nil {
		return nil, err
	}

	if m.Cache != nil {
		// a failing cache write is not worth an error to the client
		if b, err := json.Marshal(items); err == nil {
			m.Cache.Set(ctx, hotQuestionsKey, b, time.Minute)
		}
	}

	return items, nil
}

func (m QuestionModel) hotQuestionsDB(ctx context.Context) ([]QuestionListItem, error) {

	sortOrder := bson.D{
		{Key: "views", Value: -1},
		{Key: "createdTS", Value: -1},
	}

	opts := options.Find().SetSort(sortOrder).SetLimit(5)

	cursor, err := m.Collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return m.listItems(questions)
}

// EditQuestion updates title and content. Author and tags stay as
// created, retagging is not offered.
func (m QuestionModel) EditQuestion(questionID string, title string, content string) error {

	id, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return apperror.ErrNotFound
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return ErrTitleMissing
	}
	if content == "" {
		return ErrContentMissing
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: title},
		{Key: "content", Value: content},
	}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

// DeleteQuestion removes a question and everything that only exists in
// reference to it: its answers, its interactions and its id in every tag's
// questions array. Fixed order, content first - a partial failure leaves
// orphaned references to a gone question (detectable), never a question
// with missing parts.
func (m QuestionModel) DeleteQuestion(questionID string) error {

	id, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return apperror.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.DeletedCount == 0 {
		return apperror.ErrNotFound
	}

	return m.deleteReferences(id)
}

// deleteReferences clears everything pointing at a deleted question.
// Fixed order, an error stops the chain - a partial failure is always a
// suffix of the cascade, never a hole in the middle.
func (m QuestionModel) deleteReferences(questionID primitive.ObjectID) error {

	err := m.DeleteAnswers(questionID)
	if err != nil {
		return err
	}

	err = m.DeleteInteractions(questionID)
	if err != nil {
		return err
	}

	return m.DetachFromTags(questionID)
}

// AttachAnswer pushes an answer id onto the question's answer list
func (m QuestionModel) AttachAnswer(questionID primitive.ObjectID, answerID primitive.ObjectID) error {

	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "answers", Value: answerID}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, bson.M{"_id": questionID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

// QuestionsByAuthor lists the questions a user asked, newest and most
// viewed first (profile page).
// hasNext strategy: count-then-fetch.
func (m QuestionModel) QuestionsByAuthor(authorID primitive.ObjectID, page PageRequest) ([]QuestionListItem, bool, error) {

	page, err := page.Normalize()
	if err != nil {
		return nil, false, err
	}

	filter := bson.D{{Key: "author", Value: authorID}}
	sortOrder := bson.D{
		{Key: "createdTS", Value: -1},
		{Key: "views", Value: -1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	opts := options.Find().SetSort(sortOrder).SetSkip(page.Skip()).SetLimit(page.PageSize)

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var questions []Question
	err = cursor.All(ctx, &questions)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	items, err := m.listItems(questions)
	if err != nil {
		return nil, false, err
	}

	return items, HasNextByCount(total, page.Skip(), len(items)), nil
}

// DeleteQuestionsByAuthor runs the delete cascade for every question of an
// author (account removal). Each question takes the full cascade so no
// answers, interactions or tag references survive.
func (m QuestionModel) DeleteQuestionsByAuthor(authorID primitive.ObjectID) error {

	fields := bson.D{{Key: "_id", Value: 1}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"author": authorID}, options.Find().SetProjection(fields))
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = cursor.All(ctx, &docs)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	for _, doc := range docs {
		err = m.DeleteQuestion(doc.ID.Hex())
		if err != nil {
			return err
		}
	}

	return nil
}

// CountByAuthor is injected into the user model for the profile stats
func (m QuestionModel) CountByAuthor(authorID primitive.ObjectID) (int64, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cnt, err := m.Collection.CountDocuments(ctx, bson.M{"author": authorID})
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return cnt, nil
}

// listItems copies full documents into the reduced list struct and
// resolves tag and author names (batched for tags, per author otherwise)
func (m QuestionModel) listItems(questions []Question) ([]QuestionListItem, error) {

	items := make([]QuestionListItem, 0, len(questions))
	if len(questions) == 0 {
		return items, nil
	}

	var allTagIDs []primitive.ObjectID
	for _, q := range questions {
		allTagIDs = append(allTagIDs, q.TagIDs...)
	}

	names, err := m.TagNames(allTagIDs)
	if err != nil {
		return nil, err
	}

	authorNames := make(map[primitive.ObjectID]string)

	var item QuestionListItem
	for _, q := range questions {
		item.ID = q.ID
		item.Title = q.Title
		item.TagNames = nil
		for _, tagID := range q.TagIDs {
			item.TagNames = append(item.TagNames, names[tagID])
		}
		item.AuthorID = q.AuthorID
		if _, ok := authorNames[q.AuthorID]; !ok {
			// errors maybe ignored here, deleted accounts show up nameless
			authorNames[q.AuthorID], _ = m.GetUserNameOID(q.AuthorID)
		}
		item.AuthorName = authorNames[q.AuthorID]
		item.UpVotes = int32(len(q.UpVoteIDs))
		item.Answers = int32(len(q.AnswerIDs))
		item.Views = q.Views
		item.CreatedTS = q.CreatedTS

		items = append(items, item)
	}

	return items, nil
}
