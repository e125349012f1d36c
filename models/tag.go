package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxTagNameLength caps what a client may submit as a tag name
const MaxTagNameLength = 30

// Tag groups questions under a case-insensitively unique name.
// Tags are created lazily on first use and never deleted while referenced.
type Tag struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id"`
	Name        string               `json:"name" bson:"name"`
	QuestionIDs []primitive.ObjectID `json:"questionIDs" bson:"questions"`
	CreatedTS   time.Time            `json:"createdTS" bson:"createdTS"`
}

// TagListItem is the reduced model used for tag listings
type TagListItem struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	QuestionCount int32              `json:"questionCount"`
}

// TagCount is one entry of the affinity ranking
type TagCount struct {
	ID    primitive.ObjectID `json:"tagId"`
	Name  string             `json:"name"`
	Count int32              `json:"count"`
}

// TagSearch is passed as the listing params
type TagSearch struct {
	SearchTerm string
	Filter     string
	Page       PageRequest
}

// TagModel provides the logic to the interface and access to the database
type TagModel struct {
	Collection       *mongo.Collection
	ListInteractions func(userID primitive.ObjectID) ([]Interaction, error)
}

// FindOrCreateTag upserts a tag by case-insensitive name and links the
// question to it in the same command. The regex is anchored so "go" will
// not match "django".
func (m TagModel) FindOrCreateTag(name string, questionID primitive.ObjectID) (primitive.ObjectID, error) {

	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return primitive.NilObjectID, ErrTagNameMissing
	}
	if len(cleaned) > MaxTagNameLength {
		return primitive.NilObjectID, ErrTagNameTooLong
	}

	filter := bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(cleaned) + "$", Options: "i"}}

	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "name", Value: cleaned},
			{Key: "createdTS", Value: time.Now()},
		}},
		{Key: "$addToSet", Value: bson.D{{Key: "questions", Value: questionID}}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tag Tag
	err := m.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&tag)
	if err != nil {
		return primitive.NilObjectID, helpers.WrapError(err, helpers.FuncName())
	}

	return tag.ID, nil
}

// GetTag returns one tag
func (m TagModel) GetTag(tagID primitive.ObjectID) (*Tag, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tag Tag
	err := m.Collection.FindOne(ctx, bson.M{"_id": tagID}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &tag, nil
}

// TagNames resolves a batch of tag ids to their names in one query
func (m TagModel) TagNames(tagIDs []primitive.ObjectID) (map[primitive.ObjectID]string, error) {

	names := make(map[primitive.ObjectID]string)
	if len(tagIDs) == 0 {
		return names, nil
	}

	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "name", Value: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": tagIDs}}, options.Find().SetProjection(fields))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tags []Tag
	err = cursor.All(ctx, &tags)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	for _, tag := range tags {
		names[tag.ID] = tag.Name
	}

	return names, nil
}

// rankTagAffinities builds the frequency ranking over the tag id sequences
// of a user's interactions: one increment per tag occurrence per
// interaction, ordered by descending count. The stable sort keeps ties in
// first-seen order, so the output is deterministic for a fixed interaction
// sequence.
func rankTagAffinities(interactionTags [][]primitive.ObjectID, limit int) []TagCount {

	counts := make(map[primitive.ObjectID]int32)
	var firstSeen []primitive.ObjectID

	for _, tags := range interactionTags {
		for _, id := range tags {
			if _, ok := counts[id]; !ok {
				firstSeen = append(firstSeen, id)
			}
			counts[id]++
		}
	}

	ranked := make([]TagCount, 0, len(firstSeen))
	for _, id := range firstSeen {
		ranked = append(ranked, TagCount{ID: id, Count: counts[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// TopInteractedTags returns a user's strongest tag affinities, derived
// from the interaction log in chronological fetch order (which fixes the
// tie-breaking). Names are resolved in a single batch afterwards.
func (m TagModel) TopInteractedTags(userID primitive.ObjectID, limit int) ([]TagCount, error) {

	interactions, err := m.ListInteractions(userID)
	if err != nil {
		return nil, err
	}

	sequences := make([][]primitive.ObjectID, 0, len(interactions))
	for _, interaction := range interactions {
		sequences = append(sequences, interaction.TagIDs)
	}

	ranked := rankTagAffinities(sequences, limit)
	if len(ranked) == 0 {
		return []TagCount{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(ranked))
	for _, entry := range ranked {
		ids = append(ids, entry.ID)
	}

	names, err := m.TagNames(ids)
	if err != nil {
		return nil, err
	}

	for i := range ranked {
		ranked[i].Name = names[ranked[i].ID]
	}

	return ranked, nil
}

// SearchTags lists or searches tags.
// hasNext strategy: count-then-fetch (one CountDocuments per page).
func (m TagModel) SearchTags(search *TagSearch) ([]TagListItem, bool, error) {

	page, err := search.Page.Normalize()
	if err != nil {
		return nil, false, err
	}

	filter := bson.D{}
	if search.SearchTerm != "" {
		filter = bson.D{
			{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(search.SearchTerm), Options: "i"}},
		}
	}

	// "popular" orders by the size of the questions array, which needs an
	// aggregation; the other filters are plain sorted finds
	if search.Filter == lookups.TagFilterPopular {
		return m.popularTags(filter, page)
	}

	sortOrder := bson.D{{Key: "createdTS", Value: -1}}
	switch search.Filter {
	case lookups.TagFilterName:
		sortOrder = bson.D{{Key: "name", Value: 1}}
	case lookups.TagFilterOld:
		sortOrder = bson.D{{Key: "createdTS", Value: 1}}
	case lookups.TagFilterRecent:
		sortOrder = bson.D{{Key: "createdTS", Value: -1}}
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

	var tags []Tag
	err = cursor.All(ctx, &tags)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	items := make([]TagListItem, 0, len(tags))
	for _, tag := range tags {
		items = append(items, TagListItem{
			ID:            tag.ID,
			Name:          tag.Name,
			QuestionCount: int32(len(tag.QuestionIDs)),
		})
	}

	return items, HasNextByCount(total, page.Skip(), len(items)), nil
}

// popularTags sorts by question count via $size
// https://docs.mongodb.com/manual/reference/operator/aggregation/size/
func (m TagModel) popularTags(filter bson.D, page PageRequest) ([]TagListItem, bool, error) {

	matchStage := bson.D{{Key: "$match", Value: filter}}

	projectStage := bson.D{
		{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "questionCount", Value: bson.D{{Key: "$size", Value: "$questions"}}},
		}},
	}

	sortStage := bson.D{{Key: "$sort", Value: bson.D{{Key: "questionCount", Value: -1}}}}
	skipStage := bson.D{{Key: "$skip", Value: page.Skip()}}
	limitStage := bson.D{{Key: "$limit", Value: page.PageSize}}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := m.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{
		matchStage,
		projectStage,
		sortStage,
		skipStage,
		limitStage}, opts)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	var rows []struct {
		ID            primitive.ObjectID `bson:"_id"`
		Name          string             `bson:"name"`
		QuestionCount int32              `bson:"questionCount"`
	}
	err = cursor.All(ctx, &rows)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	items := make([]TagListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, TagListItem{ID: row.ID, Name: row.Name, QuestionCount: row.QuestionCount})
	}

	return items, HasNextByCount(total, page.Skip(), len(items)), nil
}

// DetachQuestion pulls a question id out of every tag's questions array
// (part of the delete cascade; the tag itself survives, possibly empty)
func (m TagModel) DetachQuestion(questionID primitive.ObjectID) error {

	filter := bson.M{"questions": questionID}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "questions", Value: questionID}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}
