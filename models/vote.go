package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// vote directions
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// content kinds votes apply to
const (
	KindQuestion = "question"
	KindAnswer   = "answer"
)

// Vote represents a single vote request.
// The voter's currently believed membership is supplied by the client
// (HasUpvoted/HasDownvoted) instead of being re-read here - saves one read
// per vote, accepts a staleness window between two browser tabs. A stale
// claim cannot corrupt the sets: $pull of an absent element is a no-op and
// $addToSet never duplicates, so the worst case is a toggle in the wrong
// direction.
type Vote struct {
	ContentID    string `json:"contentId" binding:"required"`
	ContentKind  string `json:"contentKind" binding:"required"`
	Direction    string `json:"direction" binding:"required"`
	HasUpvoted   bool   `json:"hasUpvoted"`
	HasDownvoted bool   `json:"hasDownvoted"`
}

// VoteReceipt is the state of the content item after the vote was applied
type VoteReceipt struct {
	UpVotes   int32  `json:"upVotes"`
	DownVotes int32  `json:"downVotes"`
	UserVote  string `json:"userVote"` // direction now held, empty after a toggle off
}

// VoteState is the membership of one voter on one content item.
// The sets are mutually exclusive, so {true, true} is unreachable.
type VoteState struct {
	HasUpvoted   bool
	HasDownvoted bool
}

// VoteChange describes the set mutations and reputation deltas of one
// resolved transition
type VoteChange struct {
	AddUp       bool
	AddDown     bool
	RemoveUp    bool
	RemoveDown  bool
	VoterDelta  int32
	AuthorDelta int32
}

// Held returns the direction the voter holds after the change was applied
func (c VoteChange) Held() string {
	switch {
	case c.AddUp:
		return VoteUp
	case c.AddDown:
		return VoteDown
	}
	return ""
}

// VoteTransition resolves a request against the voter's current membership.
// Three reachable states {none, up-only, down-only}, two inputs:
//
//	none      + up   -> add up                   voter +2, author +10
//	none      + down -> add down                 voter +2, author +10
//	up-only   + up   -> remove up (toggle off)   voter -2, author -10
//	up-only   + down -> remove up, add down      voter +2, author +10 (flip)
//	down-only + down -> remove down (toggle off) voter -2, author -10
//	down-only + up   -> remove down, add up      voter +2, author +10 (flip)
//
// Pure function so the table can be verified without a database.
func VoteTransition(state VoteState, direction string) (VoteChange, error) {

	if state.HasUpvoted && state.HasDownvoted {
		return VoteChange{}, ErrInconsistentVoteState
	}

	var change VoteChange

	switch direction {
	case VoteUp:
		switch {
		case state.HasUpvoted:
			change.RemoveUp = true
			change.VoterDelta = -RepVoterDelta
			change.AuthorDelta = -RepAuthorDelta
		case state.HasDownvoted:
			change.RemoveDown = true
			change.AddUp = true
			change.VoterDelta = RepVoterDelta
			change.AuthorDelta = RepAuthorDelta
		default:
			change.AddUp = true
			change.VoterDelta = RepVoterDelta
			change.AuthorDelta = RepAuthorDelta
		}
	case VoteDown:
		switch {
		case state.HasDownvoted:
			change.RemoveDown = true
			change.VoterDelta = -RepVoterDelta
			change.AuthorDelta = -RepAuthorDelta
		case state.HasUpvoted:
			change.RemoveUp = true
			change.AddDown = true
			change.VoterDelta = RepVoterDelta
			change.AuthorDelta = RepAuthorDelta
		default:
			change.AddDown = true
			change.VoterDelta = RepVoterDelta
			change.AuthorDelta = RepAuthorDelta
		}
	default:
		return VoteChange{}, ErrInvalidDirection
	}

	return change, nil
}

// VoteModel is the ledger that keeps vote sets and reputation counters
// consistent. Functions of other models are injected so this package
// stays free of circular references.
type VoteModel struct {
	QuestionCollection  *mongo.Collection
	AnswerCollection    *mongo.Collection
	IncrementReputation func(userID primitive.ObjectID, delta int32) error
	GetQuestionTags     func(questionID primitive.ObjectID) ([]primitive.ObjectID, error)
	Record              func(interaction Interaction) error
}

// votedContent receives the updated document; answers carry the question
// back-reference, questions carry tags
type votedContent struct {
	ID        primitive.ObjectID   `bson:"_id"`
	AuthorID  primitive.ObjectID   `bson:"author"`
	Question  primitive.ObjectID   `bson:"question,omitempty"`
	TagIDs    []primitive.ObjectID `bson:"tags,omitempty"`
	UpVotes   []primitive.ObjectID `bson:"upvotes"`
	DownVotes []primitive.ObjectID `bson:"downvotes"`
}

// CastVote applies one vote to a question or answer and moves the voter's
// and the author's reputation with it.
// Order is fixed: the content document is mutated first in one atomic
// update, the two reputation $incs follow.
// A failure in between leaves the vote recorded with reputation lagging,
// never reputation moved without the vote.
func (v VoteModel) CastVote(vote Vote, voterID primitive.ObjectID) (*VoteReceipt, error) {

	// write operation - a missing identity is a hard error here
	if voterID.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	contentOID, err := primitive.ObjectIDFromHex(vote.ContentID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	collection, err := v.collection(vote.ContentKind)
	if err != nil {
		return nil, err
	}

	change, err := VoteTransition(VoteState{vote.HasUpvoted, vote.HasDownvoted}, vote.Direction)
	if err != nil {
		return nil, err
	}

	// both set mutations of a flip ride in the same update command,
	// so concurrent voters can never observe half a flip
	pulls := bson.D{}
	adds := bson.D{}
	if change.RemoveUp {
		pulls = append(pulls, bson.E{Key: "upvotes", Value: voterID})
	}
	if change.RemoveDown {
		pulls = append(pulls, bson.E{Key: "downvotes", Value: voterID})
	}
	if change.AddUp {
		adds = append(adds, bson.E{Key: "upvotes", Value: voterID})
	}
	if change.AddDown {
		adds = append(adds, bson.E{Key: "downvotes", Value: voterID})
	}

	update := bson.D{}
	if len(pulls) > 0 {
		update = append(update, bson.E{Key: "$pull", Value: pulls})
	}
	if len(adds) > 0 {
		update = append(update, bson.E{Key: "$addToSet", Value: adds})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var content votedContent
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": contentOID}, update, opts).Decode(&content)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// reputation moves with the set mutation - voter first, then author.
	// self-votes hit the same document twice, the deltas sum up
	err = v.IncrementReputation(voterID, change.VoterDelta)
	if err != nil {
		return nil, err
	}
	err = v.IncrementReputation(content.AuthorID, change.AuthorDelta)
	if err != nil {
		return nil, err
	}

	// a new or flipped vote is logged for the affinity scorer;
	// revokes are not (nothing was expressed)
	if held := change.Held(); held != "" {
		err = v.recordVote(held, vote.ContentKind, content, voterID)
		if err != nil {
			return nil, err
		}
	}

	receipt := &VoteReceipt{
		UpVotes:   int32(len(content.UpVotes)),
		DownVotes: int32(len(content.DownVotes)),
		UserVote:  change.Held(),
	}

	return receipt, nil
}

// recordVote appends the interaction carrying the tags of the (parent)
// question, so votes feed the tag-affinity ranking
func (v VoteModel) recordVote(direction string, kind string, content votedContent, voterID primitive.ObjectID) error {

	action := lookups.ActionUpvote
	if direction == VoteDown {
		action = lookups.ActionDownvote
	}

	interaction := Interaction{
		UserID: voterID,
		Action: action,
	}

	switch kind {
	case KindQuestion:
		interaction.QuestionID = content.ID
		interaction.TagIDs = content.TagIDs
	case KindAnswer:
		interaction.AnswerID = content.ID
		interaction.QuestionID = content.Question
		tags, err := v.GetQuestionTags(content.Question)
		if err != nil {
			return err
		}
		interaction.TagIDs = tags
	}

	return v.Record(interaction)
}

func (v VoteModel) collection(kind string) (*mongo.Collection, error) {
	switch kind {
	case KindQuestion:
		return v.QuestionCollection, nil
	case KindAnswer:
		return v.AnswerCollection, nil
	}
	return nil, ErrInvalidContentKind
}
