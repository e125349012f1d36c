package models

import (
	"context"
	"devflow/apperror"
	"devflow/helpers"
	"devflow/lookups"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reputation deltas applied by the write operations.
// Reputation is only ever mutated through $inc (IncrementReputation),
// never set directly by a client.
const (
	RepAskQuestion    int32 = 5
	RepAnswerQuestion int32 = 10
	RepVoterDelta     int32 = 2
	RepAuthorDelta    int32 = 10
)

// User is the "interface" used for client communication.
// ClerkID is the subject id of the external identity provider - identity
// itself is managed there, this service only resolves it to a user record.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id"`
	ClerkID      string               `json:"clerkId" bson:"clerkId"`
	UserName     string               `json:"username" bson:"username"`
	Name         string               `json:"name" bson:"name"`
	Password     string               `json:"-" bson:"password,omitempty"` // hash value, local logins only
	EMailAddress string               `json:"eMail" bson:"eMail"`
	Picture      string               `json:"picture" bson:"picture"`
	Reputation   int32                `json:"reputation" bson:"reputation"` // may go negative, unbounded
	SavedIDs     []primitive.ObjectID `json:"saved" bson:"saved"`
	JoinedTS     time.Time            `json:"joinedTS" bson:"joinedTS"`
}

// UserSearch is passed as the listing params
type UserSearch struct {
	SearchTerm string
	Filter     string
	Page       PageRequest
}

// UserStats is the profile summary (counts are derived, not stored)
type UserStats struct {
	User           *User `json:"user"`
	TotalQuestions int64 `json:"totalQuestions"`
	TotalAnswers   int64 `json:"totalAnswers"`
}

// UserModel provides the logic to the interface and access to the database
type UserModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// injected from other models
	CountQuestions  func(authorID primitive.ObjectID) (int64, error)
	CountAnswers    func(authorID primitive.ObjectID) (int64, error)
	GetQuestionTags func(questionID primitive.ObjectID) ([]primitive.ObjectID, error)
	Record          func(interaction Interaction) error
	DeleteQuestions func(authorID primitive.ObjectID) error
}

// CreateUser adds a new user, usually triggered by the identity provider's
// sign-up webhook
func (m UserModel) CreateUser(user User) (string, error) {

	// a store failure surfaces as such, only a positive hit means "taken"
	b, err := userExists(m.Collection, user.UserName)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}
	if b {
		return "", ErrUserNameNotAvailable
	}

	b, err = eMailExists(m.Collection, user.EMailAddress)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}
	if b {
		return "", ErrEMailAddressTaken
	}

	if user.Password != "" {
		pwdHash, err := helpers.GenerateHash(user.Password)
		if err != nil {
			return "", err
		}
		user.Password = pwdHash
	}

	user.ID = primitive.NewObjectID()
	user.Reputation = 0
	user.SavedIDs = []primitive.ObjectID{}
	user.JoinedTS = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetUserByID reads a user's profile data
func (m UserModel) GetUserByID(ID string) (*User, error) {

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &user, nil
}

// GetUserByClerkID resolves an external auth subject id to the user record
// (identity management stays external, only the resolution lives here)
func (m UserModel) GetUserByClerkID(clerkID string) (*User, error) {

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"clerkId": clerkID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &user, nil
}

// GetUserByName reads a user's account data for the local login fallback
func (m UserModel) GetUserByName(userName string) (*User, error) {

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"username": userName}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &user, nil
}

// GetUserName returns the user name from an ID (reduced version, without
// profile data)
func (m UserModel) GetUserName(ID string) (string, error) {

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return "", ErrInvalidUser
	}

	return m.GetUserNameOID(id)
}

// GetUserNameOID is the ObjectID variant, injected into other models
func (m UserModel) GetUserNameOID(ID primitive.ObjectID) (string, error) {

	data := struct {
		UserName string `bson:"username"`
	}{}

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "username", Value: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"_id": ID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrInvalidUser
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return data.UserName, nil
}

// CheckPassword tests if a login's password matches (no DB access needed)
func (m UserModel) CheckPassword(givenPassword string, userInfo User) bool {
	match, err := helpers.CompareHash(userInfo.Password, givenPassword)
	if err != nil {
		return false
	}
	return match
}

// IncrementReputation moves a user's reputation counter by delta.
// $inc by id is the only mutation path - no read-modify-write, so two
// concurrent votes can never lose an update.
func (m UserModel) IncrementReputation(userID primitive.ObjectID, delta int32) error {

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "reputation", Value: delta}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

// GetSavedIDs reads just the saved-question ids via projection
func (m UserModel) GetSavedIDs(userID primitive.ObjectID) ([]primitive.ObjectID, error) {

	data := struct {
		SavedIDs []primitive.ObjectID `bson:"saved"`
	}{}

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "saved", Value: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return data.SavedIDs, nil
}

// saveTransition resolves a toggle against the current saved set: an
// absent question gets an $addToSet, a present one a $pull. The returned
// boolean is the membership after the update is applied.
// Pure function so the alternation can be verified without a database.
func saveTransition(savedIDs []primitive.ObjectID, questionID primitive.ObjectID) (bson.D, bool) {

	for _, id := range savedIDs {
		if id == questionID {
			return bson.D{{Key: "$pull", Value: bson.D{{Key: "saved", Value: questionID}}}}, false
		}
	}

	return bson.D{{Key: "$addToSet", Value: bson.D{{Key: "saved", Value: questionID}}}}, true
}

// ToggleSave flips membership of a question in the user's saved set and
// returns the new state. A second call un-saves instead of erroring, so
// callers needing an explicit add or remove must check membership first.
// Unlike votes the membership is re-read here.
func (m UserModel) ToggleSave(userID primitive.ObjectID, questionID primitive.ObjectID) (bool, error) {

	if userID.IsZero() {
		return false, apperror.ErrUnauthenticated
	}

	saved, err := m.GetSavedIDs(userID)
	if err != nil {
		return false, err
	}

	update, nowSaved := saveTransition(saved, questionID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	// only an actual save is an expressed interest worth logging
	if nowSaved {
		tags, err := m.GetQuestionTags(questionID)
		if err == nil {
			err = m.Record(Interaction{
				UserID:     userID,
				Action:     lookups.ActionSave,
				QuestionID: questionID,
				TagIDs:     tags,
			})
		}
		if err != nil {
			return false, err
		}
	}

	return nowSaved, nil
}

// UpdateUser applies profile changes pushed by the identity provider's
// update webhook, keyed by the subject id
func (m UserModel) UpdateUser(clerkID string, name string, userName string, eMailAddress string, picture string) error {

	userName = strings.TrimSpace(userName)
	eMailAddress = strings.TrimSpace(eMailAddress)
	if userName == "" || eMailAddress == "" {
		return ErrInvalidUser
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: strings.TrimSpace(name)},
		{Key: "username", Value: userName},
		{Key: "eMail", Value: eMailAddress},
		{Key: "picture", Value: picture},
	}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, bson.M{"clerkId": clerkID}, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return ErrInvalidUser
	}

	return nil
}

// DeleteUser removes an account (identity provider's delete webhook) and
// the questions it asked, each with the full delete cascade. Answers the
// user gave on other questions stay and show up nameless.
func (m UserModel) DeleteUser(clerkID string) error {

	user, err := m.GetUserByClerkID(clerkID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": user.ID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if result.DeletedCount == 0 {
		return ErrInvalidUser
	}

	return m.DeleteQuestions(user.ID)
}

// SearchUsers lists or searches users.
// hasNext strategy: count-then-fetch (one CountDocuments per page).
func (m UserModel) SearchUsers(search *UserSearch) ([]User, bool, error) {

	page, err := search.Page.Normalize()
	if err != nil {
		return nil, false, err
	}

	filter := bson.D{}
	if search.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search.SearchTerm), Options: "i"}
		filter = bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "name", Value: pattern}},
				bson.D{{Key: "username", Value: pattern}},
			}},
		}
	}

	sortOrder := bson.D{{Key: "joinedTS", Value: -1}}
	switch search.Filter {
	case lookups.UserFilterOldUsers:
		sortOrder = bson.D{{Key: "joinedTS", Value: 1}}
	case lookups.UserFilterTopContributors:
		sortOrder = bson.D{{Key: "reputation", Value: -1}}
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

	var users []User
	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, false, helpers.WrapError(err, helpers.FuncName())
	}

	return users, HasNextByCount(total, page.Skip(), len(users)), nil
}

// GetUserStats returns the profile summary with derived content counts
func (m UserModel) GetUserStats(ID string) (*UserStats, error) {

	user, err := m.GetUserByID(ID)
	if err != nil {
		return nil, err
	}

	questions, err := m.CountQuestions(user.ID)
	if err != nil {
		return nil, err
	}

	answers, err := m.CountAnswers(user.ID)
	if err != nil {
		return nil, err
	}

	return &UserStats{User: user, TotalQuestions: questions, TotalAnswers: answers}, nil
}

// UserExists maybe used to validate new accounts while typing into the form
func (m UserModel) UserExists(userName string) bool {
	b, _ := userExists(m.Collection, userName)
	return b
}

// EMailAddressExists maybe used to validate new accounts while typing into the form
func (m UserModel) EMailAddressExists(emailAddress string) bool {
	b, _ := eMailExists(m.Collection, emailAddress)
	return b
}

// internal implementations that are used by multiple methods of the model
func userExists(collection *mongo.Collection, userName string) (bool, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// there seems to be no function like "exists" so a projection on just
	// the ID is used
	fields := bson.D{
		{Key: "_id", Value: 1}}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := collection.FindOne(ctx, bson.M{"username": userName}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		// treat errors as a "yes" - caller should not evaluate the result
		// in case of an error
		return true, err
	}
	// no error means a document was found, hence the user does exist
	return true, nil
}

func eMailExists(collection *mongo.Collection, emailAddress string) (bool, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fields := bson.D{
		{Key: "_id", Value: 1}}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := collection.FindOne(ctx, bson.M{"eMail": emailAddress}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return true, err
	}
	return true, nil
}
