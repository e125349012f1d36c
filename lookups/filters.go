package lookups

// sort filters accepted by the list endpoints
// clients pass the readable name in the URL rather than a code

// question lists
const (
	QuestionFilterNewest     = "newest"
	QuestionFilterFrequent   = "frequent"
	QuestionFilterUnanswered = "unanswered"
)

// saved-question lists
const (
	SavedFilterMostRecent   = "most_recent"
	SavedFilterOldest       = "oldest"
	SavedFilterMostVoted    = "most_voted"
	SavedFilterMostViewed   = "most_viewed"
	SavedFilterMostAnswered = "most_answered"
)

// answer lists
const (
	AnswerFilterHighestUpvotes = "highest_upvotes"
	AnswerFilterLowestUpvotes  = "lowest_upvotes"
	AnswerFilterRecent         = "recent"
	AnswerFilterOld            = "old"
)

// user lists
const (
	UserFilterNewUsers        = "new_users"
	UserFilterOldUsers        = "old_users"
	UserFilterTopContributors = "top_contributors"
)

// tag lists
const (
	TagFilterPopular = "popular"
	TagFilterRecent  = "recent"
	TagFilterName    = "name"
	TagFilterOld     = "old"
)
