package lookups

// interaction action types as stored in the interactions collection
// (strings rather than codes so the analytics queries stay readable)

// Registry of legal action values
const (
	ActionAskQuestion    = "ask_question"
	ActionAnswerQuestion = "answer_question"
	ActionUpvote         = "upvote"
	ActionDownvote       = "downvote"
	ActionView           = "view"
	ActionSave           = "save"
)

// ValidAction reports whether a given value is a known action type
func ValidAction(action string) bool {

	switch action {
	case ActionAskQuestion, ActionAnswerQuestion, ActionUpvote, ActionDownvote, ActionView, ActionSave:
		return true
	}

	return false
}
