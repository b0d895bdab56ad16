package models

import "time"

// RecentWindow is how far back a publish date still counts as recent
const RecentWindow = 24 * time.Hour

// IndexLimit is the number of questions shown on the index page
const IndexLimit = 5

// Form and flash messages shown to users
const (
	MsgNoChoice       = "You didn't select a choice."
	MsgVotingClosed   = "Voting is not allowed."
	MsgNoPolls        = "No polls are available."
	MsgBadCredentials = "Please enter a correct username and password."
)

// Domain types

type Question struct {
	ID      string     `json:"id"`
	Text    string     `json:"text"`
	PubDate time.Time  `json:"pub_date"`
	EndDate *time.Time `json:"end_date,omitempty"`
}

// WasPublishedRecently reports whether the question went live within the
// last RecentWindow before now. Both ends are inclusive.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return !q.PubDate.Before(now.Add(-RecentWindow)) && !q.PubDate.After(now)
}

// IsPublished reports whether now is at or after the publish date
func (q Question) IsPublished(now time.Time) bool {
	return !now.Before(q.PubDate)
}

// CanVote reports whether now falls inside [PubDate, EndDate].
// A question without an end date stays open forever once published.
func (q Question) CanVote(now time.Time) bool {
	if !q.IsPublished(now) {
		return false
	}
	if q.EndDate == nil {
		return true
	}
	return !now.After(*q.EndDate)
}

type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Position   int    `json:"position"`
}

// ChoiceResult is a choice together with its live vote count
type ChoiceResult struct {
	Choice
	Votes int64 `json:"votes"`
}

type Vote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	ChoiceID   string    `json:"choice_id"`
	CastAt     time.Time `json:"cast_at"`
	IPHash     *string   `json:"-"` // Never expose in JSON
	UserAgent  *string   `json:"-"` // Never expose in JSON
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Response types

type ResultsResponse struct {
	Question   Question       `json:"question"`
	Choices    []ChoiceResult `json:"choices"`
	TotalVotes int64          `json:"total_votes"`
	CanVote    bool           `json:"can_vote"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
