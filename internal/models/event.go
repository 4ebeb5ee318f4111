package models

// SubmissionEvent is the message handed to the async pipeline after a
// submission is accepted. Wire format:
//
//	{"url": "...", "user": {"email": "..."}}
type SubmissionEvent struct {
	URL  string    `json:"url"`
	User EventUser `json:"user"`
}

type EventUser struct {
	Email string `json:"email"`
}
