package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

type Submission struct {
	ID             string    `db:"id" json:"id"`
	AssignmentID   string    `db:"assignment_id" json:"assignment_id"`
	SubmitterEmail string    `db:"submitter_email" json:"submitter_email" validate:"required,email"`
	SubmissionURL  string    `db:"submission_url" json:"submission_url"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionInput is the payload accepted on submission. The only
// recognized field is submission_url.
type SubmissionInput struct {
	SubmissionURL string `json:"submission_url" validate:"required"`
}

func (in *SubmissionInput) Validate() error {
	validate := validator.New()
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("submission_url is required")
	}

	u, err := url.Parse(in.SubmissionURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("submission_url must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("submission_url must use http or https")
	}

	return nil
}
