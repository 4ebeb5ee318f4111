package models

import "time"

const (
	AuditStatusSuccess = "Success"
	AuditStatusFailed  = "Failed"
)

// AuditRecord is one row of the notifier's durable processing log.
type AuditRecord struct {
	ID             string    `db:"id" json:"id"`
	UserEmail      string    `db:"user_email" json:"userEmail"`
	SubmissionTime time.Time `db:"submission_time" json:"submissionTime"`
	Status         string    `db:"status" json:"status"`
	ObjectPath     string    `db:"object_path" json:"objectPath,omitempty"`
}
