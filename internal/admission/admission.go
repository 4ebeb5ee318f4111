package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

// Business rejections, in gate order. Anything wrapped in
// ErrStoreUnavailable is an infrastructure fault instead, and maps to
// 503 rather than 400/404.
var (
	ErrBadAssignmentID    = errors.New("assignment id is not a valid UUID")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrDeadlinePassed     = errors.New("submission deadline has passed")
	ErrAttemptsExceeded   = errors.New("exceeded maximum number of attempts")

	ErrStoreUnavailable = errors.New("store unavailable")
)

type Publisher interface {
	Publish(ctx context.Context, event models.SubmissionEvent) error
}

// Controller decides whether a new submission attempt is accepted. It
// holds explicit handles to its collaborators; there is no package
// state.
type Controller struct {
	store     store.Store
	publisher Publisher
	now       func() time.Time
}

func NewController(s store.Store, p Publisher, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:     s,
		publisher: p,
		now:       now,
	}
}

// Admit runs the submission gates in order, short-circuiting on the
// first failure: id shape, assignment existence, deadline, attempt
// limit. On accept it persists the submission and emits the event.
// The attempt-limit check and the insert are enforced atomically by the
// store, so concurrent attempts cannot overshoot the limit.
func (c *Controller) Admit(ctx context.Context, assignmentID string, submitter *models.User, submissionURL string) (*models.Submission, error) {
	if _, err := uuid.Parse(assignmentID); err != nil {
		return nil, ErrBadAssignmentID
	}

	assignment, err := c.store.GetAssignment(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}

	now := c.now().UTC()
	if !now.Before(assignment.Deadline) {
		return nil, ErrDeadlinePassed
	}

	count, err := c.store.CountSubmissions(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count >= assignment.NumOfAttempts {
		return nil, ErrAttemptsExceeded
	}

	sub := &models.Submission{
		ID:             uuid.NewString(),
		AssignmentID:   assignmentID,
		SubmitterEmail: submitter.Email,
		SubmissionURL:  submissionURL,
		SubmittedAt:    now,
	}

	ok, err := c.store.CreateSubmissionIfBelowLimit(sub, assignment.NumOfAttempts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		// lost the race for the last remaining attempt
		return nil, ErrAttemptsExceeded
	}

	c.publish(ctx, sub)

	return sub, nil
}

// publish emits the submission event. Best-effort: a failed publish is
// logged and the accepted submission stands.
func (c *Controller) publish(ctx context.Context, sub *models.Submission) {
	if c.publisher == nil {
		return
	}

	event := models.SubmissionEvent{
		URL:  sub.SubmissionURL,
		User: models.EventUser{Email: sub.SubmitterEmail},
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		logger.Error.Printf("Failed to publish submission event for assignment %s: %v", sub.AssignmentID, err)
		return
	}
	logger.Debug.Printf("Published submission event for assignment %s", sub.AssignmentID)
}
