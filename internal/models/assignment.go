package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Assignment struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Points        int       `db:"points" json:"points"`
	NumOfAttempts int       `db:"num_of_attempts" json:"num_of_attempts"`
	Deadline      time.Time `db:"deadline" json:"deadline"`
	OwnerID       string    `db:"owner_id" json:"user_id"`
	Created       time.Time `db:"assignment_created" json:"assignment_created"`
	Updated       time.Time `db:"assignment_updated" json:"assignment_updated"`
}

// AssignmentInput is the payload accepted on assignment create and update.
// Unknown fields are rejected at decode time by the handlers.
type AssignmentInput struct {
	Name          string    `json:"name" validate:"required"`
	Points        int       `json:"points" validate:"required,gte=1,lte=10"`
	NumOfAttempts int       `json:"num_of_attempts" validate:"required,gte=1"`
	Deadline      time.Time `json:"deadline" validate:"required"`
}

func (in *AssignmentInput) Validate(now time.Time) error {
	validate := validator.New()
	if err := validate.Struct(in); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("invalid field %q", errs[0].Field())
		}
		return err
	}

	if !in.Deadline.After(now) {
		return fmt.Errorf("deadline must be in the future")
	}

	return nil
}
