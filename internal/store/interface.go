package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type Store interface {
	Close() error
	Ping(ctx context.Context) error
	ApplyMigrations(dir string) error

	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error

	CreateAssignment(a *models.Assignment) error
	GetAssignment(id string) (*models.Assignment, error)
	ListAssignments() ([]models.Assignment, error)
	UpdateAssignment(a *models.Assignment) error
	DeleteAssignment(id string) error

	CountSubmissions(assignmentID string) (int, error)
	CreateSubmissionIfBelowLimit(sub *models.Submission, limit int) (bool, error)

	CreateAuditRecord(rec *models.AuditRecord) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, first_name, last_name, email, password_hash, account_created, account_updated
		FROM users
		WHERE email = ?
	`)

	err := s.DB.Get(&user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (id, first_name, last_name, email, password_hash, account_created, account_updated)
		VALUES (:id, :first_name, :last_name, :email, :password_hash, :account_created, :account_updated)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) CreateAssignment(a *models.Assignment) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO assignments (id, name, points, num_of_attempts, deadline, owner_id, assignment_created, assignment_updated)
		VALUES (:id, :name, :points, :num_of_attempts, :deadline, :owner_id, :assignment_created, :assignment_updated)
	`, a)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAssignment(id string) (*models.Assignment, error) {
	var a models.Assignment
	query := s.Converter(`
		SELECT id, name, points, num_of_attempts, deadline, owner_id, assignment_created, assignment_updated
		FROM assignments
		WHERE id = ?
	`)

	err := s.DB.Get(&a, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func (s *BaseStore) ListAssignments() ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.DB.Select(&assignments, `
		SELECT id, name, points, num_of_attempts, deadline, owner_id, assignment_created, assignment_updated
		FROM assignments
		ORDER BY assignment_created DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *BaseStore) UpdateAssignment(a *models.Assignment) error {
	_, err := s.DB.NamedExec(`
		UPDATE assignments
		SET name = :name,
		    points = :points,
		    num_of_attempts = :num_of_attempts,
		    deadline = :deadline,
		    assignment_updated = :assignment_updated
		WHERE id = :id
	`, a)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteAssignment(id string) error {
	query := s.Converter(`DELETE FROM assignments WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) CountSubmissions(assignmentID string) (int, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM submissions WHERE assignment_id = ?`)

	if err := s.DB.Get(&count, query, assignmentID); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// CreateSubmissionIfBelowLimit inserts the submission only while the
// assignment has fewer than limit submissions. The count check and the
// insert run as a single statement so concurrent attempts cannot both
// slip under the limit. Returns false when the limit was already reached.
func (s *BaseStore) CreateSubmissionIfBelowLimit(sub *models.Submission, limit int) (bool, error) {
	query := s.Converter(`
		INSERT INTO submissions (id, assignment_id, submitter_email, submission_url, submitted_at)
		SELECT ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM submissions WHERE assignment_id = ?) < ?
	`)

	res, err := s.DB.Exec(query,
		sub.ID,
		sub.AssignmentID,
		sub.SubmitterEmail,
		sub.SubmissionURL,
		sub.SubmittedAt,
		sub.AssignmentID,
		limit,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create submission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check submission insert: %w", err)
	}
	return affected > 0, nil
}

func (s *BaseStore) CreateAuditRecord(rec *models.AuditRecord) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO audit_log (id, user_email, submission_time, status, object_path)
		VALUES (:id, :user_email, :submission_time, :status, :object_path)
	`, rec)
	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}
	return nil
}
