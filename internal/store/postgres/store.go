package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// CreateSubmissionIfBelowLimit locks the assignment row before counting so
// that concurrent submitters cannot both grab the last remaining attempt
// under read committed isolation.
func (s *PostgresStore) CreateSubmissionIfBelowLimit(sub *models.Submission, limit int) (bool, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int
	err = tx.Get(&locked, `SELECT 1 FROM assignments WHERE id = $1 FOR UPDATE`, sub.AssignmentID)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("assignment %s does not exist", sub.AssignmentID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock assignment: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO submissions (id, assignment_id, submitter_email, submission_url, submitted_at)
		SELECT $1, $2, $3, $4, $5
		WHERE (SELECT COUNT(*) FROM submissions WHERE assignment_id = $6) < $7
	`, sub.ID, sub.AssignmentID, sub.SubmitterEmail, sub.SubmissionURL, sub.SubmittedAt, sub.AssignmentID, limit)
	if err != nil {
		return false, fmt.Errorf("failed to create submission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check submission insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit submission: %w", err)
	}

	return affected > 0, nil
}
