package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

// setupTestDB starts a throwaway Postgres container and applies the schema
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	postgres, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := postgres.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		postgres.Terminate(ctx)
	}

	return s, cleanup
}

type testData struct {
	store      *PostgresStore
	now        time.Time
	user       models.User
	assignment models.Assignment
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	user := models.User{
		ID:             "3fdd2b10-9e05-4f5e-a7b3-52b4f6f3a111",
		FirstName:      "John",
		LastName:       "Doe",
		Email:          "john.doe@example.com",
		PasswordHash:   "$2a$10$abcdefghijklmnopqrstuv",
		AccountCreated: now,
		AccountUpdated: now,
	}
	require.NoError(t, s.CreateUser(&user), "Failed to insert test user")

	assignment := models.Assignment{
		ID:            "0b24a9b0-7f39-4d95-b6e1-8a2a0f1c9f42",
		Name:          "HW1",
		Points:        5,
		NumOfAttempts: 1,
		Deadline:      now.Add(24 * time.Hour),
		OwnerID:       user.ID,
		Created:       now,
		Updated:       now,
	}
	require.NoError(t, s.CreateAssignment(&assignment), "Failed to insert test assignment")

	return &testData{
		store:      s,
		now:        now,
		user:       user,
		assignment: assignment,
	}, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestCreateAndGetAssignment(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get assignment", func(t *testing.T) {
		got, err := td.store.GetAssignment(td.assignment.ID)
		require.NoError(t, err, "Failed to get assignment")
		require.NotNil(t, got)
		assert.Equal(t, td.assignment.Name, got.Name)
		assert.Equal(t, td.assignment.Points, got.Points)
		assert.Equal(t, td.assignment.NumOfAttempts, got.NumOfAttempts)
		assert.Equal(t, td.assignment.OwnerID, got.OwnerID)
		assert.True(t, got.Deadline.Equal(td.assignment.Deadline))
	})

	t.Run("get non-existent assignment", func(t *testing.T) {
		got, err := td.store.GetAssignment("52f9e8b4-6f0e-4a67-9f5e-1d2b8a7c3e90")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSubmissionLimitEnforcement(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	first := &models.Submission{
		ID:             "11111111-1111-4111-8111-111111111111",
		AssignmentID:   td.assignment.ID,
		SubmitterEmail: td.user.Email,
		SubmissionURL:  "https://x.com/a.zip",
		SubmittedAt:    td.now,
	}

	t.Run("insert below limit", func(t *testing.T) {
		ok, err := td.store.CreateSubmissionIfBelowLimit(first, td.assignment.NumOfAttempts)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("insert at limit rejected", func(t *testing.T) {
		second := *first
		second.ID = "22222222-2222-4222-8222-222222222222"
		ok, err := td.store.CreateSubmissionIfBelowLimit(&second, td.assignment.NumOfAttempts)
		require.NoError(t, err)
		assert.False(t, ok)

		count, err := td.store.CountSubmissions(td.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestConcurrentSubmissionsDoNotOvershootLimit(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	const attempts = 8

	var wg sync.WaitGroup
	accepted := make(chan bool, attempts)

	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
		"44444444-4444-4444-8444-444444444444",
		"55555555-5555-4555-8555-555555555555",
		"66666666-6666-4666-8666-666666666666",
		"77777777-7777-4777-8777-777777777777",
		"88888888-8888-4888-8888-888888888888",
	}

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sub := &models.Submission{
				ID:             id,
				AssignmentID:   td.assignment.ID,
				SubmitterEmail: td.user.Email,
				SubmissionURL:  "https://x.com/a.zip",
				SubmittedAt:    td.now,
			}
			ok, err := td.store.CreateSubmissionIfBelowLimit(sub, td.assignment.NumOfAttempts)
			if err == nil && ok {
				accepted <- true
			}
		}(ids[i])
	}
	wg.Wait()
	close(accepted)

	count, err := td.store.CountSubmissions(td.assignment.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, td.assignment.NumOfAttempts,
		"concurrent submissions must not overshoot the attempt limit")
	assert.Equal(t, count, len(accepted))
}

func TestDeleteAssignmentCascades(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	sub := &models.Submission{
		ID:             "11111111-1111-4111-8111-111111111111",
		AssignmentID:   td.assignment.ID,
		SubmitterEmail: td.user.Email,
		SubmissionURL:  "https://x.com/a.zip",
		SubmittedAt:    td.now,
	}
	ok, err := td.store.CreateSubmissionIfBelowLimit(sub, td.assignment.NumOfAttempts)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, td.store.DeleteAssignment(td.assignment.ID))

	count, err := td.store.CountSubmissions(td.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAuditLog(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	rec := &models.AuditRecord{
		ID:             "99999999-9999-4999-8999-999999999999",
		UserEmail:      td.user.Email,
		SubmissionTime: td.now,
		Status:         models.AuditStatusFailed,
		ObjectPath:     "",
	}
	require.NoError(t, td.store.CreateAuditRecord(rec))
}
