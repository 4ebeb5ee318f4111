package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/auth"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type MockStore struct {
	mock.Mock

	pingErr error
}

func (m *MockStore) Close() error                     { return nil }
func (m *MockStore) ApplyMigrations(dir string) error { return nil }

func (m *MockStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *MockStore) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStore) CreateAssignment(a *models.Assignment) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockStore) GetAssignment(id string) (*models.Assignment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockStore) ListAssignments() ([]models.Assignment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Assignment), args.Error(1)
}

func (m *MockStore) UpdateAssignment(a *models.Assignment) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockStore) DeleteAssignment(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) CountSubmissions(assignmentID string) (int, error) {
	args := m.Called(assignmentID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CreateSubmissionIfBelowLimit(sub *models.Submission, limit int) (bool, error) {
	args := m.Called(sub, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateAuditRecord(rec *models.AuditRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

const (
	ownerID  = "3fdd2b10-9e05-4f5e-a7b3-52b4f6f3a111"
	otherID  = "8c1de3a2-41f7-4b8e-9a60-7e5b1c2d3f04"
	testPass = "s3cret"
)

func seedUser(t *testing.T, id, email string) *models.User {
	t.Helper()
	user := &models.User{ID: id, FirstName: "John", LastName: "Doe", Email: email}
	require.NoError(t, user.SetPassword(testPass))
	return user
}

func testService(store *MockStore) (*app.Service, *auth.Verifier) {
	service := &app.Service{
		Config: &app.Config{},
		Store:  store,
	}
	return service, auth.NewVerifier(store)
}

func asUser(r *http.Request, email string) {
	cred := base64.StdEncoding.EncodeToString([]byte(email + ":" + testPass))
	r.Header.Set("Authorization", "Basic "+cred)
}
