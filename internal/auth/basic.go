package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

// All credential failures map to the same generic 401 at the HTTP
// boundary. The distinct errors exist for logging and tests only.
var (
	ErrMissingCredential   = errors.New("authorization header is missing")
	ErrMalformedCredential = errors.New("credential is malformed")
	ErrInvalidUsername     = errors.New("username is not a valid email")
	ErrUserNotFound        = errors.New("user not found")
	ErrPasswordMismatch    = errors.New("password mismatch")

	// ErrUnavailable marks infrastructure faults, which must surface as
	// 503 rather than 401.
	ErrUnavailable = errors.New("user lookup unavailable")
)

type Verifier struct {
	store store.Store
}

func NewVerifier(s store.Store) *Verifier {
	return &Verifier{store: s}
}

// Verify checks a Basic authorization header against the user store and
// returns the matched user together with the raw password the client
// supplied. Callers must never log or persist the raw password.
func (v *Verifier) Verify(header string) (*models.User, string, error) {
	if header == "" {
		return nil, "", ErrMissingCredential
	}

	encoded := strings.TrimPrefix(header, "Basic ")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad base64", ErrMalformedCredential)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found || strings.TrimSpace(username) == "" || password == "" {
		return nil, "", ErrMalformedCredential
	}

	if err := validator.New().Var(username, "email"); err != nil {
		return nil, "", ErrInvalidUsername
	}

	user, err := v.store.GetUserByEmail(username)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, "", ErrPasswordMismatch
	}

	return user, password, nil
}
