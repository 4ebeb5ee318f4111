package app

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

// SeedUsers loads accounts from a CSV file with a
// first_name,last_name,email,password header row. Existing accounts are
// left untouched, so re-running the seed is safe.
func SeedUsers(s store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open users file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse users file: %w", err)
	}
	if len(rows) < 2 {
		return nil
	}

	var created int
	for _, row := range rows[1:] {
		if len(row) < 4 {
			logger.Debug.Printf("Skipping short seed row: %v", row)
			continue
		}

		email := row[2]
		existing, err := s.GetUserByEmail(email)
		if err != nil {
			return fmt.Errorf("failed to check existing user %s: %w", email, err)
		}
		if existing != nil {
			continue
		}

		now := time.Now().UTC()
		user := models.User{
			ID:             uuid.NewString(),
			FirstName:      row[0],
			LastName:       row[1],
			Email:          email,
			AccountCreated: now,
			AccountUpdated: now,
		}
		if err := user.SetPassword(row[3]); err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", email, err)
		}

		if err := s.CreateUser(&user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		created++
	}

	logger.Info.Printf("Seeded %d new users from %s", created, path)
	return nil
}
