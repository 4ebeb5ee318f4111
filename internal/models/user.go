package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email" validate:"required,email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	AccountCreated time.Time `db:"account_created" json:"account_created"`
	AccountUpdated time.Time `db:"account_updated" json:"account_updated"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a candidate password against the stored bcrypt hash.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
