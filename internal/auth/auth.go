package auth

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ai-travel-planner/internal/shared"
)

const minPasswordLength = 8

// User is a registered account.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Credentials carries the fields accepted on registration and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks credentials for registration.
func (c Credentials) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return &shared.ValidationError{Field: "email", Reason: "email is required"}
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return &shared.ValidationError{Field: "email", Reason: "email format is invalid"}
	}
	if len(c.Password) < minPasswordLength {
		return &shared.ValidationError{Field: "password", Reason: "password must be at least 8 characters"}
	}
	return nil
}

// NormalizedEmail returns the email in canonical comparison form.
func (c Credentials) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// HashPassword derives a bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
