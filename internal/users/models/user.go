package models

import (
	"net/mail"
	"strings"

	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

// User is a certificate holder. Accounts and authentication are owned by an
// external identity system; this service only reads id, name and email.
type User struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NewUser validates the directory record.
func NewUser(userID id.UserID, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email is invalid")
	}
	return &User{ID: userID, Name: name, Email: email}, nil
}

// Matches reports whether term is a case-insensitive substring of the name or email.
func (u *User) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term)
}
