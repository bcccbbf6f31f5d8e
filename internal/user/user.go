// Package user holds the record type managed by the listing view.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a single record of the remote collection.
// Field names follow the remote API's JSON.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayName returns "Name Surname", trimmed.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// StatusLabel is the human label for the active flag.
func (u User) StatusLabel() string {
	if u.Active {
		return "Active"
	}
	return "Deactivated"
}

// Fields is the full-replacement payload for an update.
type Fields struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Active      bool   `json:"active"`
}

// FieldsOf returns the editable fields of u.
func FieldsOf(u User) Fields {
	return Fields{
		Name:        u.Name,
		Surname:     u.Surname,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Active:      u.Active,
	}
}
