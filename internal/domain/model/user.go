//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// User is an internal account linked to an identity-provider subject.
type User struct {
	ID        string    `json:"id"         db:"id"`
	Subject   string    `json:"subject"    db:"subject"`
	Email     string    `json:"email"      db:"email"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpsertUserRequest carries identity fields used to provision or refresh a User.
type UpsertUserRequest struct {
	Subject string
	Email   string
	Name    string
}

// Validate validates UpsertUserRequest.
func (r *UpsertUserRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return errors.New("subject is required and cannot be empty")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return nil
}
