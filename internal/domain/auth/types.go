package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	// RoleRecruiter may author job interviews in addition to mock ones.
	RoleRecruiter Role = "recruiter"
	// RoleCandidate may author mock interviews and take any interview they are invited to.
	RoleCandidate Role = "candidate"
	// RoleGuest is an authenticated principal outside every configured group.
	RoleGuest Role = "guest"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable identity-provider subject
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// DisplayName joins first and last name, skipping blanks.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier; Subject is the identity token used to resolve the User.
// UserID is the provisioned internal user, empty when provisioning is disabled.
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	UserID    string    `json:"user_id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// CanAuthorJobInterviews reports whether the session may create job interviews.
func (s Session) CanAuthorJobInterviews() bool { return s.Role == RoleRecruiter }
