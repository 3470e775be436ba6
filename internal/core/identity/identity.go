// Package identity defines the acting identity consumed by the task engine
// and the team-member records it is resolved from.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a member does not exist.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicate is returned when a member with the same email already exists.
	ErrDuplicate = errors.New("duplicate member email")
	// ErrNoActor is returned by providers that cannot resolve a current actor.
	ErrNoActor = errors.New("no current actor")
)

// Role is the organisational role of a member.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Status gates whether a member may act at all.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
)

// IsValid reports whether s is a known membership status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

// IsActive reports whether the actor's membership allows mutations.
func (a Actor) IsActive() bool {
	return a.Status == StatusActive
}

// IsAdminOrManager reports whether the actor holds a privileged role.
func (a Actor) IsAdminOrManager() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// Member is a row of the team collection.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor returns the acting identity for the member.
func (m Member) Actor() Actor {
	return Actor{ID: m.ID, Role: m.Role, Status: m.Status}
}

// Provider supplies the current actor. A nil actor with a nil error means
// nobody is signed in.
type Provider interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

// MemberStore persists team members.
type MemberStore interface {
	// Create persists a new member. The store assigns ID and CreatedAt when unset.
	// Returns ErrDuplicate if the email is already taken.
	Create(ctx context.Context, m *Member) error

	// Get returns a member by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (Member, error)

	// List returns all members ordered by name.
	List(ctx context.Context) ([]Member, error)

	// UpdateStatus changes a member's membership status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
