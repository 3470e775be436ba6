package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// TeamService manages members: onboarding, membership status and tokens.
type TeamService struct {
	members  identity.MemberStore
	identity identity.Provider
	tokens   *auth.Tokens
	log      zerolog.Logger
}

// NewTeamService creates a new TeamService. tokens may be nil when no
// signing secret is configured; IssueToken then fails.
func NewTeamService(members identity.MemberStore, provider identity.Provider, tokens *auth.Tokens, log zerolog.Logger) *TeamService {
	return &TeamService{
		members:  members,
		identity: provider,
		tokens:   tokens,
		log:      log.With().Str("component", "team-service").Logger(),
	}
}

// AddMemberInput holds the fields of a new member.
type AddMemberInput struct {
	Name      string        `json:"name" validate:"required,max=120"`
	Email     string        `json:"email" validate:"required,email"`
	AvatarURL string        `json:"avatar_url" validate:"omitempty,url"`
	Role      identity.Role `json:"role" validate:"omitempty,oneof=Admin Manager Employee"`
}

// Add creates a member. The very first member bootstraps the team: it needs
// no actor and becomes an active Admin. Later members are added by an Admin
// or Manager and start Pending until activated. Only Admins add Admins.
func (s *TeamService) Add(ctx context.Context, in AddMemberInput) (identity.Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return identity.Member{}, err
	}

	existing, err := s.members.List(ctx)
	if err != nil {
		return identity.Member{}, storeErr("list members", err)
	}

	m := identity.Member{
		Name:      in.Name,
		Email:     in.Email,
		AvatarURL: in.AvatarURL,
		Role:      in.Role,
		Status:    identity.StatusPending,
	}
	if m.Role == "" {
		m.Role = identity.RoleEmployee
	}

	if len(existing) == 0 {
		m.Role = identity.RoleAdmin
		m.Status = identity.StatusActive
	} else {
		actor, err := currentActor(ctx, s.identity)
		if err != nil {
			return identity.Member{}, err
		}
		if err := requirePrivileged(actor, "add members"); err != nil {
			return identity.Member{}, err
		}
		if m.Role == identity.RoleAdmin && actor.Role != identity.RoleAdmin {
			return identity.Member{}, fmt.Errorf("%w: only an admin can add admins", task.ErrUnauthorized)
		}
	}

	if err := s.members.Create(ctx, &m); err != nil {
		if errors.Is(err, identity.ErrDuplicate) {
			return identity.Member{}, fmt.Errorf("add member: %w: %s is already on the team", task.ErrValidation, in.Email)
		}
		return identity.Member{}, storeErr("add member", err)
	}

	s.log.Info().Str("member_id", m.ID).Str("role", string(m.Role)).Str("status", string(m.Status)).Msg("member added")
	return m, nil
}

// List returns every member ordered by name.
func (s *TeamService) List(ctx context.Context) ([]identity.Member, error) {
	if _, err := currentActor(ctx, s.identity); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	return members, nil
}

// Activate lets a member act.
func (s *TeamService) Activate(ctx context.Context, id string) (identity.Member, error) {
	return s.setStatus(ctx, id, identity.StatusActive)
}

// Suspend stops a member from mutating anything. Nobody can suspend
// themselves.
func (s *TeamService) Suspend(ctx context.Context, id string) (identity.Member, error) {
	return s.setStatus(ctx, id, identity.StatusSuspended)
}

func (s *TeamService) setStatus(ctx context.Context, id string, status identity.Status) (identity.Member, error) {
	actor, err := currentActor(ctx, s.identity)
	if err != nil {
		return identity.Member{}, err
	}
	if err := requirePrivileged(actor, "change membership status"); err != nil {
		return identity.Member{}, err
	}

	m, err := s.members.Get(ctx, id)
	if err != nil {
		return identity.Member{}, storeErr("load member", err)
	}
	if m.ID == actor.ID && status != identity.StatusActive {
		return identity.Member{}, fmt.Errorf("%w: members cannot suspend themselves", task.ErrValidation)
	}
	if m.Role == identity.RoleAdmin && actor.Role != identity.RoleAdmin {
		return identity.Member{}, fmt.Errorf("%w: only an admin can change an admin's status", task.ErrUnauthorized)
	}
	if m.Status == status {
		return m, nil
	}

	if err := s.members.UpdateStatus(ctx, m.ID, status); err != nil {
		return identity.Member{}, storeErr("update member status", err)
	}
	m.Status = status

	s.log.Info().Str("member_id", m.ID).Str("status", string(status)).Str("actor_id", actor.ID).Msg("member status changed")
	return m, nil
}

// Token is a signed access token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs an access token for an active member. Members may issue
// their own; Admins may issue anyone's.
func (s *TeamService) IssueToken(ctx context.Context, id string) (Token, error) {
	if s.tokens == nil {
		return Token{}, fmt.Errorf("issue token: %w: no jwt secret configured", task.ErrValidation)
	}

	actor, err := currentActor(ctx, s.identity)
	if err != nil {
		return Token{}, err
	}
	if err := requireActive(actor); err != nil {
		return Token{}, err
	}
	if actor.ID != id && actor.Role != identity.RoleAdmin {
		return Token{}, fmt.Errorf("%w: only an admin can issue tokens for other members", task.ErrUnauthorized)
	}

	m, err := s.members.Get(ctx, id)
	if err != nil {
		return Token{}, storeErr("load member", err)
	}
	if m.Status != identity.StatusActive {
		return Token{}, fmt.Errorf("issue token: %w: member %s is %s", task.ErrValidation, m.ID, m.Status)
	}

	raw, expires, err := s.tokens.Issue(m)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{Token: raw, ExpiresAt: expires}, nil
}
