package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/KrikINS/floor-ready/internal/core/identity"
)

type actorKey struct{}

// WithActor stores the resolved actor on the context.
func WithActor(ctx context.Context, a *identity.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor, or nil.
func ActorFrom(ctx context.Context) *identity.Actor {
	a, _ := ctx.Value(actorKey{}).(*identity.Actor)
	return a
}

// ContextProvider reads the actor placed on the context by the HTTP middleware.
type ContextProvider struct{}

var _ identity.Provider = ContextProvider{}

// CurrentActor returns the context actor, or nil when nobody is signed in.
func (ContextProvider) CurrentActor(ctx context.Context) (*identity.Actor, error) {
	return ActorFrom(ctx), nil
}

// Resolve loads the member an identity refers to and returns the actor with
// the role and status currently on record, so suspensions apply to tokens
// that are already issued.
func Resolve(ctx context.Context, members identity.MemberStore, memberID string) (*identity.Actor, error) {
	m, err := members.Get(ctx, memberID)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("%w: member %s", identity.ErrNoActor, memberID)
	}
	if err != nil {
		return nil, err
	}
	a := m.Actor()
	return &a, nil
}

// MemberProvider acts as a fixed member. The CLI builds one from --as.
type MemberProvider struct {
	members  identity.MemberStore
	memberID string
}

var _ identity.Provider = (*MemberProvider)(nil)

// NewMemberProvider returns a provider for memberID. An empty ID means
// nobody is signed in.
func NewMemberProvider(members identity.MemberStore, memberID string) *MemberProvider {
	return &MemberProvider{members: members, memberID: memberID}
}

// CurrentActor resolves the configured member.
func (p *MemberProvider) CurrentActor(ctx context.Context) (*identity.Actor, error) {
	if a := ActorFrom(ctx); a != nil {
		return a, nil
	}
	if p.memberID == "" {
		return nil, nil
	}
	return Resolve(ctx, p.members, p.memberID)
}
