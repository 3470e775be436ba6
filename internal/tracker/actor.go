package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// currentActor resolves the caller. A missing identity is Unauthorized.
func currentActor(ctx context.Context, p identity.Provider) (identity.Actor, error) {
	a, err := p.CurrentActor(ctx)
	if errors.Is(err, identity.ErrNoActor) {
		return identity.Actor{}, fmt.Errorf("%w: %v", task.ErrUnauthorized, err)
	}
	if err != nil {
		return identity.Actor{}, storeErr("resolve actor", err)
	}
	if a == nil {
		return identity.Actor{}, fmt.Errorf("%w: not signed in", task.ErrUnauthorized)
	}
	return *a, nil
}

// requireActive rejects members whose membership is not Active.
func requireActive(a identity.Actor) error {
	if !a.IsActive() {
		return fmt.Errorf("%w: member %s is %s", task.ErrUnauthorized, a.ID, a.Status)
	}
	return nil
}

// requirePrivileged rejects actors that are not active Admins or Managers.
func requirePrivileged(a identity.Actor, what string) error {
	if err := requireActive(a); err != nil {
		return err
	}
	if !a.IsAdminOrManager() {
		return fmt.Errorf("%w: only an admin or manager can %s", task.ErrUnauthorized, what)
	}
	return nil
}
