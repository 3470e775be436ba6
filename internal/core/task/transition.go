package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/KrikINS/floor-ready/internal/core/identity"
)

// Transition describes the outcome of ApplyTransition.
type Transition struct {
	From Status
	To   Status
	Kind EventKind
	// NoOp is set when the target equals the current status. The status is
	// left alone; a non-empty edit buffer is still merged and Kind becomes
	// EventFulfillment.
	NoOp bool
}

// Event returns the audit record for the transition.
func (tr Transition) Event(taskID, actorID, comment string, now time.Time) Event {
	return Event{
		TaskID:    taskID,
		Kind:      tr.Kind,
		From:      tr.From,
		To:        tr.To,
		ActorID:   actorID,
		Comment:   comment,
		CreatedAt: now,
	}
}

// ApplyTransition moves t forward one state, or through the approval branch
// when t is awaiting approval. An empty target means "the next state". The
// edit buffer is merged into the result whatever the status change.
//
// From Awaiting Approval only Completed (approve) and In Progress (reject)
// are reachable, and only for an Admin or Manager. Every other state only
// reaches its successor, and only for the assignee.
func ApplyTransition(t Task, actor identity.Actor, target Status, edits Edits, now time.Time) (Task, Transition, error) {
	perms := PermissionsFor(t, actor)
	if perms.IsObserver() {
		return t, Transition{}, fmt.Errorf("%w: actor %q may not change task %s", ErrUnauthorized, actor.ID, t.ID)
	}

	if target != "" && (!target.IsValid() || target == StatusInReview) {
		return t, Transition{}, fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, target)
	}

	current := t.Status.Canonical()
	tr := Transition{From: t.Status, Kind: EventTransition}

	if target != "" && target == current {
		return reissue(t, actor, perms, edits, tr)
	}

	var to Status
	if current == StatusAwaitingApproval {
		if !perms.CanApprove() {
			return t, Transition{}, fmt.Errorf("%w: only an admin or manager can review a task awaiting approval", ErrUnauthorized)
		}

		to = target
		if to == "" {
			to = StatusCompleted
		}

		switch to {
		case StatusCompleted:
			tr.Kind = EventApproved
		case StatusInProgress:
			tr.Kind = EventRejected
		default:
			return t, Transition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
		}
	} else {
		next, ok := current.Next()
		if !ok {
			return t, Transition{}, fmt.Errorf("%w: no state follows %q", ErrInvalidTransition, t.Status)
		}
		if target != "" && target != next {
			return t, Transition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
		}
		if !perms.CanAdvance() {
			return t, Transition{}, fmt.Errorf("%w: only the assignee can advance task %s", ErrUnauthorized, t.ID)
		}
		to = next
	}

	merged, err := edits.Apply(t.Fulfillment)
	if err != nil {
		return t, Transition{}, err
	}

	t.Fulfillment = merged
	t.Status = to
	stampEntry(&t, to, now)

	tr.To = to
	return t, tr, nil
}

// reissue handles a target equal to the current status. The actor must be
// the one who could have moved the task on, and any edits are saved as a
// plain fulfillment update.
func reissue(t Task, actor identity.Actor, perms Permissions, edits Edits, tr Transition) (Task, Transition, error) {
	current := t.Status.Canonical()
	switch {
	case current == StatusAwaitingApproval:
		if !perms.CanApprove() {
			return t, Transition{}, fmt.Errorf("%w: only an admin or manager can review a task awaiting approval", ErrUnauthorized)
		}
	case current == StatusCompleted:
		return t, Transition{}, fmt.Errorf("%w: task %s is already completed", ErrInvalidTransition, t.ID)
	case !perms.CanAdvance():
		return t, Transition{}, fmt.Errorf("%w: only the assignee can advance task %s", ErrUnauthorized, t.ID)
	}

	tr.To = t.Status
	tr.NoOp = true
	if edits.IsEmpty() {
		return t, tr, nil
	}

	next, err := SaveFulfillment(t, actor, edits)
	if err != nil {
		return t, Transition{}, err
	}
	tr.Kind = EventFulfillment
	return next, tr, nil
}

// stampEntry records the first entry into a timed state. Existing stamps are
// kept, so replays after a reject do not move them.
func stampEntry(t *Task, to Status, now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	ts := now

	switch to {
	case StatusAcknowledged:
		if t.AcknowledgedAt == nil {
			t.AcknowledgedAt = &ts
		}
	case StatusInProgress:
		if t.StartedAt == nil {
			t.StartedAt = &ts
		}
	case StatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &ts
		}
	}
}

// SaveFulfillment merges edits into t without touching status or timestamps.
func SaveFulfillment(t Task, actor identity.Actor, edits Edits) (Task, error) {
	perms := PermissionsFor(t, actor)
	if !perms.CanEditFulfillment() {
		return t, fmt.Errorf("%w: actor %q may not edit fulfillment of task %s", ErrUnauthorized, actor.ID, t.ID)
	}
	if perms.IsLockedForAssignee() && !perms.IsAdminOrManager() {
		return t, fmt.Errorf("%w: task %s is awaiting approval", ErrUnauthorized, t.ID)
	}
	if !t.Status.FulfillmentVisible() {
		return t, fmt.Errorf("%w: fulfillment can only be recorded once work has started", ErrValidation)
	}

	merged, err := edits.Apply(t.Fulfillment)
	if err != nil {
		return t, err
	}
	t.Fulfillment = merged
	return t, nil
}

// Reassign hands t to another member. An empty assignee is only allowed
// before work has started.
func Reassign(t Task, actor identity.Actor, assigneeID string) (Task, error) {
	if !PermissionsFor(t, actor).CanReassign() {
		return t, fmt.Errorf("%w: only an admin or manager can reassign tasks", ErrUnauthorized)
	}

	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" && !t.Status.IsEarly() {
		return t, fmt.Errorf("%w: assignee is required once work has started", ErrValidation)
	}

	t.AssigneeID = assigneeID
	return t, nil
}

// AuthorizeDelete checks that actor may delete t.
func AuthorizeDelete(t Task, actor identity.Actor) error {
	if !PermissionsFor(t, actor).CanDelete() {
		return fmt.Errorf("%w: only an admin or manager can delete tasks", ErrUnauthorized)
	}
	return nil
}
