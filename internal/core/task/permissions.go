package task

import "github.com/KrikINS/floor-ready/internal/core/identity"

// Permissions evaluates the role and relationship predicates of one actor
// against one task. Mutating predicates require an active membership.
type Permissions struct {
	status     Status
	active     bool
	assignee   bool
	privileged bool
}

// PermissionsFor computes the predicates for actor on t.
func PermissionsFor(t Task, actor identity.Actor) Permissions {
	return Permissions{
		status:     t.Status.Canonical(),
		active:     actor.IsActive(),
		assignee:   actor.ID != "" && actor.ID == t.AssigneeID,
		privileged: actor.IsAdminOrManager(),
	}
}

// IsAssignee reports whether the actor is the task's assignee.
func (p Permissions) IsAssignee() bool { return p.assignee }

// IsAdminOrManager reports whether the actor holds a privileged role.
func (p Permissions) IsAdminOrManager() bool { return p.privileged }

// IsObserver reports whether the actor may only view the task.
func (p Permissions) IsObserver() bool {
	return !p.active || (!p.assignee && !p.privileged)
}

// CanEditFulfillment reports whether the actor may record vendor and cost data.
func (p Permissions) CanEditFulfillment() bool {
	return p.active && (p.assignee || p.privileged)
}

// CanUpload reports whether the actor may attach submission evidence. Only
// the assignee may, and only while the task is in progress.
func (p Permissions) CanUpload() bool {
	return p.active && p.assignee && p.status == StatusInProgress
}

// IsLockedForAssignee reports whether the assignee is waiting on review and
// may not modify the task.
func (p Permissions) IsLockedForAssignee() bool {
	return p.assignee && p.status == StatusAwaitingApproval
}

// CanApprove reports whether the actor may approve or reject the task.
func (p Permissions) CanApprove() bool {
	return p.active && p.privileged && p.status == StatusAwaitingApproval
}

// CanAdvance reports whether the actor may move the task to its next state.
func (p Permissions) CanAdvance() bool {
	_, hasNext := p.status.Next()
	return p.active && p.assignee && !p.IsLockedForAssignee() && hasNext
}

// CanReassign reports whether the actor may change the assignee.
func (p Permissions) CanReassign() bool {
	return p.active && p.privileged
}

// CanDelete reports whether the actor may delete the task.
func (p Permissions) CanDelete() bool {
	return p.active && p.privileged
}
