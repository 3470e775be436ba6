package task

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusAcknowledged     Status = "Acknowledged"
	StatusInProgress       Status = "In Progress"
	StatusAwaitingApproval Status = "Awaiting Approval"
	StatusCompleted        Status = "Completed"

	// StatusInReview is a legacy value still present on old rows. It reads
	// as Acknowledged and is never the target of a new transition.
	StatusInReview Status = "In Review"
)

// lifecycle is the canonical forward order.
var lifecycle = []Status{
	StatusPending,
	StatusAcknowledged,
	StatusInProgress,
	StatusAwaitingApproval,
	StatusCompleted,
}

// Statuses returns the canonical lifecycle in order.
func Statuses() []Status {
	out := make([]Status, len(lifecycle))
	copy(out, lifecycle)
	return out
}

// IsValid reports whether s is a canonical status or the legacy alias.
func (s Status) IsValid() bool {
	return s == StatusInReview || s.position() >= 0
}

// Canonical maps the legacy alias onto the state it stands for.
func (s Status) Canonical() Status {
	if s == StatusInReview {
		return StatusAcknowledged
	}
	return s
}

// Next returns the state immediately following s. The second result is
// false for Completed and for unknown values.
func (s Status) Next() (Status, bool) {
	i := s.Canonical().position()
	if i < 0 || i == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[i+1], true
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// IsEarly reports whether no meaningful work has been committed yet.
func (s Status) IsEarly() bool {
	switch s.Canonical() {
	case StatusPending, StatusAcknowledged:
		return true
	}
	return false
}

// FulfillmentVisible reports whether vendor and cost details apply. They are
// hidden until work has started.
func (s Status) FulfillmentVisible() bool {
	return s.IsValid() && !s.IsEarly()
}

func (s Status) position() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// DisplayIndex is the step index used for progress display. The legacy
// alias shares Acknowledged's index. Unknown values return -1.
func DisplayIndex(s Status) int {
	return s.Canonical().position()
}

// Progress returns the completion fraction in [0, 1], or 0 for unknown values.
func Progress(s Status) float64 {
	i := DisplayIndex(s)
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(lifecycle)-1)
}
