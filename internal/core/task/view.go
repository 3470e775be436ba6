package task

import "github.com/KrikINS/floor-ready/internal/core/inventory"

// MemberRef is the display slice of the assignee.
type MemberRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// EventRef is the display slice of the owning event.
type EventRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CostCenterRef is the display slice of the cost center.
type CostCenterRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ProgressInfo is the step position used by progress displays.
type ProgressInfo struct {
	Step     int     `json:"step"`
	Steps    int     `json:"steps"`
	Fraction float64 `json:"fraction"`
}

// View is a task joined with its references plus derived figures.
type View struct {
	Task
	Assignee     *MemberRef              `json:"assignee,omitempty"`
	Event        *EventRef               `json:"event,omitempty"`
	CostCenter   *CostCenterRef          `json:"cost_center,omitempty"`
	Reservations []inventory.Reservation `json:"reservations,omitempty"`
	Attachments  []Attachment            `json:"attachments,omitempty"`
	Profit       Profit                  `json:"profit"`
	Progress     ProgressInfo            `json:"progress"`
}

// NewView fills the derived parts of a view for t.
func NewView(t Task) View {
	return View{
		Task:   t,
		Profit: ComputeProfit(t),
		Progress: ProgressInfo{
			Step:     DisplayIndex(t.Status),
			Steps:    len(lifecycle),
			Fraction: Progress(t.Status),
		},
	}
}
