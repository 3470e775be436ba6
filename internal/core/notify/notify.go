// Package notify defines user-facing notifications derived from domain events.
package notify

import "time"

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one message routed to the team channel.
type Notification struct {
	Level     Level
	Message   string
	TaskID    string
	CreatedAt time.Time
}
