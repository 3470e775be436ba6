package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies actor_id and task_id from the event context onto log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if actorID := GetActorID(ctx); actorID != "" {
		e.Str("actor_id", actorID)
	}

	if taskID := GetTaskID(ctx); taskID != "" {
		e.Str("task_id", taskID)
	}
}
