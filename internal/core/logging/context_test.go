package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := WithActorID(context.Background(), "mem-1")
	ctx = WithTaskID(ctx, "task-9")

	assert.Equal(t, "mem-1", GetActorID(ctx))
	assert.Equal(t, "task-9", GetTaskID(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetActorID(ctx))
	assert.Empty(t, GetTaskID(ctx))
}
