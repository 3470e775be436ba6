package tracker

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/config"
	"github.com/KrikINS/floor-ready/internal/core/eventbus/testbus"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/data/blobs"
	"github.com/KrikINS/floor-ready/internal/data/db"
)

const testSecret = "test-secret-0123456789abcdefghij"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fixture struct {
	app   *App
	bus   *testbus.Bus
	blobs *blobs.LocalStore

	mu    sync.Mutex
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "floorready.db"), db.OpenOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bs, err := blobs.NewLocalStore(filepath.Join(dir, "blobs"), "http://files.test")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	tb := testbus.New(t)

	fx := &fixture{
		bus:   tb,
		blobs: bs,
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	fx.app = NewApp(&cfg, database, bs, auth.ContextProvider{}, auth.NewTokens(testSecret, time.Hour), tb.EventBus, zerolog.Nop())
	fx.app.Tasks.now = fx.tick

	return fx
}

// tick advances the fake clock by one minute per call.
func (fx *fixture) tick() time.Time {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.clock = fx.clock.Add(time.Minute)
	return fx.clock
}

func (fx *fixture) member(t *testing.T, name string, role identity.Role, status identity.Status) identity.Member {
	t.Helper()
	m := identity.Member{Name: name, Email: name + "@floorready.test", Role: role, Status: status}
	require.NoError(t, fx.app.Members.Create(context.Background(), &m))
	return m
}

func as(m identity.Member) context.Context {
	a := m.Actor()
	return auth.WithActor(context.Background(), &a)
}

func (fx *fixture) createTask(t *testing.T, ctx context.Context, in CreateInput) task.Task {
	t.Helper()
	tk, err := fx.app.Tasks.Create(ctx, in)
	require.NoError(t, err)
	return tk
}

// advanceTo walks tk forward as actor until it reaches target.
func (fx *fixture) advanceTo(t *testing.T, ctx context.Context, id string, target task.Status) task.Task {
	t.Helper()
	for {
		v, err := fx.app.Tasks.Get(ctx, id)
		require.NoError(t, err)
		if v.Status.Canonical() == target {
			return v.Task
		}
		_, err = fx.app.Tasks.Advance(ctx, id, AdvanceInput{})
		require.NoError(t, err)
	}
}

func pngFile(name string) FileInput {
	return FileInput{Name: name, ContentType: "image/png", Body: bytes.NewReader(pngHeader)}
}

func ptr[T any](v T) *T { return &v }
