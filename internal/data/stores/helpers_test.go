package stores

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/KrikINS/floor-ready/internal/data/db"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), db.OpenOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func ptr[T any](v T) *T { return &v }
