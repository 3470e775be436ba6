package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	assert.Equal(t, filepath.Join("/tmp/cfg", "floorready", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "floorready"), DefaultDataDir())
}

func TestDefaultPaths_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/ops")

	assert.Equal(t, "/home/ops/.config/floorready/config.yaml", DefaultConfigPath())
	assert.Equal(t, "/home/ops/.local/share/floorready", DefaultDataDir())
}
