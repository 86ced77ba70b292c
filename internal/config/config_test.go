package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/go-nucleus/internal/config"
)

func TestDefaultMatchesSpecTypicalSizing(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 20, cfg.MaxProc)
	assert.Equal(t, 22, cfg.MaxSem)
	assert.Equal(t, 5*time.Millisecond, cfg.TimeSlice)
	assert.Equal(t, 100*time.Millisecond, cfg.ClockInterval)
}

func TestLoadDecodesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nucleus.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_proc: 5\nmax_sem: 7\n"), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxProc)
	assert.Equal(t, 7, cfg.MaxSem)
	// Fields absent from the file keep their Default() value.
	assert.Equal(t, 5*time.Millisecond, cfg.TimeSlice)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nucleus.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_proc: 5\n"), 0644))

	t.Setenv("NUCLEUS_MAX_PROC", "9")
	t.Setenv("NUCLEUS_TIME_SLICE_MS", "10")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxProc)
	assert.Equal(t, 10*time.Millisecond, cfg.TimeSlice)
}
