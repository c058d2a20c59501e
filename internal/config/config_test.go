package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bankmbt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "traces", cfg.TracesDir)
	assert.Equal(t, "out%d.itf.json", cfg.Pattern)
	assert.Equal(t, 10000, cfg.MaxTraces)
	assert.False(t, cfg.KeepGoing)
	assert.Empty(t, cfg.DB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
traces_dir: fixtures
pattern: "trace_%d.json"
max_traces: 20
keep_going: true
db: runs.db
log_level: debug
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "fixtures"), cfg.TracesDir)
	assert.Equal(t, "trace_%d.json", cfg.Pattern)
	assert.Equal(t, 20, cfg.MaxTraces)
	assert.True(t, cfg.KeepGoing)
	assert.Equal(t, filepath.Join(dir, "runs.db"), cfg.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "keep_going: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.KeepGoing)
	assert.Equal(t, "out%d.itf.json", cfg.Pattern)
	assert.Equal(t, 10000, cfg.MaxTraces)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "traces"), cfg.TracesDir)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.MaxTraces)
}

func TestLoadAbsolutePathsUnchanged(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	cfg, err := Load(writeConfig(t, "traces_dir: "+abs+"\ndb: \":memory:\"\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.TracesDir)
	assert.Equal(t, ":memory:", cfg.DB)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "max_trace: 5\n", "field max_trace not found"},
		{"bad pattern", "pattern: out.json\n", "pattern must contain exactly one %d"},
		{"zero bound", "max_traces: 0\n", "max_traces must be positive"},
		{"bad level", "log_level: loud\n", `unknown log_level "loud"`},
		{"not yaml", "traces_dir: [\n", "failed to parse YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
