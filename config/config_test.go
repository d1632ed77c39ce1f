package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoanbernabeu/counttype/config"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.Equal(t, "count_type", cfg.Output)
	assert.Equal(t, "vocabulary", cfg.Vocab)
	assert.False(t, cfg.Time)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: runs/corpus
time: true
ignore:
  - "*.md"
logging:
  level: debug
watch:
  debounce: 2s
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "runs/corpus", cfg.Output)
	assert.True(t, cfg.Time)
	assert.Equal(t, []string{"*.md"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(config.DefaultFileName, []byte("vocab: words\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "words", cfg.Vocab)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unterminated\n"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("COUNTTYPE_OUTPUT", "env_out")
	t.Setenv("COUNTTYPE_TIME", "true")
	t.Setenv("COUNTTYPE_IGNORE", "*.tmp,*.bak")
	t.Setenv("COUNTTYPE_LOG_FORMAT", "json")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "env_out", cfg.Output)
	assert.True(t, cfg.Time)
	assert.Equal(t, []string{"*.tmp", "*.bak"}, cfg.Ignore)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesEveryKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("COUNTTYPE_VOCAB", "words")
	t.Setenv("COUNTTYPE_MAX_LINE_BYTES", "4096")
	t.Setenv("COUNTTYPE_LOG_LEVEL", "debug")
	t.Setenv("COUNTTYPE_GITIGNORE", "false")
	t.Setenv("COUNTTYPE_PLOT_WIDTH", "10")
	t.Setenv("COUNTTYPE_PLOT_HEIGHT", "7.5")
	t.Setenv("COUNTTYPE_WATCH_DEBOUNCE", "2s")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "words", cfg.Vocab)
	assert.Equal(t, 4096, cfg.MaxLineBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Gitignore)
	assert.Equal(t, 10.0, cfg.Plot.Width)
	assert.Equal(t, 7.5, cfg.Plot.Height)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxLineBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Output = "  "
	assert.Error(t, cfg.Validate())

	assert.NoError(t, config.DefaultConfig().Validate())
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
