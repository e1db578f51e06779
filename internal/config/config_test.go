package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LEXIQ_REDIS_ADDR", "localhost:6380")
	t.Setenv("LEXIQ_REDIS_TTL", "2h")
	t.Setenv("LEXIQ_INTERLEAVE_TARGET_RATIO", "0.25")

	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.RedisTTL)
	assert.InDelta(t, 0.25, cfg.Interleave.TargetRatio, 1e-9)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "LEXIQ_SCHEDULE_DEBUG_TOP"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	env := writeFile(t, ".env", key+"=7\n")

	cfg, err := Load(Options{EnvFiles: []string{env, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DebugTopN)
}

func TestLoadConfigFileAndPrecedence(t *testing.T) {
	file := writeFile(t, "lexiq.yaml", `
schedule:
  easiness: 2.0
  max_new: 4
chain:
  review_interval: 3
redis:
  ttl: 1h
`)
	t.Setenv("LEXIQ_SCHEDULE_EASINESS", "1.8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.Int("max-new", 0, "")
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--config", file, "--max-new", "2"}))

	cfg, err := Load(Options{Flags: flags, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.InDelta(t, 1.8, cfg.Easiness, 1e-9, "env beats config file")
	assert.Equal(t, 2, cfg.MaxNewPerSession, "flag beats config file")
	assert.Equal(t, 3, cfg.Chain.ReviewInterval)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.Empty(t, cfg.DBPath, "unchanged flag does not override")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(Options{EnvFiles: []string{}, ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	file := writeFile(t, "bad.yaml", "interleave:\n  window: 0\n")
	_, err := Load(Options{EnvFiles: []string{}, ConfigFile: file})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LogMode = "loud"
	cfg.DebugTopN = 0
	cfg.AtRiskThreshold = 500

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "log mode")
	assert.Contains(t, err.Error(), "debug top")
	assert.Contains(t, err.Error(), "at-risk threshold")
}

func TestSession(t *testing.T) {
	cfg := Default()
	cfg.Easiness = 2.1
	cfg.MaxNewPerSession = 3

	s := cfg.Session()
	assert.InDelta(t, 2.1, s.Priority.Easiness, 1e-9)
	assert.Equal(t, cfg.AtRiskThreshold, s.Priority.AtRiskThreshold)
	assert.Equal(t, 3, s.MaxNewPerSession)
	assert.Equal(t, cfg.Interleave, s.Interleave)
	assert.Equal(t, cfg.Chain, s.Chain)
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "lexiq.db")

	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, p)
	assert.DirExists(t, filepath.Dir(p))

	t.Setenv("LEXIQ_DB", filepath.Join(t.TempDir(), "env.db"))
	cfg.DBPath = ""
	p, err = cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("LEXIQ_DB"), p)
}
