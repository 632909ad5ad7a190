package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Engine.Provider)
	assert.Equal(t, "sqlite", cfg.Audit.Driver)
	assert.Equal(t, 60*time.Second, cfg.Engine.EngineTimeout())
	assert.Equal(t, 5*time.Second, cfg.Audit.AuditTimeout())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caselens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
engine:
  provider: gemini
  model: gemini-2.0-flash
  api_key: file-key
  timeout: 30s
audit:
  driver: sqlite
  path: /tmp/audit.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.Engine.Provider)
	assert.Equal(t, 30*time.Second, cfg.Engine.EngineTimeout())
	// Untouched sections keep defaults.
	assert.Equal(t, "5s", cfg.Audit.Timeout)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caselens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CASELENS_API_KEY", "env-key")
	t.Setenv("CASELENS_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Engine.APIKey)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestProviderKeyFallback(t *testing.T) {
	t.Setenv("CASELENS_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	cfg := Default()
	cfg.Engine.Provider = "gemini"
	cfg.applyEnv()
	assert.Equal(t, "gem-key", cfg.Engine.APIKey)

	cfg = Default()
	cfg.applyEnv()
	assert.Equal(t, "oai-key", cfg.Engine.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Audit.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres without a dsn")
	cfg.Audit.DSN = "postgres://localhost/caselens"
	assert.NoError(t, cfg.Validate())

	cfg.Audit.Driver = "cassandra"
	assert.Error(t, cfg.Validate())
}

func TestTimeoutParsingFallbacks(t *testing.T) {
	assert.Equal(t, 60*time.Second, Engine{Timeout: "nonsense"}.EngineTimeout())
	assert.Equal(t, 60*time.Second, Engine{Timeout: "-5s"}.EngineTimeout())
	assert.Equal(t, 90*time.Second, Engine{Timeout: "90s"}.EngineTimeout())
	assert.Equal(t, 5*time.Second, Audit{}.AuditTimeout())
}
