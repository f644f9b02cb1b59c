package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `telegram:
  token: "123:abc"
  run_mode: longpoll

database:
  host: db.internal
  port: "5432"
  user: aries
  name: aries
  sslmode: disable
  max_connections: 5

anilist:
  per_page: 1
  step: 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigParsesDatabaseSection(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "aries", cfg.Database.Name)
	assert.Equal(t, 5, cfg.Database.MaxConnections)

	require.NotNil(t, cfg.CoreConfig())
	assert.Equal(t, "123:abc", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, 3, cfg.CoreConfig().AniList.Step)
}

func TestLoadConfigDatabaseEnvOverride(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")

	cfg, err := LoadConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "override.internal", cfg.Database.Host)
}
