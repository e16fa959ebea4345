package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadEDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	c, err := LoadE("")
	require.NoError(t, err)
	require.Equal(t, "menus-api", c.App.Name)
	require.Equal(t, 8080, c.App.HTTP.Port)
	require.Equal(t, "sqlite", c.DB.Driver)
	require.Equal(t, 10, c.Security.BcryptCost)
	require.Equal(t, 5.0, c.Limits.AuthRPS)
	require.Empty(t, c.Redis.Addr)
}

func TestLoadEFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: menus-test
  cors: ["https://a.example", "https://b.example"]
  http:
    port: 9090
db:
  driver: postgres
  dsn: postgres://u:p@localhost/menus
redis:
  addr: localhost:6379
`), 0o600))
	t.Setenv("APP_DB_DSN", "postgres://u:p@db/menus")

	c, err := LoadE(path)
	require.NoError(t, err)
	require.Equal(t, "menus-test", c.App.Name)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.App.CORS)
	require.Equal(t, 9090, c.App.HTTP.Port)
	require.Equal(t, 10, c.App.HTTP.WriteTimeoutSec)
	require.Equal(t, "postgres", c.DB.Driver)
	require.Equal(t, "postgres://u:p@db/menus", c.DB.DSN)
	require.Equal(t, "localhost:6379", c.Redis.Addr)
}

func TestLoadEMissingExplicitFile(t *testing.T) {
	_, err := LoadE(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read config")

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err = LoadE("")
	require.ErrorContains(t, err, "read config")
}
