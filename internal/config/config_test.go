package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  driver: sqlite
  path: /tmp/launchpad-test.db
auth:
  jwt_secret: s3cret
  admin_addresses:
    - "0x00000000000000000000000000000000000000aa"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "/tmp/launchpad-test.db", cfg.Database.Path)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Len(t, cfg.Auth.AdminAddresses, 1)

	// 未设置的键使用默认值
	require.Equal(t, 60, cfg.Task.Interval)
	require.Equal(t, "launchpad.escrow", cfg.Kafka.Topic)
	require.Equal(t, "info", cfg.Log.GetLevel())
	require.Equal(t, 300, cfg.Auth.LoginWindow)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n")
	t.Setenv("LAUNCHPAD_SERVER_PORT", "7070")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadFile_RejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: oracle\n")

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
