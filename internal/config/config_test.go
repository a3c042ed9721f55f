package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: t.TempDir()},
		Server: ServerConfig{
			Name:         "Test",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())
}

func TestValidate_BadEnvironment(t *testing.T) {
	cfg := validConfig(t)
	cfg.App.Environment = "qa"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig(t)
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandBackupDir_Default(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.expandBackupDir())
	assert.Equal(t, filepath.Join(cfg.Data.BasePath, "backups"), cfg.Backup.Dir)
}

func TestExpandPath_Relative(t *testing.T) {
	got, err := expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("SCRIPTORIUM_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SCRIPTORIUM_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "SCRIPTORIUM_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SCRIPTORIUM_TEST_UNSET", "default"))
}
