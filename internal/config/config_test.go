package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "data/portal.db", cfg.Database.Path)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "all", cfg.Workflow.ApproverScope)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("SEED_ADMIN_PASSWORD", "hunter2hunter2")

	path := writeConfig(t, "database:\n  path: data/portal.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "hunter2hunter2", cfg.Seed.AdminPassword)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Path: "data/portal.db"},
		JWT:      JWTConfig{Secret: "s", Expiration: time.Hour},
		Workflow: WorkflowConfig{ApproverScope: "department"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }},
		{"non-positive expiration", func(c *Config) { c.JWT.Expiration = 0 }},
		{"unknown approver scope", func(c *Config) { c.Workflow.ApproverScope = "team" }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
