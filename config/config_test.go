package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "TOURNAMENT_ATHLETES", "TOURNAMENT_EVENTS", "TOURNAMENT_SEED",
		"TOURNAMENT_MAX_DRAW_ATTEMPTS", "ARCHIVE_DRIVER", "DATABASE_URL", "DB_HOST", "DB_USER",
		"REDIS_ENABLED", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ozlympic", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, 25, cfg.Tournament.Athletes)
	assert.Equal(t, 5, cfg.Tournament.Events)
	assert.Zero(t, cfg.Tournament.Seed)
	assert.Equal(t, 10000, cfg.Tournament.MaxDrawAttempts)
	assert.Equal(t, ArchiveMemory, cfg.Archive.Driver)
	assert.Equal(t, 5*time.Second, cfg.Archive.WriteTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOURNAMENT_ATHLETES", "40")
	t.Setenv("TOURNAMENT_SEED", "1234")
	t.Setenv("ARCHIVE_DRIVER", "SQLite")
	t.Setenv("ARCHIVE_SQLITE_PATH", "/tmp/run.db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_STANDINGS_TTL", "10m")
	t.Setenv("LOG_CALLER", "yes-please") // unparsable keeps the default

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Tournament.Athletes)
	assert.Equal(t, int64(1234), cfg.Tournament.Seed)
	assert.Equal(t, ArchiveSQLite, cfg.Archive.Driver)
	assert.Equal(t, "/tmp/run.db", cfg.Archive.SQLitePath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.StandingsTTL)
	assert.False(t, cfg.Observability.LogCaller)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "oz")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ARCHIVE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://oz:secret@db:5432/postgres?sslmode=disable", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Tournament: TournamentConfig{Athletes: 25, Events: 5, MaxDrawAttempts: 10},
			Archive:    ArchiveConfig{Driver: ArchiveMemory, WriteTimeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no athletes", func(c *Config) { c.Tournament.Athletes = 0 }, "TOURNAMENT_ATHLETES"},
		{"no events", func(c *Config) { c.Tournament.Events = 0 }, "TOURNAMENT_EVENTS"},
		{"too many events", func(c *Config) { c.Tournament.Events = 100 }, "at most 99"},
		{"no attempts", func(c *Config) { c.Tournament.MaxDrawAttempts = 0 }, "TOURNAMENT_MAX_DRAW_ATTEMPTS"},
		{"unknown driver", func(c *Config) { c.Archive.Driver = "mongo" }, "ARCHIVE_DRIVER"},
		{"postgres without url", func(c *Config) { c.Archive.Driver = ArchivePostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.Archive.Driver = ArchiveSQLite }, "ARCHIVE_SQLITE_PATH"},
		{"redis bad port", func(c *Config) {
			c.Redis = RedisConfig{Enabled: true, Port: 0, StandingsTTL: time.Minute}
		}, "REDIS_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
