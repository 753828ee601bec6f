package config

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"todoapi/app/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todoapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
  read_timeout: 3s
store:
  driver: sqlite3
  dsn: file:todo.db
log:
  level: debug
  format: text
`)
	t.Setenv("TODOAPI_STORE_DSN", ":memory:")
	t.Setenv("TODOAPI_SHUTDOWN_TIMEOUT", "1s")
	t.Setenv("TODOAPI_STORE_NEO4J_DATABASE", "todos")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, ":memory:", cfg.Store.DSN)
	assert.Equal(t, "todos", cfg.Store.Neo4j.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "store:\n  timeout: 0s\n"))
	assert.ErrorContains(t, err, "store timeout must be positive")

	t.Setenv("TODOAPI_READ_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"zero store timeout", func(c *Config) { c.Store.Timeout = 0 }, true},
		{"negative store timeout", func(c *Config) { c.Store.Timeout = -time.Second }, true},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"sql without dsn", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"sql with dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "postgres://localhost/todo" }, false},
		{"neo4j without uri", func(c *Config) { c.Store.Driver = "neo4j"; c.Store.Neo4j.URI = "" }, true},
		{"neo4j", func(c *Config) { c.Store.Driver = "neo4j" }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("id", 1).Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()

	s, name, err := OpenStore(ctx, StoreConfig{Driver: "memory", Timeout: time.Second}, logger)
	require.NoError(t, err)
	assert.Equal(t, "memory", name)
	assert.IsType(t, &store.MemoryStore{}, s)

	s, name, err = OpenStore(ctx, StoreConfig{Driver: "sqlite3", DSN: ":memory:", Migrate: true, Timeout: time.Second}, logger)
	require.NoError(t, err)
	defer s.Close(ctx)
	assert.Equal(t, "sqlite3", name)
	items, err := s.NewContext().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, _, err = OpenStore(ctx, StoreConfig{Driver: "mysql", Timeout: time.Second}, logger)
	assert.Error(t, err)
}
