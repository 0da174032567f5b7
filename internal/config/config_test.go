package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"datagraph-backend/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// clearEnv blanks the variables the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"NEO4J_URI", "URI", "NEO4J_USERNAME", "USER", "NEO4J_PASSWORD", "PASS",
		"AUTH_URL", "AUTH_MODE", "SERVICE_SECRET", "SERVER_PORT", "PORT",
		"SERVER_PATH_PREFIX", "LOG_LEVEL", "LOG_FORMAT", "JWT_SECRET",
		"NEO4J_ACQUIRE_TIMEOUT", "NEO4J_CONNECT_TIMEOUT", "NEO4J_QUERY_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "neo4j://db:7687")
	t.Setenv("NEO4J_USERNAME", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("AUTH_URL", "https://idp.example.org/verify")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_TIMEOUT", "2s")
	t.Setenv("NEO4J_CONNECT_TIMEOUT", "1500ms")

	cfg, err := config.NewLoader(t.TempDir(), filepath.Join(t.TempDir(), ".env"), config.Production, true).Load()
	require.NoError(t, err)

	assert.Equal(t, "neo4j://db:7687", cfg.Neo4j.URI)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/neo4j", cfg.Server.PathPrefix)
	assert.Equal(t, 2*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Neo4j.QueryTimeout)
	assert.Equal(t, 5*time.Second, cfg.Neo4j.AcquireTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Neo4j.ConnectTimeout)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
	assert.True(t, cfg.InsideDocker)
}

func TestLoad_LegacyNamesFromDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "URI=bolt://localhost:7687\nUSER=neo4j\nPASS=pw\nAUTH_URL=http://localhost:9000/auth\nSERVICE_SECRET=abc\n")

	cfg, err := config.NewLoader(dir, envFile, config.Development, false).Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, "pw", cfg.Neo4j.Password)
	assert.Equal(t, "abc", cfg.Auth.ServiceSecret)
	assert.Contains(t, cfg.LoadedFrom, envFile)
}

func TestLoad_InsideDockerIgnoresFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "URI=bolt://from-file:7687\nUSER=neo4j\nPASS=pw\nAUTH_URL=http://idp\n")

	_, err := config.NewLoader(dir, envFile, config.Production, true).Load()
	assert.Error(t, err, "credentials only exist in the ignored .env file")
}

func TestLoad_YAMLLayersAndEnvironmentWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), `
server:
  port: 7100
  path_prefix: api/neo4j/
neo4j:
  uri: bolt://base:7687
  username: neo4j
  password: base
  query_timeout: 3s
auth:
  url: http://idp/verify
`)
	writeFile(t, filepath.Join(dir, "staging.yaml"), `
neo4j:
  uri: bolt://staging:7687
`)
	t.Setenv("NEO4J_PASSWORD", "from-env")

	cfg, err := config.NewLoader(dir, filepath.Join(dir, ".env"), config.Staging, false).Load()
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "/api/neo4j", cfg.Server.PathPrefix)
	assert.Equal(t, "bolt://staging:7687", cfg.Neo4j.URI)
	assert.Equal(t, "from-env", cfg.Neo4j.Password)
	assert.Equal(t, 3*time.Second, cfg.Neo4j.QueryTimeout)
	assert.Equal(t, []string{
		"defaults",
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "staging.yaml"),
		"environment",
	}, cfg.LoadedFrom)
}

func TestValidate_FailsFast(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "bolt://db:7687")

	_, err := config.NewLoader(t.TempDir(), "", config.Production, true).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username")
	assert.Contains(t, err.Error(), "Password")
	assert.Contains(t, err.Error(), "URL")
}

func TestValidate_JWTModeNeedsKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "bolt://db:7687")
	t.Setenv("NEO4J_USERNAME", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "pw")
	t.Setenv("AUTH_MODE", "jwt")

	_, err := config.NewLoader(t.TempDir(), "", config.Production, true).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt mode")

	t.Setenv("JWT_SECRET", "k")
	_, err = config.NewLoader(t.TempDir(), "", config.Production, true).Load()
	assert.NoError(t, err)
}

func TestWatcher_ReloadNotifiesCallbacks(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "URI=bolt://db:7687\nUSER=neo4j\nPASS=pw\nAUTH_URL=http://idp\nSERVICE_SECRET=one\n")

	loader := config.NewLoader(dir, envFile, config.Production, false)
	cfg, err := loader.Load()
	require.NoError(t, err)

	w, err := config.NewWatcher(loader, cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var got string
	w.OnChange(func(c *config.Config) { got = c.Auth.ServiceSecret })

	writeFile(t, envFile, "URI=bolt://db:7687\nUSER=neo4j\nPASS=pw\nAUTH_URL=http://idp\nSERVICE_SECRET=two\n")
	w.Reload()

	assert.Equal(t, "two", got)
	assert.Equal(t, "two", w.Current().Auth.ServiceSecret)
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "URI=bolt://db:7687\nUSER=neo4j\nPASS=pw\nAUTH_URL=http://idp\n")

	loader := config.NewLoader(dir, envFile, config.Production, false)
	cfg, err := loader.Load()
	require.NoError(t, err)

	w, err := config.NewWatcher(loader, cfg, zap.NewNop())
	require.NoError(t, err)

	writeFile(t, envFile, "URI=bolt://db:7687\n")
	w.Reload()

	assert.Same(t, cfg, w.Current())
}
