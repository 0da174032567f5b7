package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader builds a Config from layered sources, lowest priority first:
//
//  1. defaults (in code)
//  2. <dir>/base.yaml
//  3. <dir>/<environment>.yaml
//  4. the .env file
//  5. process environment variables
//
// Layers 2-4 are skipped when INSIDE_DOCKER is set; containers are configured
// through their environment only. Variables already present in the process
// environment always win over the .env file.
type Loader struct {
	dir          string
	envFile      string
	environment  Environment
	insideDocker bool

	dotenv  map[string]string
	sources []string
}

// NewLoader creates a loader reading YAML files from dir and dotenv values
// from envFile.
func NewLoader(dir, envFile string, env Environment, insideDocker bool) *Loader {
	if dir == "" {
		dir = "config"
	}
	if envFile == "" {
		envFile = ".env"
	}
	return &Loader{
		dir:          dir,
		envFile:      envFile,
		environment:  env,
		insideDocker: insideDocker,
	}
}

// NewLoaderFromEnv creates a loader configured by ENVIRONMENT, CONFIG_DIR,
// ENV_FILE and INSIDE_DOCKER.
func NewLoaderFromEnv() *Loader {
	_, insideDocker := os.LookupEnv("INSIDE_DOCKER")
	env := Environment(strings.ToLower(os.Getenv("ENVIRONMENT")))
	if env == "" {
		env = Development
	}
	return NewLoader(os.Getenv("CONFIG_DIR"), os.Getenv("ENV_FILE"), env, insideDocker)
}

// Environment returns the environment the loader was created for.
func (l *Loader) Environment() Environment { return l.environment }

// InsideDocker reports whether file sources are skipped.
func (l *Loader) InsideDocker() bool { return l.insideDocker }

// Dir returns the YAML directory.
func (l *Loader) Dir() string { return l.dir }

// EnvFile returns the dotenv path.
func (l *Loader) EnvFile() string { return l.envFile }

// Load runs every layer and validates the result.
func (l *Loader) Load() (*Config, error) {
	l.sources = []string{"defaults"}
	l.dotenv = nil
	cfg := l.defaultConfig()

	if !l.insideDocker {
		if err := l.loadYAML("base", cfg); err != nil {
			return nil, fmt.Errorf("failed to load base config: %w", err)
		}
		if err := l.loadYAML(string(l.environment), cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", l.environment, err)
		}
		if err := l.loadDotenv(); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.envFile, err)
		}
	}

	l.applyEnvironment(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources
	cfg.InsideDocker = l.insideDocker
	cfg.Server.PathPrefix = normalizePrefix(cfg.Server.PathPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration from the process environment and panics on error.
// Use this only in main().
func MustLoad() *Config {
	cfg, err := NewLoaderFromEnv().Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (l *Loader) loadYAML(name string, cfg *Config) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.dir, name+"."+ext)
		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		err = decodeYAML(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.sources = append(l.sources, path)
		return nil
	}
	return nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	err := yaml.NewDecoder(r).Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (l *Loader) loadDotenv() error {
	values, err := godotenv.Read(l.envFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	l.dotenv = values
	l.sources = append(l.sources, l.envFile)
	return nil
}

// lookup returns the first non-empty value among keys, checking the process
// environment before the .env file for each key.
func (l *Loader) lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val, true
		}
		if val, ok := l.dotenv[key]; ok && val != "" {
			return val, true
		}
	}
	return "", false
}

func (l *Loader) applyEnvironment(cfg *Config) {
	str := func(target *string, keys ...string) {
		if val, ok := l.lookup(keys...); ok {
			*target = val
		}
	}
	integer := func(target *int, keys ...string) {
		if val, ok := l.lookup(keys...); ok {
			if n, err := strconv.Atoi(val); err == nil {
				*target = n
			}
		}
	}
	boolean := func(target *bool, keys ...string) {
		if val, ok := l.lookup(keys...); ok {
			if b, err := strconv.ParseBool(val); err == nil {
				*target = b
			}
		}
	}
	duration := func(target *time.Duration, keys ...string) {
		if val, ok := l.lookup(keys...); ok {
			if d, err := time.ParseDuration(val); err == nil {
				*target = d
			}
		}
	}
	list := func(target *[]string, keys ...string) {
		if val, ok := l.lookup(keys...); ok {
			*target = splitList(val)
		}
	}

	// Server
	str(&cfg.Server.Host, "SERVER_HOST")
	integer(&cfg.Server.Port, "SERVER_PORT", "PORT")
	str(&cfg.Server.PathPrefix, "SERVER_PATH_PREFIX")
	duration(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT")
	duration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")

	// Neo4j; URI, USER and PASS are the historical names.
	str(&cfg.Neo4j.URI, "NEO4J_URI", "URI")
	str(&cfg.Neo4j.Username, "NEO4J_USERNAME", "USER")
	str(&cfg.Neo4j.Password, "NEO4J_PASSWORD", "PASS")
	str(&cfg.Neo4j.Database, "NEO4J_DATABASE")
	integer(&cfg.Neo4j.MaxPoolSize, "NEO4J_MAX_POOL_SIZE")
	duration(&cfg.Neo4j.AcquireTimeout, "NEO4J_ACQUIRE_TIMEOUT")
	duration(&cfg.Neo4j.ConnectTimeout, "NEO4J_CONNECT_TIMEOUT")
	duration(&cfg.Neo4j.QueryTimeout, "NEO4J_QUERY_TIMEOUT")

	// Auth
	str(&cfg.Auth.Mode, "AUTH_MODE")
	str(&cfg.Auth.URL, "AUTH_URL")
	duration(&cfg.Auth.Timeout, "AUTH_TIMEOUT")
	str(&cfg.Auth.ServiceSecret, "SERVICE_SECRET")
	str(&cfg.Auth.ServiceTokenMarker, "SERVICE_TOKEN_MARKER")
	str(&cfg.Auth.JWTSigningMethod, "JWT_SIGNING_METHOD")
	str(&cfg.Auth.JWTSecret, "JWT_SECRET")
	str(&cfg.Auth.JWTPublicKey, "JWT_PUBLIC_KEY")
	str(&cfg.Auth.JWTIssuer, "JWT_ISSUER")
	list(&cfg.Auth.JWTAudience, "JWT_AUDIENCE")

	// CORS
	list(&cfg.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")

	// Logging
	str(&cfg.Logging.Level, "LOG_LEVEL")
	str(&cfg.Logging.Format, "LOG_FORMAT")

	// Metrics
	boolean(&cfg.Metrics.Enabled, "ENABLE_METRICS")
	str(&cfg.Metrics.Namespace, "METRICS_NAMESPACE")

	// Tracing
	boolean(&cfg.Tracing.Enabled, "ENABLE_TRACING")
	str(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	boolean(&cfg.Tracing.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
	if val, ok := l.lookup("TRACING_SAMPLE_RATE"); ok {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRate = rate
		}
	}

	// Circuit breaker
	boolean(&cfg.CircuitBreaker.Enabled, "CIRCUIT_BREAKER_ENABLED")
}

func (l *Loader) defaultConfig() *Config {
	cfg := &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            7000,
			PathPrefix:      "/neo4j",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Neo4j: Neo4j{
			MaxPoolSize:    50,
			AcquireTimeout: 5 * time.Second,
			ConnectTimeout: 5 * time.Second,
			QueryTimeout:   10 * time.Second,
		},
		Auth: Auth{
			Mode:               AuthModeProvider,
			Timeout:            5 * time.Second,
			ServiceTokenMarker: "service-token",
			JWTSigningMethod:   "HS256",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "datagraph",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "datagraph-backend",
			SampleRate:  1.0,
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         30 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
	}
	if l.environment == Development {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	}
	return cfg
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizePrefix returns "" or a path starting with "/" and not ending in one.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
