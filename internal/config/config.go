package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Authorization modes.
const (
	AuthModeProvider = "provider"
	AuthModeJWT      = "jwt"
)

// Config is the complete service configuration.
type Config struct {
	Environment    Environment    `yaml:"environment" validate:"oneof=development staging production"`
	Server         Server         `yaml:"server"`
	Neo4j          Neo4j          `yaml:"neo4j"`
	Auth           Auth           `yaml:"auth"`
	CORS           CORS           `yaml:"cors"`
	Logging        Logging        `yaml:"logging"`
	Metrics        Metrics        `yaml:"metrics"`
	Tracing        Tracing        `yaml:"tracing"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`

	// InsideDocker disables .env and YAML file loading.
	InsideDocker bool `yaml:"-"`
	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	PathPrefix      string        `yaml:"path_prefix"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

// Neo4j configures the graph database connection.
type Neo4j struct {
	URI            string        `yaml:"uri" validate:"required"`
	Username       string        `yaml:"username" validate:"required"`
	Password       string        `yaml:"password" validate:"required"`
	Database       string        `yaml:"database"`
	MaxPoolSize    int           `yaml:"max_pool_size" validate:"gte=0"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" validate:"gt=0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	QueryTimeout   time.Duration `yaml:"query_timeout" validate:"gt=0"`
}

// Auth configures bearer token verification.
type Auth struct {
	Mode               string        `yaml:"mode" validate:"oneof=provider jwt"`
	URL                string        `yaml:"url" validate:"required_if=Mode provider"`
	Timeout            time.Duration `yaml:"timeout" validate:"gt=0"`
	ServiceSecret      string        `yaml:"service_secret"`
	ServiceTokenMarker string        `yaml:"service_token_marker" validate:"required"`
	JWTSigningMethod   string        `yaml:"jwt_signing_method" validate:"omitempty,oneof=HS256 RS256"`
	JWTSecret          string        `yaml:"jwt_secret"`
	JWTPublicKey       string        `yaml:"jwt_public_key"`
	JWTIssuer          string        `yaml:"jwt_issuer"`
	JWTAudience        []string      `yaml:"jwt_audience"`
}

// CORS configures cross-origin requests.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Logging configures zap.
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"`
}

// Tracing configures the OTLP exporter.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// CircuitBreaker configures the breaker around the graph store.
type CircuitBreaker struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests"`
}

var validate = validator.New()

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			return err
		}
	}

	if c.Server.PathPrefix != "" && !strings.HasPrefix(c.Server.PathPrefix, "/") {
		problems = append(problems, "Server.PathPrefix must start with '/'")
	}
	if c.Auth.Mode == AuthModeJWT && c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" {
		problems = append(problems, "Auth.JWTSecret or Auth.JWTPublicKey is required in jwt mode")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
