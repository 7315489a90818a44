// Package config loads the server configuration from the environment.
//
// Parse reads every variable and reports malformed values; Validate checks
// the semantic rules. Command-line flags are applied between the two.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Transport selects how the server is reached
type Transport string

const (
	TransportAuto  Transport = ""
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 3000
	DefaultSSEInterval     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the complete server configuration
type Config struct {
	Hudu        HuduConfig
	Server      ServerConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
	Tracing     TracingConfig
	Environment string
}

// HuduConfig configures the remote API gateway
type HuduConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ServerConfig configures the transports
type ServerConfig struct {
	Transport       Transport
	Host            string
	Port            int // zero when MCP_SERVER_PORT is unset
	SSEInterval     time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// TracingConfig configures span export. An empty Exporter disables tracing.
type TracingConfig struct {
	Exporter string
	Endpoint string
	Insecure bool
}

// Load parses and validates the process environment
func Load(getenv func(string) string) (*Config, error) {
	cfg, err := Parse(getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads the configuration from getenv. Every malformed value is
// reported in the returned error.
func Parse(getenv func(string) string) (*Config, error) {
	env := &envReader{getenv: getenv}

	cfg := &Config{
		Hudu: HuduConfig{
			BaseURL: strings.TrimRight(env.getString("HUDU_BASE_URL", ""), "/"),
			APIKey:  env.getString("HUDU_API_KEY", ""),
			Timeout: env.getMillis("HUDU_TIMEOUT", DefaultTimeout),
		},
		Server: ServerConfig{
			Transport:       Transport(strings.ToLower(env.getString("MCP_TRANSPORT", ""))),
			Host:            env.getString("MCP_SERVER_HOST", DefaultHost),
			Port:            env.getInt("MCP_SERVER_PORT", 0),
			SSEInterval:     env.getDuration("MCP_SSE_INTERVAL", DefaultSSEInterval),
			ShutdownTimeout: env.getDuration("MCP_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		},
		Logging: LoggingConfig{
			Level:  env.getString("LOG_LEVEL", "info"),
			Format: env.getString("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Enabled: env.getBool("MCP_METRICS_ENABLED", true),
		},
		Tracing: TracingConfig{
			Exporter: env.getString("MCP_TRACING_EXPORTER", ""),
			Endpoint: env.getString("MCP_TRACING_ENDPOINT", ""),
			Insecure: env.getBool("MCP_TRACING_INSECURE", false),
		},
		Environment: env.getString("MCP_ENVIRONMENT", env.getString("NODE_ENV", "development")),
	}

	if env.err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", env.err)
	}
	return cfg, nil
}

// Validate checks every rule and reports all violations at once
func (c *Config) Validate() error {
	var err error

	if c.Hudu.BaseURL == "" {
		err = multierr.Append(err, fmt.Errorf("HUDU_BASE_URL is required"))
	} else if u, parseErr := url.Parse(c.Hudu.BaseURL); parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("HUDU_BASE_URL must be an absolute http(s) URL, got %q", c.Hudu.BaseURL))
	}
	if c.Hudu.APIKey == "" {
		err = multierr.Append(err, fmt.Errorf("HUDU_API_KEY is required"))
	}
	if c.Hudu.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("HUDU_TIMEOUT must be positive"))
	}

	switch c.Server.Transport {
	case TransportAuto, TransportStdio, TransportHTTP:
	default:
		err = multierr.Append(err, fmt.Errorf("MCP_TRANSPORT must be stdio or http, got %q", c.Server.Transport))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("MCP_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.SSEInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("MCP_SSE_INTERVAL must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("MCP_SHUTDOWN_TIMEOUT must be positive"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}

	switch strings.ToLower(c.Tracing.Exporter) {
	case "", "noop", "otlp-grpc", "otlp-http":
	default:
		err = multierr.Append(err, fmt.Errorf("MCP_TRACING_EXPORTER must be noop, otlp-grpc or otlp-http, got %q", c.Tracing.Exporter))
	}

	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Mode resolves the transport. Auto selects HTTP when a port is configured
// or the environment is production.
func (c *Config) Mode() Transport {
	if c.Server.Transport != TransportAuto {
		return c.Server.Transport
	}
	if c.Server.Port != 0 || c.IsProduction() {
		return TransportHTTP
	}
	return TransportStdio
}

// ListenPort returns the configured port or DefaultPort
func (c *Config) ListenPort() int {
	if c.Server.Port == 0 {
		return DefaultPort
	}
	return c.Server.Port
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.ListenPort())
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// envReader reads typed values and accumulates parse failures
type envReader struct {
	getenv func(string) string
	err    error
}

func (r *envReader) getString(key, defaultValue string) string {
	if value := strings.TrimSpace(r.getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := r.getString(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return n
}

func (r *envReader) getBool(key string, defaultValue bool) bool {
	value := r.getString(key, "")
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return b
}

func (r *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := r.getString(key, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s must be a duration, got %q", key, value))
		return defaultValue
	}
	return d
}

// getMillis reads an integer number of milliseconds
func (r *envReader) getMillis(key string, defaultValue time.Duration) time.Duration {
	value := r.getString(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s must be an integer number of milliseconds, got %q", key, value))
		return defaultValue
	}
	return time.Duration(n) * time.Millisecond
}
