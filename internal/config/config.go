package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/vstream/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vstream.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultOutput is the default export output directory.
	DefaultOutput = "dist"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultConcurrency is the default number of pages exported at once.
	DefaultConcurrency = 4
)

// Environment overrides applied after the file is read.
const (
	EnvAddr     = "VSTREAM_ADDR"
	EnvLogLevel = "VSTREAM_LOG_LEVEL"
)

// Duration is a time.Duration that reads and writes as a string such as "30s".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config represents the complete vstream.json configuration.
type Config struct {
	// Server contains HTTP/WebSocket server configuration.
	Server ServerConfig `json:"server"`

	// Render contains renderer configuration.
	Render RenderConfig `json:"render"`

	// Export contains static export configuration.
	Export ExportConfig `json:"export"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Addr is the address to listen on.
	Addr string `json:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`

	// WriteWait bounds a single WebSocket frame write.
	WriteWait Duration `json:"writeWait,omitempty"`

	// AllowAnyOrigin disables the same-origin WebSocket check.
	AllowAnyOrigin bool `json:"allowAnyOrigin,omitempty"`
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	// Doctype prefixes every shell with <!DOCTYPE html>.
	Doctype bool `json:"doctype"`

	// TaskTimeout bounds each async component. Zero means no limit.
	TaskTimeout Duration `json:"taskTimeout,omitempty"`

	// Memo enables the shared memo cache.
	Memo bool `json:"memo"`
}

// ExportConfig contains export settings. Output and Bucket are
// alternatives; Bucket wins when both are set.
type ExportConfig struct {
	// Output is the directory for exported documents.
	Output string `json:"output,omitempty"`

	// Bucket is the S3 bucket for exported documents.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the S3 bucket's region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint for compatible stores.
	Endpoint string `json:"endpoint,omitempty"`

	// Concurrency bounds how many pages render at once.
	Concurrency int `json:"concurrency,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	Enabled bool `json:"enabled"`

	// Path is the scrape path.
	Path string `json:"path,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled wraps every stream in a span.
	Enabled bool `json:"enabled"`

	// TracerName is the instrumentation name.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: Duration(30 * time.Second),
			WriteWait:       Duration(10 * time.Second),
		},
		Render: RenderConfig{
			Doctype: true,
			Memo:    true,
		},
		Export: ExportConfig{
			Output:      DefaultOutput,
			Region:      "us-east-1",
			Concurrency: DefaultConcurrency,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: "vstream",
		},
		Tracing: TracingConfig{
			TracerName: "vstream",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vstream.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields
// missing from the file keep their defaults; environment overrides are
// applied last.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Omit --config to run with built-in defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON and durations are strings like \"30s\"")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.ApplyEnv()
	return cfg, nil
}

// Default returns the default configuration with environment overrides.
func Default() *Config {
	cfg := New()
	cfg.ApplyEnv()
	return cfg
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in values a file set to empty.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.WriteWait == 0 {
		c.Server.WriteWait = defaults.Server.WriteWait
	}
	if c.Export.Concurrency == 0 {
		c.Export.Concurrency = defaults.Export.Concurrency
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// ApplyEnv applies VSTREAM_* environment overrides.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("E121").WithDetail("server.addr must be set")
	}
	if c.Server.ShutdownTimeout < 0 || c.Server.WriteWait < 0 || c.Render.TaskTimeout < 0 {
		return errors.New("E122").WithDetail("Durations must not be negative")
	}
	if c.Export.Concurrency < 0 {
		return errors.New("E122").WithDetail("export.concurrency must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.New("E122").WithDetail(err.Error()).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E122").WithDetail("log.format must be text or json, got " + c.Log.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E122").WithDetail("metrics.path must start with /")
	}
	return nil
}

// OutputPath returns the export directory, resolved against the config
// file's directory when relative.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Export.Output) || c.Dir() == "" {
		return c.Export.Output
	}
	return filepath.Join(c.Dir(), c.Export.Output)
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// NewLogger builds the slog logger described by Log, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
