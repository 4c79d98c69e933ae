package httpspec

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultThreadCount and DefaultTimeout are the fallbacks applied when the
// corresponding environment variable is absent or unparsable (spec.md §6,
// §12).
const (
	DefaultThreadCount = 1
	DefaultTimeout     = 10 * time.Second
)

// Environment variable names read by LoadConfig.
const (
	envThreadCount = "HTTP_THREAD_COUNT"
	envTimeoutMS   = "HTTP_TIMEOUT_MS"
)

// Config is the run-level configuration assembled from the process
// environment (and an optional .env file) before the worker pool starts.
// Grounded on the teacher's options.go ClientOption pattern, repurposed
// from per-Client knobs to a single process-wide run configuration.
type Config struct {
	ThreadCount int
	Timeout     time.Duration
	Format      ReportFormat
	Quiet       bool
}

// ConfigOption mutates a Config during construction.
type ConfigOption func(*Config) error

// WithFormat overrides the reporter's output format.
func WithFormat(format ReportFormat) ConfigOption {
	return func(c *Config) error {
		c.Format = format
		return nil
	}
}

// WithQuiet suppresses per-failure error-sink lines, leaving only the
// end-of-run summary.
func WithQuiet(quiet bool) ConfigOption {
	return func(c *Config) error {
		c.Quiet = quiet
		return nil
	}
}

// WithThreadCount overrides the worker pool size, bypassing HTTP_THREAD_COUNT.
func WithThreadCount(n int) ConfigOption {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("thread count must be >= 1, got %d", n)
		}
		c.ThreadCount = n
		return nil
	}
}

// WithTimeout overrides the per-request timeout, bypassing HTTP_TIMEOUT_MS.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.Timeout = d
		return nil
	}
}

// LoadConfig reads HTTP_THREAD_COUNT and HTTP_TIMEOUT_MS from the process
// environment, optionally loading a ".env" file from dotEnvDir first (a
// missing .env is not an error — grounded on the teacher's
// Client.loadDotEnvVars, repurposed here for run-level rather than
// per-file variables), then applies opts on top.
func LoadConfig(dotEnvDir string, opts ...ConfigOption) (*Config, error) {
	if dotEnvDir != "" {
		loadOptionalDotEnv(dotEnvDir)
	}

	cfg := &Config{
		ThreadCount: parsePositiveIntEnv(envThreadCount, DefaultThreadCount),
		Timeout:     parseTimeoutEnv(envTimeoutMS, DefaultTimeout),
		Format:      ReportFormatText,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying config option: %w", err)
		}
	}
	return cfg, nil
}

func loadOptionalDotEnv(dir string) {
	envFilePath := dir + string(os.PathSeparator) + ".env"
	if _, err := os.Stat(envFilePath); err != nil {
		return
	}
	_ = godotenv.Load(envFilePath)
}

func parsePositiveIntEnv(name string, fallback int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseTimeoutEnv(name string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
