// Package config loads application configuration from environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// ErrMissingToken is returned when no GitHub token is configured.
var ErrMissingToken = errors.New("GH_BOT_PAT environment variable is not set")

// Defaults for the nano-node CT dashboard deployment.
const (
	DefaultRepo         = "nanocurrency/nano-node"
	DefaultDetailsURL   = "https://ct.bnano.info/details/"
	DefaultDataURL      = "https://ct.bnano.info/api/data/"
	DefaultResultsURL   = "https://ct.bnano.info/api/results/"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultHealthMaxAge = 2 * time.Hour
)

// Config holds the application configuration.
type Config struct {
	GitHubToken    string
	Repo           string
	DetailsURL     string
	DataURL        string
	ResultsURL     string
	CommentMarker  string
	Window         time.Duration
	Workers        int
	HTTPTimeout    time.Duration
	DryRun         bool
	JournalPath    string // Empty disables the run journal.
	PushgatewayURL string // Empty disables metrics push.
	LogLevel       slog.Level
	LogFormat      string // "text" or "json".
}

// fileConfig mirrors Config for the optional YAML file. Durations are strings
// in time.ParseDuration syntax.
type fileConfig struct {
	GitHubToken    string `yaml:"github_token"`
	Repo           string `yaml:"repo"`
	DetailsURL     string `yaml:"details_url"`
	DataURL        string `yaml:"data_url"`
	ResultsURL     string `yaml:"results_url"`
	CommentMarker  string `yaml:"comment_marker"`
	Window         string `yaml:"window"`
	Workers        int    `yaml:"workers"`
	HTTPTimeout    string `yaml:"http_timeout"`
	DryRun         *bool  `yaml:"dry_run"`
	JournalPath    string `yaml:"journal_path"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values and no token.
func DefaultConfig() *Config {
	return &Config{
		Repo:          DefaultRepo,
		DetailsURL:    DefaultDetailsURL,
		DataURL:       DefaultDataURL,
		ResultsURL:    DefaultResultsURL,
		CommentMarker: model.DefaultCommentMarker,
		Window:        model.DefaultWindow,
		Workers:       model.DefaultWorkers,
		HTTPTimeout:   DefaultHTTPTimeout,
		LogLevel:      slog.LevelInfo,
		LogFormat:     "text",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CTBOT_CONFIG_FILE (if set) and environment variables, in increasing order of
// precedence. GH_BOT_PAT is required; its absence returns ErrMissingToken.
//
// Optional variables: CTBOT_REPO, CTBOT_DETAILS_URL, CTBOT_DATA_URL,
// CTBOT_RESULTS_URL, CTBOT_COMMENT_MARKER, CTBOT_WINDOW (48h), CTBOT_WORKERS (5),
// CTBOT_HTTP_TIMEOUT (30s), CTBOT_DRY_RUN, CTBOT_JOURNAL_PATH,
// CTBOT_PUSHGATEWAY_URL, CTBOT_LOG_LEVEL (info), CTBOT_LOG_FORMAT (text).
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path, ok := os.LookupEnv("CTBOT_CONFIG_FILE"); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile reads the YAML file at path, substitutes ${VAR} references from the
// environment and overlays every non-empty field onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setString(&c.GitHubToken, fc.GitHubToken)
	setString(&c.Repo, fc.Repo)
	setString(&c.DetailsURL, fc.DetailsURL)
	setString(&c.DataURL, fc.DataURL)
	setString(&c.ResultsURL, fc.ResultsURL)
	setString(&c.CommentMarker, fc.CommentMarker)
	setString(&c.JournalPath, fc.JournalPath)
	setString(&c.PushgatewayURL, fc.PushgatewayURL)
	setString(&c.LogFormat, fc.LogFormat)

	if fc.Workers != 0 {
		c.Workers = fc.Workers
	}
	if fc.DryRun != nil {
		c.DryRun = *fc.DryRun
	}
	if err := parseDurationInto(&c.Window, "window", fc.Window); err != nil {
		return err
	}
	if err := parseDurationInto(&c.HTTPTimeout, "http_timeout", fc.HTTPTimeout); err != nil {
		return err
	}
	if fc.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return fmt.Errorf("log_level has invalid value %q: %w", fc.LogLevel, err)
		}
	}

	return nil
}

// mergeEnv overlays environment variables onto cfg.
func (c *Config) mergeEnv() error {
	if v, ok := os.LookupEnv("GH_BOT_PAT"); ok && v != "" {
		c.GitHubToken = v
	}

	stringVars := map[string]*string{
		"CTBOT_REPO":            &c.Repo,
		"CTBOT_DETAILS_URL":     &c.DetailsURL,
		"CTBOT_DATA_URL":        &c.DataURL,
		"CTBOT_RESULTS_URL":     &c.ResultsURL,
		"CTBOT_COMMENT_MARKER":  &c.CommentMarker,
		"CTBOT_JOURNAL_PATH":    &c.JournalPath,
		"CTBOT_PUSHGATEWAY_URL": &c.PushgatewayURL,
		"CTBOT_LOG_FORMAT":      &c.LogFormat,
	}
	for key, dst := range stringVars {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("CTBOT_WINDOW"); ok {
		if err := parseDurationInto(&c.Window, "CTBOT_WINDOW", v); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("CTBOT_HTTP_TIMEOUT"); ok {
		if err := parseDurationInto(&c.HTTPTimeout, "CTBOT_HTTP_TIMEOUT", v); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("CTBOT_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CTBOT_WORKERS has invalid value %q: %w", v, err)
		}
		c.Workers = n
	}

	if v, ok := os.LookupEnv("CTBOT_DRY_RUN"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CTBOT_DRY_RUN has invalid value %q: %w", v, err)
		}
		c.DryRun = b
	}

	if v, ok := os.LookupEnv("CTBOT_LOG_LEVEL"); ok && v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("CTBOT_LOG_LEVEL has invalid value %q: %w", v, err)
		}
	}

	return nil
}

func (c *Config) validate() error {
	if c.GitHubToken == "" {
		return ErrMissingToken
	}
	if parts := strings.SplitN(c.Repo, "/", 2); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("repo %q must be in owner/name form", c.Repo)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window)
	}
	if c.CommentMarker == "" {
		return errors.New("comment marker must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// HealthcheckConfig holds the settings read by the healthcheck binary.
type HealthcheckConfig struct {
	JournalPath string
	MaxAge      time.Duration
}

// LoadHealthcheck reads CTBOT_JOURNAL_PATH (required) and
// CTBOT_HEALTH_MAX_AGE (default 2h). No GitHub token is needed.
func LoadHealthcheck() (*HealthcheckConfig, error) {
	path := os.Getenv("CTBOT_JOURNAL_PATH")
	if path == "" {
		return nil, errors.New("CTBOT_JOURNAL_PATH environment variable is not set")
	}

	maxAge := DefaultHealthMaxAge
	if v, ok := os.LookupEnv("CTBOT_HEALTH_MAX_AGE"); ok {
		if err := parseDurationInto(&maxAge, "CTBOT_HEALTH_MAX_AGE", v); err != nil {
			return nil, err
		}
	}

	return &HealthcheckConfig{JournalPath: path, MaxAge: maxAge}, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseDurationInto leaves dst untouched for an empty value.
func parseDurationInto(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}
