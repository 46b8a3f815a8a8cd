package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/upsearch/internal/domain"
)

// Environment variable names of the service credentials.
const (
	EnvURL   = "UPSTASH_SEARCH_REST_URL"
	EnvToken = "UPSTASH_SEARCH_REST_TOKEN"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "upsearch.yaml"

// Config holds the CLI configuration.
type Config struct {
	Credentials Credentials   `yaml:"credentials"`
	Client      ClientConfig  `yaml:"client"`
	Bulk        BulkConfig    `yaml:"bulk"`
	Logging     LoggingConfig `yaml:"logging"`
}

// Credentials identify a database.
type Credentials struct {
	URL   string `yaml:"url" envconfig:"UPSTASH_SEARCH_REST_URL" required:"true"`
	Token string `yaml:"token" envconfig:"UPSTASH_SEARCH_REST_TOKEN" required:"true"`
}

// ClientConfig holds request executor settings.
type ClientConfig struct {
	Retries         *int  `yaml:"retries"`           // nil = 3
	RetryIntervalMS int   `yaml:"retry_interval_ms"` // default 1000
	Telemetry       *bool `yaml:"telemetry"`         // nil = true
}

// BulkConfig tunes multi-request CLI commands.
type BulkConfig struct {
	BatchSize   int `yaml:"batch_size"`  // documents per upsert request
	Concurrency int `yaml:"concurrency"` // in-flight requests
	PageSize    int `yaml:"page_size"`   // range page size
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod (default: local)
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// RetryInterval returns the configured interval as a duration.
func (c ClientConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMS) * time.Millisecond
}

// Load reads configuration from a YAML file. An empty path falls back to
// DefaultFile and then to the user config directory; when no file exists the
// defaults are used. Missing credentials are taken from the environment.
func Load(path string) (Config, error) {
	var cfg Config

	configPath, explicit := findConfigPath(path)
	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		switch {
		case err == nil:
			// Substitute env variables of the form ${VAR}
			data = expandEnvVars(data)
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	if err := fillCredentials(&cfg.Credentials); err != nil {
		return Config{}, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// envCredentials mirrors Credentials without the required tags so that each
// value can come from either the file or the environment.
type envCredentials struct {
	URL   string `envconfig:"UPSTASH_SEARCH_REST_URL"`
	Token string `envconfig:"UPSTASH_SEARCH_REST_TOKEN"`
}

// fillCredentials takes every credential missing from the file from the
// environment, one value at a time.
func fillCredentials(c *Credentials) error {
	if c.URL != "" && c.Token != "" {
		return nil
	}
	var env envCredentials
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMissingCredentials, err)
	}
	if c.URL == "" {
		c.URL = env.URL
	}
	if c.Token == "" {
		c.Token = env.Token
	}

	switch {
	case c.URL == "":
		return fmt.Errorf("%w: set credentials.url or %s", domain.ErrMissingCredentials, EnvURL)
	case c.Token == "":
		return fmt.Errorf("%w: set credentials.token or %s", domain.ErrMissingCredentials, EnvToken)
	}
	return nil
}

// LoadCredentials reads the database URL and token from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", domain.ErrMissingCredentials, err)
	}
	if c.URL == "" {
		return Credentials{}, fmt.Errorf("%w: %s is empty", domain.ErrMissingCredentials, EnvURL)
	}
	if c.Token == "" {
		return Credentials{}, fmt.Errorf("%w: %s is empty", domain.ErrMissingCredentials, EnvToken)
	}
	return c, nil
}

// LoadDotEnv loads variables from a dotenv file without overriding ones that
// are already set. An empty path loads ./.env if it exists.
func LoadDotEnv(path string) error {
	if path == "" {
		if !fileExists(".env") {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Client.Retries == nil {
		n := 3
		c.Client.Retries = &n
	}
	if c.Client.RetryIntervalMS <= 0 {
		c.Client.RetryIntervalMS = 1000
	}
	if c.Client.Telemetry == nil {
		t := true
		c.Client.Telemetry = &t
	}
	if c.Bulk.BatchSize <= 0 {
		c.Bulk.BatchSize = 100
	}
	if c.Bulk.Concurrency <= 0 {
		c.Bulk.Concurrency = 4
	}
	if c.Bulk.PageSize <= 0 {
		c.Bulk.PageSize = 100
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Credentials.URL == "" {
		return fmt.Errorf("credentials.url is required")
	}
	if !strings.HasPrefix(c.Credentials.URL, "http://") && !strings.HasPrefix(c.Credentials.URL, "https://") {
		return fmt.Errorf("credentials.url must be an http(s) URL, got %q", c.Credentials.URL)
	}
	if c.Credentials.Token == "" {
		return fmt.Errorf("credentials.token is required")
	}
	if c.Client.Retries != nil && *c.Client.Retries < 0 {
		return fmt.Errorf("client.retries must not be negative, got %d", *c.Client.Retries)
	}
	if c.Bulk.Concurrency > 64 {
		return fmt.Errorf("bulk.concurrency must be at most 64, got %d", c.Bulk.Concurrency)
	}
	switch c.Logging.Env {
	case "local", "dev", "prod":
		// ok
	default:
		return fmt.Errorf("logging.env must be one of local, dev, prod, got %q", c.Logging.Env)
	}
	return nil
}

// findConfigPath locates the config file. The second result reports whether
// the path was given explicitly.
func findConfigPath(path string) (string, bool) {
	if path != "" {
		return path, true
	}

	// 1. Check the working directory
	if fileExists(DefaultFile) {
		return DefaultFile, false
	}

	// 2. Check the user config directory
	if dir, err := os.UserConfigDir(); err == nil {
		if p := filepath.Join(dir, "upsearch", "config.yaml"); fileExists(p) {
			return p, false
		}
	}

	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
