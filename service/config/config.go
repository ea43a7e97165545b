package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRPCURL is the public Solana mainnet endpoint.
	DefaultRPCURL = "https://api.mainnet-beta.solana.com"

	// DefaultMintAddress is the GARI token mint.
	DefaultMintAddress = "CKaKtYvz6dKPyMvYq9Rh3UBrnNqYZAyd7iF4hJtjUvks"

	// DefaultSignatureLimit is the single page size requested from the node.
	DefaultSignatureLimit = 1000

	// LocalTimezone selects the machine's local zone for day bucketing.
	LocalTimezone = "Local"
)

// Config holds all configuration for a scan run. Values come from defaults,
// then an optional YAML file, then environment variables.
type Config struct {
	// Solana configuration
	RPCURLs        []string `yaml:"rpc_urls"`
	MintAddress    string   `yaml:"mint_address"`
	SignatureLimit int      `yaml:"signature_limit"`

	// Scan configuration
	Timezone          string  `yaml:"timezone"`
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// NATS configuration (optional)
	NATSURL           string `yaml:"nats_url"`
	NATSSubjectPrefix string `yaml:"nats_subject_prefix"`

	// Metrics configuration (optional)
	PushgatewayURL string `yaml:"pushgateway_url"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RPCURLs:           []string{DefaultRPCURL},
		MintAddress:       DefaultMintAddress,
		SignatureLimit:    DefaultSignatureLimit,
		Timezone:          LocalTimezone,
		Workers:           1,
		NATSSubjectPrefix: "newusers",
		LogLevel:          "warn",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read layers defaults, the optional YAML file and the environment without
// validating, so callers can apply further overrides before calling
// Validate. Only malformed input (unreadable file, non-numeric env values)
// fails here.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	if v := os.Getenv("GARITRACK_RPC_URL"); v != "" {
		c.RPCURLs = SplitList(v)
	}
	c.MintAddress = getEnvOrDefault("GARITRACK_MINT", c.MintAddress)
	c.Timezone = getEnvOrDefault("GARITRACK_TIMEZONE", c.Timezone)
	c.NATSURL = getEnvOrDefault("NATS_URL", c.NATSURL)
	c.NATSSubjectPrefix = getEnvOrDefault("GARITRACK_NATS_SUBJECT", c.NATSSubjectPrefix)
	c.PushgatewayURL = getEnvOrDefault("PUSHGATEWAY_URL", c.PushgatewayURL)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	limit, err := parseInt("GARITRACK_LIMIT", c.SignatureLimit)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.SignatureLimit = limit
	}

	workers, err := parseInt("GARITRACK_WORKERS", c.Workers)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.Workers = workers
	}

	rps, err := parseFloat("GARITRACK_RPS", c.RequestsPerSecond)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.RequestsPerSecond = rps
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if len(c.RPCURLs) == 0 {
		errs = append(errs, fmt.Errorf("at least one RPC URL is required"))
	}
	for _, u := range c.RPCURLs {
		if u == "" {
			errs = append(errs, fmt.Errorf("RPC URL must not be empty"))
		}
	}

	if c.MintAddress == "" {
		errs = append(errs, fmt.Errorf("MintAddress is required"))
	}

	if c.SignatureLimit < 1 || c.SignatureLimit > DefaultSignatureLimit {
		errs = append(errs, fmt.Errorf("SignatureLimit must be between 1 and %d, got %d", DefaultSignatureLimit, c.SignatureLimit))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("Workers must be at least 1, got %d", c.Workers))
	}

	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("RequestsPerSecond cannot be negative"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LogLevel must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// Location resolves Timezone. Empty and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == LocalTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseFloat parses a float from an environment variable or uses a default.
func parseFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return result, nil
}
