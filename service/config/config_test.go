package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{DefaultRPCURL}, cfg.RPCURLs)
	assert.Equal(t, DefaultMintAddress, cfg.MintAddress)
	assert.Equal(t, 1000, cfg.SignatureLimit)
	assert.Equal(t, LocalTimezone, cfg.Timezone)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 0.0, cfg.RequestsPerSecond)
	assert.Equal(t, "", cfg.NATSURL)
	assert.Equal(t, "newusers", cfg.NATSSubjectPrefix)
	assert.Equal(t, "warn", cfg.LogLevel)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_CustomValues(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_RPC_URL", "https://a.example.com, https://b.example.com")
	os.Setenv("GARITRACK_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	os.Setenv("GARITRACK_LIMIT", "250")
	os.Setenv("GARITRACK_TIMEZONE", "UTC")
	os.Setenv("GARITRACK_WORKERS", "4")
	os.Setenv("GARITRACK_RPS", "2.5")
	os.Setenv("NATS_URL", "nats://nats.example.com:4222")
	os.Setenv("GARITRACK_NATS_SUBJECT", "gari")
	os.Setenv("PUSHGATEWAY_URL", "http://push.example.com:9091")
	os.Setenv("LOG_LEVEL", "debug")
	defer cleanupEnv()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.RPCURLs)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", cfg.MintAddress)
	assert.Equal(t, 250, cfg.SignatureLimit)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, "nats://nats.example.com:4222", cfg.NATSURL)
	assert.Equal(t, "gari", cfg.NATSSubjectPrefix)
	assert.Equal(t, "http://push.example.com:9091", cfg.PushgatewayURL)
	assert.Equal(t, "debug", cfg.LogLevel)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_InvalidInteger(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_LIMIT", "lots")
	defer cleanupEnv()

	cfg, err := Load("")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid integer")
}

func TestLoad_LimitAboveMax(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_LIMIT", "1001")
	defer cleanupEnv()

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SignatureLimit must be between 1 and 1000")
}

func TestRead_DefersValidation(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_LIMIT", "5000")
	defer cleanupEnv()

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.SignatureLimit)
	require.Error(t, cfg.Validate())

	cfg.SignatureLimit = 10
	assert.NoError(t, cfg.Validate())
}

func TestRead_MalformedEnv(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_RPS", "fast")
	defer cleanupEnv()

	_, err := Read("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number")
}

func TestLoad_FileThenEnv(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	dir := t.TempDir()
	path := filepath.Join(dir, "garitrack.yaml")
	content := `rpc_urls:
  - https://file.example.com
signature_limit: 500
timezone: Asia/Tokyo
workers: 2
log_level: info
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	os.Setenv("GARITRACK_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://file.example.com"}, cfg.RPCURLs)
	assert.Equal(t, 500, cfg.SignatureLimit)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 8, cfg.Workers) // env wins over file
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultMintAddress, cfg.MintAddress) // untouched default
}

func TestLoad_MissingFile(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no rpc urls", func(c *Config) { c.RPCURLs = nil }, "at least one RPC URL is required"},
		{"blank rpc url", func(c *Config) { c.RPCURLs = []string{""} }, "RPC URL must not be empty"},
		{"no mint", func(c *Config) { c.MintAddress = "" }, "MintAddress is required"},
		{"zero limit", func(c *Config) { c.SignatureLimit = 0 }, "SignatureLimit must be between"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "Workers must be at least 1"},
		{"negative rps", func(c *Config) { c.RequestsPerSecond = -1 }, "RequestsPerSecond cannot be negative"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b ,"))
	assert.Empty(t, SplitList(""))
}

func TestMustLoad_Panics(t *testing.T) {
	cleanupEnv()
	os.Setenv("GARITRACK_WORKERS", "0")
	defer cleanupEnv()

	assert.Panics(t, func() {
		MustLoad("")
	})
}

func TestMustLoad_Success(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	assert.NotPanics(t, func() {
		cfg := MustLoad("")
		assert.NotNil(t, cfg)
	})
}

// cleanupEnv clears all environment variables used in tests
func cleanupEnv() {
	os.Unsetenv("GARITRACK_RPC_URL")
	os.Unsetenv("GARITRACK_MINT")
	os.Unsetenv("GARITRACK_LIMIT")
	os.Unsetenv("GARITRACK_TIMEZONE")
	os.Unsetenv("GARITRACK_WORKERS")
	os.Unsetenv("GARITRACK_RPS")
	os.Unsetenv("NATS_URL")
	os.Unsetenv("GARITRACK_NATS_SUBJECT")
	os.Unsetenv("PUSHGATEWAY_URL")
	os.Unsetenv("LOG_LEVEL")
}
