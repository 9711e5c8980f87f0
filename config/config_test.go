package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
env:
  env: test
  serviceName: credcheck
  log:
    level: debug
store:
  driver: blob
lookup:
  fields: [username, email]
blob:
  url: mem://
  key: credentials.json
auth:
  bcryptCost: 4
passwordStrength:
  minLength: 12
  maxLength: 72
bootstrap:
  username: admin
  email: admin@example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	return dir
}

func TestLoad_FileWithDefaults(t *testing.T) {
	dir := writeConfig(t, testConfigYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverBlob, cfg.Store.Driver)
	assert.Equal(t, []string{"username", "email"}, cfg.Lookup.Fields)
	assert.Equal(t, "mem://", cfg.Blob.URL)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, AlgorithmBcrypt, cfg.Auth.Algorithm)
	assert.Equal(t, defaultVerifyTimeout, cfg.Verify.Timeout)
	assert.Equal(t, 12, cfg.PasswordStrength.MinLength)
	assert.False(t, cfg.HasBootstrap(), "bootstrap password must come from the environment")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := writeConfig(t, testConfigYAML)
	t.Setenv("CREDCHECK_BOOTSTRAP_PASSWORD", "injected-at-deploy")
	t.Setenv("CREDCHECK_VERIFY_TIMEOUT", "750ms")
	t.Setenv("CREDCHECK_LOOKUP_FIELDS", "email")
	t.Setenv("CREDCHECK_PASSWORDSTRENGTH_MINLENGTH", "16")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.HasBootstrap())
	assert.Equal(t, "injected-at-deploy", cfg.Bootstrap.Password)
	assert.Equal(t, 750*time.Millisecond, cfg.Verify.Timeout)
	assert.Equal(t, []string{"email"}, cfg.Lookup.Fields)
	assert.Equal(t, 16, cfg.PasswordStrength.MinLength)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml not found")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "redis" },
			wantErr: "Driver",
		},
		{
			name:    "missing mongo section",
			mutate:  func(c *Config) { c.Store.Driver = StoreDriverMongoDB },
			wantErr: "mongo section is required",
		},
		{
			name:    "unknown lookup field",
			mutate:  func(c *Config) { c.Lookup.Fields = []string{"phone"} },
			wantErr: "Fields",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 40 },
			wantErr: "BcryptCost",
		},
		{
			name: "policy bounds inverted",
			mutate: func(c *Config) {
				c.PasswordStrength = &PasswordStrengthConfig{MinLength: 20, MaxLength: 10}
			},
			wantErr: "minLength exceeds maxLength",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBlobConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, validBlobConfig().Validate())
}

func validBlobConfig() *Config {
	cfg := &Config{
		Blob: &BlobConfig{URL: "mem://", Key: "credentials.json"},
		Auth: &AuthConfig{Algorithm: AlgorithmBcrypt, BcryptCost: 10},
	}
	cfg.Store.Driver = StoreDriverBlob

	return cfg
}
