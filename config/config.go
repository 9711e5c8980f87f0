package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath          = "."
	defaultConfigName    = "config"
	defaultVerifyTimeout = 5 * time.Second

	// EnvPrefix scopes the environment variables that override file values.
	EnvPrefix = "CREDCHECK_"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongoDB  = "mongodb"
	StoreDriverBlob     = "blob"
)

// Hash algorithms used for newly created hashes.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Store struct {
		Driver string `json:"driver" yaml:"driver" validate:"required,oneof=postgres mongodb blob"`
		// AutoMigrate creates the credential table or indexes on start.
		AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
	} `json:"store" yaml:"store"`

	// Lookup declares which credential fields an identifier may resolve against.
	Lookup struct {
		Fields []string `json:"fields" yaml:"fields" validate:"dive,oneof=username email"`
	} `json:"lookup" yaml:"lookup"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Mongo *MongoConfig `json:"mongo" yaml:"mongo"`

	Blob *BlobConfig `json:"blob" yaml:"blob"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	Verify *VerifyConfig `json:"verify" yaml:"verify"`

	// Bootstrap describes the initial admin credential. The password is injected
	// at deployment time (CREDCHECK_BOOTSTRAP_PASSWORD) and never shipped in files.
	Bootstrap *BootstrapConfig `json:"bootstrap" yaml:"bootstrap"`
}

// MongoConfig defines the MongoDB credential store connection
type MongoConfig struct {
	URI            string        `json:"uri" yaml:"uri" validate:"required"`
	Database       string        `json:"database" yaml:"database" validate:"required"`
	Collection     string        `json:"collection" yaml:"collection" validate:"required"`
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"`
}

// BlobConfig defines a credential snapshot stored in a gocloud.dev bucket
type BlobConfig struct {
	// Bucket URL, e.g. file:///var/lib/credcheck, s3://bucket?region=eu-west-1, mem://
	URL string `json:"url" yaml:"url" validate:"required"`
	// Object key of the JSON snapshot inside the bucket
	Key string `json:"key" yaml:"key" validate:"required"`
}

// AuthConfig defines hashing parameters for newly created hashes
type AuthConfig struct {
	Algorithm  string       `json:"algorithm" yaml:"algorithm" validate:"omitempty,oneof=bcrypt argon2id"`
	BcryptCost int          `json:"bcryptCost" yaml:"bcryptCost" validate:"omitempty,min=4,max=31"`
	Argon2     Argon2Config `json:"argon2" yaml:"argon2"`
}

// Argon2Config captures tunable parameters for Argon2id
type Argon2Config struct {
	Memory      uint32 `json:"memory" yaml:"memory"`
	Iterations  uint32 `json:"iterations" yaml:"iterations"`
	Parallelism uint8  `json:"parallelism" yaml:"parallelism"`
	SaltLength  uint32 `json:"saltLength" yaml:"saltLength"`
	KeyLength   uint32 `json:"keyLength" yaml:"keyLength"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength        int  `json:"minLength" yaml:"minLength" validate:"min=0"`
	RequireUppercase bool `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool `json:"requireSpecial" yaml:"requireSpecial"`
	MaxLength        int  `json:"maxLength" yaml:"maxLength" validate:"min=0"`
}

// VerifyConfig bounds how long a caller waits for a single check
type VerifyConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// BootstrapConfig defines the injected initial credential
type BootstrapConfig struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email" validate:"omitempty,email"`
	Password string `json:"password" yaml:"password"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Explicit paths win over the working directory.
	searchPaths := make([]string, 0, len(configPath)+1)
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			if filepath.IsAbs(path) {
				searchPaths = append(searchPaths, path)

				continue
			}
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}
	searchPaths = append(searchPaths, defaultPath)

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// CREDCHECK_BOOTSTRAP_PASSWORD -> bootstrap.password, aligned with existing YAML keys.
			key := canonicalizeEnvKey(strings.TrimPrefix(k, EnvPrefix), existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads config.yaml from the default search paths.
func New() (*Config, error) {
	return Load()
}

// Load reads config.yaml from dirs (plus the defaults), applies defaults and validates the result.
func Load(dirs ...string) (*Config, error) {
	paths := append(append([]string{}, dirs...), "config", "../config", "../../config")
	cfg, err := LoadWithEnv[Config](defaultConfigName, paths...)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	// Build replicas from environment variables (CREDCHECK_POSTGRES_REPLICAS_0_HOST, ...)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = AlgorithmBcrypt
	}
	if c.Verify == nil {
		c.Verify = &VerifyConfig{}
	}
	if c.Verify.Timeout <= 0 {
		c.Verify.Timeout = defaultVerifyTimeout
	}
	if c.Mongo != nil && c.Mongo.ConnectTimeout <= 0 {
		c.Mongo.ConnectTimeout = defaultVerifyTimeout
	}
}

// Validate checks struct tags and the cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres == nil {
			return errors.New("invalid configuration: postgres section is required for store.driver=postgres")
		}
	case StoreDriverMongoDB:
		if c.Mongo == nil {
			return errors.New("invalid configuration: mongo section is required for store.driver=mongodb")
		}
	case StoreDriverBlob:
		if c.Blob == nil {
			return errors.New("invalid configuration: blob section is required for store.driver=blob")
		}
	}

	if c.PasswordStrength != nil && c.PasswordStrength.MaxLength > 0 &&
		c.PasswordStrength.MinLength > c.PasswordStrength.MaxLength {
		return errors.New("invalid configuration: passwordStrength.minLength exceeds maxLength")
	}

	return nil
}

// HasBootstrap reports whether an initial credential was injected.
func (c *Config) HasBootstrap() bool {
	return c.Bootstrap != nil && c.Bootstrap.Password != "" &&
		(c.Bootstrap.Username != "" || c.Bootstrap.Email != "")
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: CREDCHECK_POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := EnvPrefix + "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
