// Package config loads canopy settings from a config file, CANOPY_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/editing"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables (CANOPY_SERVER_PORT, ...).
const EnvPrefix = "CANOPY"

// Store backends for editing data.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreFile   = "file"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Editing EditingConfig `mapstructure:"editing"`
	Redis   RedisConfig   `mapstructure:"redis"`
	File    FileConfig    `mapstructure:"file"`
	Props   PropsConfig   `mapstructure:"props"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type EditingConfig struct {
	Secret   string `mapstructure:"secret"`
	APIRoute string `mapstructure:"api_route"`
	Store    string `mapstructure:"store"`
	// EncryptionKey is a base64 AES-256 key. When set, snapshots are sealed at rest.
	EncryptionKey   string   `mapstructure:"encryption_key"`
	FallbackKeys    []string `mapstructure:"fallback_keys"`
	MaskContextKeys []string `mapstructure:"mask_context_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (e EditingConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if e.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(e.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("editing.encryption_key: %w", err)
	}
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("editing.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type FileConfig struct {
	Dir string        `mapstructure:"dir"`
	TTL time.Duration `mapstructure:"ttl"`
}

type PropsConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("editing.api_route", editing.DefaultAPIRoute)
	v.SetDefault("editing.store", StoreMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "canopy:editing:")
	v.SetDefault("redis.ttl", "1h")
	v.SetDefault("file.dir", "")
	v.SetDefault("file.ttl", "1h")
	v.SetDefault("props.max_concurrency", 0)
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path may be empty, in which case an optional
// canopy.yaml in the working directory is used. flagKeys maps flag names to config
// keys; flags that were set on the command line override everything else.
func Load(path string, flags *pflag.FlagSet, flagKeys map[string]string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The editing host and the preview renderer share this variable.
	if err := v.BindEnv("editing.secret", EnvPrefix+"_EDITING_SECRET", editing.SecretEnv); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("canopy")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for flagName, key := range flagKeys {
			f := flags.Lookup(flagName)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !strings.Contains(c.Editing.APIRoute, "[key]") {
		result = multierror.Append(result, fmt.Errorf("editing.api_route %q: %w", c.Editing.APIRoute, editing.ErrInvalidAPIRoute))
	}
	switch c.Editing.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			result = multierror.Append(result, errors.New("redis.addr is required for the redis store"))
		}
		if c.Redis.TTL < 0 {
			result = multierror.Append(result, errors.New("redis.ttl must not be negative"))
		}
	case StoreFile:
		if c.File.TTL < 0 {
			result = multierror.Append(result, errors.New("file.ttl must not be negative"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("editing.store %q must be one of memory, redis, file", c.Editing.Store))
	}
	if _, _, err := c.Editing.Keys(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Props.MaxConcurrency < 0 {
		result = multierror.Append(result, errors.New("props.max_concurrency must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}

	return result.ErrorOrNil()
}

// ValidateServe additionally requires what serving the editing data API needs.
func (c *Config) ValidateServe() error {
	var result *multierror.Error
	if err := c.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Editing.Secret == "" {
		result = multierror.Append(result, fmt.Errorf("editing.secret is required (set %s_EDITING_SECRET or %s): %w", EnvPrefix, editing.SecretEnv, editing.ErrMissingSecret))
	}
	return result.ErrorOrNil()
}
