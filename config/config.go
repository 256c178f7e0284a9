package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// KeyConfig points at one PEM-encoded RSA key on disk. PrivatePath is
// only used for the current signing key.
type KeyConfig struct {
	Kid         string `mapstructure:"kid"`
	PrivatePath string `mapstructure:"private_path"`
	PublicPath  string `mapstructure:"public_path"`
}

// ServerConfig holds all configuration for the server. Token parameters
// (issuer, audience, ttl, skew) are passed from here into the service
// constructors; nothing reads them from ambient state.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"http_port"`
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDBName string `mapstructure:"mongo_db_name"`
	// RedisAddr is optional; when empty the revocation store falls back to
	// MongoDB.
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
	LogLevel    string `mapstructure:"log_level"`
	LogPretty   bool   `mapstructure:"log_pretty"`

	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	ClockSkew       time.Duration `mapstructure:"clock_skew"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	JWKSCacheTTL    time.Duration `mapstructure:"jwks_cache_ttl"`

	CurrentKey   KeyConfig   `mapstructure:"current_key"`
	PreviousKeys []KeyConfig `mapstructure:"previous_keys"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/authcore/")
	v.AddConfigPath("$HOME/.authcore")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http_port", "8080")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017/authcore_dev")
	v.SetDefault("mongo_db_name", "authcore_dev")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_prefix", "authcore")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
	v.SetDefault("issuer", "https://auth.pilab.hu")
	v.SetDefault("audience", "authcore-api")
	v.SetDefault("access_token_ttl", "15m")
	v.SetDefault("clock_skew", "30s")
	v.SetDefault("refresh_token_ttl", "720h") // 30 days
	v.SetDefault("jwks_cache_ttl", "300s")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

// RevocationRetention is how long a revoked jti has to stay queryable: any
// longer and the token is past its natural expiry anyway.
func (c *ServerConfig) RevocationRetention() time.Duration {
	return c.AccessTokenTTL + 2*c.ClockSkew
}
