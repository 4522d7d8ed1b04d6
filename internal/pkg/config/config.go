package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	App        AppConfig        `mapstructure:"app"`
	Federation FederationConfig `mapstructure:"federation"`
	Site       SiteConfig       `mapstructure:"site"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // hours
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
}

// FederationConfig controls how this instance talks to remote peers.
type FederationConfig struct {
	// Domain is the public hostname of this instance, used to mint
	// activity IDs for outbound payloads.
	Domain string `mapstructure:"domain"`
	// DereferenceTimeout bounds a single remote actor/community fetch.
	// Resolution over an addressing list applies it per candidate.
	DereferenceTimeout time.Duration `mapstructure:"dereference_timeout"`
	// ActorCacheTTL is how long dereferenced remote objects stay cached.
	ActorCacheTTL time.Duration `mapstructure:"actor_cache_ttl"`
	// DeliveryWorkers is the number of goroutines draining the outbound queue.
	DeliveryWorkers int `mapstructure:"delivery_workers"`
	// DeliveryQueueSize is the buffer of the outbound hand-off channel.
	DeliveryQueueSize int `mapstructure:"delivery_queue_size"`
}

// SiteConfig holds instance-level policy knobs. It is passed explicitly
// into the services that consult it rather than read ambiently.
type SiteConfig struct {
	EnableDownvotes bool `mapstructure:"enable_downvotes"`
}

var GlobalConfig Config

// Validate checks the parts of the configuration that have no safe default.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Federation.Domain == "" {
		return errors.New("federation.domain is required to build activity IDs")
	}
	if c.Federation.DereferenceTimeout <= 0 {
		return errors.New("federation.dereference_timeout must be positive")
	}

	return nil
}

// LoadConfig reads the environment-specific YAML file and environment
// variable overrides into GlobalConfig.
func LoadConfig() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.name", "fedforum")
	viper.SetDefault("app.version", "dev")
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("federation.dereference_timeout", "10s")
	viper.SetDefault("federation.actor_cache_ttl", "1h")
	viper.SetDefault("federation.delivery_workers", 4)
	viper.SetDefault("federation.delivery_queue_size", 1024)
	viper.SetDefault("site.enable_downvotes", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// Manual overrides for the settings that most often come from the
	// environment in containerized deployments.
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}
	if domain := os.Getenv("FEDERATION_DOMAIN"); domain != "" {
		GlobalConfig.Federation.Domain = domain
	}

	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
