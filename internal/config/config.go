package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Store     StoreConfig     `mapstructure:"store"`
	Public    PublicConfig    `mapstructure:"public"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	RefreshSecret      string `mapstructure:"refresh_secret"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// StoreConfig selects the persistence driver: postgres for deployments,
// memory for single-node and local runs.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// PublicConfig holds the externally visible origin used to build the
// emergency links embedded in QR codes.
type PublicConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// envOverrides are the deploy-time secrets that should never live in
// the config file.
type envOverrides struct {
	DBPassword    string `envconfig:"DB_PASSWORD"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	RefreshSecret string `envconfig:"JWT_REFRESH_SECRET"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("ice", &env); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}
	applyOverrides(&config, env)

	if config.Store.Driver == "" {
		config.Store.Driver = StoreDriverPostgres
	}
	if config.Store.Driver != StoreDriverPostgres && config.Store.Driver != StoreDriverMemory {
		return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	return &config, nil
}

func applyOverrides(cfg *Config, env envOverrides) {
	if env.DBPassword != "" {
		cfg.Database.Password = env.DBPassword
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.RefreshSecret != "" {
		cfg.JWT.RefreshSecret = env.RefreshSecret
	}
	if env.RedisAddr != "" {
		cfg.Redis.Addr = env.RedisAddr
	}
	if env.SMTPPassword != "" {
		cfg.SMTP.Password = env.SMTPPassword
	}
	if env.PublicBaseURL != "" {
		cfg.Public.BaseURL = env.PublicBaseURL
	}
}
