package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g.
// CARSHOP_SERVICES_VEHICLE_URL for services.vehicle_url.
const EnvPrefix = "CARSHOP"

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Services ServicesConfig `mapstructure:"services"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// ServicesConfig points at the upstream GraphQL services.
type ServicesConfig struct {
	VehicleURL  string        `mapstructure:"vehicle_url" validate:"required,url"`
	CustomerURL string        `mapstructure:"customer_url" validate:"required,url"`
	OrderURL    string        `mapstructure:"order_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type SessionConfig struct {
	Backend    string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type PricingConfig struct {
	TaxRate  float64 `mapstructure:"tax_rate" validate:"gte=0,lt=1"`
	Shipping float64 `mapstructure:"shipping" validate:"gte=0"`
	// Rates maps a duration in months to an annual percent rate. Keys are
	// strings because config keys are.
	Rates map[string]float64 `mapstructure:"rates" validate:"required,min=1"`
}

type AdminConfig struct {
	// PasswordHash is an encoded argon2id hash. An empty hash disables the admin routes.
	PasswordHash string `mapstructure:"password_hash"`
}

// SetDefaults registers every key so that environment overrides are seen by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("services.vehicle_url", "http://localhost:4001/graphql")
	v.SetDefault("services.customer_url", "http://localhost:4002/graphql")
	v.SetDefault("services.order_url", "http://localhost:4003/graphql")
	v.SetDefault("services.timeout", "10s")

	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "carshop_session")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("pricing.tax_rate", 0.03)
	v.SetDefault("pricing.shipping", 0)
	v.SetDefault("pricing.rates", map[string]float64{"48": 3.9, "60": 4.2, "72": 4.5})

	v.SetDefault("admin.password_hash", "")
}

// Load reads configuration from v: defaults, an optional config file named
// by the "config" key, then CARSHOP_* environment variables.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Session.Backend == SessionBackendRedis && c.Redis.URL == "" && c.Redis.Address == "" {
		return errors.New("invalid config: redis.url or redis.address is required for the redis session backend")
	}
	if _, err := c.Pricing.RateTable(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RateTable converts the configured rates to month-keyed values.
func (p PricingConfig) RateTable() (map[int]float64, error) {
	rates := make(map[int]float64, len(p.Rates))
	for key, rate := range p.Rates {
		months, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("pricing.rates: duration %q is not a number of months", key)
		}
		rates[months] = rate
	}
	return rates, nil
}
