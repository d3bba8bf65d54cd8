package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Directions DirectionsConfig `mapstructure:"directions"`
	Elevation  ElevationConfig  `mapstructure:"elevation"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DirectionsConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	AccessToken string  `mapstructure:"access_token"`
	Profile     string  `mapstructure:"profile"`
	WalkwayBias float64 `mapstructure:"walkway_bias"`
	TimeoutSecs int     `mapstructure:"timeout"`
	CacheTTL    int     `mapstructure:"cache_ttl"`
}

type ElevationConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout"`
	Enabled     bool   `mapstructure:"enabled"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("directions.base_url", "https://api.mapbox.com")
	v.SetDefault("directions.access_token", "")
	v.SetDefault("directions.profile", "walking")
	v.SetDefault("directions.walkway_bias", 0.2)
	v.SetDefault("directions.timeout", 10)
	v.SetDefault("directions.cache_ttl", 3600)
	v.SetDefault("elevation.base_url", "https://api.open-elevation.com")
	v.SetDefault("elevation.timeout", 10)
	v.SetDefault("elevation.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ROUTESKETCH_DIRECTIONS_ACCESS_TOKEN → directions.access_token
	v.SetEnvPrefix("ROUTESKETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Directions.BaseURL == "" {
		errs = append(errs, "directions.base_url is required")
	}
	if c.Directions.Profile == "" {
		errs = append(errs, "directions.profile is required")
	}
	if c.Directions.WalkwayBias < -1 || c.Directions.WalkwayBias > 1 {
		errs = append(errs, fmt.Sprintf("directions.walkway_bias must be in [-1, 1], got %f", c.Directions.WalkwayBias))
	}
	if c.Directions.TimeoutSecs <= 0 {
		errs = append(errs, "directions.timeout must be positive")
	}
	if c.Elevation.Enabled && c.Elevation.BaseURL == "" {
		errs = append(errs, "elevation.base_url is required when elevation is enabled")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when caching is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
