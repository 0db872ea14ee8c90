package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Identity provider
	IdentityBaseURL string `envconfig:"IDENTITY_BASE_URL"`
	IdentityAnonKey string `envconfig:"IDENTITY_ANON_KEY"`

	// Data platform. Group identifiers have changed across backend revisions,
	// so the logical-to-physical mapping is configuration, not code.
	PlatformBaseURL  string            `envconfig:"PLATFORM_BASE_URL"`
	PlatformBasePath string            `envconfig:"PLATFORM_BASE_PATH" default:"/x2"`
	PlatformGroups   map[string]string `envconfig:"PLATFORM_GROUPS" default:"auth:auth1,users:E1Skvg8o,quotes:quotes,shipments:shipments,bookings:bookings,containers:stg,documents:documents,agents:E1Skvg8o,chat:AKAonta6,tracking:tracking,rates_tai:tai,rates_exla:exla,rates_echo:echo,rates_chr:chr,rates_tql:tql"`
	PlatformRPS      float64           `envconfig:"PLATFORM_RPS" default:"10"`
	PlatformBurst    int               `envconfig:"PLATFORM_BURST" default:"20"`

	// Session
	TokenStorePath string `envconfig:"TOKEN_STORE_PATH"`

	// Rate shopping
	DefaultCarriers         []string `envconfig:"DEFAULT_CARRIERS" default:"TAI,EXLA,ECHO,CHR,TQL"`
	RecommendMaxTransitDays int      `envconfig:"RECOMMEND_MAX_TRANSIT_DAYS" default:"4"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"freightflow-gateway"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.StringSlice("rateshop.default_carriers", c.DefaultCarriers),
	}
}
