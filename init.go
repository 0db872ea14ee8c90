package main

import (
	"context"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/freightflow/gateway/internal/config"
	"github.com/freightflow/gateway/internal/dataplane"
	"github.com/freightflow/gateway/internal/identity"
	"github.com/freightflow/gateway/internal/session"
	"github.com/freightflow/gateway/internal/telemetry"
	"github.com/freightflow/gateway/pkg/rateshop"
	"github.com/freightflow/gateway/pkg/rateshop/platform"
)

// carrierNames maps default carrier codes to display names used when the
// platform response omits one.
var carrierNames = map[string]string{
	"TAI":  "TAI Freight",
	"EXLA": "Estes Express",
	"ECHO": "Echo Global",
	"CHR":  "CH Robinson",
	"TQL":  "TQL",
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initStore(cfg *config.Config) *session.Store {
	return session.NewStore(cfg.TokenStorePath)
}

func initDataplane(cfg *config.Config, store *session.Store, logger *otelzap.Logger) *dataplane.Client {
	return dataplane.New(dataplane.Config{
		BaseURL:           cfg.PlatformBaseURL,
		BasePath:          cfg.PlatformBasePath,
		Groups:            cfg.PlatformGroups,
		RequestsPerSecond: cfg.PlatformRPS,
		Burst:             cfg.PlatformBurst,
	}, store, logger)
}

func initBridge(cfg *config.Config, data *dataplane.Client, store *session.Store, logger *otelzap.Logger) *session.Bridge {
	provider := identity.NewClient(identity.Config{
		BaseURL: cfg.IdentityBaseURL,
		AnonKey: cfg.IdentityAnonKey,
	}, logger)
	return session.NewBridge(provider, data, store, logger)
}

// initProviderRegistry registers one platform-backed provider per configured
// carrier. Each carrier is routed through its own endpoint group, keyed
// "rates_<code>" in the group mapping.
func initProviderRegistry(cfg *config.Config, data *dataplane.Client, logger *otelzap.Logger) *rateshop.Registry {
	registry := rateshop.NewRegistry(cfg.DefaultCarriers...)

	for _, code := range cfg.DefaultCarriers {
		name := carrierNames[code]
		if name == "" {
			name = code
		}
		registry.Register(platform.New(platform.Config{
			Code:  code,
			Name:  name,
			Group: "rates_" + strings.ToLower(code),
		}, data, logger))
	}

	return registry
}
