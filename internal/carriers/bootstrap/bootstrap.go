// Package bootstrap builds the carrier manager from configuration for the
// api and cron-worker binaries.
package bootstrap

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/angelmondragon/dzorders-backend/internal/carriers/aramex"
	"github.com/angelmondragon/dzorders-backend/internal/carriers/yalidine"
	"github.com/angelmondragon/dzorders-backend/pkg/config"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/metrics"
)

// Manager registers every carrier whose credentials are configured.
func Manager(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*carriers.Manager, error) {
	registry := carriers.NewRegistry()

	if cfg.Yalidine.Enabled() {
		client, err := yalidine.NewClient(cfg.Yalidine.APIKey, yalidine.WithBaseURL(cfg.Yalidine.BaseURL))
		if err != nil {
			return nil, err
		}
		registry.Register(client.Name(), client)
	}
	if cfg.Aramex.Enabled() {
		client, err := aramex.NewClient(aramex.Credentials{
			UserName:           cfg.Aramex.UserName,
			Password:           cfg.Aramex.Password,
			AccountNumber:      cfg.Aramex.AccountNumber,
			AccountPin:         cfg.Aramex.AccountPin,
			AccountEntity:      cfg.Aramex.AccountEntity,
			AccountCountryCode: cfg.Aramex.AccountCountryCode,
		}, aramex.WithBaseURL(cfg.Aramex.BaseURL))
		if err != nil {
			return nil, err
		}
		registry.Register(client.Name(), client)
	}

	if len(registry.Names()) == 0 && logg != nil {
		logg.Warn(context.Background(), "no delivery carrier configured")
	}
	return carriers.NewManager(registry, metrics.NewCarrierMetrics(reg)), nil
}
