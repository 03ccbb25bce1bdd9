package config

import (
	"fmt"

	"github.com/marmos91/datavault/pkg/dataops"
	"github.com/marmos91/datavault/pkg/grid"
	"github.com/marmos91/datavault/pkg/grid/memory"
	"github.com/marmos91/datavault/pkg/metrics"
	promops "github.com/marmos91/datavault/pkg/metrics/prometheus"
)

// CreateStore builds the storage facade from configuration.
//
// Only the in-memory grid is built in-process; it carries the configured
// cart endpoint so issued credentials point at the grid service.
func CreateStore(cfg *Config) (grid.Store, error) {
	if cfg.Service.Realm == "" {
		return nil, fmt.Errorf("service.realm is required")
	}

	store := memory.New()
	store.SetCartEndpoint(cfg.Grid.Host, cfg.Grid.Port)
	return store, nil
}

// CreateService wires the data operation layer over the given facade,
// attaching Prometheus metrics when metrics are enabled.
func CreateService(cfg *Config, store grid.Store) *dataops.Service {
	var opts []dataops.Option
	if cfg.Metrics.Enabled && metrics.IsEnabled() {
		opts = append(opts, dataops.WithMetrics(promops.NewOpsMetrics()))
	}

	return dataops.New(store, dataops.Config{
		Realm:       cfg.Service.Realm,
		ServiceUser: cfg.Service.User,
	}, opts...)
}
