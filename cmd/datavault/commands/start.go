package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/datavault/internal/logger"
	"github.com/marmos91/datavault/internal/telemetry"
	"github.com/marmos91/datavault/internal/vpath"
	"github.com/marmos91/datavault/pkg/config"
	"github.com/marmos91/datavault/pkg/grid"
	"github.com/marmos91/datavault/pkg/grid/memory"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the DataVault service",
	Long: `Start the DataVault service in the foreground.

The service connects to the configured storage grid, bootstraps the realm
skeleton if needed, and serves metrics when enabled. It runs until it
receives SIGINT or SIGTERM, then shuts down gracefully.

Examples:
  # Start with default config
  datavault start

  # Start with custom config file
  datavault start --config /etc/datavault/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	cfg, err := config.MustLoad(configFile)
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("starting datavault",
		slog.String("version", Version),
		slog.String("config", getConfigSource(configFile)),
		logger.Realm(cfg.Service.Realm))

	ctx := context.Background()

	// Initialize distributed tracing
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "datavault",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", logger.Err(err))
		}
	}()

	// Metrics endpoint
	metricsResult := config.InitializeMetrics(cfg)
	if metricsResult.Server != nil {
		go func() {
			logger.Info("metrics server listening", slog.String("addr", metricsResult.Server.Addr))
			if err := metricsResult.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logger.Err(err))
			}
		}()
	}

	store, err := config.CreateStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to create grid store: %w", err)
	}

	if err := bootstrapRealm(ctx, cfg, store); err != nil {
		return fmt.Errorf("failed to bootstrap realm: %w", err)
	}

	service := config.CreateService(cfg, store)
	logger.Info("data operation service ready",
		logger.Realm(cfg.Service.Realm),
		logger.Path(service.RealmRoot()))

	// Live config reload keeps the log level in sync with the file.
	if configFile != "" || config.DefaultConfigExists() {
		path := configFile
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		stopWatch, err := config.Watch(path, func(updated *config.Config) {
			logger.SetLevel(updated.Logging.Level)
		})
		if err != nil {
			logger.Warn("config watch unavailable", logger.Err(err))
		} else {
			defer func() {
				if err := stopWatch(); err != nil {
					logger.Warn("config watch shutdown failed", logger.Err(err))
				}
			}()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if metricsResult.Server != nil {
		if err := metricsResult.Server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", logger.Err(err))
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// bootstrapRealm ensures the realm skeleton exists on the grid and that the
// service account is registered with the in-memory backend.
func bootstrapRealm(ctx context.Context, cfg *config.Config, store grid.Store) error {
	if mem, ok := store.(*memory.Store); ok && cfg.Service.User != "" {
		mem.AddUser(cfg.Service.User)
	}

	realmRoot := vpath.Join(vpath.Separator, cfg.Service.Realm)
	homeRoot := vpath.Join(realmRoot, "home")

	for _, dir := range []string{realmRoot, homeRoot} {
		if _, err := store.Stat(ctx, dir); err == nil {
			continue
		}
		if err := store.Mkdir(ctx, dir); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		if cfg.Service.User != "" {
			perm := grid.Permission{Read: true, Write: true, Own: true}
			if err := store.SetPermission(ctx, cfg.Service.User, dir, perm, false); err != nil {
				return fmt.Errorf("granting service account access to %s: %w", dir, err)
			}
		}
		logger.Info("created realm directory", logger.Path(dir))
	}

	return nil
}
