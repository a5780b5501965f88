package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"devicemap/internal/asset"
	"devicemap/internal/config"
	"devicemap/internal/observability"
	"devicemap/internal/repository/sqlite"
	"devicemap/internal/service"
)

// app is the explicit wiring shared by the commands
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	repo    *sqlite.Repository
	assets  *asset.Store
	events  *service.EventBus
	metrics *observability.Collector
	svc     *service.Services
}

// openApp opens the database and builds the services. Metrics are
// registered on a private registry when enabled.
func openApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	var metrics *observability.Collector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err = observability.NewCollector(reg)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	assets := asset.NewStore(asset.Config{
		Dir:       cfg.Assets.Dir,
		URLPrefix: cfg.Assets.URLPrefix,
		Collision: cfg.CollisionPolicy(),
	}, logger)

	events := service.NewEventBus()
	svc := service.New(service.Deps{
		Repository:   repo,
		Assets:       assets,
		Events:       events,
		Metrics:      metrics,
		Logger:       logger,
		DeletePolicy: cfg.DeletePolicy(),
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		assets:  assets,
		events:  events,
		metrics: metrics,
		svc:     svc,
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
