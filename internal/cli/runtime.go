package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielpatrickdp/valuesnet/internal/config"
	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/service"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

// runtime is the wired service graph behind every command that touches the database.
type runtime struct {
	store    *snapshot.Store
	svc      *service.Service
	registry *prometheus.Registry
}

// openRuntime opens the database and wires the service. A cache size of 0 disables the report cache.
func openRuntime(cfg config.Config, logger *slog.Logger) (*runtime, error) {
	store, err := snapshot.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	ws, err := warnstate.NewStore(store.DB())
	if err != nil {
		store.Close()
		return nil, err
	}

	var cache *engine.Cache
	if cfg.Cache.Size > 0 {
		cache, err = engine.NewCache(cfg.Cache.Size)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.New(service.Deps{
		Snapshots:      store,
		Warnings:       ws,
		Engine:         engine.New(engine.Config{Ranking: cfg.Analysis}, cache),
		Logger:         logger,
		Metrics:        service.NewMetrics(reg),
		SnoozeDuration: cfg.Server.SnoozeDuration,
	})
	return &runtime{store: store, svc: svc, registry: reg}, nil
}

func (r *runtime) close() error {
	return r.store.Close()
}
