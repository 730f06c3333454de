// Package app wires the action registry, behavior catalog, manifests
// and dispatcher into one explicitly constructed instance with a
// defined setup and teardown. There is no ambient global: callers hold
// the App and pass its pieces on.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/vk/actionhub/internal/action"
	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/catalog"
	"github.com/vk/actionhub/internal/ctxlog"
	"github.com/vk/actionhub/internal/dispatch"
	"github.com/vk/actionhub/internal/manifest"
	"github.com/vk/actionhub/internal/metrics"
	"github.com/vk/actionhub/internal/registry"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	outW   io.Writer
	config *Config
	logger *slog.Logger

	catalog     *catalog.Catalog
	registry    *registry.Registry
	definitions *manifest.Set
	dispatcher  *dispatch.Dispatcher
	prom        *prometheus.Registry
}

// New constructs an App with its own isolated logger. Setup must be
// called before dispatching.
func New(outW io.Writer, cfg *Config) *App {
	return &App{
		outW:     outW,
		config:   cfg,
		logger:   newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		catalog:  catalog.New(),
		registry: registry.New(),
	}
}

// Setup registers the given modules (coreModules when none are passed),
// loads and validates the manifests, populates the registry with one
// action per declared manifest, and builds the dispatcher.
func (a *App) Setup(ctx context.Context, mods ...catalog.Module) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App setup started.")

	if len(mods) == 0 {
		mods = coreModules
	}
	for _, mod := range mods {
		mod.Register(a.catalog)
	}
	a.logger.Debug("All Go modules registered.", "count", len(mods))

	set, err := manifest.Load(ctx, a.config.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifests: %w", err)
	}
	if err := manifest.Validate(ctx, set, a.catalog); err != nil {
		return err
	}
	a.definitions = set

	for _, name := range set.Names() {
		entry, _ := a.catalog.Lookup(name)
		act, err := buildAction(entry)
		if err != nil {
			return fmt.Errorf("action %q: %w", name, err)
		}
		if err := a.registry.Create(name, act); err != nil {
			return err
		}
	}
	a.logger.Debug("Registry populated.", "keys", a.registry.Keys())

	opts := []dispatch.Option{dispatch.WithFieldChecker(set)}
	if a.config.DispatchMode == "nonblocking" {
		opts = append(opts, dispatch.WithMode(dispatch.NonBlocking))
	}
	if a.config.RateLimit > 0 {
		opts = append(opts, dispatch.WithLimiter(rate.NewLimiter(rate.Limit(a.config.RateLimit), a.config.RateBurst)))
	}
	if a.config.MetricsEnabled {
		a.prom = prometheus.NewRegistry()
		opts = append(opts, dispatch.WithMetrics(metrics.NewDispatch(a.prom)))
	}
	a.dispatcher = dispatch.New(a.registry, opts...)

	a.logger.Info("App setup finished.", "actions", a.registry.Len())
	return nil
}

// Dispatch resolves and invokes an action through the app's dispatcher.
func (a *App) Dispatch(ctx context.Context, key string, fields behavior.Fields) (any, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return a.dispatcher.Dispatch(ctx, key, fields)
}

// Registry returns the application's registry. This is primarily for
// testing and embedding.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Definitions returns the loaded manifest set.
func (a *App) Definitions() *manifest.Set {
	return a.definitions
}

// Metrics returns the Prometheus gatherer, or nil when metrics are
// disabled.
func (a *App) Metrics() prometheus.Gatherer {
	return a.prom
}

// Teardown clears every registry entry and resets the behavior
// catalog. The App must be Setup again before further dispatching.
func (a *App) Teardown() {
	a.registry.Clear()
	a.catalog = catalog.New()
	a.definitions = nil
	a.logger.Debug("App teardown finished.")
}

// buildAction wraps a catalog entry in the action variant matching its
// kind tag.
func buildAction(entry *catalog.Entry) (any, error) {
	switch fn := entry.Fn.(type) {
	case behavior.Sync:
		if entry.Kind != behavior.KindSync {
			return nil, fmt.Errorf("registered kind is %s but function is behavior.Sync", entry.Kind)
		}
		return action.New(fn), nil
	case behavior.Async:
		if entry.Kind != behavior.KindAsync {
			return nil, fmt.Errorf("registered kind is %s but function is behavior.Async", entry.Kind)
		}
		return action.NewAsync(fn), nil
	default:
		return nil, fmt.Errorf("registered function has type %T, want behavior.Sync or behavior.Async", entry.Fn)
	}
}
