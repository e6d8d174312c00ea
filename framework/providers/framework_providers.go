package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/config"
	"github.com/km-arc/getall/framework/container"
	"github.com/km-arc/getall/framework/logging"
	"github.com/km-arc/getall/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config" → *config.Config (also reachable by type)
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(envFiles...)
	})
	app.Alias("config", container.KeyFor[*config.Config]())
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from "config".
//
// Bound abstracts:
//   - "logger" → *zap.Logger (also reachable by type)
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	app.Singleton("logger", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log)
	})
	app.Alias("logger", container.KeyFor[*zap.Logger]())
	return nil
}

// ── CapabilityServiceProvider ─────────────────────────────────────────────────

// CapabilityServiceProvider wires capability discovery into the container.
// Modules lists every compiled-in module; the configured manifest picks the
// module set out of them.
//
// Bound abstracts:
//   - "metrics"             → *prometheus.Registry
//   - "capability.metrics"  → *capability.Metrics
//   - "capability.scanner"  → *capability.Scanner (the process-wide discovery cache)
//   - "capability.resolver" → *capability.Resolver
//
// All are singletons and reachable by type.
type CapabilityServiceProvider struct {
	container.BaseProvider
	Modules []*capability.Module
}

func (p *CapabilityServiceProvider) Register(app *container.Container) error {
	for _, m := range p.Modules {
		if err := m.Register(app); err != nil {
			return err
		}
	}

	modules := p.Modules
	app.Singleton("metrics", func(c *container.Container) (any, error) {
		return prometheus.NewRegistry(), nil
	})
	app.Singleton("capability.metrics", func(c *container.Container) (any, error) {
		reg, err := container.Resolve[*prometheus.Registry](c, "metrics")
		if err != nil {
			return nil, err
		}
		return capability.NewMetrics(reg), nil
	})
	app.Singleton("capability.scanner", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		log, err := container.Resolve[*zap.Logger](c, "logger")
		if err != nil {
			return nil, err
		}
		metrics, err := container.Resolve[*capability.Metrics](c, "capability.metrics")
		if err != nil {
			return nil, err
		}
		selected, err := capability.Select(modules, cfg.Capability.Modules)
		if err != nil {
			return nil, err
		}
		return capability.NewScanner(selected,
			capability.WithLogger(log.Named("capability")),
			capability.WithMetrics(metrics),
		), nil
	})
	app.Singleton("capability.resolver", func(c *container.Container) (any, error) {
		scanner, err := container.Resolve[*capability.Scanner](c, "capability.scanner")
		if err != nil {
			return nil, err
		}
		return capability.NewResolver(c, scanner), nil
	})

	app.Alias("metrics", container.KeyFor[*prometheus.Registry]())
	app.Alias("capability.metrics", container.KeyFor[*capability.Metrics]())
	app.Alias("capability.scanner", container.KeyFor[*capability.Scanner]())
	app.Alias("capability.resolver", container.KeyFor[*capability.Resolver]())
	return nil
}

// Boot resolves the scanner so a bad manifest fails at startup.
func (p *CapabilityServiceProvider) Boot(app *container.Container) error {
	scanner, err := container.Resolve[*capability.Scanner](app, "capability.scanner")
	if err != nil {
		return err
	}
	log, err := container.Resolve[*zap.Logger](app, "logger")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(scanner.Modules()))
	for _, m := range scanner.Modules() {
		names = append(names, m.Name())
	}
	log.Info("capability modules loaded", zap.Strings("modules", names))
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the inspection router. It is deferred:
// the router is only built when "router" is first resolved.
//
// Bound abstracts:
//   - "router" → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) IsDeferred() bool   { return true }
func (p *RoutingServiceProvider) Provides() []string { return []string{"router"} }

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	app.Singleton("router", func(c *container.Container) (any, error) {
		scanner, err := container.Resolve[*capability.Scanner](c, "capability.scanner")
		if err != nil {
			return nil, err
		}
		reg, err := container.Resolve[*prometheus.Registry](c, "metrics")
		if err != nil {
			return nil, err
		}
		return routing.New(scanner, reg), nil
	})
	return nil
}
