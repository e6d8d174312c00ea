package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/config"
	"github.com/km-arc/getall/framework/container"
	"github.com/km-arc/getall/framework/providers"
	"github.com/km-arc/getall/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly —
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers.
// modules are every compiled-in capability module; configuration selects
// the module set among them.
func New(modules []*capability.Module, envFiles ...string) (*Application, error) {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LoggingServiceProvider{},
		&providers.CapabilityServiceProvider{Modules: modules},
		&providers.RoutingServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves *zap.Logger from the container.
func (a *Application) Logger() (*zap.Logger, error) {
	return container.Resolve[*zap.Logger](a.Container, "logger")
}

// Resolver resolves the capability resolver from the container.
func (a *Application) Resolver() (*capability.Resolver, error) {
	return container.Resolve[*capability.Resolver](a.Container, "capability.resolver")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Run boots the application (if needed) and serves the router on HTTP_PORT
// until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	log, err := a.Logger()
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("addr", srv.Addr),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
