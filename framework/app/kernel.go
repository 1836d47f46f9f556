package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-payload/framework/config"
	"github.com/km-arc/go-payload/framework/container"
	gohttp "github.com/km-arc/go-payload/framework/http"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/providers"
	"github.com/km-arc/go-payload/framework/routing"
	"github.com/km-arc/go-payload/framework/rulesets"
)

// Version is the service version reported by the health endpoint.
const Version = "0.1.0"

// Application is the top-level application container. It embeds the
// Container and the ProviderRegistry so callers can Bind, Singleton and
// Register directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New loads the configuration and registers the framework providers.
func New(envFiles ...string) (*Application, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	a := &Application{Container: c, Providers: registry}
	c.Instance("app", a)

	registry.Register(&providers.ConfigServiceProvider{Config: cfg})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.ValidationServiceProvider{})
	registry.Register(&providers.RuleSetServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})
	return a
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

func (a *Application) Logger() *slog.Logger {
	return container.Resolve[*slog.Logger](a.Container, "logger")
}

func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

func (a *Application) Validator() *validation.Engine {
	return container.Resolve[*validation.Engine](a.Container, "validation")
}

func (a *Application) RuleSets() *rulesets.Store {
	return container.Resolve[*rulesets.Store](a.Container, "rulesets")
}

// Warm resolves abstracts ahead of time, turning a factory panic into an
// error so misconfiguration is reported before the server starts.
func (a *Application) Warm(abstracts ...string) (err error) {
	for _, abs := range abstracts {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("resolving %s: %v", abs, r)
				}
			}()
			a.Make(abs)
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

// Server builds the http.Server for the configured address.
func (a *Application) Server() *http.Server {
	cfg := a.Config()
	return &http.Server{
		Addr:     cfg.App.Addr(),
		Handler:  a.Router(),
		ErrorLog: slog.NewLogLogger(a.Logger().Handler(), slog.LevelError),
	}
}

// Run boots the application, then serves HTTP until SIGINT/SIGTERM and
// shuts down gracefully within APP_SHUTDOWN_TIMEOUT.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve is Run with a caller-controlled context.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Warm("logger", "validation", "rulesets", "router"); err != nil {
		return err
	}
	if !a.Providers.Booted() {
		a.Boot()
	}

	cfg := a.Config()
	log := a.Logger()
	srv := a.Server()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", srv.Addr, "env", cfg.App.Env, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.App.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
