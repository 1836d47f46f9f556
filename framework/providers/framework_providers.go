package providers

import (
	"fmt"
	"log/slog"

	"github.com/km-arc/go-payload/framework/config"
	"github.com/km-arc/go-payload/framework/container"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/logger"
	"github.com/km-arc/go-payload/framework/routing"
	"github.com/km-arc/go-payload/framework/rulesets"
)

// RulesTag groups the RulePack bindings installed into the registry.
const RulesTag = "validation.rules"

// RulePack is a named group of custom rule templates.
type RulePack map[string]validation.Template

// Install registers every template of the pack into reg.
func (p RulePack) Install(reg *validation.Registry) {
	for name, t := range p {
		reg.Register(name, t)
	}
}

// TagRules binds pack as "rules.<name>" and tags it so the validation
// registry installs it when first built. Call it from Register.
//
//	providers.TagRules(app, "documents", providers.RulePack{"slug": slug})
func TagRules(app *container.Container, name string, pack RulePack) {
	abstract := "rules." + name
	app.Instance(abstract, pack)
	app.Tag([]string{abstract}, RulesTag)
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the configuration as "config".
//
// A pre-loaded Config is bound as is; otherwise EnvFiles are loaded on first
// use and a load failure panics.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if p.Config != nil {
		app.Instance("config", p.Config)
	} else {
		envFiles := p.EnvFiles
		app.Singleton("config", func(c *container.Container) any {
			return config.MustLoad(envFiles...)
		})
	}
	app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds "logger" → *slog.Logger built from LOG_LEVEL and
// LOG_FORMAT, tagged with the app name and environment.
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("logger", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		level, err := logger.ParseLevel(cfg.Log.Level)
		if err != nil {
			panic(err)
		}
		return logger.New(
			logger.WithLevel(level),
			logger.WithFormat(logger.Format(cfg.Log.Format)),
			logger.WithAttr(slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Env)),
		)
	})
	app.Alias("logger", "log")
}

// ── ValidationServiceProvider ─────────────────────────────────────────────────

// ValidationServiceProvider binds the rule registry and the engine.
//
// Bound abstracts:
//   - "validation.registry" → *validation.Registry (built-ins plus every
//     RulePack tagged RulesTag)
//   - "validation"          → *validation.Engine, aliased "validator"
type ValidationServiceProvider struct {
	container.BaseProvider
}

func (p *ValidationServiceProvider) Register(app *container.Container) {
	app.Singleton("validation.registry", func(c *container.Container) any {
		return validation.NewDefaultRegistry()
	})
	app.Extend("validation.registry", func(instance any, c *container.Container) any {
		reg := instance.(*validation.Registry)
		for _, pack := range c.Tagged(RulesTag) {
			pack.(RulePack).Install(reg)
		}
		return reg
	})

	app.Singleton("validation", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		return validation.New(
			container.Resolve[*validation.Registry](c, "validation.registry"),
			validation.WithMaxDepth(cfg.Validation.MaxDepth),
			validation.WithLogger(container.Resolve[*slog.Logger](c, "logger")),
		)
	})
	app.Alias("validation", "validator")
}

// ── RuleSetServiceProvider ────────────────────────────────────────────────────

// RuleSetServiceProvider binds "rulesets" → *rulesets.Store, loaded from
// VALIDATION_RULESET_DIR and verified against the registry. It is deferred:
// files are read on the first Make("rulesets"). A bad file panics.
type RuleSetServiceProvider struct {
	container.BaseProvider
}

func (p *RuleSetServiceProvider) IsDeferred() bool   { return true }
func (p *RuleSetServiceProvider) Provides() []string { return []string{"rulesets"} }

func (p *RuleSetServiceProvider) Register(app *container.Container) {
	app.Singleton("rulesets", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		log := container.Resolve[*slog.Logger](c, "logger")
		store := rulesets.NewStore()
		err := store.LoadDir(cfg.Validation.RuleSetDir, container.Resolve[*validation.Registry](c, "validation.registry"), log)
		if err != nil {
			panic(fmt.Errorf("loading rule sets from %q: %w", cfg.Validation.RuleSetDir, err))
		}
		log.Info("rule sets loaded", "dir", cfg.Validation.RuleSetDir, "count", store.Len())
		return store
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds "router" → *routing.Router.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		return routing.New(container.Resolve[*slog.Logger](c, "logger"))
	})
}
