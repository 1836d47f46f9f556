package app_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-payload/framework/app"
	"github.com/km-arc/go-payload/framework/config"
	"github.com/km-arc/go-payload/framework/container"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/providers"
	"github.com/km-arc/go-payload/framework/routing"
	"github.com/km-arc/go-payload/framework/rulesets"
)

func testConfig(t *testing.T, rulesetDir string) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			Name:            "GoPayload",
			Env:             "testing",
			URL:             "http://localhost",
			Port:            "0",
			ShutdownTimeout: time.Second,
		},
		Log:        config.LogConfig{Level: "error", Format: "text"},
		Validation: config.ValidationConfig{MaxDepth: 4, RuleSetDir: rulesetDir, MaxBodyBytes: 1 << 10},
	}
}

type evenRules struct{ container.BaseProvider }

func (p *evenRules) Register(app *container.Container) {
	providers.TagRules(app, "numbers", providers.RulePack{
		"even": func(v validation.Value, field, _, _ string, _ []validation.Token) (string, error) {
			if n, ok := v.Number(); ok && int(n)%2 != 0 {
				return fmt.Sprintf("Field '%s' must be even", field), nil
			}
			return "", nil
		},
	})
}

func TestApplication_ResolvesServices(t *testing.T) {
	a := app.NewWithConfig(testConfig(t, ""))
	a.Boot()

	assert.Equal(t, "testing", a.Environment())
	assert.False(t, a.IsDebug())
	assert.IsType(t, &slog.Logger{}, a.Logger())
	assert.IsType(t, &routing.Router{}, a.Router())
	assert.IsType(t, &validation.Engine{}, a.Validator())
	assert.Same(t, a.Validator(), a.Make("validator"))
	assert.Same(t, a, a.Make("app"))
	assert.Equal(t, 0, a.RuleSets().Len())
}

func TestApplication_RulePacksAreInstalled(t *testing.T) {
	a := app.NewWithConfig(testConfig(t, ""))
	a.Register(&evenRules{})
	a.Boot()

	res, err := a.Validator().Build(validation.Request{
		Values: map[string]any{"n": 3},
		Rules:  validation.Mapping{"n": validation.Pipe("integer|even")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Field 'n' must be even", res.Errors().Message("n"))
}

func TestApplication_MaxDepthFromConfig(t *testing.T) {
	a := app.NewWithConfig(testConfig(t, ""))
	a.Boot()

	var deep validation.RuleSpec = validation.Pipe("required")
	for _, key := range []string{"f", "e", "d", "c", "b", "a"} {
		deep = validation.Mapping{key: deep}
	}
	_, err := a.Validator().Build(validation.Request{Values: map[string]any{}, Rules: deep.(validation.Mapping)})
	assert.ErrorIs(t, err, validation.ErrTooDeep)
}

func TestApplication_RuleSetsAreDeferred(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signup.yaml"), []byte("rules:\n  email: required|email\n"), 0o600))

	a := app.NewWithConfig(testConfig(t, dir))
	a.Boot()
	assert.False(t, a.Resolved("rulesets"))

	store := a.RuleSets()
	assert.Equal(t, []string{"signup"}, store.Names())
	assert.Same(t, store, container.Resolve[*rulesets.Store](a.Container, "rulesets"))
}

func TestApplication_WarmReportsBadRuleSets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("rules:\n  a: required|shiny\n"), 0o600))

	a := app.NewWithConfig(testConfig(t, dir))
	a.Boot()

	err := a.Warm("rulesets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rulesets")
}

func TestApplication_ServeStopsOnCancel(t *testing.T) {
	a := app.NewWithConfig(testConfig(t, ""))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.True(t, a.Providers.Booted())
}

func TestNew_InvalidEnvironment(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	a, err := app.New(filepath.Join(t.TempDir(), "missing.env"))
	assert.Nil(t, a)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
