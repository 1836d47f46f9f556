package routes_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-payload/app"
	frameworkapp "github.com/km-arc/go-payload/framework/app"
	"github.com/km-arc/go-payload/framework/config"
	"github.com/km-arc/go-payload/framework/routing"
	"github.com/km-arc/go-payload/routes"
)

func newApplication(t *testing.T) *frameworkapp.Application {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.yaml"), []byte(`
name: post
rules:
  slug: required|slug
  title: required|string|max:80
`), 0o600))

	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("VALIDATION_RULESET_DIR", dir)
	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)

	a := frameworkapp.NewWithConfig(cfg)
	a.Register(&app.RulesServiceProvider{})
	a.Register(&routes.ServiceProvider{})
	require.NoError(t, a.Warm("rulesets"))
	a.Boot()
	return a
}

func TestServiceProvider_MountsAPI(t *testing.T) {
	a := newApplication(t)

	var got []string
	for _, rt := range a.Router().Routes() {
		got = append(got, rt.Method+" "+rt.Pattern)
	}
	for _, want := range []string{
		"GET /",
		"GET /api/v1/rules",
		"GET /api/v1/rulesets",
		"POST /api/v1/validate",
		"POST /api/v1/validate/{ruleset}",
	} {
		assert.Contains(t, got, want)
	}
}

func TestServiceProvider_ValidatesAgainstLoadedRuleSet(t *testing.T) {
	a := newApplication(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/validate/post", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		a.Router().ServeHTTP(rr, req)
		return rr
	}

	rr := post(`{"slug":"hello-world","title":"Hello"}`)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = post(`{"slug":"Hello World"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{
		"message": "The given data was invalid.",
		"errors": {
			"slug": "Field 'slug' is not a valid slug",
			"title": "Field 'title' is required"
		}
	}`, rr.Body.String())
}

func TestAPI_RequestIDHeader(t *testing.T) {
	r := routing.New(nil)
	routes.API(r, &app.ValidationController{Name: "x"})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}
