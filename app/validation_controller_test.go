package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-payload/app"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/routing"
	"github.com/km-arc/go-payload/framework/rulesets"
	"github.com/km-arc/go-payload/routes"
)

const signupYAML = `
name: signup
description: New account form
rules:
  email: required|email
  handle: required|slug
  tags: [string]
  address:
    city: required|string
messages:
  email.required: We need your email.
  address:
    city:
      required: Where do you live?
`

// ── helpers ──────────────────────────────────────────────────────────────────

func newServer(t *testing.T) *routing.Router {
	t.Helper()

	reg := validation.NewDefaultRegistry()
	reg.Register("slug", app.Slug)
	reg.Register("starts_with", app.StartsWith)

	store := rulesets.NewStore()
	rs, err := rulesets.Parse([]byte(signupYAML), "")
	require.NoError(t, err)
	require.NoError(t, rs.Verify(reg))
	store.Put(rs)
	store.Put(&rulesets.RuleSet{
		Name:  "broken",
		Rules: validation.Mapping{"a": validation.Pipe("no_such_rule")},
	})

	c := &app.ValidationController{
		Name:         "GoPayload",
		Engine:       validation.New(reg),
		RuleSets:     store,
		MaxBodyBytes: 256,
	}
	r := routing.New(nil)
	routes.API(r, c)
	return r
}

func send(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

// ── Home / index endpoints ───────────────────────────────────────────────────

func TestController_Home(t *testing.T) {
	rr, body := send(t, newServer(t), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "GoPayload", data["name"])
	assert.Equal(t, "ok", data["status"])
}

func TestController_Rules(t *testing.T) {
	rr, body := send(t, newServer(t), http.MethodGet, "/api/v1/rules", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, body["data"], "required")
	assert.Contains(t, body["data"], "slug")
	assert.Contains(t, body["data"], "starts_with")
}

func TestController_RuleSetIndex(t *testing.T) {
	rr, _ := send(t, newServer(t), http.MethodGet, "/api/v1/rulesets", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[
		{"name":"broken","fields":["a"]},
		{"name":"signup","description":"New account form","fields":["address","email","handle","tags"]}
	]}`, rr.Body.String())
}

// ── Ad hoc validation ────────────────────────────────────────────────────────

func TestController_Validate_Passes(t *testing.T) {
	rr, _ := send(t, newServer(t), http.MethodPost, "/api/v1/validate", `{
		"values": {"name": "go", "age": 20, "extra": true},
		"rules": {"name": "required|string|min:2", "age": "integer|min:18"}
	}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"name":"go","age":20}}`, rr.Body.String())
}

func TestController_Validate_Fails(t *testing.T) {
	rr, _ := send(t, newServer(t), http.MethodPost, "/api/v1/validate", `{
		"values": {"order": "x-1"},
		"rules": {"name": "required", "order": "starts_with:ord_"},
		"messages": {"name.required": "Name, please."}
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{
		"message": "The given data was invalid.",
		"errors": {
			"name": "Name, please.",
			"order": "Field 'order' must start with 'ord_'"
		}
	}`, rr.Body.String())
}

func TestController_Validate_BadInput(t *testing.T) {
	tests := []struct {
		name, body string
		status     int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed json", `{"values":`, http.StatusBadRequest},
		{"rule of wrong shape", `{"values":{},"rules":{"a":5}}`, http.StatusBadRequest},
		{"values not a mapping", `{"values":[1],"rules":{}}`, http.StatusBadRequest},
		{"unknown rule", `{"values":{"a":1},"rules":{"a":"no_such_rule"}}`, http.StatusBadRequest},
		{"body too large", `{"values":{"a":"` + strings.Repeat("x", 300) + `"}}`, http.StatusRequestEntityTooLarge},
	}
	r := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := send(t, r, http.MethodPost, "/api/v1/validate", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.NotEmpty(t, body["message"])
		})
	}
}

// ── Stored rule sets ─────────────────────────────────────────────────────────

func TestController_ValidateRuleSet_Passes(t *testing.T) {
	rr, body := send(t, newServer(t), http.MethodPost, "/api/v1/validate/signup", `{
		"email": "ada@example.com",
		"handle": "ada-lovelace",
		"tags": ["math"],
		"address": {"city": "London"}
	}`)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "ada@example.com", data["email"])
	assert.Equal(t, "ada-lovelace", data["handle"])
}

func TestController_ValidateRuleSet_Fails(t *testing.T) {
	rr, body := send(t, newServer(t), http.MethodPost, "/api/v1/validate/signup", `{
		"handle": "Ada Lovelace",
		"tags": ["math", 7]
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs := body["errors"].(map[string]any)
	assert.Equal(t, "We need your email.", errs["email"])
	assert.Equal(t, "Field 'handle' is not a valid slug", errs["handle"])
	assert.Equal(t, map[string]any{"city": "Where do you live?"}, errs["address"])
	assert.Contains(t, errs, "tags")
}

func TestController_ValidateRuleSet_NotFound(t *testing.T) {
	rr, body := send(t, newServer(t), http.MethodPost, "/api/v1/validate/nope", `{}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Rule set not found.", body["message"])
}

func TestController_ValidateRuleSet_MalformedBody(t *testing.T) {
	rr, _ := send(t, newServer(t), http.MethodPost, "/api/v1/validate/signup", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestController_ValidateRuleSet_BrokenRuleSet(t *testing.T) {
	rr, _ := send(t, newServer(t), http.MethodPost, "/api/v1/validate/broken", `{"a": 1}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
