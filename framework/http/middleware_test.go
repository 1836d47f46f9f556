package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-payload/framework/http"
	"github.com/km-arc/go-payload/framework/http/validation"
)

var subscribeRules = validation.Mapping{
	"email": validation.Pipe("required|email"),
	"age":   validation.Pipe("integer|min:18"),
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var seen map[string]any
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = gohttp.Validated(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func TestValidatePayload_Passes(t *testing.T) {
	mw := gohttp.ValidatePayload(nil, subscribeRules, nil)
	rr, seen := serve(t, mw, "application/json", `{"email":"a@b.com","age":21,"extra":"dropped"}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, map[string]any{"email": "a@b.com", "age": json.Number("21")}, seen)
}

func TestValidatePayload_Fails(t *testing.T) {
	mw := gohttp.ValidatePayload(nil, subscribeRules, validation.Messages{"email.required": "Email please."})
	rr, seen := serve(t, mw, "application/json", `{"age":12}`)

	assert.Nil(t, seen, "handler must not run")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Email please.", body.Errors["email"])
	assert.Equal(t, "Field 'age' must be at least '18'", body.Errors["age"])
}

func TestValidatePayload_Form(t *testing.T) {
	mw := gohttp.ValidatePayload(nil, validation.Mapping{"email": validation.Pipe("required|email")}, nil)
	rr, seen := serve(t, mw, "application/x-www-form-urlencoded", "email=a%40b.com")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "a@b.com", seen["email"])
}

func TestValidatePayload_BadBody(t *testing.T) {
	mw := gohttp.ValidatePayload(nil, subscribeRules, nil)
	rr, _ := serve(t, mw, "application/json", `{oops`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestValidatePayload_TooLarge(t *testing.T) {
	mw := gohttp.PayloadValidator{MaxBodyBytes: 8}.Middleware(subscribeRules, nil)
	rr, _ := serve(t, mw, "application/json", `{"email":"someone@example.com"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestValidatePayload_MalformedRules(t *testing.T) {
	engine := validation.New(validation.NewDefaultRegistry())
	mw := gohttp.ValidatePayload(engine, validation.Mapping{"email": validation.Pipe("required|shiny")}, nil)
	rr, seen := serve(t, mw, "application/json", `{"email":"a@b.com"}`)

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestValidated_Missing(t *testing.T) {
	assert.Nil(t, gohttp.Validated(httptest.NewRequest(http.MethodGet, "/", nil)))
}
