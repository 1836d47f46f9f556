package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-payload/framework/http"
	"github.com/km-arc/go-payload/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

// ── JSON responses ───────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusTeapot, map[string]any{"ok": true})

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, true, decodeJSON(t, rr)["ok"])
}

func TestResponse_SuccessAndCreated(t *testing.T) {
	res, rr := newResponse(t)
	res.Success([]string{"a"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{"a"}, decodeJSON(t, rr)["data"])

	res, rr = newResponse(t)
	res.Created(map[string]any{"id": 1})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, map[string]any{"id": float64(1)}, decodeJSON(t, rr)["data"])
}

func TestResponse_NoContent(t *testing.T) {
	res, rr := newResponse(t)
	res.NoContent()
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"error", func(r *gohttp.Response) { r.Error(http.StatusConflict, "Taken.") }, http.StatusConflict, "Taken."},
		{"bad request default", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad Request."},
		{"bad request custom", func(r *gohttp.Response) { r.BadRequest("Nope.") }, http.StatusBadRequest, "Nope."},
		{"not found", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "Not found."},
		{"too large", func(r *gohttp.Response) { r.TooLarge() }, http.StatusRequestEntityTooLarge, "Payload too large."},
		{"server error", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeJSON(t, rr)["message"])
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	res, rr := newResponse(t)
	res.ValidationError(validation.Errors{
		"email": "Field 'email' is required",
		"addr":  validation.Errors{"city": "Field 'city' is required"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decodeJSON(t, rr)
	assert.Equal(t, "The given data was invalid.", body["message"])
	assert.Equal(t, map[string]any{
		"email": "Field 'email' is required",
		"addr":  map[string]any{"city": "Field 'city' is required"},
	}, body["errors"])
}

func TestResponse_Raw(t *testing.T) {
	res, rr := newResponse(t)
	assert.Same(t, rr, res.Raw())
}
