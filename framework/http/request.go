package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

const maxMemory = 32 << 20 // 32 MB

var (
	ErrEmptyBody     = errors.New("empty request body")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrMalformedBody = errors.New("malformed request body")
)

// Request wraps *http.Request with payload helpers.
type Request struct {
	raw      *http.Request
	maxBytes int64
}

// NewRequest wraps a standard *http.Request with the default body limit.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r, maxBytes: DefaultMaxBodyBytes}
}

// WithMaxBytes sets the body limit; n <= 0 restores the default.
func (req *Request) WithMaxBytes(n int64) *Request {
	if n <= 0 {
		n = DefaultMaxBodyBytes
	}
	req.maxBytes = n
	return req
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Payload ──────────────────────────────────────────────────────────────────

// Payload decodes the body into a JSON-shaped mapping.
//
// JSON bodies keep numbers as json.Number so integers stay exact. Form
// bodies (urlencoded or multipart) become strings, and repeated keys or
// keys ending in "[]" become lists of strings. The body must be an object.
func (req *Request) Payload() (map[string]any, error) {
	if req.IsJSONBody() {
		var out map[string]any
		if err := req.decodeJSON(&out); err != nil {
			return nil, err
		}
		if out == nil {
			return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
		}
		return out, nil
	}

	req.raw.Body = http.MaxBytesReader(nil, req.raw.Body, req.maxBytes)
	var values url.Values
	if strings.HasPrefix(req.ContentType(), "multipart/form-data") {
		if err := req.raw.ParseMultipartForm(maxMemory); err != nil {
			return nil, classify(err)
		}
		values = req.raw.MultipartForm.Value
	} else {
		if err := req.raw.ParseForm(); err != nil {
			return nil, classify(err)
		}
		values = req.raw.PostForm
	}
	return formPayload(values), nil
}

// Bind decodes a JSON body into v, keeping numbers as json.Number inside
// untyped fields.
func (req *Request) Bind(v any) error {
	return req.decodeJSON(v)
}

func (req *Request) decodeJSON(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(nil, req.raw.Body, req.maxBytes))
	if err != nil {
		return classify(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformedBody)
	}
	return nil
}

func classify(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

func formPayload(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vals := range values {
		if name, ok := strings.CutSuffix(k, "[]"); ok {
			out[name] = toList(vals)
			continue
		}
		if len(vals) == 1 {
			out[k] = vals[0]
		} else {
			out[k] = toList(vals)
		}
	}
	return out
}

func toList(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSONBody reports a JSON body: a JSON content type, or no content type
// at all.
func (req *Request) IsJSONBody() bool {
	ct := req.ContentType()
	return ct == "" || strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}
