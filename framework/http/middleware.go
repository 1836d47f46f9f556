package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/km-arc/go-payload/framework/http/validation"
)

type contextKey struct{ name string }

var validatedKey = &contextKey{"validated"}

// PayloadValidator validates request bodies before they reach a handler.
type PayloadValidator struct {
	Engine       *validation.Engine // nil means validation.Default
	MaxBodyBytes int64              // <= 0 means DefaultMaxBodyBytes
	Logger       *slog.Logger       // nil discards
}

// ValidatePayload is PayloadValidator{Engine: engine}.Middleware(rules, messages).
//
//	r.With(gohttp.ValidatePayload(engine, validation.Mapping{
//	    "email": validation.Pipe("required|email"),
//	}, nil)).Post("/subscribe", handler)
func ValidatePayload(engine *validation.Engine, rules validation.Mapping, messages validation.Messages) func(http.Handler) http.Handler {
	return PayloadValidator{Engine: engine}.Middleware(rules, messages)
}

// Middleware decodes the body and validates it against rules. A bad body
// gets 400 (413 when too large), failed rules 422 and malformed rules 500.
// On success the accepted values are available through Validated.
func (v PayloadValidator) Middleware(rules validation.Mapping, messages validation.Messages) func(http.Handler) http.Handler {
	engine := v.Engine
	if engine == nil {
		engine = validation.Default
	}
	log := v.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := NewResponse(w)
			payload, err := NewRequest(r).WithMaxBytes(v.MaxBodyBytes).Payload()
			if err != nil {
				WritePayloadError(res, err)
				return
			}

			result, err := engine.Build(validation.Request{Values: payload, Rules: rules, Messages: messages})
			if err != nil {
				log.ErrorContext(r.Context(), "route rules are malformed", "path", r.URL.Path, "error", err)
				res.ServerError()
				return
			}
			if !result.Passed() {
				res.ValidationError(result.Errors())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithValidated(r.Context(), result.Values())))
		})
	}
}

// WritePayloadError maps a Payload or Bind error to 413 or 400.
func WritePayloadError(res *Response, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		res.TooLarge(err.Error())
		return
	}
	res.BadRequest(err.Error())
}

// WithValidated stores accepted values in ctx.
func WithValidated(ctx context.Context, values map[string]any) context.Context {
	return context.WithValue(ctx, validatedKey, values)
}

// Validated returns the values accepted by ValidatePayload, or nil.
func Validated(r *http.Request) map[string]any {
	values, _ := r.Context().Value(validatedKey).(map[string]any)
	return values
}
