package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// ── Request ──────────────────────────────────────────────────────────────────

// Request is the input of one validation: the payload, the per-field rules
// and optional custom messages.
type Request struct {
	Values   map[string]any
	Rules    Mapping
	Messages Messages
}

// NewRequest builds a Request from dynamically typed input, e.g. a decoded
// JSON document. Each argument must be a mapping (nil counts as empty);
// anything else is a syntax fault wrapping ErrInvalidShape.
func NewRequest(values, rules, messages any) (Request, error) {
	var req Request

	if values == nil {
		req.Values = map[string]any{}
	} else {
		v, ok := asMapping(values)
		if !ok {
			return Request{}, syntaxErr("", "", fmt.Errorf("%w: values must be a mapping, got %T", ErrInvalidShape, values))
		}
		req.Values = v
	}

	r, err := ParseMapping(rules)
	if err != nil {
		return Request{}, err
	}
	req.Rules = r

	m, err := ParseMessages(messages)
	if err != nil {
		return Request{}, err
	}
	req.Messages = m

	return req, nil
}

// ── Engine ───────────────────────────────────────────────────────────────────

// Engine walks rules and values in lockstep. It holds no per-call state, so
// one Engine may serve concurrent Builds.
type Engine struct {
	registry *Registry
	maxDepth int
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth bounds payload nesting; deeper payloads fail with ErrTooDeep.
// Zero disables the bound.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for debug records. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over registry. A nil registry gets the built-ins.
func New(registry *Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	e := &Engine{
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine looks rules up in.
func (e *Engine) Registry() *Registry { return e.registry }

// Build validates req. Field failures are reported through the Result; a
// syntax fault anywhere in the tree returns (nil, err) and no Result.
func (e *Engine) Build(req Request) (*Result, error) {
	values := req.Values
	if values == nil {
		values = map[string]any{}
	}
	messages := req.Messages
	if messages == nil {
		messages = Messages{}
	}

	errs, accepted, err := e.validate(values, req.Rules, messages, 0)
	if err != nil {
		e.logger.Debug("payload rejected by syntax fault", slog.Any("error", err))
		return nil, err
	}

	res := &Result{
		passed:   len(errs) == 0,
		errors:   errs,
		accepted: accepted,
	}
	e.logger.Debug("payload validated",
		slog.Bool("passed", res.passed),
		slog.Int("fields", len(req.Rules)),
		slog.Int("failed_fields", len(errs)),
	)
	return res, nil
}

// Values starts a fluent Builder on this engine.
func (e *Engine) Values(values map[string]any) Builder {
	return Builder{engine: e}.Values(values)
}

// Rules starts a fluent Builder on this engine.
func (e *Engine) Rules(rules Mapping) Builder {
	return Builder{engine: e}.Rules(rules)
}

// Messages starts a fluent Builder on this engine.
func (e *Engine) Messages(messages Messages) Builder {
	return Builder{engine: e}.Messages(messages)
}

// ── Core walk ────────────────────────────────────────────────────────────────

// level is the state of one recursion level.
type level struct {
	failures []failure
	accepted map[string]any
}

func (l *level) fail(f failure) { l.failures = append(l.failures, f) }

// validate runs every field of rules against values and returns the resolved
// errors of this level together with the accepted values.
func (e *Engine) validate(values map[string]any, rules Mapping, messages Messages, depth int) (Errors, map[string]any, error) {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return nil, nil, syntaxErr("", "", fmt.Errorf("%w: limit is %d", ErrTooDeep, e.maxDepth))
	}

	l := &level{accepted: make(map[string]any)}

	for _, field := range rules.keys() {
		value := lookup(values, field)

		var err error
		switch spec := rules[field].(type) {
		case Pipe:
			err = e.validatePipe(l, field, value, spec)
		case Sequence:
			err = e.validateSequence(l, field, value, spec, messages, depth)
		case Mapping:
			err = e.validateMapping(l, field, value, spec, messages, depth)
		default:
			err = syntaxErr(field, "", fmt.Errorf("%w: rule specification of type %T", ErrInvalidShape, spec))
		}
		if err != nil {
			return nil, nil, err
		}
	}

	return resolve(l.failures, rules, messages), l.accepted, nil
}

// validatePipe evaluates every token of a rule string, left to right,
// without short-circuiting.
func (e *Engine) validatePipe(l *level, field string, value Value, spec Pipe) error {
	tokens, err := ParseRules(string(spec))
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			se.Field = field
		}
		return err
	}

	failed := false
	for _, tok := range tokens {
		msg, err := e.apply(tok, field, value, tokens)
		if err != nil {
			return err
		}
		if msg != "" {
			failed = true
			l.fail(failure{field: field, rule: tok.Name, message: msg})
		}
	}

	if !failed && !value.Absent() {
		l.accepted[field] = cloneValue(value.Raw())
	}
	return nil
}

// validateSequence guards the value with the `array` template and then
// validates each element as its own single-field payload.
func (e *Engine) validateSequence(l *level, field string, value Value, spec Sequence, messages Messages, depth int) error {
	msg, err := e.apply(Token{Name: "array"}, field, value, nil)
	if err != nil {
		return err
	}
	if msg != "" {
		l.fail(failure{field: field, rule: "array", message: msg})
		return nil
	}
	if len(spec) == 0 {
		return nil
	}

	items, _ := value.Sequence()
	nested := make(Errors)
	kept := make([]any, 0, len(items))

	for i, item := range items {
		key := strconv.Itoa(i)
		errs, accepted, err := e.validate(
			map[string]any{key: item},
			Mapping{key: spec.at(i)},
			messages.forElement(field, key),
			depth+1,
		)
		if err != nil {
			return qualify(err, field)
		}
		for k, v := range errs {
			nested[k] = v
		}
		if v, ok := accepted[key]; ok {
			kept = append(kept, v)
		}
	}

	if len(nested) > 0 {
		l.fail(failure{field: field, nested: nested})
		return nil
	}
	if len(kept) > 0 {
		l.accepted[field] = kept
	}
	return nil
}

// validateMapping guards the value with the `object` template and then
// recurses into it. An absent object is validated as an empty one, so
// `required` sub-fields still fail.
func (e *Engine) validateMapping(l *level, field string, value Value, spec Mapping, messages Messages, depth int) error {
	msg, err := e.apply(Token{Name: "object"}, field, value, nil)
	if err != nil {
		return err
	}
	if msg != "" {
		l.fail(failure{field: field, rule: "object", message: msg})
		return nil
	}

	sub, _ := value.Mapping()
	if sub == nil {
		sub = map[string]any{}
	}

	errs, accepted, err := e.validate(sub, spec, messages.forMapping(field), depth+1)
	if err != nil {
		return qualify(err, field)
	}

	if len(errs) > 0 {
		l.fail(failure{field: field, nested: errs})
		return nil
	}
	if !value.Absent() {
		l.accepted[field] = accepted
	}
	return nil
}

// qualify prefixes the field of a syntax fault raised in a nested level
// with the parent field, so the fault names its full dotted path.
func qualify(err error, field string) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		if se.Field == "" {
			se.Field = field
		} else {
			se.Field = field + "." + se.Field
		}
	}
	return err
}

// apply looks tok up and runs its template.
func (e *Engine) apply(tok Token, field string, value Value, tokens []Token) (string, error) {
	t, ok := e.registry.Lookup(tok.Name)
	if !ok {
		return "", syntaxErr(field, tok.Name, ErrUnknownRule)
	}

	msg, err := t(value, field, tok.Param, tok.Name, tokens)
	if err != nil {
		if IsSyntaxError(err) {
			return "", err
		}
		return "", syntaxErr(field, tok.String(), err)
	}
	return msg, nil
}

// ── Package-level default ────────────────────────────────────────────────────

// Default is the process-wide engine over the built-in catalog. Prefer an
// injected Engine where isolation matters (tests, multi-tenant rule sets).
var Default = New(NewDefaultRegistry())

// Build validates req with the Default engine.
func Build(req Request) (*Result, error) { return Default.Build(req) }

// Custom registers or overwrites a template in the Default registry.
func Custom(name string, t Template) { Default.Registry().Register(name, t) }

// Values starts a fluent Builder on the Default engine.
func Values(values map[string]any) Builder { return Default.Values(values) }

// Rules starts a fluent Builder on the Default engine.
func Rules(rules Mapping) Builder { return Default.Rules(rules) }

// WithMessages starts a fluent Builder on the Default engine.
func WithMessages(messages Messages) Builder { return Default.Messages(messages) }
