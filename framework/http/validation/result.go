package validation

import (
	"sort"
)

// ── Errors ───────────────────────────────────────────────────────────────────

// Errors maps a field to its resolved message (string) or, for fields with
// a Sequence or Mapping rule, to nested Errors keyed by index or sub-field.
//
// JSON output: {"name": "Field 'name' is required", "addr": {"city": "…"}}
type Errors map[string]any

// Has reports whether field has an entry.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Message follows path through nested entries and returns the message at
// its end, or "" when there is none.
//
//	errs.Message("tags", "1")  // message for the second tag
func (e Errors) Message(path ...string) string {
	cur := e
	for i, p := range path {
		v, ok := cur[p]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := v.(string)
			return s
		}
		next, ok := v.(Errors)
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}

// Flatten returns every message keyed by its dotted path, e.g. "addr.city".
func (e Errors) Flatten() map[string]string {
	out := make(map[string]string)
	e.flatten("", out)
	return out
}

func (e Errors) flatten(prefix string, out map[string]string) {
	for k, v := range e {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch m := v.(type) {
		case string:
			out[path] = m
		case Errors:
			m.flatten(path, out)
		}
	}
}

// Fields returns the top-level failing fields, sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for k := range e {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// ── Result ───────────────────────────────────────────────────────────────────

// Result is the outcome of one Build. It is immutable: every accessor may
// be called any number of times and always reports the same thing.
type Result struct {
	passed   bool
	errors   Errors
	accepted map[string]any
}

// Passed reports whether no rule failed at any depth.
func (r *Result) Passed() bool { return r.passed }

// Alright calls onSuccess with the accepted values when validation passed,
// and returns the Result so Failed can be chained.
//
//	res.Alright(func(data map[string]any) {
//	    store(data)
//	}).Failed(func(errs validation.Errors) {
//	    respond422(errs)
//	})
func (r *Result) Alright(onSuccess func(values map[string]any)) *Result {
	if r.passed && onSuccess != nil {
		onSuccess(r.Values())
	}
	return r
}

// Failed calls onFailure with the resolved errors when validation failed.
func (r *Result) Failed(onFailure func(errs Errors)) {
	if !r.passed && onFailure != nil {
		onFailure(r.Errors())
	}
}

// Errors returns the resolved error map; empty when validation passed.
func (r *Result) Errors() Errors {
	return cloneErrors(r.errors)
}

// Values returns a copy of the accepted values: the fields named by the
// rules that were present in the payload and passed. Nil when validation
// failed.
func (r *Result) Values() map[string]any {
	if !r.passed {
		return nil
	}
	return cloneValue(r.accepted).(map[string]any)
}

func cloneErrors(e Errors) Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		if nested, ok := v.(Errors); ok {
			out[k] = cloneErrors(nested)
			continue
		}
		out[k] = v
	}
	return out
}
