package validation

import (
	"fmt"
	"strings"
)

// Messages holds custom error text. Leaves are strings; values may nest.
//
//	validation.Messages{
//	    "age.min":  "M1",                           // exact "field.rule"
//	    "age":      map[string]any{"min": "M2"},    // nested field → rule
//	    "min":      "M3",                           // every field failing min
//	    "tags.*":   map[string]any{"string": "…"},  // each element of tags
//	}
type Messages map[string]any

// ParseMessages accepts nil, Messages or any string-keyed mapping.
func ParseMessages(raw any) (Messages, error) {
	if raw == nil {
		return Messages{}, nil
	}
	m, ok := asMessages(raw)
	if !ok {
		return nil, syntaxErr("", "", fmt.Errorf("%w: messages must be a mapping, got %T", ErrInvalidShape, raw))
	}
	return m, nil
}

func asMessages(raw any) (Messages, bool) {
	switch m := raw.(type) {
	case Messages:
		return m, true
	case map[string]string:
		out := make(Messages, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}
	m, ok := asMapping(raw)
	return Messages(m), ok
}

// text returns m[key] when it is a string.
func (m Messages) text(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// sub returns the nested message mapping stored under field, or nil.
func (m Messages) sub(field string) Messages {
	if s, ok := asMessages(m[field]); ok {
		return s
	}
	return nil
}

// globals returns the rule-global entries: non-dotted keys with string text.
func (m Messages) globals() Messages {
	out := Messages{}
	for k, v := range m {
		if _, ok := v.(string); ok && !strings.Contains(k, ".") {
			out[k] = v
		}
	}
	return out
}

// wildcard returns the per-element message set of a sequence field:
// m["field.*"] first, then m[field]["*"].
func (m Messages) wildcard(field string) Messages {
	if w, ok := asMessages(m[field+".*"]); ok {
		return w
	}
	if w, ok := asMessages(m.sub(field)["*"]); ok {
		return w
	}
	return Messages{}
}

// forMapping narrows messages for the recursion into a Mapping field:
// the field's own sub-tree over the globals.
func (m Messages) forMapping(field string) Messages {
	return merge(m.globals(), m.sub(field))
}

// forElement narrows messages for element key of a Sequence field.
// Precedence, high to low: the field's sub-tree (which holds index
// overrides), the wildcard set under the element key, the globals.
func (m Messages) forElement(field, key string) Messages {
	return merge(m.globals(), Messages{key: m.wildcard(field)}, m.sub(field))
}

// merge overlays layers left to right; later layers win.
func merge(layers ...Messages) Messages {
	out := Messages{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// lookup applies the text part of the precedence chain:
// "field.rule", then field → rule, then the rule-global key.
func (m Messages) lookup(field, rule string) (string, bool) {
	if s, ok := m.text(field + "." + rule); ok {
		return s, true
	}
	if s, ok := m.sub(field).text(rule); ok {
		return s, true
	}
	return m.text(rule)
}

// ── Resolution ───────────────────────────────────────────────────────────────

// failure is a raw error recorded during a walk: a failing rule token
// ("field.rule") or the already-resolved errors of a nested field ("field").
type failure struct {
	field   string
	rule    string
	message string
	nested  Errors
}

// key renders the raw error key.
func (f failure) key() string {
	if f.rule == "" {
		return f.field
	}
	return f.field + "." + f.rule
}

// resolve maps recorded failures to the externally visible Errors. Failures
// are visited in the order they were recorded, which is rule declaration
// order, so the last failing token of a field wins.
func resolve(failures []failure, rules Mapping, messages Messages) Errors {
	out := make(Errors, len(failures))
	for _, f := range failures {
		if f.rule == "" && rules.isNested(f.field) {
			out[f.field] = f.nested
			continue
		}
		if s, ok := messages.lookup(f.field, f.rule); ok {
			out[f.field] = s
			continue
		}
		out[f.field] = f.message
	}
	return out
}
