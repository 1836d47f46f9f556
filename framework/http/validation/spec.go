package validation

import (
	"fmt"
	"sort"
)

// RuleSpec is the per-field declaration of what to validate. It is one of
// Pipe, Sequence or Mapping.
type RuleSpec interface {
	ruleSpec()
}

// Pipe is a pipe-delimited rule string, e.g. "required|string|min:3".
// Every token is evaluated, even after an earlier one failed.
type Pipe string

// Sequence validates a list value element by element. Element i uses
// entry min(i, len-1), so a single entry applies to every element.
type Sequence []RuleSpec

// Mapping validates a nested object field by field. It is also the
// top-level rules type of a Request.
type Mapping map[string]RuleSpec

func (Pipe) ruleSpec()     {}
func (Sequence) ruleSpec() {}
func (Mapping) ruleSpec()  {}

// at returns the spec for element i, repeating the last entry.
func (s Sequence) at(i int) RuleSpec {
	if i < len(s) {
		return s[i]
	}
	return s[len(s)-1]
}

// keys returns the mapping keys sorted, for a stable walk.
func (m Mapping) keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isNested reports whether the spec for field is a Sequence or Mapping.
func (m Mapping) isNested(field string) bool {
	switch m[field].(type) {
	case Sequence, Mapping:
		return true
	}
	return false
}

// ParseSpec converts a decoded JSON/YAML rule declaration into a RuleSpec:
// strings become Pipe, lists become Sequence, objects become Mapping.
func ParseSpec(raw any) (RuleSpec, error) {
	return parseSpec("", raw)
}

// ParseMapping is ParseSpec for the top level, which must be a mapping.
// nil yields an empty Mapping.
func ParseMapping(raw any) (Mapping, error) {
	if raw == nil {
		return Mapping{}, nil
	}
	if m, ok := raw.(Mapping); ok {
		return m, nil
	}
	if _, ok := asMapping(raw); !ok {
		return nil, syntaxErr("", "", fmt.Errorf("%w: rules must be a mapping, got %T", ErrInvalidShape, raw))
	}
	spec, err := parseSpec("", raw)
	if err != nil {
		return nil, err
	}
	return spec.(Mapping), nil
}

func parseSpec(field string, raw any) (RuleSpec, error) {
	switch r := raw.(type) {
	case RuleSpec:
		return r, nil
	case string:
		return Pipe(r), nil
	}

	if m, ok := asMapping(raw); ok {
		out := make(Mapping, len(m))
		for k, v := range m {
			spec, err := parseSpec(k, v)
			if err != nil {
				return nil, err
			}
			out[k] = spec
		}
		return out, nil
	}

	if s, ok := asSequence(raw); ok {
		out := make(Sequence, 0, len(s))
		for _, v := range s {
			spec, err := parseSpec(field, v)
			if err != nil {
				return nil, err
			}
			out = append(out, spec)
		}
		return out, nil
	}

	return nil, syntaxErr(field, "", fmt.Errorf("%w: rule specification of type %T", ErrInvalidShape, raw))
}
