package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var emailRegex = regexp.MustCompile(`(?i)^[a-z0-9.]+@[a-z0-9]+\.[a-z]+(\.[a-z]+)?$`)

// registerBuiltins installs the built-in catalog.
func registerBuiltins(r *Registry) {
	r.Register("required", required)

	r.Register("integer", typeGuard(func(v Value) bool { return v.IsInteger() }))
	// float only checks for a number: a parsed NaN is never rejected, so it
	// behaves exactly like `number`. Kept that way on purpose.
	r.Register("float", typeGuard(isNumber))
	r.Register("number", typeGuard(isNumber))
	r.Register("string", typeGuard(func(v Value) bool { _, ok := v.String(); return ok }))
	r.Register("boolean", typeGuard(func(v Value) bool { _, ok := v.Bool(); return ok }))
	r.Register("array", typeGuard(func(v Value) bool { _, ok := v.Sequence(); return ok }))
	r.Register("object", typeGuard(func(v Value) bool { _, ok := v.Mapping(); return ok }))

	r.Register("min", bound(true))
	r.Register("max", bound(false))
	r.Register("major", numericLimit(true))
	r.Register("minor", numericLimit(false))

	r.Register("email", typeGuard(func(v Value) bool {
		s, ok := v.String()
		return ok && emailRegex.MatchString(s)
	}))

	r.Register("in", membership(true))
	r.Register("not_in", membership(false))

	registerFormats(r)
	registerChecksums(r)
}

// ── Presence ─────────────────────────────────────────────────────────────────

// required fails on an absent key and the empty string. A present null,
// 0, false and an empty list are values and pass; type rules reject null.
func required(v Value, field, _, _ string, _ []Token) (string, error) {
	if v.Absent() {
		return fmt.Sprintf("Field '%s' is required", field), nil
	}
	if s, ok := v.String(); ok && s == "" {
		return fmt.Sprintf("Field '%s' is required", field), nil
	}
	return "", nil
}

// ── Types ────────────────────────────────────────────────────────────────────

func isNumber(v Value) bool {
	_, ok := v.Number()
	return ok
}

// typeGuard fails present values that do not satisfy check. Absent values
// pass: absence is a `required` concern.
func typeGuard(check func(Value) bool) Template {
	return func(v Value, field, _, rule string, _ []Token) (string, error) {
		if v.Absent() || check(v) {
			return "", nil
		}
		return invalidValue(field, rule), nil
	}
}

func invalidValue(field, rule string) string {
	return fmt.Sprintf("Field '%s' is not a valid '%s' value", field, rule)
}

// ── Bounds ───────────────────────────────────────────────────────────────────

// bound implements min (lower=true) and max. String-like fields, by sibling
// `string` token or runtime value, are bounded by the rune count of their NFC
// form, so "é" counts once whether or not it was sent decomposed; numeric-like
// fields by value. Both bounds are inclusive.
func bound(lower bool) Template {
	return func(v Value, field, param, rule string, tokens []Token) (string, error) {
		limit, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return "", fmt.Errorf("%w: %s needs a number, got '%s'", ErrInvalidParam, rule, param)
		}
		if v.Absent() {
			return "", nil
		}

		switch {
		case isStringField(v, tokens):
			s, ok := v.String()
			if !ok {
				return "", nil
			}
			n := float64(utf8.RuneCountInString(norm.NFC.String(s)))
			if lower && n < limit {
				return fmt.Sprintf("The minimum length of '%s' is '%s' characters", field, param), nil
			}
			if !lower && n > limit {
				return fmt.Sprintf("The maximum length of '%s' is '%s' characters", field, param), nil
			}

		case isNumericField(v, tokens):
			n, ok := v.Number()
			if !ok {
				return "", nil
			}
			if lower && n < limit {
				return fmt.Sprintf("Field '%s' must be at least '%s'", field, param), nil
			}
			if !lower && n > limit {
				return fmt.Sprintf("Field '%s' must be at most '%s'", field, param), nil
			}
		}
		return "", nil
	}
}

// numericLimit implements major (value >= param) and minor (value <= param)
// for numeric values only. The parameter is truncated to an integer, so
// major:3.5 bounds at 3.
func numericLimit(lower bool) Template {
	return func(v Value, field, param, rule string, _ []Token) (string, error) {
		p, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			return "", fmt.Errorf("%w: %s needs a number, got '%s'", ErrInvalidParam, rule, param)
		}
		limit := int(math.Trunc(p))
		n, ok := v.Number()
		if !ok {
			return "", nil
		}
		if lower && n < float64(limit) {
			return fmt.Sprintf("Field '%s' must not be less than '%d'", field, limit), nil
		}
		if !lower && n > float64(limit) {
			return fmt.Sprintf("Field '%s' must not be greater than '%d'", field, limit), nil
		}
		return "", nil
	}
}

// ── Membership ───────────────────────────────────────────────────────────────

// membership implements in:a,b,c (inside=true) and not_in:a,b,c. Strings,
// numbers and booleans are compared by their text form.
func membership(inside bool) Template {
	return func(v Value, field, param, _ string, _ []Token) (string, error) {
		if v.Absent() {
			return "", nil
		}
		text, ok := scalarText(v)
		found := false
		if ok {
			for _, option := range strings.Split(param, ",") {
				if strings.TrimSpace(option) == text {
					found = true
					break
				}
			}
		}
		if found != inside {
			return fmt.Sprintf("The selected '%s' is invalid", field), nil
		}
		return "", nil
	}
}

func scalarText(v Value) (string, bool) {
	if s, ok := v.String(); ok {
		return s, true
	}
	if n, ok := v.Number(); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	if b, ok := v.Bool(); ok {
		return strconv.FormatBool(b), true
	}
	return "", false
}
