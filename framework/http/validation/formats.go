package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// formats checks single string values against go-playground tags.
var formats = validator.New()

// registerFormats installs the string format rules. Each only runs on a
// present, non-empty string; other present values fail.
func registerFormats(r *Registry) {
	r.Register("url", formatTag("url"))
	r.Register("ip", formatTag("ip"))
	r.Register("alpha", formatTag("alpha"))
	r.Register("alpha_num", formatTag("alphanum"))
	r.Register("uuid", format(isUUID))
}

func format(check func(string) bool) Template {
	return func(v Value, field, _, rule string, _ []Token) (string, error) {
		if v.Absent() {
			return "", nil
		}
		s, ok := v.String()
		if !ok {
			return invalidValue(field, rule), nil
		}
		if s == "" || check(s) {
			return "", nil
		}
		return invalidValue(field, rule), nil
	}
}

func formatTag(tag string) Template {
	return format(func(s string) bool {
		return formats.Var(s, tag) == nil
	})
}

// isUUID accepts only the canonical 36-character form; uuid.Parse alone
// would also take the urn: and braced variants.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
