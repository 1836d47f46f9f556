package validation

import "strings"

// Token is one `name` or `name:param` unit of a rule string.
type Token struct {
	Name     string
	Param    string
	HasParam bool
}

// String renders the token back to its rule-string form.
func (t Token) String() string {
	if t.HasParam {
		return t.Name + ":" + t.Param
	}
	return t.Name
}

// ParseRules splits a pipe-delimited rule string into tokens, in declaration
// order. min:3 → {Name: "min", Param: "3"}. Only the first ':' separates the
// name, so params may contain further colons.
//
// Whitespace around tokens and names is ignored, so "string | min:3" reads
// as "string|min:3". An empty token (leading, trailing or doubled '|') is a
// syntax fault.
func ParseRules(rules string) ([]Token, error) {
	parts := strings.Split(rules, "|")
	tokens := make([]Token, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, syntaxErr("", rules, ErrEmptyRule)
		}

		name, param, hasParam := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, syntaxErr("", rules, ErrEmptyRule)
		}

		tokens = append(tokens, Token{Name: name, Param: param, HasParam: hasParam})
	}

	return tokens, nil
}

// hasRule reports whether any token carries one of the given names.
func hasRule(tokens []Token, names ...string) bool {
	for _, t := range tokens {
		for _, n := range names {
			if t.Name == n {
				return true
			}
		}
	}
	return false
}
