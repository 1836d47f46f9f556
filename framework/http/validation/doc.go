// Package validation validates JSON-shaped payloads against declarative,
// Laravel-style rule strings.
//
// # Overview
//
// A Request carries the payload (Values), one rule specification per field
// (Rules) and optional custom text (Messages). Rule specifications come in
// three forms:
//
//	validation.Mapping{
//	    "name": validation.Pipe("required|string|min:2"),         // rule string
//	    "tags": validation.Sequence{validation.Pipe("string")},    // per element
//	    "addr": validation.Mapping{"city": validation.Pipe("required")},
//	}
//
// Every token of a rule string is evaluated; nothing short-circuits. A
// Sequence entry is applied per list element, the last entry repeating for
// the remaining elements. A Mapping recurses into a nested object.
//
// # Basic Usage
//
//	res, err := validation.Build(validation.Request{
//	    Values:   payload,
//	    Rules:    rules,
//	    Messages: validation.Messages{"name.required": "Tell us your name."},
//	})
//	if err != nil {
//	    // malformed rules: unknown rule, empty token, bad shape
//	}
//	res.Alright(func(data map[string]any) {
//	    // data holds the accepted fields only
//	}).Failed(func(errs validation.Errors) {
//	    // {"name": "Tell us your name.", "addr": {"city": "…"}}
//	})
//
// The fluent form is equivalent:
//
//	res, err := validation.Values(payload).Rules(rules).Build()
//
// # Available Rules
//
// Presence and types (absent values pass everything but required):
//   - required: fails on absent and ""; a present null passes
//   - integer, float, number, string, boolean, array, object
//
// Bounds:
//   - min:n, max:n: rune count for string-like fields, value for numeric ones
//   - major:n, minor:n: numeric lower / upper bound
//
// Formats (present, non-empty strings):
//   - url, ip, alpha, alpha_num, uuid
//   - cpf, cnpj: Brazilian national id checksums
//
// email also skips absent values but fails on "".
//
// Choice:
//   - in:a,b,c, not_in:a,b,c
//
// Custom rules are added with Registry.Register, or Custom for the Default
// engine.
//
// # Messages
//
// The message of a failing token is looked up, in order, under
// "field.rule", field → rule and the rule-global key rule, falling back to
// the template's own text. When several tokens of a field fail, the last
// one wins. Elements of a Sequence field additionally see the wildcard set
// "field.*" (or field → "*").
//
// # Errors
//
// A malformed declaration is a *SyntaxError (errors.Is(err, ErrSyntax)) and
// aborts the whole Build, whatever the nesting level. Field failures are
// never Go errors.
package validation
