package app

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/km-arc/go-payload/framework/container"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/providers"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slug accepts lowercase words joined by single hyphens.
var Slug = validation.Predicate(
	func(v validation.Value, _ string) bool {
		s, ok := v.String()
		return ok && (s == "" || slugPattern.MatchString(s))
	},
	func(field, _ string) string { return fmt.Sprintf("Field '%s' is not a valid slug", field) },
)

// StartsWith accepts strings beginning with the rule parameter, e.g.
// "starts_with:ord_".
var StartsWith = validation.Predicate(
	func(v validation.Value, prefix string) bool {
		s, ok := v.String()
		return ok && strings.HasPrefix(s, prefix)
	},
	func(field, prefix string) string {
		return fmt.Sprintf("Field '%s' must start with '%s'", field, prefix)
	},
)

// RulesServiceProvider adds the service's own rules to the validation
// registry.
type RulesServiceProvider struct {
	container.BaseProvider
}

func (p *RulesServiceProvider) Register(app *container.Container) {
	providers.TagRules(app, "app", providers.RulePack{
		"slug":        Slug,
		"starts_with": StartsWith,
	})
}
