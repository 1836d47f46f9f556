package routes

import (
	"github.com/km-arc/go-payload/app"
	"github.com/km-arc/go-payload/framework/routing"
)

// API registers the service routes.
//
//	GET  /                          health
//	GET  /api/v1/rules              registered rule names
//	GET  /api/v1/rulesets           loaded rule sets
//	POST /api/v1/validate           ad hoc {values, rules, messages}
//	POST /api/v1/validate/{ruleset} body against a stored rule set
func API(r *routing.Router, c *app.ValidationController) {
	r.Get("/", c.Home)

	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/rules", c.Rules)
		api.Get("/rulesets", c.RuleSetIndex)
		api.Post("/validate", c.Validate)
		api.Post("/validate/{ruleset}", c.ValidateRuleSet)
	})
}
