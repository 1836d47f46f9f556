package app

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	frameworkapp "github.com/km-arc/go-payload/framework/app"
	gohttp "github.com/km-arc/go-payload/framework/http"
	"github.com/km-arc/go-payload/framework/http/validation"
	"github.com/km-arc/go-payload/framework/rulesets"
)

// ValidationController exposes the validation engine over HTTP.
type ValidationController struct {
	frameworkapp.Controller

	Name         string
	Engine       *validation.Engine
	RuleSets     *rulesets.Store
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewValidationController wires the controller from the application
// container.
func NewValidationController(a *frameworkapp.Application) *ValidationController {
	cfg := a.Config()
	return &ValidationController{
		Name:         cfg.App.Name,
		Engine:       a.Validator(),
		RuleSets:     a.RuleSets(),
		MaxBodyBytes: cfg.Validation.MaxBodyBytes,
		Logger:       a.Logger(),
	}
}

// Home handles GET /.
func (c *ValidationController) Home(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(map[string]any{
		"name":    c.Name,
		"version": frameworkapp.Version,
		"status":  "ok",
	})
}

// Rules handles GET /api/v1/rules: the registered rule names.
func (c *ValidationController) Rules(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(c.Engine.Registry().Names())
}

type ruleSetSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
}

// RuleSetIndex handles GET /api/v1/rulesets.
func (c *ValidationController) RuleSetIndex(w http.ResponseWriter, r *http.Request) {
	names := c.RuleSets.Names()
	out := make([]ruleSetSummary, 0, len(names))
	for _, name := range names {
		rs, err := c.RuleSets.Get(name)
		if err != nil {
			continue
		}
		fields := make([]string, 0, len(rs.Rules))
		for f := range rs.Rules {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		out = append(out, ruleSetSummary{Name: rs.Name, Description: rs.Description, Fields: fields})
	}
	c.Response(w).Success(out)
}

// ValidateRuleSet handles POST /api/v1/validate/{ruleset}: the body is
// validated against a stored rule set.
func (c *ValidationController) ValidateRuleSet(w http.ResponseWriter, r *http.Request) {
	req := c.Request(r).WithMaxBytes(c.MaxBodyBytes)
	res := c.Response(w)

	rs, err := c.RuleSets.Get(req.RouteParam("ruleset"))
	if errors.Is(err, rulesets.ErrNotFound) {
		res.NotFound("Rule set not found.")
		return
	}

	payload, err := req.Payload()
	if err != nil {
		gohttp.WritePayloadError(res, err)
		return
	}

	result, err := c.Engine.Build(rs.Request(payload))
	if err != nil {
		c.log().ErrorContext(r.Context(), "rule set is malformed", "ruleset", rs.Name, "error", err)
		res.ServerError()
		return
	}
	c.respond(res, result)
}

// adHoc is the body of POST /api/v1/validate.
type adHoc struct {
	Values   any `json:"values"`
	Rules    any `json:"rules"`
	Messages any `json:"messages"`
}

// Validate handles POST /api/v1/validate with {values, rules, messages}.
// Malformed rules are the caller's fault here and get 400.
func (c *ValidationController) Validate(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)

	var body adHoc
	if err := c.Request(r).WithMaxBytes(c.MaxBodyBytes).Bind(&body); err != nil {
		gohttp.WritePayloadError(res, err)
		return
	}

	vreq, err := validation.NewRequest(body.Values, body.Rules, body.Messages)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}
	result, err := c.Engine.Build(vreq)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}
	c.respond(res, result)
}

func (c *ValidationController) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *ValidationController) respond(res *gohttp.Response, result *validation.Result) {
	result.Alright(func(values map[string]any) {
		res.Success(values)
	}).Failed(func(errs validation.Errors) {
		res.ValidationError(errs)
	})
}
