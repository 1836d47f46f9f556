package rulesets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-payload/framework/http/validation"
)

var (
	// ErrNotFound is returned by Store.Get for an unknown rule set.
	ErrNotFound = errors.New("rulesets: rule set not found")
	// ErrInvalidRuleSet wraps decoding and verification failures.
	ErrInvalidRuleSet = errors.New("rulesets: invalid rule set")
)

// RuleSet is a named, reusable pair of rules and messages.
//
//	name: signup
//	rules:
//	  email: required|email
//	  tags: [string]
//	  address:
//	    city: required|string
//	messages:
//	  email.required: We need your email.
type RuleSet struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Rules       validation.Mapping  `json:"rules"`
	Messages    validation.Messages `json:"messages,omitempty"`
}

// file is the on-disk shape. JSON is a subset of YAML, so one decoder
// reads both.
type file struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Rules       map[string]any `yaml:"rules"`
	Messages    map[string]any `yaml:"messages"`
}

// Parse decodes a YAML or JSON document. fallbackName is used when the
// document has no name.
func Parse(data []byte, fallbackName string) (*RuleSet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRuleSet, fallbackName, err)
	}
	if f.Name == "" {
		f.Name = fallbackName
	}
	if f.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidRuleSet)
	}

	rules, err := validation.ParseMapping(f.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRuleSet, f.Name, err)
	}
	messages, err := validation.ParseMessages(f.Messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRuleSet, f.Name, err)
	}
	return &RuleSet{
		Name:        f.Name,
		Description: f.Description,
		Rules:       rules,
		Messages:    messages,
	}, nil
}

// ReadFile parses one rule-set file; its base name without extension is
// the fallback name.
func ReadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return Parse(data, strings.TrimSuffix(base, filepath.Ext(base)))
}

// Verify checks every rule string against reg, so an unknown rule or an
// empty token is reported at load time instead of on the first request.
func (rs *RuleSet) Verify(reg *validation.Registry) error {
	if err := verify(reg, "", rs.Rules); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRuleSet, rs.Name, err)
	}
	return nil
}

func verify(reg *validation.Registry, field string, spec validation.RuleSpec) error {
	switch s := spec.(type) {
	case validation.Pipe:
		tokens, err := validation.ParseRules(string(s))
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			if _, ok := reg.Lookup(tok.Name); !ok {
				return &validation.SyntaxError{Field: field, Rule: tok.Name, Err: validation.ErrUnknownRule}
			}
		}
	case validation.Sequence:
		for _, item := range s {
			if err := verify(reg, field, item); err != nil {
				return err
			}
		}
	case validation.Mapping:
		for key, item := range s {
			if err := verify(reg, key, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Request turns the rule set into a validation request over values.
func (rs *RuleSet) Request(values map[string]any) validation.Request {
	return validation.Request{Values: values, Rules: rs.Rules, Messages: rs.Messages}
}
