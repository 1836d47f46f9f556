package validation

// Builder is the fluent form of Build. It is a plain value: every setter
// returns a modified copy, so a partially configured Builder can be reused.
//
//	res, err := validation.Values(payload).
//	    Rules(validation.Mapping{"email": validation.Pipe("required|email")}).
//	    Messages(validation.Messages{"email.required": "We need your email."}).
//	    Build()
type Builder struct {
	engine *Engine
	req    Request
}

// Values sets the payload.
func (b Builder) Values(values map[string]any) Builder {
	b.req.Values = values
	return b
}

// Rules sets the per-field rule specifications.
func (b Builder) Rules(rules Mapping) Builder {
	b.req.Rules = rules
	return b
}

// Messages sets the custom messages.
func (b Builder) Messages(messages Messages) Builder {
	b.req.Messages = messages
	return b
}

// Request returns the accumulated Request.
func (b Builder) Request() Request { return b.req }

// Build validates the accumulated Request.
func (b Builder) Build() (*Result, error) {
	e := b.engine
	if e == nil {
		e = Default
	}
	return e.Build(b.req)
}
