package paramset

import "fmt"

// ValidatorFunc validates a fully built engine. It receives the engine with
// defaults and initial values installed and should return an error if the
// configuration is unacceptable.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building engines.
type Builder struct {
	def        Definition
	raw        map[string]any
	attrs      map[string]any
	values     map[string]any
	observers  map[string][]ObserverFunc
	global     []ObserverFunc
	validators []ValidatorFunc
	err        error
}

// NewBuilder creates a new engine builder.
func NewBuilder() *Builder {
	return &Builder{
		def:       make(Definition),
		attrs:     make(map[string]any),
		values:    make(map[string]any),
		observers: make(map[string][]ObserverFunc),
	}
}

// WithDefinition sets the full schema definition.
func (b *Builder) WithDefinition(def Definition) *Builder {
	b.def = def
	return b
}

// WithRawDefinition sets the schema from a raw group -> id -> attributes
// mapping, as read from a definition file.
func (b *Builder) WithRawDefinition(raw map[string]any) *Builder {
	b.raw = raw
	return b
}

// WithParameter adds a single parameter spec to the definition.
func (b *Builder) WithParameter(group, id string, spec Spec) *Builder {
	if _, ok := b.def[group]; !ok {
		b.def[group] = make(map[string]Spec)
	}
	if _, dup := b.def[group][id]; dup {
		b.fail(&SchemaError{ID: id, Reason: fmt.Sprintf("duplicate parameter id (group %q)", group)})
		return b
	}
	b.def[group][id] = spec
	return b
}

// WithAttribute extends the recognized attribute vocabulary with a global
// default.
func (b *Builder) WithAttribute(name string, def any) *Builder {
	if _, dup := b.attrs[name]; dup {
		b.fail(&SchemaError{Reason: fmt.Sprintf("attribute %q already registered", name)})
		return b
	}
	b.attrs[name] = def
	return b
}

// WithValues supplies explicit initial values, validated and adopted as the
// first undo baseline instead of the schema defaults.
func (b *Builder) WithValues(values map[string]any) *Builder {
	for id, v := range values {
		b.values[id] = v
	}
	return b
}

// WithObserver registers a per-parameter change observer.
func (b *Builder) WithObserver(id string, fn ObserverFunc) *Builder {
	if fn != nil {
		b.observers[id] = append(b.observers[id], fn)
	}
	return b
}

// WithGlobalObserver registers a global change observer.
func (b *Builder) WithGlobalObserver(fn ObserverFunc) *Builder {
	if fn != nil {
		b.global = append(b.global, fn)
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the
// build process. Multiple validators execute in the order they were added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build creates the engine with all specified options.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	schema := NewSchema()
	for name, def := range b.attrs {
		if err := schema.AddAttribute(name, def); err != nil {
			return nil, err
		}
	}

	def := b.def
	if b.raw != nil {
		parsed, err := schema.parseDefinition(b.raw)
		if err != nil {
			return nil, err
		}
		def = parsed
	}
	if err := schema.SetDefinition(def); err != nil {
		return nil, err
	}

	cfg, err := New(schema)
	if err != nil {
		return nil, err
	}

	if len(b.values) > 0 {
		if err := cfg.ImportSimpleStrict(b.values); err != nil {
			return nil, err
		}
		// Initial values become the first undo baseline.
		if err := cfg.Apply(); err != nil {
			return nil, err
		}
	}

	for id, fns := range b.observers {
		for _, fn := range fns {
			if err := cfg.OnChange(id, fn); err != nil {
				return nil, err
			}
		}
	}
	for _, fn := range b.global {
		cfg.OnAnyChange(fn)
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("paramset build failed: %v", err))
	}
	return cfg
}
