package paramset

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// builtinAttrs are the attribute names recognized in raw definitions.
// AddAttribute extends this vocabulary per schema.
var builtinAttrs = map[string]bool{
	"inputtype": true,
	"valrange":  true,
	"initvalue": true,
	"label":     true,
	"width":     true,
	"readonly":  true,
	"tooltip":   true,
	"row":       true,
	"column":    true,
	"schema":    true,
}

// Schema stores, per group and parameter id, the declared attribute set and
// validates structural correctness at registration time. A schema shared
// with an engine must be treated as immutable for the engine's lifetime.
type Schema struct {
	groups  map[string][]string // group -> sorted parameter ids
	specs   map[string]*Spec    // id -> normalized spec
	groupOf map[string]string   // id -> owning group
	attrs   map[string]any      // extended attribute vocabulary -> default
	mutex   sync.RWMutex
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{
		groups:  make(map[string][]string),
		specs:   make(map[string]*Spec),
		groupOf: make(map[string]string),
		attrs:   make(map[string]any),
	}
}

// SetDefinition installs a full schema. Ids must be unique across all
// groups. On any failure the schema is left at its prior state.
func (s *Schema) SetDefinition(def Definition) error {
	groups := make(map[string][]string, len(def))
	specs := make(map[string]*Spec)
	groupOf := make(map[string]string)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, group := range sortedKeys(def) {
		ids := sortedKeys(def[group])
		for _, id := range ids {
			if _, dup := specs[id]; dup {
				return &SchemaError{ID: id, Reason: fmt.Sprintf("duplicate parameter id (groups %q and %q)", groupOf[id], group)}
			}
			spec := def[group][id]
			normalized := spec.clone()
			if err := s.checkExtras(id, normalized); err != nil {
				return err
			}
			if err := checkSpec(id, normalized); err != nil {
				return err
			}
			specs[id] = normalized
			groupOf[id] = group
		}
		groups[group] = ids
	}

	s.groups = groups
	s.specs = specs
	s.groupOf = groupOf
	return nil
}

// AddParameter adds a single parameter with the same validation as
// SetDefinition. It fails if the id already exists in any group.
func (s *Schema) AddParameter(group, id string, spec Spec) error {
	if id == "" {
		return &SchemaError{Reason: "parameter id must not be empty"}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.specs[id]; exists {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("duplicate parameter id (group %q)", s.groupOf[id])}
	}

	normalized := spec.clone()
	if err := s.checkExtras(id, normalized); err != nil {
		return err
	}
	if err := checkSpec(id, normalized); err != nil {
		return err
	}

	s.specs[id] = normalized
	s.groupOf[id] = group
	ids := append(s.groups[group], id)
	sort.Strings(ids)
	s.groups[group] = ids
	return nil
}

// AddAttribute extends the recognized attribute vocabulary with a global
// default. It fails if the name is already known, built-in or extended.
func (s *Schema) AddAttribute(name string, def any) error {
	if name == "" {
		return &SchemaError{Reason: "attribute name must not be empty"}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if builtinAttrs[name] {
		return &SchemaError{Reason: fmt.Sprintf("attribute %q is built in", name)}
	}
	if _, exists := s.attrs[name]; exists {
		return &SchemaError{Reason: fmt.Sprintf("attribute %q already registered", name)}
	}
	s.attrs[name] = copyValue(def)
	return nil
}

// checkExtras rejects unrecognized extra attribute names and fills missing
// registered attributes with their defaults. Callers hold the lock.
func (s *Schema) checkExtras(id string, spec *Spec) error {
	for name := range spec.Extra {
		if _, known := s.attrs[name]; !known {
			return &SchemaError{ID: id, Reason: fmt.Sprintf("unknown attribute %q", name)}
		}
	}
	if len(s.attrs) == 0 {
		return nil
	}
	if spec.Extra == nil {
		spec.Extra = make(map[string]any, len(s.attrs))
	}
	for name, def := range s.attrs {
		if _, set := spec.Extra[name]; !set {
			spec.Extra[name] = copyValue(def)
		}
	}
	return nil
}

// Definition returns a deep copy of the full schema.
func (s *Schema) Definition() Definition {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(Definition, len(s.groups))
	for group, ids := range s.groups {
		params := make(map[string]Spec, len(ids))
		for _, id := range ids {
			params[id] = *s.specs[id].clone()
		}
		out[group] = params
	}
	return out
}

// GroupDefinition returns a deep copy of one group's schema.
func (s *Schema) GroupDefinition(group string) (map[string]Spec, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids, ok := s.groups[group]
	if !ok {
		return nil, &UnknownGroupError{Group: group}
	}
	params := make(map[string]Spec, len(ids))
	for _, id := range ids {
		params[id] = *s.specs[id].clone()
	}
	return params, nil
}

// SpecOf returns a deep copy of one parameter's spec, with all defaults
// filled in.
func (s *Schema) SpecOf(id string) (Spec, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	spec, ok := s.specs[id]
	if !ok {
		return Spec{}, &UnknownIDError{ID: id}
	}
	return *spec.clone(), nil
}

// Groups returns all group names in sorted order.
func (s *Schema) Groups() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return sortedKeys(s.groups)
}

// IDs returns the sorted parameter ids of a group.
func (s *Schema) IDs(group string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids, ok := s.groups[group]
	if !ok {
		return nil, &UnknownGroupError{Group: group}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// GroupOf returns the group owning a parameter id.
func (s *Schema) GroupOf(id string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	group, ok := s.groupOf[id]
	if !ok {
		return "", &UnknownIDError{ID: id}
	}
	return group, nil
}

// Has reports whether the id is declared.
func (s *Schema) Has(id string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.specs[id]
	return ok
}

// allIDs returns every declared id, sorted. Callers hold the lock.
func (s *Schema) allIDs() []string {
	return sortedKeys(s.specs)
}

// spec returns the live spec for internal use. Callers must not mutate it.
func (s *Schema) spec(id string) (*Spec, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	spec, ok := s.specs[id]
	return spec, ok
}

// SetDefinitionRaw installs a schema given in raw mapping form,
// group -> id -> attribute map, as produced by deserialized definition
// files. Unknown attribute names are rejected.
func (s *Schema) SetDefinitionRaw(raw map[string]any) error {
	def, err := s.parseDefinition(raw)
	if err != nil {
		return err
	}
	return s.SetDefinition(def)
}

// ParseDefinition converts a raw group -> id -> attributes mapping into a
// typed Definition without the extended attribute vocabulary of a specific
// schema.
func ParseDefinition(raw map[string]any) (Definition, error) {
	return NewSchema().parseDefinition(raw)
}

// rawAttrs mirrors the recognized attribute keys of a raw definition.
// Unlisted keys land in Rest and are checked against the extended
// vocabulary.
type rawAttrs struct {
	InputType string         `mapstructure:"inputtype"`
	ValRange  any            `mapstructure:"valrange"`
	InitValue any            `mapstructure:"initvalue"`
	Label     string         `mapstructure:"label"`
	Width     int            `mapstructure:"width"`
	ReadOnly  bool           `mapstructure:"readonly"`
	Tooltip   string         `mapstructure:"tooltip"`
	Row       int            `mapstructure:"row"`
	Column    int            `mapstructure:"column"`
	Schema    map[string]any `mapstructure:"schema"`
	Rest      map[string]any `mapstructure:",remain"`
}

func (s *Schema) parseDefinition(raw map[string]any) (Definition, error) {
	def := make(Definition, len(raw))
	for group, groupRaw := range raw {
		params, ok := groupRaw.(map[string]any)
		if !ok {
			return nil, &SchemaError{Reason: fmt.Sprintf("group %q is not a mapping (got %T)", group, groupRaw)}
		}
		groupDef := make(map[string]Spec, len(params))
		for id, attrsRaw := range params {
			attrs, ok := attrsRaw.(map[string]any)
			if !ok {
				return nil, &SchemaError{ID: id, Reason: fmt.Sprintf("attributes are not a mapping (got %T)", attrsRaw)}
			}
			spec, err := s.parseSpec(id, attrs)
			if err != nil {
				return nil, err
			}
			groupDef[id] = *spec
		}
		def[group] = groupDef
	}
	return def, nil
}

func (s *Schema) parseSpec(id string, attrs map[string]any) (*Spec, error) {
	var ra rawAttrs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ra,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute decoder: %w", err)
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, &SchemaError{ID: id, Reason: fmt.Sprintf("malformed attributes: %v", err)}
	}

	for name := range ra.Rest {
		s.mutex.RLock()
		_, known := s.attrs[name]
		s.mutex.RUnlock()
		if !known {
			return nil, &SchemaError{ID: id, Reason: fmt.Sprintf("unknown attribute %q", name)}
		}
	}

	// Missing inputtype falls back to the type-indexed default, str.
	t := TypeStr
	if ra.InputType != "" {
		t, err = ParseInputType(ra.InputType)
		if err != nil {
			return nil, &SchemaError{ID: id, Reason: fmt.Sprintf("unsupported input type %q", ra.InputType)}
		}
	}

	spec := &Spec{
		Type:     t,
		Init:     ra.InitValue,
		Label:    ra.Label,
		Width:    ra.Width,
		ReadOnly: ra.ReadOnly,
		Tooltip:  ra.Tooltip,
		Row:      ra.Row,
		Column:   ra.Column,
		Extra:    ra.Rest,
	}

	if ra.ValRange != nil {
		spec.Range, err = rangeFromRaw(id, t, ra.ValRange)
		if err != nil {
			return nil, err
		}
	}

	if ra.Schema != nil {
		child, err := s.parseDefinition(ra.Schema)
		if err != nil {
			return nil, err
		}
		spec.Child = child
	}
	return spec, nil
}

// rangeFromRaw interprets a raw valrange sequence by input type: numeric
// 2- or 3-tuples become NumRange, string lists become Enum, Pattern or
// BitField, integer pairs on str/list become LenRange.
func rangeFromRaw(id string, t InputType, raw any) (Constraint, error) {
	bad := func(format string, args ...any) error {
		return &SchemaError{ID: id, Reason: fmt.Sprintf(format, args...)}
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, bad("valrange must be a sequence, got %T", raw)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	if len(items) == 0 {
		return nil, bad("valrange must not be empty")
	}

	strings := make([]string, 0, len(items))
	numbers := make([]float64, 0, len(items))
	allStrings, allNumbers := true, true
	for _, item := range items {
		if str, ok := item.(string); ok {
			strings = append(strings, str)
		} else {
			allStrings = false
		}
		if f, ok := toFloat64(item); ok {
			numbers = append(numbers, f)
		} else {
			allNumbers = false
		}
	}

	switch {
	case allStrings:
		switch t {
		case TypeBits:
			return BitField{Labels: strings}, nil
		case TypeInt:
			return Enum{Items: strings}, nil
		case TypeStr:
			if len(strings) == 1 {
				return Pattern{Expr: strings[0]}, nil
			}
			return Enum{Items: strings}, nil
		}
		return nil, bad("string valrange not allowed for input type %s", t)

	case allNumbers:
		switch t {
		case TypeInt, TypeFloat, TypeComplex:
			if len(numbers) < 2 || len(numbers) > 3 {
				return nil, bad("numeric valrange must have 2 or 3 elements, got %d", len(numbers))
			}
			r := NumRange{Min: numbers[0], Max: numbers[1]}
			if len(numbers) == 3 {
				r.Step = numbers[2]
			}
			return r, nil
		case TypeStr, TypeList:
			if len(numbers) != 2 {
				return nil, bad("length valrange must have 2 elements, got %d", len(numbers))
			}
			return LenRange{Min: int(numbers[0]), Max: int(numbers[1])}, nil
		}
		return nil, bad("numeric valrange not allowed for input type %s", t)
	}
	return nil, bad("mixed valrange element types")
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
