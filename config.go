package paramset

import (
	"errors"
	"fmt"
	"sync"
)

// item holds the current and last-committed value for one parameter id.
type item struct {
	value    any
	oldValue any
	hasValue bool
	hasOld   bool
}

// Config manages the run-time values of a declared parameter schema:
// validated mutation, single-level commit/undo history, change notification
// and structured serialization.
type Config struct {
	schema    *Schema
	items     map[string]*item
	bindings  map[string]Binding
	observers map[string][]ObserverFunc
	global    []ObserverFunc
	mutex     sync.RWMutex
}

// New creates an engine over an installed schema and initializes every
// parameter to its declared default.
func New(schema *Schema) (*Config, error) {
	c := &Config{
		schema:    schema,
		items:     make(map[string]*item),
		bindings:  make(map[string]Binding),
		observers: make(map[string][]ObserverFunc),
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromDefinition installs the definition on a fresh schema and creates
// an engine over it.
func NewFromDefinition(def Definition) (*Config, error) {
	schema := NewSchema()
	if err := schema.SetDefinition(def); err != nil {
		return nil, err
	}
	return New(schema)
}

// Schema returns the engine's schema registry.
func (c *Config) Schema() *Schema {
	return c.schema
}

// defaultValue constructs the declared default for a spec. Nested parameters
// get a fresh, fully independent child engine.
func defaultValue(spec *Spec) (any, error) {
	if spec.Type != TypeNested {
		return copyValue(spec.Init), nil
	}
	child, err := NewFromDefinition(spec.Child)
	if err != nil {
		return nil, err
	}
	if init, ok := spec.Init.(map[string]any); ok {
		if err := child.ImportSimpleStrict(init); err != nil {
			return nil, err
		}
		if err := child.Apply(); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// Get returns the current value of a parameter, or the schema default if no
// value has been assigned.
func (c *Config) Get(id string) (any, error) {
	spec, ok := c.schema.spec(id)
	if !ok {
		return nil, &UnknownIDError{ID: id}
	}

	c.mutex.RLock()
	it, exists := c.items[id]
	if exists && it.hasValue {
		v := it.value
		if spec.Type != TypeNested {
			// Lists and other containers are copied out; a nested child
			// engine is handed out live, it guards itself.
			v = copyValue(v)
		}
		c.mutex.RUnlock()
		return v, nil
	}
	c.mutex.RUnlock()

	return defaultValue(spec)
}

// GetStored returns the current value without falling back to the default;
// ErrNoValue is returned for an unset parameter.
func (c *Config) GetStored(id string) (any, error) {
	spec, ok := c.schema.spec(id)
	if !ok {
		return nil, &UnknownIDError{ID: id}
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	it, exists := c.items[id]
	if !exists || !it.hasValue {
		return nil, fmt.Errorf("parameter %q: %w", id, ErrNoValue)
	}
	if spec.Type == TypeNested {
		return it.value, nil
	}
	return copyValue(it.value), nil
}

// Set validates and assigns a new value. The undo baseline moves to the
// previous value only when the new value differs from the current one, so
// idempotent assignment does not disturb history. Set does not fire change
// notifications; see Update for the control-facing path.
func (c *Config) Set(id string, value any) error {
	_, _, _, err := c.set(id, value, false)
	return err
}

// set is the single validated mutation point. With init true the baseline
// is stamped to the new value itself (schema install and reset time).
func (c *Config) set(id string, value any, init bool) (oldValue, newValue any, changed bool, err error) {
	spec, ok := c.schema.spec(id)
	if !ok {
		return nil, nil, false, &UnknownIDError{ID: id}
	}

	coerced, err := coerceValue(id, spec, value)
	if err != nil {
		return nil, nil, false, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	it, exists := c.items[id]
	if !exists {
		it = &item{}
		c.items[id] = it
	}

	oldValue = it.value
	if init {
		it.value = coerced
		it.oldValue = copyValue(coerced)
		it.hasValue = true
		it.hasOld = true
		return oldValue, coerced, true, nil
	}

	if it.hasValue && valueEqual(spec.Type, it.value, coerced) {
		return oldValue, coerced, false, nil
	}
	if it.hasValue {
		it.oldValue = it.value
		it.hasOld = true
	}
	it.value = coerced
	it.hasValue = true
	return oldValue, coerced, true, nil
}

// SetValues applies Set per id. A failure on one id does not roll back
// assignments already made in the same call; the per-id errors are joined.
func (c *Config) SetValues(values map[string]any) error {
	var errs []error
	for _, id := range sortedKeys(values) {
		if err := c.Set(id, values[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply commits value to oldValue for the selected ids (all ids when none
// are given), establishing the undo baseline. Parameters with a bound
// control are refresh-pulled first.
func (c *Config) Apply(ids ...string) error {
	scope, err := c.resolveIDs(ids)
	if err != nil {
		return err
	}
	return c.apply(scope)
}

// ApplyGroups commits the undo baseline for every parameter of the given
// groups.
func (c *Config) ApplyGroups(groups ...string) error {
	scope, err := c.resolveGroups(groups)
	if err != nil {
		return err
	}
	return c.apply(scope)
}

func (c *Config) apply(ids []string) error {
	for _, id := range ids {
		if err := c.pullBound(id); err != nil {
			return err
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, id := range ids {
		it, exists := c.items[id]
		if !exists || !it.hasValue {
			continue
		}
		it.oldValue = copyValue(it.value)
		it.hasOld = true
	}
	return nil
}

// Undo restores value from oldValue for the selected ids (all ids when none
// are given). Ids without a recorded baseline are left untouched.
func (c *Config) Undo(ids ...string) error {
	scope, err := c.resolveIDs(ids)
	if err != nil {
		return err
	}
	c.undo(scope)
	return nil
}

// UndoGroups restores the undo baseline for every parameter of the given
// groups.
func (c *Config) UndoGroups(groups ...string) error {
	scope, err := c.resolveGroups(groups)
	if err != nil {
		return err
	}
	c.undo(scope)
	return nil
}

func (c *Config) undo(ids []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, id := range ids {
		it, exists := c.items[id]
		if !exists || !it.hasOld {
			continue
		}
		it.value = copyValue(it.oldValue)
		it.hasValue = true
	}
}

// GroupValues returns an id to value snapshot scoped to one group.
func (c *Config) GroupValues(group string) (map[string]any, error) {
	ids, err := c.schema.IDs(group)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		v, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// Values returns an id to value snapshot of the whole store.
func (c *Config) Values() map[string]any {
	c.schema.mutex.RLock()
	ids := c.schema.allIDs()
	c.schema.mutex.RUnlock()

	out := make(map[string]any, len(ids))
	for _, id := range ids {
		if v, err := c.Get(id); err == nil {
			out[id] = v
		}
	}
	return out
}

// Reset reinitializes every parameter to its declared default and stamps
// the undo baseline.
func (c *Config) Reset() error {
	c.schema.mutex.RLock()
	ids := c.schema.allIDs()
	c.schema.mutex.RUnlock()

	for _, id := range ids {
		if err := c.ResetID(id); err != nil {
			return err
		}
	}
	return nil
}

// ResetID reinitializes one parameter to its declared default.
func (c *Config) ResetID(id string) error {
	spec, ok := c.schema.spec(id)
	if !ok {
		return &UnknownIDError{ID: id}
	}
	def, err := defaultValue(spec)
	if err != nil {
		return err
	}
	_, _, _, err = c.set(id, def, true)
	return err
}

// Clone creates a deep copy of the value store sharing the same immutable
// schema. Bindings and observers are not carried over; a clone is a plain
// edit buffer.
func (c *Config) Clone() *Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	clone := &Config{
		schema:    c.schema,
		items:     make(map[string]*item, len(c.items)),
		bindings:  make(map[string]Binding),
		observers: make(map[string][]ObserverFunc),
	}
	for id, it := range c.items {
		clone.items[id] = &item{
			value:    copyValue(it.value),
			oldValue: copyValue(it.oldValue),
			hasValue: it.hasValue,
			hasOld:   it.hasOld,
		}
	}
	return clone
}

// CopyValuesFrom adopts the values of another engine over the same schema,
// the accept half of the dialog-edit model. Equivalent to a full SetValues
// of the other engine's current values.
func (c *Config) CopyValuesFrom(other *Config) error {
	if other.schema != c.schema {
		return &SchemaError{Reason: "cannot copy values between engines with different schemas"}
	}
	return c.SetValues(other.Values())
}

// resolveIDs validates an id scope; an empty scope selects every id.
func (c *Config) resolveIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		c.schema.mutex.RLock()
		defer c.schema.mutex.RUnlock()
		return c.schema.allIDs(), nil
	}
	for _, id := range ids {
		if !c.schema.Has(id) {
			return nil, &UnknownIDError{ID: id}
		}
	}
	return ids, nil
}

// resolveGroups expands groups to their parameter ids; an empty scope
// selects every id.
func (c *Config) resolveGroups(groups []string) ([]string, error) {
	if len(groups) == 0 {
		c.schema.mutex.RLock()
		defer c.schema.mutex.RUnlock()
		return c.schema.allIDs(), nil
	}
	var out []string
	for _, group := range groups {
		ids, err := c.schema.IDs(group)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}
