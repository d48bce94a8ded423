package paramset

import "fmt"

// Binding is an opaque handle to an external control. The engine pushes
// values to it and pulls values from it but never inspects its internals.
type Binding interface {
	// Pull reads the control's current value.
	Pull() (any, error)

	// Push writes a value to the control.
	Push(value any) error
}

// Bind registers an external control handle for a parameter id.
func (c *Config) Bind(id string, b Binding) error {
	if !c.schema.Has(id) {
		return &UnknownIDError{ID: id}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if b == nil {
		delete(c.bindings, id)
		return nil
	}
	c.bindings[id] = b
	return nil
}

// Unbind removes the control handle of a parameter id, if any.
func (c *Config) Unbind(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.bindings, id)
}

// Bound reports whether a control handle is registered for the id.
func (c *Config) Bound(id string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.bindings[id]
	return ok
}

// GetSync refresh-pulls the bound control's value into the store before
// reading. Without a binding it behaves like Get.
func (c *Config) GetSync(id string) (any, error) {
	if err := c.pullBound(id); err != nil {
		return nil, err
	}
	return c.Get(id)
}

// SetSync assigns a value like Set and pushes it to the bound control,
// if any.
func (c *Config) SetSync(id string, value any) error {
	_, newValue, _, err := c.set(id, value, false)
	if err != nil {
		return err
	}
	return c.pushBound(id, newValue)
}

// pullBound refreshes the stored value from the control handle. Ids without
// a binding are a no-op. The pulled value passes through validation; an
// invalid control value is rejected and not stored.
func (c *Config) pullBound(id string) error {
	c.mutex.RLock()
	b, ok := c.bindings[id]
	c.mutex.RUnlock()
	if !ok {
		return nil
	}

	value, err := b.Pull()
	if err != nil {
		return fmt.Errorf("pull from binding for %q: %w", id, err)
	}
	return c.Set(id, value)
}

// pushBound writes a value to the control handle, if one is registered.
func (c *Config) pushBound(id string, value any) error {
	c.mutex.RLock()
	b, ok := c.bindings[id]
	c.mutex.RUnlock()
	if !ok {
		return nil
	}

	if err := b.Push(value); err != nil {
		return fmt.Errorf("push to binding for %q: %w", id, err)
	}
	return nil
}
