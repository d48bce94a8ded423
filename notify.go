package paramset

// ObserverFunc receives committed value changes from the control-facing
// update path.
type ObserverFunc func(id string, oldValue, newValue any)

// OnChange registers an observer for one parameter id. Observers fire in
// registration order, before any global observer.
func (c *Config) OnChange(id string, fn ObserverFunc) error {
	if !c.schema.Has(id) {
		return &UnknownIDError{ID: id}
	}
	if fn == nil {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers[id] = append(c.observers[id], fn)
	return nil
}

// OnAnyChange registers a global observer, fired for every committed
// control-originated change after the per-parameter observers.
func (c *Config) OnAnyChange(fn ObserverFunc) {
	if fn == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.global = append(c.global, fn)
}

// Update applies a control-originated value change and fires change
// notifications: the spec's own notify callback first, then the per-id
// observers, then the global observers. Notifications run synchronously
// after the value is committed; callback panics are not recovered.
// Programmatic assignment should use Set or SetValues, which do not notify.
func (c *Config) Update(id string, value any) error {
	oldValue, newValue, changed, err := c.set(id, value, false)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	c.fireChange(id, oldValue, newValue)
	return nil
}

// fireChange dispatches notifications outside the store lock.
func (c *Config) fireChange(id string, oldValue, newValue any) {
	spec, ok := c.schema.spec(id)
	if !ok {
		return
	}

	c.mutex.RLock()
	perID := make([]ObserverFunc, len(c.observers[id]))
	copy(perID, c.observers[id])
	global := make([]ObserverFunc, len(c.global))
	copy(global, c.global)
	c.mutex.RUnlock()

	if spec.Notify != nil {
		spec.Notify(oldValue, newValue)
	}
	for _, fn := range perID {
		fn(id, oldValue, newValue)
	}
	for _, fn := range global {
		fn(id, oldValue, newValue)
	}
}
