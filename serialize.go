package paramset

import (
	"errors"
	"fmt"
)

// Interchange keys of the encoded complex number record.
const (
	complexRealKey = "real"
	complexImagKey = "imag"
)

// ExportSimple produces the simple interchange mapping, id to raw value.
// Complex values encode as {real, imag} records and nested configurations
// recurse into their own simple mapping.
func (c *Config) ExportSimple() map[string]any {
	c.schema.mutex.RLock()
	ids := c.schema.allIDs()
	c.schema.mutex.RUnlock()

	out := make(map[string]any, len(ids))
	for _, id := range ids {
		v, err := c.Get(id)
		if err != nil {
			continue
		}
		out[id] = encodeValue(v)
	}
	return out
}

// Export produces the full interchange mapping, id to {value, oldValue}.
func (c *Config) Export() map[string]any {
	c.schema.mutex.RLock()
	ids := c.schema.allIDs()
	c.schema.mutex.RUnlock()

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := make(map[string]any, len(ids))
	for _, id := range ids {
		it, exists := c.items[id]
		if !exists || !it.hasValue {
			continue
		}
		out[id] = map[string]any{
			"value":    encodeValue(it.value),
			"oldValue": encodeValue(it.oldValue),
		}
	}
	return out
}

// encodeValue converts a canonical value to its interchange representation.
func encodeValue(v any) any {
	switch val := v.(type) {
	case complex128:
		return map[string]any{
			complexRealKey: real(val),
			complexImagKey: imag(val),
		}
	case *Config:
		return val.ExportSimple()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

// reviveComplex reconstructs complex values from records holding exactly
// the two keys real and imag with numeric values. Any other two-key record
// passes through unchanged. The walk recurses through maps and slices.
func reviveComplex(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 2 {
			rawReal, hasReal := val[complexRealKey]
			rawImag, hasImag := val[complexImagKey]
			if hasReal && hasImag {
				r, okReal := toFloat64(rawReal)
				i, okImag := toFloat64(rawImag)
				if okReal && okImag {
					return complex(r, i)
				}
			}
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = reviveComplex(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = reviveComplex(item)
		}
		return out
	default:
		return v
	}
}

// ImportSimple validates and applies a simple interchange mapping. Unknown
// ids and invalid values are rejected per id; assignments already applied
// in the same call stay in place and the per-id errors are joined.
func (c *Config) ImportSimple(data map[string]any) error {
	var errs []error
	for _, id := range sortedKeys(data) {
		if err := c.importOne(id, data[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ImportSimpleStrict validates every id and value up front and mutates the
// store only when the whole mapping is acceptable.
func (c *Config) ImportSimpleStrict(data map[string]any) error {
	for _, id := range sortedKeys(data) {
		spec, ok := c.schema.spec(id)
		if !ok {
			return &UnknownIDError{ID: id}
		}
		decoded, err := c.decodeFor(id, spec, data[id])
		if err != nil {
			return err
		}
		if spec.Type == TypeNested {
			// Deep-validate against a scratch child so nothing mutates on
			// failure.
			scratch, err := NewFromDefinition(spec.Child)
			if err != nil {
				return err
			}
			if err := scratch.ImportSimpleStrict(decoded.(map[string]any)); err != nil {
				return err
			}
		}
	}
	return c.ImportSimple(data)
}

// Import validates and applies a full interchange mapping of
// id to {value, oldValue} records.
func (c *Config) Import(data map[string]any) error {
	var errs []error
	for _, id := range sortedKeys(data) {
		if err := c.importFull(id, data[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) importOne(id string, raw any) error {
	spec, ok := c.schema.spec(id)
	if !ok {
		return &UnknownIDError{ID: id}
	}
	value, err := c.decodeFor(id, spec, raw)
	if err != nil {
		return err
	}

	if spec.Type == TypeNested {
		// The child engine keeps its schema; only its values change.
		current, err := c.Get(id)
		if err != nil {
			return err
		}
		child, ok := current.(*Config)
		if !ok {
			return &SerializationError{ID: id, Reason: fmt.Sprintf("stored nested value is %T", current)}
		}
		if err := child.ImportSimple(value.(map[string]any)); err != nil {
			return err
		}
		return c.Set(id, child)
	}
	return c.Set(id, value)
}

func (c *Config) importFull(id string, raw any) error {
	spec, ok := c.schema.spec(id)
	if !ok {
		return &UnknownIDError{ID: id}
	}
	record, ok := raw.(map[string]any)
	if !ok {
		return &SerializationError{ID: id, Reason: fmt.Sprintf("expected a {value, oldValue} record, got %T", raw)}
	}
	rawValue, hasValue := record["value"]
	rawOld, hasOld := record["oldValue"]
	if !hasValue || !hasOld {
		return &SerializationError{ID: id, Reason: "record is missing value or oldValue"}
	}

	if err := c.importOne(id, rawValue); err != nil {
		return err
	}

	oldDecoded, err := c.decodeFor(id, spec, rawOld)
	if err != nil {
		return err
	}
	if spec.Type == TypeNested {
		// The baseline of a nested parameter is a value snapshot of its
		// child engine.
		child, err := NewFromDefinition(spec.Child)
		if err != nil {
			return err
		}
		if err := child.ImportSimple(oldDecoded.(map[string]any)); err != nil {
			return err
		}
		oldDecoded = child
	} else {
		oldDecoded, err = coerceValue(id, spec, oldDecoded)
		if err != nil {
			return err
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	it := c.items[id]
	it.oldValue = oldDecoded
	it.hasOld = true
	return nil
}

// decodeFor converts raw interchange data into a form acceptable to the
// validator, without mutating the store.
func (c *Config) decodeFor(id string, spec *Spec, raw any) (any, error) {
	switch spec.Type {
	case TypeComplex, TypeList:
		raw = reviveComplex(raw)
	case TypeNested:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, &SerializationError{ID: id, Reason: fmt.Sprintf("nested-config data must be a mapping, got %T", raw)}
		}
		return map[string]any(m), nil
	}
	if _, err := coerceValue(id, spec, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
