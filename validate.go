package paramset

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
)

// Display width used when a spec does not declare one.
const defaultWidth = 20

// Bit-field labels are capped so the legal value range fits an int64.
const maxBitLabels = 62

// checkSpec validates the structural correctness of a single parameter spec,
// fills missing attributes from type-indexed defaults and coerces the
// initial value. The spec is normalized in place.
func checkSpec(id string, spec *Spec) error {
	if _, ok := inputTypeNames[spec.Type]; !ok {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("unsupported input type %v", spec.Type)}
	}
	if spec.Width == 0 {
		spec.Width = defaultWidth
	}

	if err := checkRangeShape(id, spec); err != nil {
		return err
	}

	if spec.Type == TypeNested {
		if spec.Child == nil {
			return &SchemaError{ID: id, Reason: "nested-config requires a child schema"}
		}
		// A nested child schema must be installable on its own.
		child := NewSchema()
		if err := child.SetDefinition(spec.Child); err != nil {
			return &SchemaError{ID: id, Reason: fmt.Sprintf("invalid child schema: %v", err)}
		}
		if spec.Init != nil {
			if _, ok := spec.Init.(map[string]any); !ok {
				return &SchemaError{ID: id, Reason: fmt.Sprintf("initvalue type mismatch: nested-config init must be a mapping, got %T", spec.Init)}
			}
		}
		return nil
	}
	if spec.Child != nil {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("child schema not allowed for input type %s", spec.Type)}
	}

	if spec.Init == nil {
		spec.Init = defaultInit(spec)
	}

	coerced, err := coerceValue(id, spec, spec.Init)
	if err != nil {
		switch err.(type) {
		case *TypeMismatchError:
			return &SchemaError{ID: id, Reason: fmt.Sprintf("initvalue type mismatch: %v", err)}
		default:
			return &SchemaError{ID: id, Reason: fmt.Sprintf("initvalue out of range: %v", err)}
		}
	}
	spec.Init = coerced
	return nil
}

// checkRangeShape enforces the per-type valrange shape rules.
func checkRangeShape(id string, spec *Spec) error {
	bad := func(format string, args ...any) error {
		return &SchemaError{ID: id, Reason: fmt.Sprintf(format, args...)}
	}

	switch spec.Type {
	case TypeBits:
		bf, ok := spec.Range.(BitField)
		if !ok {
			return bad("bits requires a BitField valrange, got %T", spec.Range)
		}
		if len(bf.Labels) == 0 {
			return bad("bit label list must not be empty")
		}
		if len(bf.Labels) > maxBitLabels {
			return bad("too many bit labels (%d, max %d)", len(bf.Labels), maxBitLabels)
		}
		return nil

	case TypeInt:
		switch r := spec.Range.(type) {
		case nil:
			return nil
		case NumRange:
			return checkNumRange(id, r)
		case Enum:
			if len(r.Items) == 0 {
				return bad("enumeration list must not be empty")
			}
			return nil
		default:
			return bad("valrange %T not allowed for input type int", spec.Range)
		}

	case TypeFloat, TypeComplex:
		switch r := spec.Range.(type) {
		case nil:
			return nil
		case NumRange:
			return checkNumRange(id, r)
		default:
			return bad("valrange %T not allowed for input type %s", spec.Range, spec.Type)
		}

	case TypeStr:
		switch r := spec.Range.(type) {
		case nil:
			return nil
		case Enum:
			if len(r.Items) == 0 {
				return bad("enumeration list must not be empty")
			}
			return nil
		case LenRange:
			return checkLenRange(id, r)
		case Pattern:
			re, err := regexp.Compile(r.Expr)
			if err != nil {
				return bad("invalid pattern %q: %v", r.Expr, err)
			}
			spec.Range = Pattern{Expr: r.Expr, re: re}
			return nil
		default:
			return bad("valrange %T not allowed for input type str", spec.Range)
		}

	case TypeList:
		switch r := spec.Range.(type) {
		case nil:
			return nil
		case LenRange:
			return checkLenRange(id, r)
		default:
			return bad("valrange %T not allowed for input type list", spec.Range)
		}

	case TypeNested:
		if spec.Range != nil {
			return bad("valrange not allowed for nested-config")
		}
		return nil
	}
	return nil
}

func checkNumRange(id string, r NumRange) error {
	if r.Min > r.Max {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("numeric range min %v exceeds max %v", r.Min, r.Max)}
	}
	if r.Step < 0 {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("negative step %v", r.Step)}
	}
	return nil
}

func checkLenRange(id string, r LenRange) error {
	if r.Min < 0 || r.Min > r.Max {
		return &SchemaError{ID: id, Reason: fmt.Sprintf("invalid length range (%d, %d)", r.Min, r.Max)}
	}
	return nil
}

// defaultInit returns the type-indexed default initial value, refined by the
// spec's constraint where one narrows the legal set.
func defaultInit(spec *Spec) any {
	switch spec.Type {
	case TypeInt:
		if r, ok := spec.Range.(NumRange); ok {
			return int64(r.Min)
		}
		return int64(0)
	case TypeFloat:
		if r, ok := spec.Range.(NumRange); ok {
			return r.Min
		}
		return 0.0
	case TypeStr:
		if r, ok := spec.Range.(Enum); ok {
			return r.Items[0]
		}
		return ""
	case TypeBits:
		return int64(0)
	case TypeComplex:
		if r, ok := spec.Range.(NumRange); ok {
			return complex(r.Min, r.Min)
		}
		return complex(0, 0)
	case TypeList:
		return []any{}
	}
	return nil
}

// coerceValue verifies and coerces a run-time value against the spec's
// input type, then checks the constraint. It returns the canonical
// representation (int64, float64, string, complex128, []any or *Config)
// and never mutates state.
func coerceValue(id string, spec *Spec, value any) (any, error) {
	mismatch := func() error {
		return &TypeMismatchError{ID: id, Want: spec.Type, Got: value}
	}

	var canonical any
	switch spec.Type {
	case TypeInt, TypeBits:
		n, ok := toInt64(value)
		if !ok {
			return nil, mismatch()
		}
		canonical = n

	case TypeFloat:
		f, ok := toFloat64(value)
		if !ok {
			return nil, mismatch()
		}
		canonical = f

	case TypeComplex:
		z, ok := toComplex128(value)
		if !ok {
			return nil, mismatch()
		}
		canonical = z

	case TypeStr:
		s, ok := value.(string)
		if !ok {
			return nil, mismatch()
		}
		canonical = s

	case TypeList:
		items, ok := toList(value)
		if !ok {
			return nil, mismatch()
		}
		canonical = items

	case TypeNested:
		switch v := value.(type) {
		case *Config:
			canonical = v
		case map[string]any:
			child, err := NewFromDefinition(spec.Child)
			if err != nil {
				return nil, err
			}
			if err := child.ImportSimpleStrict(v); err != nil {
				return nil, err
			}
			canonical = child
		default:
			return nil, mismatch()
		}
		return canonical, nil
	}

	if err := checkConstraint(id, spec, canonical); err != nil {
		return nil, err
	}
	return canonical, nil
}

// checkConstraint checks a canonical value against the spec's constraint.
func checkConstraint(id string, spec *Spec, value any) error {
	switch r := spec.Range.(type) {
	case nil:
		return nil

	case NumRange:
		bounds := fmt.Sprintf("range [%v, %v]", r.Min, r.Max)
		switch v := value.(type) {
		case int64:
			if float64(v) < r.Min || float64(v) > r.Max {
				return &RangeError{ID: id, Value: v, Constraint: bounds}
			}
		case float64:
			if v < r.Min || v > r.Max {
				return &RangeError{ID: id, Value: v, Constraint: bounds}
			}
		case complex128:
			// Bounds apply per component.
			if real(v) < r.Min || real(v) > r.Max || imag(v) < r.Min || imag(v) > r.Max {
				return &RangeError{ID: id, Value: v, Constraint: bounds}
			}
		}
		return nil

	case Enum:
		switch v := value.(type) {
		case string:
			for _, item := range r.Items {
				if item == v {
					return nil
				}
			}
			return &EnumerationError{ID: id, Value: v, Count: len(r.Items)}
		case int64:
			// Integer enumerations store the zero-based index.
			if v < 0 || v >= int64(len(r.Items)) {
				return &EnumerationError{ID: id, Value: v, Count: len(r.Items)}
			}
			return nil
		}
		return nil

	case LenRange:
		var n int
		switch v := value.(type) {
		case string:
			n = len(v)
		case []any:
			n = len(v)
		}
		if n < r.Min || n > r.Max {
			return &RangeError{ID: id, Value: value, Constraint: fmt.Sprintf("length range [%d, %d]", r.Min, r.Max)}
		}
		return nil

	case Pattern:
		s, ok := value.(string)
		if !ok {
			return nil
		}
		re := r.re
		if re == nil {
			var err error
			re, err = regexp.Compile(r.Expr)
			if err != nil {
				return &SchemaError{ID: id, Reason: fmt.Sprintf("invalid pattern %q: %v", r.Expr, err)}
			}
		}
		if !re.MatchString(s) {
			return &RangeError{ID: id, Value: s, Constraint: fmt.Sprintf("pattern %q", r.Expr)}
		}
		return nil

	case BitField:
		if v, ok := value.(int64); ok {
			limit := int64(1) << len(r.Labels)
			if v < 0 || v >= limit {
				return &EnumerationError{ID: id, Value: v, Count: len(r.Labels)}
			}
		}
		return nil
	}
	return nil
}

// valueEqual compares two canonical values of the same input type.
// Comparison is defined once here; idempotent assignment is detected with it.
func valueEqual(t InputType, a, b any) bool {
	switch t {
	case TypeInt, TypeBits, TypeFloat, TypeStr, TypeComplex:
		return a == b
	case TypeList:
		return reflect.DeepEqual(a, b)
	case TypeNested:
		ca, okA := a.(*Config)
		cb, okB := b.(*Config)
		if !okA || !okB {
			return false
		}
		if ca == cb {
			return true
		}
		return reflect.DeepEqual(ca.ExportSimple(), cb.ExportSimple())
	}
	return false
}

// copyValue deep-copies a value so no mutable container is ever shared
// between the registry, the store and callers.
func copyValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case *Config:
		return val.Clone()
	default:
		return v
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	}
	return 0, false
}

// floatToInt64 narrows a float to int64 only when it carries no fraction.
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toComplex128(v any) (complex128, bool) {
	switch z := v.(type) {
	case complex64:
		return complex128(z), true
	case complex128:
		return z, true
	}
	if f, ok := toFloat64(v); ok {
		return complex(f, 0), true
	}
	return 0, false
}

func toList(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return copyValue(items).([]any), true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = copyValue(rv.Index(i).Interface())
	}
	return out, true
}
