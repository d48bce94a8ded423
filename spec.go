package paramset

import (
	"fmt"
	"regexp"
)

// GroupNone is the reserved "no group" marker. It changes only presentation,
// never validation.
const GroupNone = ""

// InputType is the declared semantic type of a parameter value.
type InputType int

const (
	TypeInt InputType = iota
	TypeFloat
	TypeStr
	TypeBits
	TypeComplex
	TypeList
	TypeNested
)

var inputTypeNames = map[InputType]string{
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeStr:     "str",
	TypeBits:    "bits",
	TypeComplex: "complex",
	TypeList:    "list",
	TypeNested:  "nested-config",
}

func (t InputType) String() string {
	if name, ok := inputTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InputType(%d)", int(t))
}

// ParseInputType converts a type name ("int", "float", "str", "bits",
// "complex", "list", "nested-config") to its InputType.
func ParseInputType(s string) (InputType, error) {
	for t, name := range inputTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, &SchemaError{Reason: fmt.Sprintf("unsupported input type %q", s)}
}

// Constraint restricts the legal values of a parameter. The concrete type
// must match the parameter's InputType; nil means unconstrained.
type Constraint interface {
	constraint()
}

// NumRange bounds int, float and complex parameters to [Min, Max].
// Step is a display increment hint; 0 means unset.
type NumRange struct {
	Min, Max float64
	Step     float64
}

// Enum is a non-empty enumeration list. A str parameter stores one of the
// items; an int parameter stores the zero-based index into the list.
type Enum struct {
	Items []string
}

// LenRange bounds the length of a str or list parameter.
type LenRange struct {
	Min, Max int
}

// Pattern constrains a str parameter to match a regular expression, e.g. a
// hex-color shape like "^#[0-9A-Fa-f]{6}$".
type Pattern struct {
	Expr string

	re *regexp.Regexp
}

// BitField declares one label per bit. Legal integer values are [0, 2^n)
// where n is the label count.
type BitField struct {
	Labels []string
}

func (NumRange) constraint() {}
func (Enum) constraint()     {}
func (LenRange) constraint() {}
func (Pattern) constraint()  {}
func (BitField) constraint() {}

// NotifyFunc is a per-parameter change callback declared in the spec.
type NotifyFunc func(oldValue, newValue any)

// Spec is the declared attribute set of one parameter.
type Spec struct {
	// Type is the semantic value type. Required.
	Type InputType

	// Range constrains legal values; nil means unconstrained.
	Range Constraint

	// Init is the default value adopted at install and reset time.
	Init any

	// Display metadata, passed through to the rendering layer.
	Label    string
	Width    int
	ReadOnly bool
	Tooltip  string
	Row      int
	Column   int

	// Notify is called on control-originated value changes.
	Notify NotifyFunc

	// Child is the full schema of a nested sub-configuration.
	// Required for TypeNested, rejected otherwise.
	Child Definition

	// Extra holds values for attributes registered via AddAttribute.
	Extra map[string]any
}

// Definition is a full schema: group name to parameter id to spec.
type Definition map[string]map[string]Spec

// clone returns a deep copy so callers can never alias registry state.
func (s *Spec) clone() *Spec {
	out := *s
	out.Range = cloneConstraint(s.Range)
	out.Init = copyValue(s.Init)
	if s.Child != nil {
		out.Child = s.Child.clone()
	}
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = copyValue(v)
		}
	}
	return &out
}

func cloneConstraint(c Constraint) Constraint {
	switch r := c.(type) {
	case Enum:
		items := make([]string, len(r.Items))
		copy(items, r.Items)
		return Enum{Items: items}
	case BitField:
		labels := make([]string, len(r.Labels))
		copy(labels, r.Labels)
		return BitField{Labels: labels}
	default:
		// NumRange, LenRange and Pattern are value types without shared
		// containers.
		return c
	}
}

func (d Definition) clone() Definition {
	out := make(Definition, len(d))
	for group, params := range d {
		cp := make(map[string]Spec, len(params))
		for id, spec := range params {
			cp[id] = *spec.clone()
		}
		out[group] = cp
	}
	return out
}
