package paramset

import (
	"errors"
	"fmt"
)

// ErrNoValue is returned by GetStored when a parameter has no assigned value.
var ErrNoValue = errors.New("no value assigned")

// SchemaError reports a bad, duplicate or malformed parameter definition.
type SchemaError struct {
	ID     string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema for parameter %q: %s", e.ID, e.Reason)
}

// TypeMismatchError reports a value whose type cannot be coerced to the
// declared input type of a parameter.
type TypeMismatchError struct {
	ID   string
	Want InputType
	Got  any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q: cannot convert %T to %s", e.ID, e.Got, e.Want)
}

// RangeError reports a value that fails a numeric, length or pattern
// constraint.
type RangeError struct {
	ID         string
	Value      any
	Constraint string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("parameter %q: value %v outside %s", e.ID, e.Value, e.Constraint)
}

// EnumerationError reports a value or index not in a declared enumeration
// list or bit range.
type EnumerationError struct {
	ID    string
	Value any
	Count int
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("parameter %q: value %v not in enumeration of %d entries", e.ID, e.Value, e.Count)
}

// UnknownIDError reports a reference to an undeclared parameter id.
type UnknownIDError struct {
	ID string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown parameter id %q", e.ID)
}

// UnknownGroupError reports a reference to an undeclared group.
type UnknownGroupError struct {
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown parameter group %q", e.Group)
}

// SerializationError reports a malformed interchange payload.
type SerializationError struct {
	ID     string
	Reason string
}

func (e *SerializationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed interchange data: %s", e.Reason)
	}
	return fmt.Sprintf("malformed interchange data for parameter %q: %s", e.ID, e.Reason)
}
