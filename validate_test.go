package paramset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSpecDefaults(t *testing.T) {
	t.Run("WidthAndInit", func(t *testing.T) {
		spec := &Spec{Type: TypeInt, Range: NumRange{Min: 100, Max: 4000}}
		require.NoError(t, checkSpec("p", spec))
		assert.Equal(t, defaultWidth, spec.Width)
		// Missing initvalue falls back to the constraint minimum.
		assert.Equal(t, int64(100), spec.Init)
	})

	t.Run("TypeIndexedDefaults", func(t *testing.T) {
		cases := []struct {
			name string
			spec Spec
			want any
		}{
			{"IntUnconstrained", Spec{Type: TypeInt}, int64(0)},
			{"FloatRange", Spec{Type: TypeFloat, Range: NumRange{Min: 4, Max: 10}}, 4.0},
			{"StrUnconstrained", Spec{Type: TypeStr}, ""},
			{"StrEnum", Spec{Type: TypeStr, Range: Enum{Items: []string{"Linear", "Sinus"}}}, "Linear"},
			{"IntEnumIndex", Spec{Type: TypeInt, Range: Enum{Items: []string{"a", "b"}}}, int64(0)},
			{"Bits", Spec{Type: TypeBits, Range: BitField{Labels: []string{"x"}}}, int64(0)},
			{"Complex", Spec{Type: TypeComplex, Range: NumRange{Min: -2, Max: 2}}, complex(-2, -2)},
			{"List", Spec{Type: TypeList}, []any{}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				spec := tc.spec
				require.NoError(t, checkSpec("p", &spec))
				assert.Equal(t, tc.want, spec.Init)
			})
		}
	})

	t.Run("InitIsCoerced", func(t *testing.T) {
		spec := &Spec{Type: TypeFloat, Init: 16}
		require.NoError(t, checkSpec("p", spec))
		assert.Equal(t, 16.0, spec.Init)
	})
}

func TestCheckSpecRejections(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
	}{
		{"InitOutOfRange", Spec{Type: TypeInt, Range: NumRange{Min: 100, Max: 4000}, Init: 50}},
		{"InitTypeMismatch", Spec{Type: TypeInt, Init: "many"}},
		{"InvertedNumRange", Spec{Type: TypeInt, Range: NumRange{Min: 10, Max: 1}}},
		{"NegativeStep", Spec{Type: TypeInt, Range: NumRange{Min: 0, Max: 10, Step: -1}}},
		{"EmptyEnum", Spec{Type: TypeInt, Range: Enum{}}},
		{"EmptyBitField", Spec{Type: TypeBits, Range: BitField{}}},
		{"TooManyBitLabels", Spec{Type: TypeBits, Range: BitField{Labels: make([]string, maxBitLabels+1)}}},
		{"BitsWithoutBitField", Spec{Type: TypeBits, Range: NumRange{Min: 0, Max: 7}}},
		{"FloatWithEnum", Spec{Type: TypeFloat, Range: Enum{Items: []string{"a"}}}},
		{"ListWithPattern", Spec{Type: TypeList, Range: Pattern{Expr: ".*"}}},
		{"BadPattern", Spec{Type: TypeStr, Range: Pattern{Expr: "("}}},
		{"InvalidLenRange", Spec{Type: TypeStr, Range: LenRange{Min: 5, Max: 2}}},
		{"NestedWithoutChild", Spec{Type: TypeNested}},
		{"NestedWithRange", Spec{
			Type:  TypeNested,
			Range: NumRange{Min: 0, Max: 1},
			Child: Definition{GroupNone: {"x": {Type: TypeInt}}},
		}},
		{"ChildOnScalar", Spec{Type: TypeInt, Child: Definition{GroupNone: {"x": {Type: TypeInt}}}}},
		{"NestedInitNotMapping", Spec{
			Type:  TypeNested,
			Init:  42,
			Child: Definition{GroupNone: {"x": {Type: TypeInt}}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := tc.spec
			err := checkSpec("p", &spec)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "p", schemaErr.ID)
		})
	}
}

func TestCoerceValue(t *testing.T) {
	t.Run("IntegralFloatNarrows", func(t *testing.T) {
		spec := &Spec{Type: TypeInt}
		v, err := coerceValue("p", spec, 200.0)
		require.NoError(t, err)
		assert.Equal(t, int64(200), v)
	})

	t.Run("FractionalFloatRejected", func(t *testing.T) {
		spec := &Spec{Type: TypeInt}
		_, err := coerceValue("p", spec, 200.5)
		var typeErr *TypeMismatchError
		require.ErrorAs(t, err, &typeErr)
	})

	t.Run("NumericWidensToComplex", func(t *testing.T) {
		spec := &Spec{Type: TypeComplex}
		v, err := coerceValue("p", spec, 3)
		require.NoError(t, err)
		assert.Equal(t, complex(3, 0), v)
	})

	t.Run("ComplexBoundsPerComponent", func(t *testing.T) {
		spec := &Spec{Type: TypeComplex, Range: NumRange{Min: -2, Max: 2}}
		_, err := coerceValue("p", spec, complex(1, 3))
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)

		_, err = coerceValue("p", spec, complex(1, -1))
		require.NoError(t, err)
	})

	t.Run("TypedSliceBecomesList", func(t *testing.T) {
		spec := &Spec{Type: TypeList}
		v, err := coerceValue("p", spec, []float64{0.1, 0.2})
		require.NoError(t, err)
		assert.Equal(t, []any{0.1, 0.2}, v)
	})

	t.Run("ListLengthConstraint", func(t *testing.T) {
		spec := &Spec{Type: TypeList, Range: LenRange{Min: 1, Max: 2}}
		_, err := coerceValue("p", spec, []any{1, 2, 3})
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("StringEnumByMembership", func(t *testing.T) {
		spec := &Spec{Type: TypeStr, Range: Enum{Items: []string{"Linear", "Sinus"}}}
		_, err := coerceValue("p", spec, "Sinus")
		require.NoError(t, err)

		_, err = coerceValue("p", spec, "Cubic")
		var enumErr *EnumerationError
		require.ErrorAs(t, err, &enumErr)
	})

	t.Run("NestedFromMapping", func(t *testing.T) {
		spec := &Spec{
			Type:  TypeNested,
			Child: Definition{GroupNone: {"n": {Type: TypeInt, Init: 1}}},
		}
		v, err := coerceValue("p", spec, map[string]any{"n": 5})
		require.NoError(t, err)
		child, ok := v.(*Config)
		require.True(t, ok)
		n, _ := child.Get("n")
		assert.Equal(t, int64(5), n)
	})
}

func TestValueEqual(t *testing.T) {
	assert.True(t, valueEqual(TypeInt, int64(5), int64(5)))
	assert.False(t, valueEqual(TypeInt, int64(5), int64(6)))
	assert.True(t, valueEqual(TypeList, []any{1, []any{2}}, []any{1, []any{2}}))
	assert.False(t, valueEqual(TypeList, []any{1}, []any{2}))

	t.Run("NestedByValueSnapshot", func(t *testing.T) {
		def := Definition{GroupNone: {"n": {Type: TypeInt, Init: 1}}}
		a, err := NewFromDefinition(def)
		require.NoError(t, err)
		b, err := NewFromDefinition(def)
		require.NoError(t, err)

		assert.True(t, valueEqual(TypeNested, a, b))
		require.NoError(t, b.Set("n", 2))
		assert.False(t, valueEqual(TypeNested, a, b))
	})
}

func TestCopyValue(t *testing.T) {
	orig := []any{map[string]any{"k": []any{1, 2}}}
	copied := copyValue(orig).([]any)

	copied[0].(map[string]any)["k"].([]any)[0] = 99
	assert.Equal(t, 1, orig[0].(map[string]any)["k"].([]any)[0])
}
