package paramset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateNotifies(t *testing.T) {
	var order []string
	def := Definition{
		GroupNone: {
			"maxIter": {
				Type:  TypeInt,
				Range: NumRange{Min: 100, Max: 4000, Step: 10},
				Init:  256,
				Notify: func(oldValue, newValue any) {
					order = append(order, "spec")
				},
			},
		},
	}
	cfg, err := NewFromDefinition(def)
	require.NoError(t, err)

	var gotOld, gotNew any
	require.NoError(t, cfg.OnChange("maxIter", func(id string, oldValue, newValue any) {
		order = append(order, "observer")
		gotOld, gotNew = oldValue, newValue
	}))
	cfg.OnAnyChange(func(id string, oldValue, newValue any) {
		order = append(order, "global")
		assert.Equal(t, "maxIter", id)
	})

	t.Run("FiresInOrder", func(t *testing.T) {
		require.NoError(t, cfg.Update("maxIter", 500))
		assert.Equal(t, []string{"spec", "observer", "global"}, order)
		assert.Equal(t, int64(256), gotOld)
		assert.Equal(t, int64(500), gotNew)
	})

	t.Run("IdempotentUpdateIsSilent", func(t *testing.T) {
		order = nil
		require.NoError(t, cfg.Update("maxIter", 500))
		assert.Empty(t, order)
	})

	t.Run("RejectedUpdateIsSilent", func(t *testing.T) {
		order = nil
		require.Error(t, cfg.Update("maxIter", 4001))
		assert.Empty(t, order)
	})

	t.Run("SetDoesNotNotify", func(t *testing.T) {
		order = nil
		require.NoError(t, cfg.Set("maxIter", 1000))
		assert.Empty(t, order)
	})
}

func TestObserverRegistration(t *testing.T) {
	cfg := newTestConfig(t)

	t.Run("UnknownID", func(t *testing.T) {
		err := cfg.OnChange("nope", func(string, any, any) {})
		var unknownErr *UnknownIDError
		require.ErrorAs(t, err, &unknownErr)
	})

	t.Run("NilObserverIgnored", func(t *testing.T) {
		require.NoError(t, cfg.OnChange("maxIter", nil))
		cfg.OnAnyChange(nil)
		require.NoError(t, cfg.Update("maxIter", 500))
	})

	t.Run("RegistrationOrder", func(t *testing.T) {
		var order []int
		require.NoError(t, cfg.OnChange("bailout", func(string, any, any) { order = append(order, 1) }))
		require.NoError(t, cfg.OnChange("bailout", func(string, any, any) { order = append(order, 2) }))

		require.NoError(t, cfg.Update("bailout", 8.0))
		assert.Equal(t, []int{1, 2}, order)
	})
}
