package paramset

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearPalette(t *testing.T) {
	grey := colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}

	t.Run("ExactSize", func(t *testing.T) {
		for _, size := range []int{1, 2, 7, 100, 4096} {
			out := LinearPalette(size, []colorful.Color{black, white})
			assert.Len(t, out, size, "size %d", size)
		}
	})

	t.Run("EndpointsHitStops", func(t *testing.T) {
		out := LinearPalette(100, []colorful.Color{black, white})
		assert.Equal(t, black, out[0])
		assert.Equal(t, white, out[99])
	})

	t.Run("LastSegmentAbsorbsRemainder", func(t *testing.T) {
		// 3 stops, 11 entries: 5 in the first segment, 6 in the last.
		out := LinearPalette(11, []colorful.Color{black, grey, white})
		require.Len(t, out, 11)
		assert.Equal(t, black, out[0])
		assert.Equal(t, grey, out[5])
		assert.Equal(t, white, out[10])
	})

	t.Run("NoStopsGreyscaleRamp", func(t *testing.T) {
		out := LinearPalette(3, nil)
		require.Len(t, out, 3)
		assert.Equal(t, colorful.Color{}, out[0])
		assert.Equal(t, grey, out[1])
		assert.Equal(t, white, out[2])
	})

	t.Run("SingleStopConstant", func(t *testing.T) {
		out := LinearPalette(4, []colorful.Color{grey})
		for _, c := range out {
			assert.Equal(t, grey, c)
		}
	})

	t.Run("ChannelsStayInRange", func(t *testing.T) {
		out := LinearPalette(256, []colorful.Color{black, {R: 1, G: 0.2, B: 0.8}, white})
		for i, c := range out {
			for _, ch := range []float64{c.R, c.G, c.B} {
				assert.True(t, ch >= 0 && ch <= 1, "entry %d channel %v", i, ch)
			}
		}
	})

	t.Run("NonPositiveSize", func(t *testing.T) {
		assert.Nil(t, LinearPalette(0, []colorful.Color{black, white}))
	})
}

func TestSinusPalette(t *testing.T) {
	t.Run("Formula", func(t *testing.T) {
		out := SinusPalette(5, [3]float64{0, 0.25, 0.5})
		require.Len(t, out, 5)

		// t = 0: sin(0), sin(pi/2), sin(pi) per channel.
		assert.InDelta(t, 0.5, out[0].R, 1e-9)
		assert.InDelta(t, 1.0, out[0].G, 1e-9)
		assert.InDelta(t, 0.5, out[0].B, 1e-9)

		// t = 0.5 with theta 0: 0.5 + 0.5*sin(pi).
		assert.InDelta(t, 0.5, out[2].R, 1e-9)
	})

	t.Run("ChannelsStayInRange", func(t *testing.T) {
		out := SinusPalette(1000, [3]float64{0.85, 0, 0.25})
		for _, c := range out {
			for _, ch := range []float64{c.R, c.G, c.B} {
				assert.True(t, ch >= 0 && ch <= 1)
			}
		}
	})
}

func TestPaletteDef(t *testing.T) {
	t.Run("GenerateDispatches", func(t *testing.T) {
		def := PaletteDef{Type: PaletteSinus, Size: 16}
		out, err := def.Generate()
		require.NoError(t, err)
		assert.Len(t, out, 16)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		def := PaletteDef{Type: "Cubic", Size: 16}
		_, err := def.Generate()
		require.Error(t, err)
	})
}

func TestPaletteFromConfig(t *testing.T) {
	t.Run("Linear", func(t *testing.T) {
		def := PaletteDef{
			Type: PaletteLinear,
			Size: 64,
			Stops: []colorful.Color{
				{},
				{R: 1, G: 1, B: 1},
			},
		}
		cfg, err := NewFromDefinition(PaletteDefinition(def))
		require.NoError(t, err)

		table, err := PaletteFromConfig(cfg)
		require.NoError(t, err)
		require.Len(t, table, 64)
		assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, table[63])
	})

	t.Run("Sinus", func(t *testing.T) {
		def := PaletteDef{
			Type:   PaletteSinus,
			Size:   32,
			Thetas: [3]float64{0, 1.0 / 3, 2.0 / 3},
		}
		cfg, err := NewFromDefinition(PaletteDefinition(def))
		require.NoError(t, err)

		table, err := PaletteFromConfig(cfg)
		require.NoError(t, err)
		require.Len(t, table, 32)
		assert.InDelta(t, 0.5+0.5*math.Sin(2*math.Pi/3), table[0].G, 1e-9)
	})

	t.Run("EditedSizeRegenerates", func(t *testing.T) {
		def := PaletteDef{Type: PaletteSinus, Size: 8}
		cfg, err := NewFromDefinition(PaletteDefinition(def))
		require.NoError(t, err)

		require.NoError(t, cfg.Set("size", 128))
		table, err := PaletteFromConfig(cfg)
		require.NoError(t, err)
		assert.Len(t, table, 128)
	})

	t.Run("BadStopRejected", func(t *testing.T) {
		cfg, err := NewFromDefinition(PaletteDefinition(PaletteDef{
			Type: PaletteLinear,
			Size: 8,
			Stops: []colorful.Color{
				{R: 0.5, G: 0.5, B: 0.5},
			},
		}))
		require.NoError(t, err)

		require.NoError(t, cfg.Set("parameters", []any{[]any{2.0, 0.0, 0.0}}))
		_, err = PaletteFromConfig(cfg)
		require.Error(t, err)
	})
}
