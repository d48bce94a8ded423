package paramset

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteType selects the color table generation algorithm.
type PaletteType string

const (
	// PaletteLinear interpolates piecewise-linearly through an ordered list
	// of color stops.
	PaletteLinear PaletteType = "Linear"

	// PaletteSinus maps evenly spaced positions through a sine wave per
	// RGB channel, phase-shifted by three offsets.
	PaletteSinus PaletteType = "Sinus"
)

// PaletteDef describes a color table to generate: the algorithm, the number
// of entries and the algorithm parameters (Stops for Linear, Thetas for
// Sinus).
type PaletteDef struct {
	Type   PaletteType
	Size   int
	Stops  []colorful.Color
	Thetas [3]float64
}

// Generate produces the ordered color table, exactly Size entries with all
// channels in [0, 1].
func (d PaletteDef) Generate() ([]colorful.Color, error) {
	switch d.Type {
	case PaletteLinear:
		return LinearPalette(d.Size, d.Stops), nil
	case PaletteSinus:
		return SinusPalette(d.Size, d.Thetas), nil
	default:
		return nil, fmt.Errorf("unsupported palette type %q", d.Type)
	}
}

// LinearPalette interpolates a color table of exactly size entries through
// the given stops: no stops yield a greyscale ramp, a single stop a
// constant table, two or more stops evenly sized segments with the last
// segment absorbing any remainder.
func LinearPalette(size int, stops []colorful.Color) []colorful.Color {
	if size < 1 {
		return nil
	}

	switch len(stops) {
	case 0:
		out := make([]colorful.Color, size)
		for i := range out {
			t := rampPos(i, size)
			out[i] = colorful.Color{R: t, G: t, B: t}
		}
		return out

	case 1:
		out := make([]colorful.Color, size)
		for i := range out {
			out[i] = stops[0]
		}
		return out
	}

	segments := len(stops) - 1
	segSize := size / segments
	if segSize < 1 {
		segSize = 1
	}

	out := make([]colorful.Color, 0, size)
	for i := 0; i < segments && len(out) < size; i++ {
		n := segSize
		last := i == segments-1
		if last {
			n = size - len(out)
		}
		for k := 0; k < n && len(out) < size; k++ {
			var t float64
			if last {
				// The final segment lands exactly on the last stop.
				if n > 1 {
					t = float64(k) / float64(n-1)
				}
			} else {
				t = float64(k) / float64(n)
			}
			out = append(out, stops[i].BlendRgb(stops[i+1], t))
		}
	}
	return out
}

// SinusPalette maps size evenly spaced positions t in [0, 1] through
// 0.5 + 0.5*sin(2π*(t+theta)) independently per RGB channel.
func SinusPalette(size int, thetas [3]float64) []colorful.Color {
	if size < 1 {
		return nil
	}

	out := make([]colorful.Color, size)
	for i := range out {
		t := rampPos(i, size)
		out[i] = colorful.Color{
			R: sinusChannel(t, thetas[0]),
			G: sinusChannel(t, thetas[1]),
			B: sinusChannel(t, thetas[2]),
		}
	}
	return out
}

func sinusChannel(t, theta float64) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*(t+theta))
}

// rampPos returns the i-th of size evenly spaced positions in [0, 1].
func rampPos(i, size int) float64 {
	if size < 2 {
		return 0
	}
	return float64(i) / float64(size-1)
}

// PaletteDefinition builds the child schema of a nested palette parameter,
// {type, size, parameters}, initialized from the given palette.
func PaletteDefinition(def PaletteDef) Definition {
	return Definition{
		GroupNone: {
			"type": {
				Type:  TypeStr,
				Range: Enum{Items: []string{string(PaletteLinear), string(PaletteSinus)}},
				Init:  string(def.Type),
				Label: "Palette type",
			},
			"size": {
				Type:  TypeInt,
				Range: NumRange{Min: 1, Max: 65536},
				Init:  def.Size,
				Label: "Entries",
			},
			"parameters": {
				Type: TypeList,
				Init: paletteParams(def),
			},
		},
	}
}

// paletteParams encodes the algorithm parameters as a list value: color
// stop triples for Linear, the three phase offsets for Sinus.
func paletteParams(def PaletteDef) []any {
	if def.Type == PaletteSinus {
		return []any{def.Thetas[0], def.Thetas[1], def.Thetas[2]}
	}
	out := make([]any, len(def.Stops))
	for i, stop := range def.Stops {
		out[i] = []any{stop.R, stop.G, stop.B}
	}
	return out
}

// PaletteFromConfig reads a palette child engine with the {type, size,
// parameters} schema and generates its color table.
func PaletteFromConfig(c *Config) ([]colorful.Color, error) {
	typeRaw, err := c.Get("type")
	if err != nil {
		return nil, err
	}
	sizeRaw, err := c.Get("size")
	if err != nil {
		return nil, err
	}
	paramsRaw, err := c.Get("parameters")
	if err != nil {
		return nil, err
	}

	typeName, _ := typeRaw.(string)
	size, ok := toInt64(sizeRaw)
	if !ok {
		return nil, fmt.Errorf("palette size is not an integer: %v", sizeRaw)
	}
	params, _ := paramsRaw.([]any)

	def := PaletteDef{Type: PaletteType(typeName), Size: int(size)}
	switch def.Type {
	case PaletteLinear:
		def.Stops = make([]colorful.Color, len(params))
		for i, raw := range params {
			stop, err := colorFromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("color stop %d: %w", i, err)
			}
			def.Stops[i] = stop
		}
	case PaletteSinus:
		if len(params) != 3 {
			return nil, fmt.Errorf("sinus palette needs 3 phase offsets, got %d", len(params))
		}
		for i, raw := range params {
			theta, ok := toFloat64(raw)
			if !ok {
				return nil, fmt.Errorf("phase offset %d is not a number: %v", i, raw)
			}
			def.Thetas[i] = theta
		}
	}
	return def.Generate()
}

// colorFromValue converts a 3-element channel list to a color.
func colorFromValue(raw any) (colorful.Color, error) {
	channels, ok := toList(raw)
	if !ok || len(channels) != 3 {
		return colorful.Color{}, fmt.Errorf("expected an [r, g, b] triple, got %v", raw)
	}
	var rgb [3]float64
	for i, ch := range channels {
		f, ok := toFloat64(ch)
		if !ok || f < 0 || f > 1 {
			return colorful.Color{}, fmt.Errorf("channel %d out of range: %v", i, ch)
		}
		rgb[i] = f
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
