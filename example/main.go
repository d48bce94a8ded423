// Demonstrates a fractal-style calculation settings form backed by the
// engine: typed parameters with ranges, a complex plane corner, a nested
// palette configuration, apply/undo, change notification and file
// round-trips.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"paramset"
)

func main() {
	palette := paramset.PaletteDef{
		Type: paramset.PaletteLinear,
		Size: 4096,
		Stops: []colorful.Color{
			{R: 80.0 / 255, G: 80.0 / 255, B: 80.0 / 255},
			{R: 1, G: 1, B: 1},
		},
	}

	def := paramset.Definition{
		"Calculation settings": {
			"maxIter": {
				Type:  paramset.TypeInt,
				Range: paramset.NumRange{Min: 100, Max: 4000, Step: 10},
				Init:  256,
				Label: "Max. iterations",
				Width: 10,
			},
			"bailout": {
				Type:  paramset.TypeFloat,
				Range: paramset.NumRange{Min: 4.0, Max: 10000.0},
				Init:  4.0,
				Label: "Bailout radius",
				Width: 10,
			},
			"corner": {
				Type:  paramset.TypeComplex,
				Init:  complex(-2.25, -1.5),
				Label: "Plane corner",
			},
		},
		"Modes": {
			"drawMode": {
				Type:  paramset.TypeInt,
				Range: paramset.Enum{Items: []string{"Line-by-Line", "SQEM recursive", "SQEM iterative"}},
				Init:  0,
				Label: "Drawing mode",
			},
			"flags": {
				Type:  paramset.TypeBits,
				Range: paramset.BitField{Labels: []string{"smooth", "invert", "mirror"}},
				Init:  0b101,
				Label: "Render flags",
			},
		},
		paramset.GroupNone: {
			"palette": {
				Type:  paramset.TypeNested,
				Child: paramset.PaletteDefinition(palette),
				Label: "Color palette",
			},
		},
	}

	cfg, err := paramset.NewBuilder().
		WithDefinition(def).
		WithGlobalObserver(func(id string, oldValue, newValue any) {
			fmt.Printf("changed %s: %v -> %v\n", id, oldValue, newValue)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	// Control-originated updates fire the observers; programmatic sets
	// do not.
	if err := cfg.Update("maxIter", 500); err != nil {
		log.Fatal(err)
	}

	// Establish the undo baseline, poke a value, roll it back.
	if err := cfg.Apply(); err != nil {
		log.Fatal(err)
	}
	_ = cfg.Set("maxIter", 1000)
	_ = cfg.Undo()
	v, _ := cfg.Get("maxIter")
	fmt.Println("maxIter after undo:", v)

	// Generate the color table from the nested palette configuration.
	child, _ := cfg.Get("palette")
	table, err := paramset.PaletteFromConfig(child.(*paramset.Config))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("palette entries:", len(table))

	// Round-trip the values through a TOML file.
	path := filepath.Join(os.TempDir(), "fractal-settings.toml")
	if err := cfg.SaveFile(path); err != nil {
		log.Fatal(err)
	}
	if err := cfg.LoadFile(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("saved and reloaded", path)
}
