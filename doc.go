// Package paramset provides a declarative, schema-driven parameter
// configuration engine for backing interactive configuration forms.
//
// A caller declares named parameters (grouped by category) with a semantic
// type, a legal-value constraint, a default value, and optional display
// metadata. The engine then manages the run-time values of those parameters
// with validated mutation, a single-level commit/undo history, change
// notification, and structured serialization, independent of any rendering
// technology.
//
// Features:
//   - Typed parameter specs: int, float, str, bits, complex, list and
//     nested sub-configurations
//   - Per-type constraints: numeric ranges, enumerations, length bounds,
//     patterns, bit-label sets
//   - Validated set with coercion; invalid values are never stored
//   - Single-level undo baseline via Apply/Undo
//   - Per-parameter and global change observers
//   - Simple and full interchange mappings, with TOML/JSON/YAML file I/O
//   - Opaque UI binding protocol (pull/push) for external controls
//   - Builder pattern for easy initialization
//
// Quick Start:
//
//	def := paramset.Definition{
//	    "Calculation settings": {
//	        "maxIter": {
//	            Type:  paramset.TypeInt,
//	            Range: paramset.NumRange{Min: 100, Max: 4000, Step: 10},
//	            Init:  256,
//	            Label: "Max. iterations",
//	        },
//	    },
//	}
//
//	cfg, err := paramset.NewBuilder().WithDefinition(def).Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, _ := cfg.Get("maxIter") // 256
//	_ = cfg.Set("maxIter", 500)
//	_ = cfg.Apply()            // establish undo baseline
//	_ = cfg.Set("maxIter", 10)
//	_ = cfg.Undo()             // back to 500
//
// Dialog-style editing is modeled with BeginEdit: the session clones the
// value store while sharing the immutable schema; Commit copies the edited
// values back, Cancel discards them.
//
// Thread Safety:
// All operations are guarded by a read-write mutex. The engine still assumes
// one logical owner; in particular, a notify callback that calls Set on the
// same id during its own notification is not guaranteed safe.
package paramset
