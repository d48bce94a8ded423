package paramset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadFile(t *testing.T) {
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := newTestConfig(t)
			require.NoError(t, cfg.Set("maxIter", 1000))
			require.NoError(t, cfg.Set("corner", complex(0.5, -0.75)))
			require.NoError(t, cfg.Set("tint", "#FF00AA"))

			child, _ := cfg.Get("palette")
			require.NoError(t, child.(*Config).Set("size", 256))

			path := filepath.Join(t.TempDir(), "values"+ext)
			require.NoError(t, cfg.SaveFile(path))

			other := newTestConfig(t)
			require.NoError(t, other.LoadFile(path))

			v, _ := other.Get("maxIter")
			assert.Equal(t, int64(1000), v)
			v, _ = other.Get("corner")
			assert.Equal(t, complex(0.5, -0.75), v)
			v, _ = other.Get("tint")
			assert.Equal(t, "#FF00AA", v)

			loaded, _ := other.Get("palette")
			size, _ := loaded.(*Config).Get("size")
			assert.Equal(t, int64(256), size)
		})
	}
}

func TestLoadFileFormatDetection(t *testing.T) {
	t.Run("ContentDetectionWithoutExtension", func(t *testing.T) {
		cfg := newTestConfig(t)

		path := filepath.Join(t.TempDir(), "values.conf")
		require.NoError(t, os.WriteFile(path, []byte(`{"maxIter": 1000}`), 0644))

		require.NoError(t, cfg.LoadFile(path))
		v, _ := cfg.Get("maxIter")
		assert.Equal(t, int64(1000), v)
	})

	t.Run("UnknownExtensionSavesAsTOML", func(t *testing.T) {
		cfg := newTestConfig(t)
		path := filepath.Join(t.TempDir(), "values.conf")
		require.NoError(t, cfg.SaveFile(path))

		other := newTestConfig(t)
		require.NoError(t, other.Set("maxIter", 1000))
		require.NoError(t, other.LoadFile(path))
		v, _ := other.Get("maxIter")
		assert.Equal(t, int64(256), v)
	})

	t.Run("MissingFile", func(t *testing.T) {
		cfg := newTestConfig(t)
		err := cfg.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.Error(t, err)
	})

	t.Run("MalformedContent", func(t *testing.T) {
		cfg := newTestConfig(t)
		path := filepath.Join(t.TempDir(), "values.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		require.Error(t, cfg.LoadFile(path))
	})
}

func TestLoadFileValidation(t *testing.T) {
	// A file with out-of-range values is rejected per id; valid entries load.
	cfg := newTestConfig(t)
	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"maxIter": 99999, "bailout": 32.0}`), 0644))

	err := cfg.LoadFile(path)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)

	v, _ := cfg.Get("bailout")
	assert.Equal(t, 32.0, v)
	v, _ = cfg.Get("maxIter")
	assert.Equal(t, int64(256), v)
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "values.toml")

	cfg := newTestConfig(t)
	require.NoError(t, cfg.SaveFile(path))

	// The directory was created and no temp files were left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "values.toml", entries[0].Name())
}
