package configsvc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)

	// The file now exists and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings, again)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	err := os.WriteFile(path, []byte("frameDelayMs: 25\nproductIds:\n- 34960\n"), 0644)
	require.NoError(t, err)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, settings.FrameDelayMs)
	assert.Equal(t, []uint16{0x8890}, settings.ProductIDs)
	// Unset fields keep their defaults.
	assert.Equal(t, uint16(0x1189), settings.VendorID)
	assert.Equal(t, 10, settings.ReadTimeoutMs)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	err := os.WriteFile(path, []byte("{not yaml"), 0644)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}
