package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogConfigDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewCatalogConfigHolder(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogConfig(), holder.Get())
}

func TestCatalogConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  lowInventoryThreshold: 5\n  listPerPage: 25\n"), 0o600))

	holder, err := NewCatalogConfigHolder(Config{CatalogConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 5, holder.Get().LowInventoryThreshold)
	assert.Equal(t, 25, holder.Get().ListPerPage)
}

func TestCatalogConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  lowInventoryThreshold: 0\n"), 0o600))

	_, err := NewCatalogConfigHolder(Config{CatalogConfigPath: path})
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *CatalogConfigHolder
	assert.Equal(t, DefaultLowInventoryThreshold, holder.Get().LowInventoryThreshold)
}
