package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admatch/internal/config"
	"admatch/internal/metrics"
)

const appTaxonomy = `
version: "app-1"
categories:
  ai:
    related: [technology]
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(appTaxonomy), 0o644))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Taxonomy.Path = path
	return cfg
}

func TestNewApp_Minimal(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "app-1", a.Taxonomy.Current().Version())
	assert.Nil(t, a.Inventory)
	assert.Nil(t, a.Redis)
	assert.Nil(t, a.JobClient)
	assert.NotEmpty(t, a.InstanceID)
	assert.NotNil(t, a.MatchService)
	assert.False(t, a.MatchService.HasInventory())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TaxonomyCategories))
}

func TestNewApp_SQLiteInventory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inventory.Driver = "sqlite"
	cfg.Inventory.DSN = filepath.Join(t.TempDir(), "inventory.db")

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Inventory)
	assert.True(t, a.MatchService.HasInventory())
	assert.NoError(t, a.Inventory.Ping(context.Background()))
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("missing taxonomy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Taxonomy.Path = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := NewApp(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Inventory.Driver = "oracle"
		_, err := NewApp(context.Background(), cfg)
		assert.ErrorContains(t, err, "unknown inventory driver")
	})
}

func TestOpenInventory_None(t *testing.T) {
	inv, err := OpenInventory(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestConfigureLogging(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Format = "json"
	assert.NoError(t, ConfigureLogging(cfg))

	cfg.Log.Level = "nope"
	assert.Error(t, ConfigureLogging(cfg))
}
