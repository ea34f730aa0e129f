package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

const testTaxonomy = `
version: "svc-1"
categories:
  ai:
    primary: [machine learning]
    related: [technology, programming]
  technology:
    primary: [gadgets]
    related: [programming]
  travel:
    fallback: [food]
`

const nextTaxonomy = `
version: "svc-2"
categories:
  ai:
    primary: [technology]
`

func staticRegistry(t *testing.T) *taxonomy.Registry {
	t.Helper()
	g, err := taxonomy.Parse([]byte(testTaxonomy), "test.yaml")
	require.NoError(t, err)
	return taxonomy.NewStaticRegistry(g)
}

// fileRegistry writes the test taxonomy to disk and returns a reloadable
// registry plus the artifact path.
func fileRegistry(t *testing.T) (*taxonomy.Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTaxonomy), 0o644))
	reg, err := taxonomy.NewRegistry(context.Background(), taxonomy.FileSource{Path: path})
	require.NoError(t, err)
	return reg, path
}

var created = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func ad(id string, interests ...string) *models.Ad {
	return &models.Ad{ID: id, Interests: interests, CreatedAt: created, RemainingBudget: 10, FrequencyCapRemaining: 1}
}
