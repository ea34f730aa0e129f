package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

const testArtifact = `
version: "test-1"
categories:
  ai:
    primary: [machine learning]
    related: [technology, programming]
    fallback: [education]
  technology:
    primary: [gadgets]
    related: [programming]
  travel:
    fallback: [food]
  food:
    related: [cooking]
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	g, err := taxonomy.Parse([]byte(testArtifact), "test.yaml")
	require.NoError(t, err)
	return NewEngine(g)
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newAd(id string, interests ...string) *models.Ad {
	return &models.Ad{
		ID:                    id,
		Interests:             interests,
		CreatedAt:             baseTime,
		RemainingBudget:       100,
		FrequencyCapRemaining: 5,
	}
}
