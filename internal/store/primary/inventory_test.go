package primary

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admatch/internal/store"
)

func validRow() adRow {
	return adRow{
		id:        pgtype.Text{String: "ad-1", Valid: true},
		interests: []pgtype.Text{{String: "technology", Valid: true}},
		createdAt: pgtype.Timestamptz{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Valid: true},
		budget:    pgtype.Float8{Float64: 42.5, Valid: true},
		freqCap:   pgtype.Int4{Int32: 3, Valid: true},
	}
}

func TestAdRow_Decode(t *testing.T) {
	r := validRow()
	ad, err := r.decode()
	require.NoError(t, err)
	assert.Equal(t, "ad-1", ad.ID)
	assert.Equal(t, []string{"technology"}, ad.Interests)
	assert.Equal(t, 42.5, ad.RemainingBudget)
	assert.Equal(t, 3, ad.FrequencyCapRemaining)
	assert.Equal(t, time.UTC, ad.CreatedAt.Location())
}

func TestAdRow_DecodeCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*adRow)
		wantID string
	}{
		{"null id", func(r *adRow) { r.id = pgtype.Text{} }, ""},
		{"null interest", func(r *adRow) { r.interests = append(r.interests, pgtype.Text{}) }, "ad-1"},
		{"null created_at", func(r *adRow) { r.createdAt = pgtype.Timestamptz{} }, "ad-1"},
		{"infinite created_at", func(r *adRow) {
			r.createdAt = pgtype.Timestamptz{InfinityModifier: pgtype.Infinity, Valid: true}
		}, "ad-1"},
		{"null budget", func(r *adRow) { r.budget = pgtype.Float8{} }, "ad-1"},
		{"null frequency cap", func(r *adRow) { r.freqCap = pgtype.Int4{} }, "ad-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRow()
			tt.mutate(&r)
			ad, err := r.decode()
			require.ErrorIs(t, err, store.ErrCorrupt)

			c := corruptAd(4, ad, err)
			assert.Equal(t, 4, c.Row)
			assert.Equal(t, tt.wantID, c.AdID)
			assert.NotEmpty(t, c.Reason)
		})
	}
}

func TestAdRow_EmptyInterestsDecode(t *testing.T) {
	r := validRow()
	r.interests = nil
	ad, err := r.decode()
	require.NoError(t, err)
	assert.Empty(t, ad.Interests)
}
