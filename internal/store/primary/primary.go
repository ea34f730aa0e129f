// Package primary is the PostgreSQL inventory backend.
package primary

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"admatch/internal/models"
	"admatch/internal/store"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Inventory = (*StoreImpl)(nil)

// StoreImpl implements store.Inventory using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

// NewPrimaryStore creates a new PostgreSQL inventory store and makes sure
// its tables exist.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := dbpool.Exec(ctx, schemaSQL); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to apply inventory schema: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() error {
	s.db.Close()
	return nil
}

// --- Helper Functions ---

const adColumns = `id, interests, created_at, remaining_budget, frequency_cap_remaining`

// adRow holds one ads row before validation. Every column is nullable so a
// row written by another system decodes far enough to be reported.
type adRow struct {
	id        pgtype.Text
	interests []pgtype.Text
	createdAt pgtype.Timestamptz
	budget    pgtype.Float8
	freqCap   pgtype.Int4
}

func (r *adRow) targets() []any {
	return []any{&r.id, &r.interests, &r.createdAt, &r.budget, &r.freqCap}
}

// decode converts the row into an Ad. NULL columns, NULL interest entries
// and infinite timestamps are store.ErrCorrupt.
func (r *adRow) decode() (*models.Ad, error) {
	if !r.id.Valid {
		return nil, fmt.Errorf("%w: ad row has NULL id", store.ErrCorrupt)
	}
	ad := &models.Ad{ID: r.id.String, Interests: make([]string, 0, len(r.interests))}
	for i, interest := range r.interests {
		if !interest.Valid {
			return ad, fmt.Errorf("%w: ad %s interest #%d is NULL", store.ErrCorrupt, ad.ID, i)
		}
		ad.Interests = append(ad.Interests, interest.String)
	}
	switch {
	case !r.createdAt.Valid:
		return ad, fmt.Errorf("%w: ad %s has NULL created_at", store.ErrCorrupt, ad.ID)
	case r.createdAt.InfinityModifier != pgtype.Finite:
		return ad, fmt.Errorf("%w: ad %s has infinite created_at", store.ErrCorrupt, ad.ID)
	case !r.budget.Valid:
		return ad, fmt.Errorf("%w: ad %s has NULL remaining_budget", store.ErrCorrupt, ad.ID)
	case !r.freqCap.Valid:
		return ad, fmt.Errorf("%w: ad %s has NULL frequency_cap_remaining", store.ErrCorrupt, ad.ID)
	}
	ad.CreatedAt = r.createdAt.Time.UTC()
	ad.RemainingBudget = r.budget.Float64
	ad.FrequencyCapRemaining = int(r.freqCap.Int32)
	return ad, nil
}

// scanAd scans one row selected with adColumns. On store.ErrCorrupt the
// returned ad carries whatever decoded, at least its id when present.
func scanAd(row pgx.Row) (*models.Ad, error) {
	var r adRow
	if err := row.Scan(r.targets()...); err != nil {
		return nil, err
	}
	return r.decode()
}
