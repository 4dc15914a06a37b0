package repository

import (
	"context"
	"errors"
	"fmt"

	"printsite_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const offeringNotFoundMessage = "offering not found"

const offeringColumns = `id, category, name, slug, description, sort_order, is_active, created_at, updated_at`

// Repo implements Reader with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new offerings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Reader.
var _ Reader = (*Repo)(nil)

func (r *Repo) ListActive(ctx context.Context) ([]Offering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM offerings
		WHERE is_active = TRUE
		ORDER BY category ASC, sort_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active offerings: %w", err)
	}
	defer rows.Close()

	items := make([]Offering, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offerings: %w", err)
	}
	return items, nil
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE slug = $1`

	o, err := scanOffering(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offering{}, apperr.NotFound(offeringNotFoundMessage)
		}
		return Offering{}, fmt.Errorf("get offering by slug: %w", err)
	}
	return o, nil
}

func scanOffering(row pgx.Row) (Offering, error) {
	var o Offering
	err := row.Scan(&o.ID, &o.Category, &o.Name, &o.Slug, &o.Description, &o.SortOrder, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
