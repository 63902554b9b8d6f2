package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInsufficientUnits is returned when a draw would consume more units than a line holds.
	ErrInsufficientUnits = errors.New("insufficient units")
)

// BatchNotFoundError names the missing batch in operations that touch more
// than one batch. It matches ErrNotFound.
type BatchNotFoundError struct {
	BatchID int64
}

func (e *BatchNotFoundError) Error() string {
	return fmt.Sprintf("batch %d not found", e.BatchID)
}

func (e *BatchNotFoundError) Unwrap() error {
	return ErrNotFound
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `
	p.id,
	p.name,
	p.slug,
	p.price::text,
	p.cost::text,
	p.in_stock,
	p.created_at,
	p.updated_at`

func (r *Repository) ListProducts(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)
	search := strings.TrimSpace(filter.Search)

	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products p
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%' OR p.slug ILIKE '%' || $1 || '%')
		ORDER BY p.id ASC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+productColumns+`
		FROM products p
		WHERE p.id = $1
	`, id)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

// ProductIDsByName resolves product names or slugs (case-insensitive) to ids.
// Names without a match are absent from the result.
func (r *Repository) ProductIDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	if len(names) == 0 {
		return map[string]int64{}, nil
	}
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(name)))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, LOWER(name), LOWER(slug)
		FROM products
		WHERE LOWER(name) = ANY($1) OR LOWER(slug) = ANY($1)
	`, lowered)
	if err != nil {
		return nil, fmt.Errorf("resolve product names: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64, len(names))
	for rows.Next() {
		var (
			id   int64
			name string
			slug string
		)
		if err := rows.Scan(&id, &name, &slug); err != nil {
			return nil, fmt.Errorf("scan product name: %w", err)
		}
		ids[name] = id
		ids[slug] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product names: %w", err)
	}
	return ids, nil
}

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Price,
		&product.Cost,
		&product.InStock,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullableInt64(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullableTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}

// rangeArgs turns an open-ended range into nullable query arguments.
func rangeArgs(r domain.DateRange) (any, any) {
	var from, to any
	if !r.From.IsZero() {
		from = r.From
	}
	if !r.To.IsZero() {
		to = r.To
	}
	return from, to
}

// dateArgs is rangeArgs for DATE columns: bounds become calendar dates in
// their own zone.
func dateArgs(r domain.DateRange) (any, any) {
	var from, to any
	if !r.From.IsZero() {
		from = r.From.Format("2006-01-02")
	}
	if !r.To.IsZero() {
		to = r.To.Format("2006-01-02")
	}
	return from, to
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
