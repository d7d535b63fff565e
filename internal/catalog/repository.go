package catalog

import (
	"context"
	"database/sql"
	"errors"

	"craftly-be/internal/logger"

	"go.uber.org/zap"
)

// Repository is the read-only product lookup consumed at order creation to
// resolve line-item names and prices. Product CRUD lives elsewhere.
type Repository interface {
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, sku, slug, name, price, currency,
	COALESCE(color, ''), COALESCE(image_url, ''), status,
	created_at, updated_at
`

func (r *repository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return r.getBy(ctx, "sku", sku)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *repository) getBy(ctx context.Context, column, value string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + column + ` = $1`

	var p Product
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&p.ID,
		&p.SKU,
		&p.Slug,
		&p.Name,
		&p.Price,
		&p.Currency,
		&p.Color,
		&p.ImageURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query product",
			zap.String("column", column),
			zap.String("value", value),
			zap.Error(err),
		)
		return nil, err
	}

	return &p, nil
}
