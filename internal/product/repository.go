package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"belleza-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	Get(ctx context.Context, opts GetOptions) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	// Update writes p. A nil stock leaves the stored stock untouched so
	// concurrent order decrements are never overwritten.
	Update(ctx context.Context, p Product, stock *int) (*Product, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectProduct = `
	SELECT
		p.id, p.title, p.slug, p.description, p.price, p.stock, p.is_active,
		p.images, p.category_id, p.created_at, p.updated_at,
		c.id, c.name, c.slug
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p                       Product
		images                  pq.StringArray
		catID, catName, catSlug sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.IsActive,
		&images, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}

	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}
	if catID.Valid {
		p.Category = &CategoryRef{ID: catID.String, Name: catName.String, Slug: catSlug.String}
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	where := []string{}
	args := []interface{}{}

	if opts.OnlyActive {
		where = append(where, "p.is_active = TRUE")
	}
	if opts.CategoryID != "" {
		args = append(args, opts.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	query := selectProduct
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	log.Debug("executing product list query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *repository) Get(ctx context.Context, opts GetOptions) (*Product, error) {
	var (
		query string
		arg   string
	)
	switch {
	case opts.ID != "":
		query, arg = selectProduct+" WHERE p.id = $1", opts.ID
	case opts.Slug != "":
		query, arg = selectProduct+" WHERE p.slug = $1", opts.Slug
	default:
		return nil, ErrProductNotFound
	}
	if opts.OnlyActive {
		query += " AND p.is_active = TRUE"
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, title, slug, description, price, stock, is_active, images, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.Stock, p.IsActive,
		pq.Array(p.Images), p.CategoryID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert product",
			zap.String("slug", p.Slug),
			zap.Error(err),
		)
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p Product, stock *int) (*Product, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET title = $2, slug = $3, description = $4, price = $5, stock = COALESCE($6, stock),
		    is_active = $7, images = $8, category_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING stock, created_at, updated_at`,
		p.ID, p.Title, p.Slug, p.Description, p.Price, stock, p.IsActive,
		pq.Array(p.Images), p.CategoryID,
	).Scan(&p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND id <> $2)",
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}
