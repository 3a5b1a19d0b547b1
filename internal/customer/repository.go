package customer

import (
	"context"
	"database/sql"
	"errors"

	"belleza-be/internal/db"
	"belleza-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const customerColumns = "id, phone, name, email, created_at"

type Repository interface {
	FindOrCreate(ctx context.Context, phone string) (*Customer, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
}

type repository struct {
	db db.Querier
}

// NewRepository accepts a *sql.DB or a *sql.Tx.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

// FindOrCreate upserts on the unique phone so concurrent first logins for
// the same phone converge on one row. An existing row is returned unchanged.
func (r *repository) FindOrCreate(ctx context.Context, phone string) (*Customer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindOrCreate"),
	)

	query := `
		INSERT INTO customers (id, phone)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING ` + customerColumns

	var c Customer
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), phone).
		Scan(&c.ID, &c.Phone, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		log.Error("failed to upsert customer", zap.Error(err))
		return nil, err
	}

	return &c, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*Customer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.String("customer_id", id),
	)

	query := `
		UPDATE customers
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns

	var c Customer
	err := r.db.QueryRowContext(ctx, query, id, input.Name, input.Email).
		Scan(&c.ID, &c.Phone, &c.Name, &c.Email, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		log.Error("failed to update customer profile", zap.Error(err))
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id,
	).Scan(&c.ID, &c.Phone, &c.Name, &c.Email, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
