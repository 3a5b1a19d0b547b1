package otp

import (
	"context"
	"database/sql"
	"time"

	"belleza-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, rec Record) error
	// FindLatestLive returns the newest unexpired record for phone+code, or
	// sql.ErrNoRows.
	FindLatestLive(ctx context.Context, phone, code string, now time.Time) (*Record, error)
	// Delete reports whether this call removed the record.
	Delete(ctx context.Context, id string) (bool, error)
	IncrementAttempts(ctx context.Context, phone string, now time.Time) error
	MaxAttempts(ctx context.Context, phone string, now time.Time) (int, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_codes (id, phone, code, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, 0, $4, $5)`,
		rec.ID, rec.Phone, rec.Code, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert otp",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) FindLatestLive(ctx context.Context, phone, code string, now time.Time) (*Record, error) {
	var rec Record
	err := r.db.QueryRowContext(ctx, `
		SELECT id, phone, code, attempts, created_at, expires_at
		FROM otp_codes
		WHERE phone = $1 AND code = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`,
		phone, code, now,
	).Scan(&rec.ID, &rec.Phone, &rec.Code, &rec.Attempts, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM otp_codes WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) IncrementAttempts(ctx context.Context, phone string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE otp_codes SET attempts = attempts + 1 WHERE phone = $1 AND expires_at > $2",
		phone, now,
	)
	return err
}

func (r *repository) MaxAttempts(ctx context.Context, phone string, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(attempts), 0) FROM otp_codes WHERE phone = $1 AND expires_at > $2",
		phone, now,
	).Scan(&n)
	return n, err
}

func (r *repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM otp_codes WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
