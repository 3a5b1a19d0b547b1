package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"belleza-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, email, name, passwordHash string) (*Admin, error)
	CreateSession(ctx context.Context, adminID string, expiresAt time.Time) (*Session, error)
	FindSession(ctx context.Context, token string) (*Admin, *Session, error)
	DeleteSession(ctx context.Context, token string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM admin_users
		WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, email, name, passwordHash string) (*Admin, error) {
	a := Admin{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO admin_users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash
		RETURNING id, created_at`,
		a.ID, a.Email, a.Name, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to upsert admin", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &a, nil
}

func (r *repository) CreateSession(ctx context.Context, adminID string, expiresAt time.Time) (*Session, error) {
	s := Session{Token: uuid.NewString(), AdminID: adminID, ExpiresAt: expiresAt}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO admin_sessions (token, admin_id, expires_at) VALUES ($1, $2, $3)",
		s.Token, s.AdminID, s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSession returns the admin owning a live session.
func (r *repository) FindSession(ctx context.Context, token string) (*Admin, *Session, error) {
	var (
		a Admin
		s Session
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT a.id, a.email, a.name, a.created_at, s.token, s.expires_at
		FROM admin_sessions s
		JOIN admin_users a ON a.id = s.admin_id
		WHERE s.token = $1 AND s.expires_at > NOW()`, token,
	).Scan(&a.ID, &a.Email, &a.Name, &a.CreatedAt, &s.Token, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, nil, err
	}
	s.AdminID = a.ID
	return &a, &s, nil
}

func (r *repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM admin_sessions WHERE token = $1", token)
	return err
}

func (r *repository) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM admin_sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
