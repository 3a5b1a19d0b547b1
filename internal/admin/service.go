package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/auth"
	"belleza-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*Admin, error)
	Logout(ctx context.Context, token string) error
	EnsureAdmin(ctx context.Context, email, name, password string) (*Admin, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(repo Repository, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &service{repo: repo, ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdminLogin"),
	)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		log.Warn("login for unknown admin")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("failed to load admin", zap.Error(err))
		return nil, apperror.Wrap(ErrAdminStore, err)
	}

	if !auth.CheckPasswordHash(password, a.PasswordHash) {
		log.Warn("admin password mismatch", zap.String("admin_id", a.ID))
		return nil, ErrInvalidCredentials
	}

	sess, err := s.repo.CreateSession(ctx, a.ID, s.now().Add(s.ttl))
	if err != nil {
		log.Error("failed to create admin session", zap.Error(err))
		return nil, apperror.Wrap(ErrAdminStore, err)
	}

	log.Info("admin logged in", zap.String("admin_id", a.ID))
	return &LoginResult{Admin: a, Session: sess}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*Admin, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	a, _, err := s.repo.FindSession(ctx, token)
	if errors.Is(err, ErrSessionInvalid) {
		return nil, err
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load admin session", zap.Error(err))
		return nil, apperror.Wrap(ErrAdminStore, err)
	}
	return a, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return apperror.Wrap(ErrAdminStore, err)
	}
	return nil
}

// EnsureAdmin creates the admin or resets its name and password.
func (s *service) EnsureAdmin(ctx context.Context, email, name, password string) (*Admin, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.Create(ctx, email, name, hash)
	if err != nil {
		return nil, apperror.Wrap(ErrAdminStore, err)
	}
	return a, nil
}

func (s *service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpiredSessions(ctx)
}
