package otp

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/customer"
	"belleza-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Issue(ctx context.Context, phone string) (*IssueResult, error)
	Verify(ctx context.Context, phone, code string) (*customer.Customer, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	customers customer.Service
	sender    Sender
	opts      Options
	now       func() time.Time
	genCode   func() (string, error)
}

func NewService(repo Repository, customers customer.Service, sender Sender, opts Options) Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if sender == nil {
		sender = LogSender{}
	}
	return &service{
		repo:      repo,
		customers: customers,
		sender:    sender,
		opts:      opts,
		now:       time.Now,
		genCode:   generateCode,
	}
}

// generateCode returns a uniform code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *service) Issue(ctx context.Context, phone string) (*IssueResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "IssueOtp"),
	)

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	code, err := s.genCode()
	if err != nil {
		log.Error("failed to generate code", zap.Error(err))
		return nil, apperror.Wrap(ErrIssueFailed, err)
	}

	now := s.now()
	rec := Record{
		ID:        uuid.NewString(),
		Phone:     phone,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperror.Wrap(ErrIssueFailed, err)
	}

	if err := s.sender.Send(ctx, phone, code, rec.ExpiresAt); err != nil {
		log.Error("failed to dispatch code", zap.Error(err))
		return nil, apperror.Wrap(ErrIssueFailed, err)
	}

	log.Info("otp issued", zap.Time("expires_at", rec.ExpiresAt))

	res := &IssueResult{ExpiresAt: rec.ExpiresAt}
	if s.opts.ExposeCode {
		res.Code = code
	}
	return res, nil
}

// Verify consumes the newest live record matching phone and code and resolves
// the customer. Failed guesses count against every live record of the phone.
func (s *service) Verify(ctx context.Context, phone, code string) (*customer.Customer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "VerifyOtp"),
	)

	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	now := s.now()

	attempts, err := s.repo.MaxAttempts(ctx, phone, now)
	if err != nil {
		log.Error("failed to read attempts", zap.Error(err))
		return nil, apperror.Wrap(ErrVerifyFailed, err)
	}
	if attempts >= s.opts.MaxAttempts {
		log.Warn("otp locked out", zap.Int("attempts", attempts))
		return nil, ErrTooManyAttempts
	}

	rec, err := s.repo.FindLatestLive(ctx, phone, code, now)
	if errors.Is(err, sql.ErrNoRows) {
		if incErr := s.repo.IncrementAttempts(ctx, phone, now); incErr != nil {
			log.Error("failed to record attempt", zap.Error(incErr))
		}
		return nil, ErrInvalidCode
	}
	if err != nil {
		log.Error("failed to look up code", zap.Error(err))
		return nil, apperror.Wrap(ErrVerifyFailed, err)
	}

	deleted, err := s.repo.Delete(ctx, rec.ID)
	if err != nil {
		log.Error("failed to consume code", zap.Error(err))
		return nil, apperror.Wrap(ErrVerifyFailed, err)
	}
	if !deleted {
		// Consumed by a concurrent verification.
		return nil, ErrInvalidCode
	}

	c, err := s.customers.Resolve(ctx, phone)
	if err != nil {
		return nil, err
	}

	log.Info("otp verified", zap.String("customer_id", c.ID))
	return c, nil
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, apperror.Persistence("failed to purge expired codes", err)
	}
	return n, nil
}
