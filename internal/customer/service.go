package customer

import (
	"context"
	"errors"
	"strings"

	"belleza-be/internal/apperror"
	"belleza-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Resolve(ctx context.Context, phone string) (*Customer, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Resolve maps a phone to its customer, creating one with only the phone set
// when none exists.
func (s *service) Resolve(ctx context.Context, phone string) (*Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	c, err := s.repo.FindOrCreate(ctx, phone)
	if err != nil {
		return nil, apperror.Wrap(ErrCustomerStore, err)
	}
	return c, nil
}

// UpdateProfile overwrites the supplied fields. An empty input only checks
// that the customer exists.
func (s *service) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*Customer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProfile"),
	)

	if input.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	c, err := s.repo.UpdateProfile(ctx, id, input)
	if errors.Is(err, ErrCustomerNotFound) {
		log.Info("customer not found", zap.String("customer_id", id))
		return nil, err
	}
	if err != nil {
		return nil, apperror.Wrap(ErrCustomerStore, err)
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperror.Wrap(ErrCustomerStore, err)
	}
	return c, nil
}
