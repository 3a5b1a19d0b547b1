package category

import (
	"context"
	"errors"
	"strings"

	"belleza-be/internal/apperror"
	"belleza-be/internal/db"
	"belleza-be/internal/logger"
	"belleza-be/internal/slug"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	slugs *slug.Allocator
}

func NewService(repo Repository) Service {
	return &service{repo: repo, slugs: slug.NewAllocator(repo)}
}

func storeErr(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(ErrCategoryStore, err)
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return cats, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, name string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCategory"),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c := Category{ID: uuid.NewString(), Name: name}
	for attempt := 0; attempt < slug.MaxPersistRetries; attempt++ {
		sl, err := s.slugs.Allocate(ctx, name, "")
		if err != nil {
			return nil, err
		}
		c.Slug = sl

		created, err := s.repo.Create(ctx, c)
		if db.IsUniqueViolation(err, slugConstraint) {
			log.Warn("slug taken concurrently, retrying", zap.String("slug", sl))
			continue
		}
		if err != nil {
			log.Error("failed to create category", zap.Error(err))
			return nil, storeErr(err)
		}
		return created, nil
	}

	return nil, ErrSlugConflict
}

// Update renames a category. The slug is re-derived only when the name changes.
func (s *service) Update(ctx context.Context, id, name string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateCategory"),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if current.Name == name {
		return current, nil
	}

	next := *current
	next.Name = name
	for attempt := 0; attempt < slug.MaxPersistRetries; attempt++ {
		sl, err := s.slugs.Allocate(ctx, name, id)
		if err != nil {
			return nil, err
		}
		next.Slug = sl

		updated, err := s.repo.Update(ctx, next)
		if db.IsUniqueViolation(err, slugConstraint) {
			log.Warn("slug taken concurrently, retrying", zap.String("slug", sl))
			continue
		}
		if err != nil {
			log.Error("failed to update category", zap.Error(err))
			return nil, storeErr(err)
		}
		return updated, nil
	}

	return nil, ErrSlugConflict
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}
