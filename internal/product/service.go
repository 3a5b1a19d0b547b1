package product

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"belleza-be/internal/apperror"
	"belleza-be/internal/db"
	"belleza-be/internal/logger"
	"belleza-be/internal/slug"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	Featured(ctx context.Context) ([]*Product, error)
	Search(ctx context.Context, query, categoryID string) ([]*Product, error)
	Get(ctx context.Context, opts GetOptions) (*Product, error)
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	slugs *slug.Allocator
}

func NewService(repo Repository) Service {
	return &service{repo: repo, slugs: slug.NewAllocator(repo)}
}

// mapStoreErr keeps domain errors and classifies raw driver errors.
func mapStoreErr(err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case db.IsForeignKeyViolation(err):
		return apperror.Wrap(ErrCategoryNotFound, err)
	default:
		return apperror.Wrap(ErrProductStore, err)
	}
}

func validate(title string, price int64, stock int) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < MinTitleLength {
		return ErrTitleTooShort
	}
	if price < 0 {
		return ErrNegativePrice
	}
	if stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

func normalizeCategory(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	products, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return products, nil
}

// Featured returns the newest active products.
func (s *service) Featured(ctx context.Context) ([]*Product, error) {
	return s.List(ctx, ListOptions{OnlyActive: true, Limit: FeaturedLimit})
}

func (s *service) Search(ctx context.Context, query, categoryID string) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SearchProducts"),
	)

	start := time.Now()
	products, err := s.List(ctx, ListOptions{
		OnlyActive: true,
		Search:     strings.TrimSpace(query),
		CategoryID: strings.TrimSpace(categoryID),
		Limit:      SearchLimit,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("search finished",
		zap.String("q", query),
		zap.Int("results", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}

func (s *service) Get(ctx context.Context, opts GetOptions) (*Product, error) {
	p, err := s.repo.Get(ctx, opts)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	if err := validate(input.Title, input.Price, input.Stock); err != nil {
		return nil, err
	}

	p := Product{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
		Images:      input.Images,
		CategoryID:  normalizeCategory(input.CategoryID),
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	for attempt := 0; attempt < slug.MaxPersistRetries; attempt++ {
		sl, err := s.slugs.Allocate(ctx, p.Title, "")
		if err != nil {
			return nil, err
		}
		p.Slug = sl

		created, err := s.repo.Create(ctx, p)
		if db.IsUniqueViolation(err, slugConstraint) {
			log.Warn("slug taken concurrently, retrying", zap.String("slug", sl), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, mapStoreErr(err)
		}

		log.Info("product created", zap.String("product_id", created.ID), zap.String("slug", created.Slug))
		return created, nil
	}

	return nil, ErrSlugConflict
}

// Update applies the non-nil fields. The slug is re-derived only when the
// title actually changes, excluding the product itself from the probe.
// Stock is written only when the input carries it.
func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	current, err := s.repo.Get(ctx, GetOptions{ID: id})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	next := *current
	titleChanged := false
	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		titleChanged = t != current.Title
		next.Title = t
	}
	if input.Description != nil {
		next.Description = input.Description
	}
	if input.Price != nil {
		next.Price = *input.Price
	}
	if input.Stock != nil {
		next.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		next.CategoryID = normalizeCategory(input.CategoryID)
		next.Category = nil
	}
	if input.Images != nil {
		next.Images = input.Images
	}
	if input.IsActive != nil {
		next.IsActive = *input.IsActive
	}

	if err := validate(next.Title, next.Price, next.Stock); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < slug.MaxPersistRetries; attempt++ {
		if titleChanged {
			sl, err := s.slugs.Allocate(ctx, next.Title, id)
			if err != nil {
				return nil, err
			}
			next.Slug = sl
		}

		updated, err := s.repo.Update(ctx, next, input.Stock)
		if titleChanged && db.IsUniqueViolation(err, slugConstraint) {
			log.Warn("slug taken concurrently, retrying", zap.String("slug", next.Slug))
			continue
		}
		if err != nil {
			return nil, mapStoreErr(err)
		}
		return updated, nil
	}

	return nil, ErrSlugConflict
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if db.IsForeignKeyViolation(err) {
		return apperror.Wrap(ErrProductInUse, err)
	}
	if err != nil {
		return mapStoreErr(err)
	}
	return nil
}
