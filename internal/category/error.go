package category

import "belleza-be/internal/apperror"

var (
	ErrNameRequired     = apperror.Validation("name", "Category name required")
	ErrCategoryNotFound = apperror.NotFound("Category not found")
	ErrSlugConflict     = apperror.New(apperror.KindConflict, "could not allocate a unique slug")
	ErrCategoryStore    = apperror.New(apperror.KindPersistence, "category store failure")
)

// slugConstraint is the unique index on categories.slug.
const slugConstraint = "categories_slug_key"
