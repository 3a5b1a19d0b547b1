package product

import "belleza-be/internal/apperror"

var (
	ErrTitleTooShort    = apperror.Validation("title", "title must be at least 2 characters")
	ErrNegativePrice    = apperror.Validation("price", "price must not be negative")
	ErrNegativeStock    = apperror.Validation("stock", "stock must not be negative")
	ErrCategoryNotFound = apperror.Validation("categoryId", "category not found")
	ErrProductNotFound  = apperror.NotFound("Product not found")
	ErrProductInUse     = apperror.New(apperror.KindConflict, "product has orders; deactivate it instead")
	ErrSlugConflict     = apperror.New(apperror.KindConflict, "could not allocate a unique slug")
	ErrProductStore     = apperror.New(apperror.KindPersistence, "product store failure")
)

const slugConstraint = "products_slug_key"
