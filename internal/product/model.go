package product

import "time"

const (
	MinTitleLength = 2
	FeaturedLimit  = 6
	SearchLimit    = 20
)

// CategoryRef is the category embedded in product responses.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product prices are integer minor currency units.
type Product struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description"`
	Price       int64        `json:"price"`
	Stock       int          `json:"stock"`
	IsActive    bool         `json:"isActive"`
	Images      []string     `json:"images"`
	CategoryID  *string      `json:"categoryId"`
	Category    *CategoryRef `json:"category"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type ListOptions struct {
	OnlyActive bool
	CategoryID string
	Search     string
	Limit      int
}

type GetOptions struct {
	ID         string
	Slug       string
	OnlyActive bool
}

type CreateInput struct {
	Title       string
	Description *string
	Price       int64
	Stock       int
	CategoryID  *string
	Images      []string
	IsActive    *bool
}

// UpdateInput leaves nil fields unchanged. Images replaces the list only when
// non-nil.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *int64
	Stock       *int
	CategoryID  *string
	Images      []string
	IsActive    *bool
}
