package api

import (
	"belleza-be/internal/admin"
	"belleza-be/internal/auth"
	"belleza-be/internal/category"
	"belleza-be/internal/customer"
	"belleza-be/internal/metrics"
	"belleza-be/internal/order"
	"belleza-be/internal/otp"
	"belleza-be/internal/product"
	"belleza-be/internal/slug"
)

// Slug allocator kinds accepted by the admin slug endpoint.
const (
	SlugKindProduct  = "product"
	SlugKindCategory = "category"
)

type Deps struct {
	OTP        otp.Service
	Customers  customer.Service
	Orders     order.Service
	Products   product.Service
	Categories category.Service
	Admins     admin.Service
	Tokens     *auth.TokenManager
	Slugs      map[string]*slug.Allocator
	Metrics    *metrics.Registry
	// SecureCookies sets the Secure flag on session cookies.
	SecureCookies bool
}

type Handler struct {
	otp        otp.Service
	customers  customer.Service
	orders     order.Service
	products   product.Service
	categories category.Service
	admins     admin.Service
	tokens     *auth.TokenManager
	slugs      map[string]*slug.Allocator
	metrics    *metrics.Registry
	secure     bool
}

func NewHandler(d Deps) *Handler {
	m := d.Metrics
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &Handler{
		otp:        d.OTP,
		customers:  d.Customers,
		orders:     d.Orders,
		products:   d.Products,
		categories: d.Categories,
		admins:     d.Admins,
		tokens:     d.Tokens,
		slugs:      d.Slugs,
		metrics:    m,
		secure:     d.SecureCookies,
	}
}
