package api

import (
	"net/http"

	"belleza-be/internal/apperror"
	"belleza-be/internal/category"
	"belleza-be/internal/product"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request, onlyActive bool) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, err := h.products.List(r.Context(), product.ListOptions{
		OnlyActive: onlyActive,
		CategoryID: q.Get("categoryId"),
		Search:     q.Get("q"),
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func writeProducts(w http.ResponseWriter, products []*product.Product) {
	if products == nil {
		products = []*product.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// ListProducts handles GET /api/products (active only).
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, true)
}

// AdminListProducts handles GET /api/admin/products.
func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, false)
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

// SearchProducts handles GET /api/search/products?q=&categoryId=.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.products.Search(r.Context(), q.Get("q"), q.Get("categoryId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request, opts product.GetOptions) {
	p, err := h.products.Get(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r, product.GetOptions{ID: chi.URLParam(r, "id"), OnlyActive: true})
}

func (h *Handler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r, product.GetOptions{Slug: chi.URLParam(r, "slug"), OnlyActive: true})
}

func (h *Handler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r, product.GetOptions{ID: chi.URLParam(r, "id")})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []*category.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// AllocateSlug handles POST /api/admin/slugs. It previews the slug a title
// would get without reserving it.
func (h *Handler) AllocateSlug(w http.ResponseWriter, r *http.Request) {
	var req SlugRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = SlugKindProduct
	}
	alloc, ok := h.slugs[kind]
	if !ok {
		writeError(w, r, apperror.Validation("kind", "kind must be one of product category"))
		return
	}

	s, err := alloc.Allocate(r.Context(), req.Title, req.ExcludeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"slug": s})
}
