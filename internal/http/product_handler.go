package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type ProductService interface {
	List(ctx context.Context, in service.ListProductsInput) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductService
	rs       *responder
	timeout  time.Duration
}

func NewProductHandler(products ProductService, rs *responder, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		rs:       rs,
		timeout:  timeout,
	}
}

// GET /api/products?category=&bestSeller=&excludeCategories=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	products, err := h.products.List(ctx, service.ListProductsInput{
		Category:          q.Get("category"),
		BestSeller:        q.Get("bestSeller"),
		ExcludeCategories: q.Get("excludeCategories"),
	})
	if err != nil {
		h.rs.handleError(w, r, err, "Error fetching products")
		return
	}
	h.rs.list(w, products, len(products))
}

// GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.products.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.rs.handleError(w, r, err, "Error fetching product")
		return
	}
	h.rs.ok(w, http.StatusOK, "", product)
}
