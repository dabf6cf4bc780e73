package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartService interface {
	Fetch(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddLine(ctx context.Context, userID string, line domain.CartLine) ([]domain.CartLine, error)
	SetQuantity(ctx context.Context, userID string, productID domain.ProductID, quantity int) ([]domain.CartLine, error)
	RemoveLine(ctx context.Context, userID string, productID domain.ProductID) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID string) ([]domain.CartLine, error)
	SyncGuestCart(ctx context.Context, userID string, guest []domain.CartLine) ([]domain.CartLine, error)
}

type CartHandler struct {
	carts   CartService
	rs      *responder
	timeout time.Duration
}

func NewCartHandler(carts CartService, rs *responder, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		rs:      rs,
		timeout: timeout,
	}
}

type CartItemRequestDTO struct {
	ProductID domain.ProductID `json:"productId" validate:"required"`
	Name      string           `json:"name"`
	Price     float64          `json:"price" validate:"gte=0"`
	ImageURL  string           `json:"imageUrl"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
}

func (d CartItemRequestDTO) toLine() domain.CartLine {
	return domain.CartLine{
		ProductID: d.ProductID,
		Name:      d.Name,
		Price:     d.Price,
		ImageURL:  d.ImageURL,
		Quantity:  d.Quantity,
	}
}

type SyncCartRequestDTO struct {
	GuestCartItems []CartItemRequestDTO `json:"guestCartItems" validate:"dive"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.carts.Fetch(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		h.rs.handleError(w, r, err, "Error fetching cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "", items)
}

// POST /api/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error adding to cart")
		return
	}

	items, err := h.carts.AddLine(ctx, getUserIDFromContext(r.Context()), req.toLine())
	if err != nil {
		h.rs.handleError(w, r, err, "Error adding to cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "Item added to cart", items)
}

// POST /api/cart/sync
func (h *CartHandler) SyncCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SyncCartRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error syncing cart")
		return
	}

	guest := make([]domain.CartLine, 0, len(req.GuestCartItems))
	for _, item := range req.GuestCartItems {
		guest = append(guest, item.toLine())
	}

	items, err := h.carts.SyncGuestCart(ctx, getUserIDFromContext(r.Context()), guest)
	if err != nil {
		h.rs.handleError(w, r, err, "Error syncing cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "Cart synced successfully", items)
}

// PUT /api/cart/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error updating cart")
		return
	}

	productID := domain.NewProductID(chi.URLParam(r, "productId"))
	items, err := h.carts.SetQuantity(ctx, getUserIDFromContext(r.Context()), productID, *req.Quantity)
	if err != nil {
		h.rs.handleError(w, r, err, "Error updating cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "Cart updated", items)
}

// DELETE /api/cart/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := domain.NewProductID(chi.URLParam(r, "productId"))
	items, err := h.carts.RemoveLine(ctx, getUserIDFromContext(r.Context()), productID)
	if err != nil {
		h.rs.handleError(w, r, err, "Error removing from cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "Item removed from cart", items)
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.carts.Clear(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		h.rs.handleError(w, r, err, "Error clearing cart")
		return
	}
	h.rs.ok(w, http.StatusOK, "Cart cleared", items)
}
