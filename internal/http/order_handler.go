package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
)

type OrderService interface {
	Place(ctx context.Context, userID string, in service.PlaceOrderInput) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	rs      *responder
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, rs *responder, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		rs:      rs,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID domain.ProductID `json:"productId" validate:"required"`
	Name      string           `json:"name"`
	Price     float64          `json:"price" validate:"gte=0"`
	ImageURL  string           `json:"imageUrl"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
}

type CreateOrderRequestDTO struct {
	Items           []OrderItemDTO         `json:"items" validate:"dive"`
	TotalAmount     float64                `json:"totalAmount" validate:"gte=0"`
	CustomerEmail   string                 `json:"customerEmail" validate:"omitempty,email"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

func (d CreateOrderRequestDTO) toInput() service.PlaceOrderInput {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
		})
	}
	return service.PlaceOrderInput{
		Items:           items,
		TotalAmount:     d.TotalAmount,
		CustomerEmail:   d.CustomerEmail,
		ShippingAddress: d.ShippingAddress,
	}
}

// POST /api/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error creating order")
		return
	}

	order, err := h.orders.Place(ctx, getUserIDFromContext(r.Context()), req.toInput())
	if err != nil {
		h.rs.handleError(w, r, err, "Error creating order")
		return
	}
	h.rs.ok(w, http.StatusCreated, "Order placed successfully", order)
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		h.rs.handleError(w, r, err, "Error fetching orders")
		return
	}
	h.rs.list(w, orders, len(orders))
}
