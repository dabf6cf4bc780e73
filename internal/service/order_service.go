package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
)

// EventPublisher announces stored orders to other consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

type PlaceOrderInput struct {
	Items           []domain.OrderItem
	TotalAmount     float64
	CustomerEmail   string
	ShippingAddress domain.ShippingAddress
}

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   EventPublisher
	logger   *zap.Logger
}

// NewOrderService wires the order service. events may be nil when no
// broker is configured.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		events:   events,
		logger:   logger,
	}
}

func (s *OrderService) Place(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, invalid("Cart is empty")
	}
	for _, item := range in.Items {
		if item.ProductID.IsZero() {
			return nil, invalid("every order item needs a productId")
		}
		if item.Quantity < 1 {
			return nil, invalid("order item quantity must be a positive integer")
		}
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           in.Items,
		TotalAmount:     in.TotalAmount,
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		ShippingAddress: in.ShippingAddress,
		Status:          domain.OrderStatusPending,
	}
	if order.TotalAmount == 0 {
		order.TotalAmount = order.ItemsTotal().InexactFloat64()
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
			s.logger.Error("publish order placed failed",
				zap.String("order_id", order.ID.Hex()),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	return order, nil
}

// List returns the user's orders newest first with each item's product
// resolved. Items whose product no longer exists keep a nil Product.
func (s *OrderService) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var ids []domain.ProductID
	seen := make(map[domain.ProductID]struct{})
	for _, o := range orders {
		for _, id := range o.ProductIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return orders, nil
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve order products: %w", err)
	}
	for _, o := range orders {
		for i := range o.Items {
			o.Items[i].Product = products[o.Items[i].ProductID]
		}
	}
	return orders, nil
}
