package repository

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrVersionConflict = errors.New("cart was modified concurrently")
	ErrProductNotFound = errors.New("product not found")
)

// CartRepository stores one cart document per user. SaveCart only succeeds
// when the stored version still equals cart.Version.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type ProductRepository interface {
	ListProducts(ctx context.Context, query domain.ProductQuery) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]*domain.Product, error)
}
