package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrders struct {
	placed   []service.PlaceOrderInput
	placedBy []string
	listed   []*domain.Order
	err      error
}

func (f *fakeOrders) Place(_ context.Context, userID string, in service.PlaceOrderInput) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(in.Items) == 0 {
		return nil, &service.ValidationError{Message: "Cart is empty"}
	}
	f.placed = append(f.placed, in)
	f.placedBy = append(f.placedBy, userID)
	return &domain.Order{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		Items:         in.Items,
		TotalAmount:   in.TotalAmount,
		CustomerEmail: in.CustomerEmail,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

func (f *fakeOrders) List(context.Context, string) ([]*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listed, nil
}

func TestCreateOrder_Success(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/orders", "u1", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": "65a1b2c3d4e5f60718293a4b", "name": "Serum", "price": 499, "quantity": 2},
		},
		"totalAmount":   998,
		"customerEmail": "buyer@example.com",
		"shippingAddress": map[string]string{
			"fullName": "A Buyer", "city": "Pune", "postalCode": "411001", "country": "India",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Order placed successfully", env.Message)

	require.Len(t, ts.orders.placed, 1)
	in := ts.orders.placed[0]
	assert.Equal(t, "u1", ts.orders.placedBy[0])
	assert.Equal(t, 998.0, in.TotalAmount)
	assert.Equal(t, "411001", in.ShippingAddress.PostalCode)
	assert.Equal(t, domain.ProductID("65a1b2c3d4e5f60718293a4b"), in.Items[0].ProductID)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "u1", data["user"])
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/orders", "u1", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", env.Message)
}

func TestCreateOrder_InvalidEmail(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/orders", "u1", map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": "p1", "quantity": 1}},
		"customerEmail": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "customerEmail must be a valid email", env.Message)
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(t, http.MethodPost, "/api/orders", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListOrders(t *testing.T) {
	ts := newTestServer(t)
	product := &domain.Product{ID: primitive.NewObjectID(), Name: "Serum"}
	ts.orders.listed = []*domain.Order{
		{ID: primitive.NewObjectID(), UserID: "u1", Items: []domain.OrderItem{{ProductID: product.ProductID(), Quantity: 1, Product: product}}},
		{ID: primitive.NewObjectID(), UserID: "u1", Items: []domain.OrderItem{{ProductID: "gone", Quantity: 1}}},
	}

	rec, env := ts.do(t, http.MethodGet, "/api/orders", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var orders []struct {
		Items []struct {
			Product *struct {
				Name string `json:"name"`
			} `json:"product"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "Serum", orders[0].Items[0].Product.Name)
	assert.Nil(t, orders[1].Items[0].Product)
}
