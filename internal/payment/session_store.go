package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("payment session not found")

type SessionStatus string

const (
	SessionCreated  SessionStatus = "created"
	SessionVerified SessionStatus = "verified"
)

// Session records a gateway order between creation and verification.
type Session struct {
	OrderID          string          `json:"order_id"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Receipt          string          `json:"receipt"`
	ConsultationData json.RawMessage `json:"consultation_data,omitempty"`
	Status           SessionStatus   `json:"status"`
	PaymentID        string          `json:"payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	VerifiedAt       *time.Time      `json:"verified_at,omitempty"`
}

type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, orderID string) (*Session, error)
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal payment session failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.OrderID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, orderID string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal payment session failed: %w", err)
	}
	return &s, nil
}

func sessionKey(orderID string) string {
	return fmt.Sprintf("payment:session:%s", orderID)
}
