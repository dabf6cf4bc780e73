package poller

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroup = "storefront-cart"

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CartClearer empties a user's cart.
type CartClearer interface {
	Clear(ctx context.Context, userID string) ([]domain.CartLine, error)
}

// Poller empties the buyer's cart once their order is placed.
type Poller struct {
	carts        CartClearer
	reader       messageReader
	logger       *zap.Logger
	retryBackoff time.Duration
}

func NewPoller(carts CartClearer, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.OrderEventsTopic,
		GroupID:  consumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger, retryBackoff: time.Second}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.handleNext(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("read order event failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.retryBackoff):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("close order events reader failed", zap.Error(err))
	}
}

// handleNext returns an error only when reading from the broker failed.
// Bad payloads and failed clears are logged and the message is skipped.
func (p *Poller) handleNext(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}

	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Warn("skipping malformed order event",
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		return nil
	}
	if event.Type != domain.EventTypeOrderPlaced {
		return nil
	}
	if event.UserID == "" {
		p.logger.Warn("skipping order event without user_id", zap.String("event_id", event.EventID))
		return nil
	}

	_, err = p.carts.Clear(ctx, event.UserID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		p.logger.Error("clear cart after order failed",
			zap.String("user_id", event.UserID),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return nil
	}

	p.logger.Info("cart cleared after order",
		zap.String("user_id", event.UserID),
		zap.String("order_id", event.OrderID))
	return nil
}
