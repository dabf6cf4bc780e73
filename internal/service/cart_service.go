package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSaveAttempts = 5
	// sharedLoadTimeout bounds a collapsed Fetch, which outlives the request
	// that started it.
	sharedLoadTimeout = 10 * time.Second
	cacheWriteTimeout = 2 * time.Second
)

type CartService struct {
	repo        repository.CartRepository
	cache       cache.CartCache
	logger      *zap.Logger
	sfg         singleflight.Group // collapses concurrent cache misses for the same user
	maxAttempts int
	loadTimeout time.Duration
	now         func() time.Time
}

type CartOption func(*CartService)

// WithCache puts a read-through cache in front of Fetch. Mutations always
// read the repository and write the saved cart back to the cache.
func WithCache(c cache.CartCache) CartOption {
	return func(s *CartService) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewCartService(repo repository.CartRepository, logger *zap.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		repo:        repo,
		cache:       cache.Noop{},
		logger:      logger,
		maxAttempts: defaultSaveAttempts,
		loadTimeout: sharedLoadTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the user's items, creating an empty cart on first use.
// Concurrent callers share one load, so it runs detached from the first
// caller's cancellation.
func (s *CartService) Fetch(ctx context.Context, userID string) ([]domain.CartLine, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.String("user_id", userID), zap.Error(err))
		}

		cart, err = s.repo.GetOrCreateCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, userID, cart); err != nil {
			s.logger.Warn("cart cache set failed", zap.String("user_id", userID), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart).Lines(), nil
}

// AddLine adds line to the cart, or increments the existing line for the
// same product. A zero quantity counts as one.
func (s *CartService) AddLine(ctx context.Context, userID string, line domain.CartLine) ([]domain.CartLine, error) {
	if line.ProductID.IsZero() {
		return nil, invalid("productId is required")
	}
	if line.Quantity < 0 {
		return nil, invalid("quantity must be a positive integer")
	}
	if line.Quantity == 0 {
		line.Quantity = 1
	}
	line.AddedAt = s.now().UTC()

	return s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		return c.AddLine(line)
	})
}

// SetQuantity overwrites the quantity of an existing line; zero or less
// removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID string, productID domain.ProductID, quantity int) ([]domain.CartLine, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *CartService) RemoveLine(ctx context.Context, userID string, productID domain.ProductID) ([]domain.CartLine, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.RemoveLine(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID string) ([]domain.CartLine, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// SyncGuestCart merges a cart built before login into the user's cart.
func (s *CartService) SyncGuestCart(ctx context.Context, userID string, guest []domain.CartLine) ([]domain.CartLine, error) {
	now := s.now().UTC()
	lines := make([]domain.CartLine, 0, len(guest))
	for _, line := range guest {
		if line.ProductID.IsZero() {
			return nil, invalid("productId is required for every guest cart item")
		}
		line.AddedAt = now
		lines = append(lines, line)
	}

	return s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		c.MergeGuest(lines)
		return nil
	})
}

// mutate runs load, apply, save until the save is not rejected as stale.
// apply must be safe to rerun on a freshly loaded cart.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, apply func(*domain.Cart) error) ([]domain.CartLine, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		cart, err := s.load(ctx, userID, create)
		if err != nil {
			return nil, err
		}
		if err := apply(cart); err != nil {
			return nil, err
		}

		err = s.repo.SaveCart(ctx, cart)
		if err == nil {
			s.storeCached(ctx, cart)
			return cart.Lines(), nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Error("save cart failed", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		s.logger.Debug("cart version conflict, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt))
	}

	s.logger.Warn("cart save retries exhausted", zap.String("user_id", userID))
	return nil, ErrConcurrentModification
}

func (s *CartService) load(ctx context.Context, userID string, create bool) (*domain.Cart, error) {
	if create {
		return s.repo.GetOrCreateCart(ctx, userID)
	}
	return s.repo.GetCart(ctx, userID)
}

// storeCached writes a just-saved cart to the cache. The cache keeps the
// highest version it has seen, so a Fetch that read an older version cannot
// replace it. If the write fails the entry is dropped instead.
func (s *CartService) storeCached(ctx context.Context, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	defer cancel()

	err := s.cache.Set(ctx, cart.UserID, cart)
	if err == nil {
		return
	}
	s.logger.Warn("cart cache set failed", zap.String("user_id", cart.UserID), zap.Error(err))
	if err := s.cache.Delete(ctx, cart.UserID); err != nil {
		s.logger.Error("cart cache invalidate failed", zap.String("user_id", cart.UserID), zap.Error(err))
	}
}
