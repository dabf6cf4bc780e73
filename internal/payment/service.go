package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrAmountRequired = errors.New("amount is required")
	ErrInvalidAmount  = errors.New("amount must be a positive number of minor currency units")
)

const defaultCurrency = "INR"

type CreateOrderInput struct {
	// Amount in minor units (paise for INR).
	Amount           decimal.Decimal
	Currency         string
	ConsultationData json.RawMessage
}

type CreatedOrder struct {
	RazorpayKey string      `json:"razorpayKey"`
	Order       RemoteOrder `json:"order"`
}

type VerifyInput struct {
	OrderID          string
	PaymentID        string
	Signature        string
	ConsultationData json.RawMessage
}

type Service struct {
	gateway  Gateway
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the payment flow. sessions may be nil, in which case
// nothing is recorded between creation and verification.
func NewService(gateway Gateway, sessions SessionStore, logger *zap.Logger) *Service {
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	if !s.gateway.Configured() {
		return nil, ErrGatewayUnconfigured
	}
	if in.Amount.IsZero() {
		return nil, ErrAmountRequired
	}
	if in.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	notes := "{}"
	if len(in.ConsultationData) > 0 && string(in.ConsultationData) != "null" {
		notes = string(in.ConsultationData)
	}

	now := s.now()
	req := OrderRequest{
		Amount:   in.Amount.Round(0).IntPart(),
		Currency: currency,
		Receipt:  fmt.Sprintf("receipt_%d", now.UnixMilli()),
		Notes:    map[string]string{"consultationData": notes},
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		session := &Session{
			OrderID:          order.ID,
			Amount:           order.Amount,
			Currency:         order.Currency,
			Receipt:          req.Receipt,
			ConsultationData: in.ConsultationData,
			Status:           SessionCreated,
			CreatedAt:        now.UTC(),
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.Error("save payment session failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	return &CreatedOrder{
		RazorpayKey: s.gateway.KeyID(),
		Order: RemoteOrder{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
	}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, in VerifyInput) error {
	if err := s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature); err != nil {
		if errors.Is(err, ErrSignatureMismatch) {
			s.logger.Warn("payment signature mismatch",
				zap.String("order_id", in.OrderID),
				zap.String("payment_id", in.PaymentID))
		}
		return err
	}

	if s.sessions != nil {
		s.markVerified(ctx, in)
	}
	return nil
}

// markVerified is best effort: the session may have expired or never been
// stored, and the payment is valid either way.
func (s *Service) markVerified(ctx context.Context, in VerifyInput) {
	session, err := s.sessions.Get(ctx, in.OrderID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Error("load payment session failed", zap.String("order_id", in.OrderID), zap.Error(err))
		}
		return
	}

	verifiedAt := s.now().UTC()
	session.Status = SessionVerified
	session.PaymentID = in.PaymentID
	session.VerifiedAt = &verifiedAt
	if len(in.ConsultationData) > 0 {
		session.ConsultationData = in.ConsultationData
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("update payment session failed", zap.String("order_id", in.OrderID), zap.Error(err))
	}
}
