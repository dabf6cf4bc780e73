package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrGatewayUnconfigured = errors.New("payment gateway is not configured")
	ErrGatewayRejected     = errors.New("payment gateway rejected the request")
)

// Config holds the Razorpay credentials. It is built once at startup and
// passed to NewGateway.
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

func (c Config) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Gateway creates remote payment orders and checks payment signatures.
type Gateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error)
	VerifySignature(orderID, paymentID, signature string) error
}

// NewGateway returns a Razorpay client when cfg carries both keys and the
// Unconfigured gateway otherwise.
func NewGateway(cfg Config, logger *zap.Logger) Gateway {
	if !cfg.Configured() {
		return Unconfigured{}
	}
	return NewRazorpayGateway(cfg, logger)
}

// Unconfigured fails every call with ErrGatewayUnconfigured.
type Unconfigured struct{}

func (Unconfigured) Configured() bool { return false }

func (Unconfigured) KeyID() string { return "" }

func (Unconfigured) CreateOrder(context.Context, OrderRequest) (*RemoteOrder, error) {
	return nil, ErrGatewayUnconfigured
}

func (Unconfigured) VerifySignature(string, string, string) error {
	return ErrGatewayUnconfigured
}

type RazorpayGateway struct {
	keyID     string
	keySecret string
	client    *resty.Client
	breaker   *circuitbreaker.Breaker[*RemoteOrder]
}

func NewRazorpayGateway(cfg Config, logger *zap.Logger) *RazorpayGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Accept", "application/json")

	settings := circuitbreaker.DefaultSettings("razorpay")
	// A rejected request says nothing about gateway health.
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrGatewayRejected)
	}

	return &RazorpayGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client:    client,
		breaker:   circuitbreaker.New[*RemoteOrder](settings, logger),
	}
}

func (g *RazorpayGateway) Configured() bool { return true }

func (g *RazorpayGateway) KeyID() string { return g.keyID }

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error) {
	return g.breaker.Execute(func() (*RemoteOrder, error) {
		var order RemoteOrder
		var apiErr razorpayError
		resp, err := g.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			SetResult(&order).
			SetError(&apiErr).
			Post("/v1/orders")
		if err != nil {
			return nil, fmt.Errorf("razorpay create order: %w", err)
		}

		switch {
		case resp.IsSuccess():
			return &order, nil
		case resp.StatusCode() >= http.StatusInternalServerError:
			return nil, fmt.Errorf("razorpay create order: status %d", resp.StatusCode())
		default:
			msg := apiErr.Error.Description
			if msg == "" {
				msg = resp.Status()
			}
			return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, msg)
		}
	})
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	if !VerifySignature(g.keySecret, orderID, paymentID, signature) {
		return ErrSignatureMismatch
	}
	return nil
}
