package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/payment"
	"github.com/shopspring/decimal"
)

type PaymentService interface {
	CreateOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.CreatedOrder, error)
	VerifyPayment(ctx context.Context, in payment.VerifyInput) error
}

type PaymentHandler struct {
	payments PaymentService
	rs       *responder
	timeout  time.Duration
}

func NewPaymentHandler(payments PaymentService, rs *responder, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		rs:       rs,
		timeout:  timeout,
	}
}

type CreatePaymentOrderRequestDTO struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency" validate:"omitempty,len=3"`
	ConsultationData json.RawMessage `json:"consultationData"`
}

type VerifyPaymentRequestDTO struct {
	OrderID          string          `json:"razorpay_order_id"`
	PaymentID        string          `json:"razorpay_payment_id"`
	Signature        string          `json:"razorpay_signature"`
	ConsultationData json.RawMessage `json:"consultationData"`
}

type verifyPaymentResponse struct {
	ConsultationData json.RawMessage `json:"consultationData,omitempty"`
}

// POST /api/payments/create-razorpay-order
func (h *PaymentHandler) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreatePaymentOrderRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error creating payment order")
		return
	}

	out, err := h.payments.CreateOrder(ctx, payment.CreateOrderInput{
		Amount:           req.Amount,
		Currency:         req.Currency,
		ConsultationData: req.ConsultationData,
	})
	if err != nil {
		h.rs.handleError(w, r, err, "Error creating payment order")
		return
	}
	h.rs.ok(w, http.StatusOK, "", out)
}

// POST /api/payments/verify-payment
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyPaymentRequestDTO
	if err := h.rs.decode(w, r, &req); err != nil {
		h.rs.handleError(w, r, err, "Error verifying payment")
		return
	}

	err := h.payments.VerifyPayment(ctx, payment.VerifyInput{
		OrderID:          req.OrderID,
		PaymentID:        req.PaymentID,
		Signature:        req.Signature,
		ConsultationData: req.ConsultationData,
	})
	if err != nil {
		h.rs.handleError(w, r, err, "Error verifying payment")
		return
	}
	h.rs.ok(w, http.StatusOK, "Payment verified successfully", verifyPaymentResponse{ConsultationData: req.ConsultationData})
}
