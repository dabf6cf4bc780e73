package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayments struct {
	lastCreate payment.CreateOrderInput
	lastVerify payment.VerifyInput
	createErr  error
	verifyErr  error
}

func (f *fakePayments) CreateOrder(_ context.Context, in payment.CreateOrderInput) (*payment.CreatedOrder, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payment.CreatedOrder{
		RazorpayKey: "rzp_test",
		Order:       payment.RemoteOrder{ID: "order_1", Amount: in.Amount.IntPart(), Currency: "INR"},
	}, nil
}

func (f *fakePayments) VerifyPayment(_ context.Context, in payment.VerifyInput) error {
	f.lastVerify = in
	return f.verifyErr
}

func TestCreateRazorpayOrder(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/payments/create-razorpay-order", "", map[string]interface{}{
		"amount":           49900,
		"consultationData": map[string]string{"skinType": "oily"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "rzp_test", data["razorpayKey"])
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "order_1", order["id"])
	assert.Equal(t, float64(49900), order["amount"])

	assert.Equal(t, int64(49900), ts.payments.lastCreate.Amount.IntPart())
	assert.JSONEq(t, `{"skinType":"oily"}`, string(ts.payments.lastCreate.ConsultationData))
}

func TestCreateRazorpayOrder_Errors(t *testing.T) {
	ts := newTestServer(t)

	ts.payments.createErr = payment.ErrGatewayUnconfigured
	rec, env := ts.do(t, http.MethodPost, "/api/payments/create-razorpay-order", "", map[string]interface{}{"amount": 100})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, gatewayUnconfiguredMessage, env.Message)

	ts.payments.createErr = payment.ErrAmountRequired
	rec, env = ts.do(t, http.MethodPost, "/api/payments/create-razorpay-order", "", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Amount is required", env.Message)
}

func TestVerifyPayment(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/payments/verify-payment", "", map[string]interface{}{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "abc",
		"consultationData":    map[string]string{"concern": "acne"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payment verified successfully", env.Message)
	assert.Equal(t, map[string]interface{}{"concern": "acne"}, env.Data.(map[string]interface{})["consultationData"])
	assert.Equal(t, "order_1", ts.payments.lastVerify.OrderID)
	assert.Equal(t, "pay_1", ts.payments.lastVerify.PaymentID)
	assert.Equal(t, "abc", ts.payments.lastVerify.Signature)
	assert.JSONEq(t, `{"concern":"acne"}`, string(ts.payments.lastVerify.ConsultationData))

	ts.payments.verifyErr = payment.ErrSignatureMismatch
	rec, env = ts.do(t, http.MethodPost, "/api/payments/verify-payment", "", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment verification failed", env.Message)
}

func TestVerifyPayment_EndToEndSignature(t *testing.T) {
	svc := payment.NewService(payment.NewGateway(payment.Config{KeyID: "k", KeySecret: "S"}, zap.NewNop()), nil, zap.NewNop())
	ts := &testServer{handler: NewRouter(RouterConfig{MaxRequestBodySize: 1 << 20, RequestTimeout: 5 * time.Second}, Services{Payments: svc}, zap.NewNop())}

	good := payment.Sign("S", "O", "P")
	rec, _ := ts.do(t, http.MethodPost, "/api/payments/verify-payment", "", map[string]string{
		"razorpay_order_id": "O", "razorpay_payment_id": "P", "razorpay_signature": good,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	bad := []byte(good)
	bad[0] ^= 1
	rec, _ = ts.do(t, http.MethodPost, "/api/payments/verify-payment", "", map[string]string{
		"razorpay_order_id": "O", "razorpay_payment_id": "P", "razorpay_signature": string(bad),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
