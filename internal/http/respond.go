package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const gatewayUnconfiguredMessage = "Payment gateway is not configured. Please add Razorpay keys to .env file."

// Envelope is the body of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type responder struct {
	logger       *zap.Logger
	exposeErrors bool
	validate     *validator.Validate
	maxBodySize  int64
}

func newResponder(logger *zap.Logger, exposeErrors bool, maxBodySize int64) *responder {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &responder{
		logger:       logger,
		exposeErrors: exposeErrors,
		validate:     v,
		maxBodySize:  maxBodySize,
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

func (rs *responder) ok(w http.ResponseWriter, status int, message string, data interface{}) {
	if err := respondJSON(w, status, Envelope{Success: true, Message: message, Data: data}); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (rs *responder) list(w http.ResponseWriter, data interface{}, count int) {
	if err := respondJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data}); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (rs *responder) fail(w http.ResponseWriter, status int, message string) {
	if err := respondJSON(w, status, Envelope{Success: false, Message: message}); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

// handleError maps service errors to status codes. fallback is the message
// for unexpected errors, whose text is only echoed when exposeErrors is set.
func (rs *responder) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		rs.fail(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrInvalidQuantity):
		rs.fail(w, http.StatusBadRequest, "Quantity must be a positive integer")
	case errors.Is(err, repository.ErrCartNotFound):
		rs.fail(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, service.ErrItemNotFound):
		rs.fail(w, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, repository.ErrProductNotFound):
		rs.fail(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, payment.ErrGatewayUnconfigured):
		rs.fail(w, http.StatusInternalServerError, gatewayUnconfiguredMessage)
	case errors.Is(err, payment.ErrSignatureMismatch):
		rs.fail(w, http.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, payment.ErrAmountRequired):
		rs.fail(w, http.StatusBadRequest, "Amount is required")
	case errors.Is(err, payment.ErrInvalidAmount):
		rs.fail(w, http.StatusBadRequest, "Amount must be a positive number")
	default:
		rs.logger.Error(fallback,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))

		body := Envelope{Success: false, Message: fallback}
		if rs.exposeErrors {
			body.Error = err.Error()
		}
		if errors.Is(err, circuitbreaker.ErrOpen) {
			body.Message = fallback + ": payment gateway temporarily unavailable"
		}
		if encErr := respondJSON(w, http.StatusInternalServerError, body); encErr != nil {
			rs.logger.Error("failed to encode response", zap.Error(encErr))
		}
	}
}

// decode reads a JSON body into dst and runs struct validation. Any failure
// comes back as a *service.ValidationError.
func (rs *responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, rs.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &service.ValidationError{Message: "request body too large"}
		}
		return &service.ValidationError{Message: "invalid JSON body"}
	}
	if err := rs.validate.Struct(dst); err != nil {
		return &service.ValidationError{Message: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
