package orchestrator

import (
	"paygate/internal/payments"

	"github.com/shopspring/decimal"
)

// Gateways resolves gateway names to adapters. *payments.PaymentManager implements it.
type Gateways interface {
	Gateway(name string) (payments.PaymentGateway, error)
	Has(name string) bool
	MethodAllowed(name, method string) bool
	Methods(name string) []string
	Names() []string
}

type InitiateRequest struct {
	Gateway       string          `json:"gateway"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Email         string          `json:"email" validate:"required,email"`
	PaymentMethod string          `json:"paymentMethod"`
}

// InitiateResult echoes the normalized request next to the gateway order.
type InitiateResult struct {
	Success       bool                  `json:"success"`
	Gateway       string                `json:"gateway"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	PaymentMethod string                `json:"paymentMethod"`
	Order         payments.GatewayOrder `json:"order"`
}

// VerifyRequest carries the order identifiers and proof returned by the client
// together with the original request fields; there is no server-side session
// between initiate and verify.
type VerifyRequest struct {
	Gateway       string          `json:"gateway"`
	OrderID       string          `json:"orderId"`
	PaymentID     string          `json:"paymentId"`
	Signature     string          `json:"signature"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
}

type VerifyResult struct {
	Success       bool                        `json:"success"`
	Verification  payments.VerificationResult `json:"verification"`
	TransactionID string                      `json:"transactionId,omitempty"`
}
