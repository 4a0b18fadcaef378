package payments

import "github.com/shopspring/decimal"

const (
	MethodCard = "card"
	MethodUPI  = "upi"
)

type PaymentRequest struct {
	Gateway       string
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
	PaymentMethod string
}

// GatewayOrder is the normalized order/intent handed back to the client for completion.
type GatewayOrder struct {
	OrderID       string            `json:"orderId"`
	Amount        int64             `json:"amount"` // minor units
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
	Handshake     map[string]string `json:"handshake"` // key_id, client_secret, ...
}

type VerifyRequest struct {
	OrderID   string
	PaymentID string
	Proof     string
}

type VerificationResult struct {
	Success bool           `json:"success"`
	Details map[string]any `json:"details,omitempty"`
}
