package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidStatus = errors.New("invalid transaction status")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status is a final outcome.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is the durable record of one payment attempt's outcome.
type Transaction struct {
	ID               string          `json:"id"`
	Gateway          string          `json:"gateway"`
	PaymentMethod    string          `json:"paymentMethod"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	Status           Status          `json:"status"`
	GatewayOrderID   string          `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string          `json:"gatewayPaymentId,omitempty"`
	GatewayResponse  json.RawMessage `json:"gatewayResponse,omitempty"` // opaque, owned by the adapter
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// Store persists transactions. Record is append-only and must be safe for
// concurrent use; a failed Record leaves nothing behind.
type Store interface {
	Record(ctx context.Context, t *Transaction) (string, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	// List returns every transaction, newest first.
	List(ctx context.Context) ([]*Transaction, error)
}
