package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paygate/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Schema holds the idempotent DDL for the transactions table, one statement per entry.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
	id                 TEXT PRIMARY KEY,
	gateway            TEXT NOT NULL,
	payment_method     TEXT NOT NULL,
	amount             NUMERIC NOT NULL,
	currency           TEXT NOT NULL,
	customer_name      TEXT NOT NULL,
	customer_email     TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'pending'
	                   CHECK (status IN ('pending', 'completed', 'failed')),
	gateway_order_id   TEXT,
	gateway_payment_id TEXT,
	gateway_response   JSONB,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at       TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS transactions_created_at_idx ON transactions (created_at DESC, id DESC)`,
}

const selectColumns = `
	id, gateway, payment_method, amount::text, currency, customer_name, customer_email,
	status, COALESCE(gateway_order_id, ''), COALESCE(gateway_payment_id, ''),
	COALESCE(gateway_response::text, ''), created_at, completed_at`

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) Record(ctx context.Context, t *Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}

	var resp any
	if len(t.GatewayResponse) > 0 {
		resp = string(t.GatewayResponse)
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO transactions (
			id, gateway, payment_method, amount, currency, customer_name, customer_email,
			status, gateway_order_id, gateway_payment_id, gateway_response, completed_at
		)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11::text::jsonb, $12)
		RETURNING created_at
	`, t.ID, t.Gateway, t.PaymentMethod, t.Amount.String(), t.Currency, t.CustomerName, t.CustomerEmail,
		string(t.Status), t.GatewayOrderID, t.GatewayPaymentID, resp, t.CompletedAt).
		Scan(&t.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("record transaction: %w", err)
	}
	return t.ID, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var completedAt *time.Time
	if status.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	row := r.q.QueryRow(ctx, `
		UPDATE transactions
		   SET status=$2, completed_at=$3
		 WHERE id=$1
		RETURNING `+selectColumns,
		id, string(status), completedAt)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	return t, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Transaction, error) {
	row := r.q.QueryRow(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id=$1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) List(ctx context.Context) ([]*Transaction, error) {
	rows, err := r.q.Query(ctx, `SELECT `+selectColumns+` FROM transactions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		t      Transaction
		amount string
		status string
		resp   string
	)
	if err := row.Scan(
		&t.ID, &t.Gateway, &t.PaymentMethod, &amount, &t.Currency, &t.CustomerName, &t.CustomerEmail,
		&status, &t.GatewayOrderID, &t.GatewayPaymentID, &resp, &t.CreatedAt, &t.CompletedAt,
	); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Status = Status(status)
	if resp != "" {
		t.GatewayResponse = []byte(resp)
	}
	return &t, nil
}
