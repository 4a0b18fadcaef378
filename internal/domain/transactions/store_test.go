package transactions

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"paygate/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransaction(gateway string, status Status) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		Gateway:          gateway,
		PaymentMethod:    "card",
		Amount:           decimal.RequireFromString("100.50"),
		Currency:         "INR",
		CustomerName:     "Alice",
		CustomerEmail:    "a@x.com",
		Status:           status,
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		GatewayResponse:  json.RawMessage(`{"success":true}`),
		CompletedAt:      &now,
	}
}

// storeContract exercises the behaviour every Store implementation must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("record and get", func(t *testing.T) {
		s := newStore(t)
		in := sampleTransaction("razorpay", StatusCompleted)
		id, err := s.Record(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.5")))
		assert.Equal(t, "order_1", got.GatewayOrderID)
		assert.Equal(t, "pay_1", got.GatewayPaymentID)
		assert.JSONEq(t, `{"success":true}`, string(got.GatewayResponse))
		assert.False(t, got.CreatedAt.IsZero())
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("get unknown id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := newStore(t)
		var ids []string
		for i := 0; i < 3; i++ {
			id, err := s.Record(ctx, sampleTransaction("stripe", StatusFailed))
			require.NoError(t, err)
			ids = append(ids, id)
			time.Sleep(2 * time.Millisecond)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[1], list[1].ID)
		assert.Equal(t, ids[0], list[2].ID)
	})

	t.Run("update status", func(t *testing.T) {
		s := newStore(t)
		tx := sampleTransaction("razorpay", StatusFailed)
		tx.CompletedAt = nil
		id, err := s.Record(ctx, tx)
		require.NoError(t, err)

		got, err := s.UpdateStatus(ctx, id, StatusPending)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, got.Status)
		assert.Nil(t, got.CompletedAt)

		got, err = s.UpdateStatus(ctx, id, StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)

		_, err = s.UpdateStatus(ctx, "missing", StatusCompleted)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update rejects unknown status", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Record(ctx, sampleTransaction("stripe", StatusCompleted))
		require.NoError(t, err)

		for _, st := range []Status{"refunded", "", "COMPLETED"} {
			_, err = s.UpdateStatus(ctx, id, st)
			assert.ErrorIs(t, err, ErrInvalidStatus, string(st))
		}

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("amount is stored without rounding", func(t *testing.T) {
		s := newStore(t)
		tx := sampleTransaction("razorpay", StatusCompleted)
		tx.Amount = decimal.RequireFromString("123456789012345678.123456789")
		id, err := s.Record(ctx, tx)
		require.NoError(t, err)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(tx.Amount), got.Amount.String())
	})

	t.Run("concurrent records are independent", func(t *testing.T) {
		s := newStore(t)
		const n = 25
		var wg sync.WaitGroup
		ids := make([]string, n)
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i], errs[i] = s.Record(ctx, sampleTransaction("razorpay", StatusCompleted))
			}(i)
		}
		wg.Wait()

		seen := map[string]bool{}
		for i := 0; i < n; i++ {
			require.NoError(t, errs[i])
			seen[ids[i]] = true
		}
		assert.Len(t, seen, n)

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, n)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := sampleTransaction("razorpay", StatusCompleted)
	id, err := s.Record(ctx, in)
	require.NoError(t, err)

	in.Status = StatusFailed
	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	got.CustomerName = "Mallory"
	again, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.CustomerName)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	_, err := s.Record(ctx, sampleTransaction("razorpay", StatusCompleted))
	require.Error(t, err)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

// TestRepository runs the contract against Postgres when TEST_DATABASE_ADDR is set.
func TestRepository(t *testing.T) {
	addr := os.Getenv("TEST_DATABASE_ADDR")
	if addr == "" {
		t.Skip("TEST_DATABASE_ADDR not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	storeContract(t, func(t *testing.T) Store {
		_, err := pool.Exec(ctx, `DROP TABLE IF EXISTS transactions`)
		require.NoError(t, err)
		require.NoError(t, db.EnsureSchema(ctx, pool, Schema...))
		return NewRepository(pool)
	})
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)
	assert.True(t, st.Terminal())
	assert.False(t, StatusPending.Terminal())

	_, err = ParseStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
