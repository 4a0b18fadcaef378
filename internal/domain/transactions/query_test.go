package transactions

import (
	"context"
	"testing"

	"paygate/internal/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s Store) []string {
	t.Helper()
	var ids []string
	for _, c := range []struct {
		gateway string
		status  Status
	}{
		{"razorpay", StatusCompleted},
		{"stripe", StatusFailed},
		{"razorpay", StatusFailed},
		{"stripe", StatusCompleted},
		{"razorpay", StatusCompleted},
	} {
		id, err := s.Record(context.Background(), sampleTransaction(c.gateway, c.status))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestQuery_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ids := seed(t, s)
	q := NewQuery(s)

	all, pg, err := q.List(ctx, Filter{}, params.New(1, 10))
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID)
	assert.Equal(t, 5, pg.Total)
	assert.False(t, pg.HasNext)

	page, pg, err := q.List(ctx, Filter{}, params.New(2, 2))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	razorpayDone, pg, err := q.List(ctx, Filter{Gateway: "RAZORPAY", Status: StatusCompleted}, params.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, pg.Total)
	for _, tx := range razorpayDone {
		assert.Equal(t, "razorpay", tx.Gateway)
		assert.Equal(t, StatusCompleted, tx.Status)
	}

	empty, _, err := q.List(ctx, Filter{}, params.New(10, 10))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuery_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ids := seed(t, s)
	q := NewQuery(s)

	got, err := q.SetStatus(ctx, ids[1], "completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	_, err = q.SetStatus(ctx, ids[1], "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = q.SetStatus(ctx, "nope", "failed")
	assert.ErrorIs(t, err, ErrNotFound)

	again, err := q.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, again.Status)
}
