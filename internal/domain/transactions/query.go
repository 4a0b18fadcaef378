package transactions

import (
	"context"
	"strings"

	"paygate/internal/params"
)

type Filter struct {
	Status  Status // "" => any status
	Gateway string // "" => any gateway
}

func (f Filter) match(t *Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Gateway != "" && !strings.EqualFold(t.Gateway, f.Gateway) {
		return false
	}
	return true
}

// Query is the read and operator surface over a Store. Filtering and
// pagination are applied to the store's newest-first listing.
type Query struct {
	store Store
}

func NewQuery(store Store) *Query {
	return &Query{store: store}
}

// List returns the requested page of transactions matching f, newest first,
// with pg's metadata filled in.
func (q *Query) List(ctx context.Context, f Filter, pg params.Pagination) ([]*Transaction, params.Pagination, error) {
	all, err := q.store.List(ctx)
	if err != nil {
		return nil, pg, err
	}

	matched := make([]*Transaction, 0, len(all))
	for _, t := range all {
		if f.match(t) {
			matched = append(matched, t)
		}
	}

	pg.ComputeMeta(len(matched))
	start, end := pg.Window(len(matched))
	return matched[start:end], pg, nil
}

func (q *Query) Get(ctx context.Context, id string) (*Transaction, error) {
	return q.store.GetByID(ctx, strings.TrimSpace(id))
}

// SetStatus is the administrative status override.
func (q *Query) SetStatus(ctx context.Context, id, status string) (*Transaction, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return q.store.UpdateStatus(ctx, strings.TrimSpace(id), st)
}
