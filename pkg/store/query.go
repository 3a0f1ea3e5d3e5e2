package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query accumulates filters for a single table operation. Execution methods
// (Get, Insert, Upsert, Update, Delete) perform exactly one round-trip.
type Query struct {
	s       *Session
	table   string
	selects string
	filters url.Values
	order   []string
	limit   int
	offset  int
	single  bool
}

func (q *Query) params() url.Values {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	return q.filters
}

// Select restricts returned columns, e.g. "id,name" or "*".
func (q *Query) Select(cols string) *Query {
	q.selects = cols
	return q
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(col, val string) *Query {
	q.params().Add(col, "eq."+val)
	return q
}

// Gte adds a >= filter on a column.
func (q *Query) Gte(col, val string) *Query {
	q.params().Add(col, "gte."+val)
	return q
}

// Lte adds a <= filter on a column.
func (q *Query) Lte(col, val string) *Query {
	q.params().Add(col, "lte."+val)
	return q
}

// Ilike adds a case-insensitive pattern filter; val uses * as wildcard.
func (q *Query) Ilike(col, val string) *Query {
	q.params().Add(col, "ilike."+val)
	return q
}

// Order appends a sort key. Ascending when asc is true.
func (q *Query) Order(col string, asc bool) *Query {
	dir := ".desc"
	if asc {
		dir = ".asc"
	}
	q.order = append(q.order, col+dir)
	return q
}

// Range applies offset/limit pagination to a read.
func (q *Query) Range(offset, limit int) *Query {
	q.offset = offset
	q.limit = limit
	return q
}

// Single makes Get expect exactly one row, decoding it as an object rather
// than a one-element array. Zero matching rows yields ErrNotFound.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) rawQuery() string {
	v := url.Values{}
	for col, vals := range q.filters {
		for _, val := range vals {
			v.Add(col, val)
		}
	}
	if q.selects != "" {
		v.Set("select", q.selects)
	}
	if len(q.order) > 0 {
		v.Set("order", strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		v.Set("offset", strconv.Itoa(q.offset))
	}
	return v.Encode()
}

// Get executes a select and decodes rows into out.
func (q *Query) Get(ctx context.Context, out any) error {
	headers := map[string]string{}
	if q.single {
		headers["Accept"] = "application/vnd.pgrst.object+json"
	}
	return q.s.do(ctx, http.MethodGet, "/"+q.table, q.rawQuery(), headers, nil, out)
}

// Insert creates a row (or rows) and decodes the created representation
// into out when non-nil.
func (q *Query) Insert(ctx context.Context, body any, out any) error {
	headers := map[string]string{"Prefer": "return=representation"}
	if out == nil {
		headers["Prefer"] = "return=minimal"
	}
	return q.s.do(ctx, http.MethodPost, "/"+q.table, q.rawQuery(), headers, body, out)
}

// Upsert inserts or merges on conflictCol, returning the resulting row(s).
func (q *Query) Upsert(ctx context.Context, body any, conflictCol string, out any) error {
	v := q.params()
	v.Set("on_conflict", conflictCol)
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=representation"}
	return q.s.do(ctx, http.MethodPost, "/"+q.table, q.rawQuery(), headers, body, out)
}

// Update patches rows matching the accumulated filters. The store returns
// the patched representation; callers detect "zero rows matched" by
// decoding into a slice and checking its length.
func (q *Query) Update(ctx context.Context, patch any, out any) error {
	headers := map[string]string{"Prefer": "return=representation"}
	if out == nil {
		headers["Prefer"] = "return=minimal"
	}
	return q.s.do(ctx, http.MethodPatch, "/"+q.table, q.rawQuery(), headers, patch, out)
}

// Delete removes rows matching the filters and reports how many were
// deleted, so callers can distinguish a vanished row from a successful
// delete without a second round-trip.
func (q *Query) Delete(ctx context.Context) (int, error) {
	headers := map[string]string{"Prefer": "return=representation"}
	var rows []json.RawMessage
	if err := q.s.do(ctx, http.MethodDelete, "/"+q.table, q.rawQuery(), headers, nil, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
