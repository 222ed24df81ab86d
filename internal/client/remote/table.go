package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/pkg/api"
)

// Table is a typed view of one record store table.
type Table[T any] struct {
	client *Client
	name   string
}

// NewTable binds a table name to the record type T.
func NewTable[T any](c *Client, name string) *Table[T] {
	return &Table[T]{client: c, name: name}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) path() string {
	return api.RestPrefix + t.name
}

func idFilter(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

// Select returns all rows; order has the form "field.asc" or "field.desc" and may be empty.
func (t *Table[T]) Select(ctx context.Context, order string) Result[[]T] {
	var query url.Values
	if order != "" {
		query = url.Values{"order": {order}}
	}

	var rows []T
	if err := t.client.do(ctx, http.MethodGet, t.path(), query, nil, &rows); err != nil {
		return Fail[[]T](err)
	}
	return OK(rows)
}

// SelectByID returns the row with id, or a nil Value when there is none.
func (t *Table[T]) SelectByID(ctx context.Context, id string) Result[*T] {
	var rows []T
	if err := t.client.do(ctx, http.MethodGet, t.path(), idFilter(id), nil, &rows); err != nil {
		return Fail[*T](err)
	}
	return OK(first(rows))
}

// Insert creates a row; the store assigns id and timestamps and returns the stored row.
func (t *Table[T]) Insert(ctx context.Context, rec T) Result[T] {
	var rows []T
	if err := t.client.do(ctx, http.MethodPost, t.path(), nil, rec, &rows); err != nil {
		return Fail[T](err)
	}
	if len(rows) == 0 {
		return Fail[T](&Error{Code: CodeDecode, Message: "insert returned no row"})
	}
	return OK(rows[0])
}

// Update applies patch to the row with id. A nil Value means no row matched.
func (t *Table[T]) Update(ctx context.Context, id string, patch models.Patch) Result[*T] {
	var rows []T
	if err := t.client.do(ctx, http.MethodPatch, t.path(), idFilter(id), patch, &rows); err != nil {
		return Fail[*T](err)
	}
	return OK(first(rows))
}

// Delete removes the row with id. Deleting a missing row succeeds.
func (t *Table[T]) Delete(ctx context.Context, id string) Result[struct{}] {
	if err := t.client.do(ctx, http.MethodDelete, t.path(), idFilter(id), nil, nil); err != nil {
		return Fail[struct{}](err)
	}
	return OK(struct{}{})
}

func first[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]
	return &row
}
