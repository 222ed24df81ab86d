package storage

import (
	"context"
	"regexp"
)

//go:generate moq -out records_mock.go . RecordStorage

// Document is one stored row: a JSON object keyed by field name.
// The store owns the "id", "created_at" and "updated_at" fields.
type Document map[string]any

// ID returns the document id.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// FieldPattern restricts field names usable in ordering.
var FieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Order describes result ordering; an empty Field keeps insertion order.
type Order struct {
	Field string
	Desc  bool
}

// Mutator transforms the current document during an update. An error aborts the update.
type Mutator func(current Document) (Document, error)

// RecordStorage defines interface for table rows persistence
type RecordStorage interface {
	// List returns all rows of table in the requested order
	// Returns empty slice if the table has no rows
	List(ctx context.Context, table string, order Order) ([]Document, error)

	// Get returns a single row
	// Returns ErrRecordNotFound if the row doesn't exist
	Get(ctx context.Context, table, id string) (Document, error)

	// Insert stores doc under a freshly generated id and returns the stored row
	Insert(ctx context.Context, table string, doc Document) (Document, error)

	// Update replaces the row with the result of mutate, inside one transaction
	// Returns ErrRecordNotFound if the row doesn't exist
	Update(ctx context.Context, table, id string, mutate Mutator) (Document, error)

	// Delete removes a row; it reports whether a row existed
	Delete(ctx context.Context, table, id string) (bool, error)

	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}
