package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/server/storage"
	"github.com/iudanet/vitrina/pkg/api"
)

// Schema turns an incoming document into the canonical stored shape of a table
type Schema interface {
	// Canonical decodes doc into the table record type, normalizes and validates it.
	// Decode failures are returned as *BodyError, failed checks as *validation.Error.
	Canonical(doc storage.Document) (storage.Document, error)
}

// BodyError describes a document that does not fit the table record type
type BodyError struct {
	Err error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("invalid document: %v", e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

type entitySchema[T models.Entity[T]] struct{}

// EntitySchema returns a schema backed by the record type T
func EntitySchema[T models.Entity[T]]() Schema {
	return entitySchema[T]{}
}

func (entitySchema[T]) Canonical(doc storage.Document) (storage.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &BodyError{Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var rec T
	if err := dec.Decode(&rec); err != nil {
		return nil, &BodyError{Err: err}
	}

	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	dec = json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()

	var canonical storage.Document
	if err := dec.Decode(&canonical); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return canonical, nil
}

// CatalogSchemas returns the schemas of the catalog tables
func CatalogSchemas() map[string]Schema {
	return map[string]Schema{
		api.TableProducts:   EntitySchema[models.Product](),
		api.TableCategories: EntitySchema[models.Category](),
		api.TableAttributes: EntitySchema[models.Attribute](),
	}
}
