package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/vitrina/internal/server/storage"
)

// List returns all rows of table in the requested order
func (s *Storage) List(ctx context.Context, table string, order storage.Order) ([]storage.Document, error) {
	query := `SELECT doc FROM records WHERE tbl = ?`
	args := []any{table}

	if order.Field != "" {
		if !storage.FieldPattern.MatchString(order.Field) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidOrder, order.Field)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		// Направление нельзя передать параметром, поле передается как JSON path
		query += ` ORDER BY json_extract(doc, ?) COLLATE NOCASE ` + dir + `, created_at, id`
		args = append(args, "$."+order.Field)
	} else {
		query += ` ORDER BY created_at, id`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	docs := []storage.Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}

// Get returns a single row
func (s *Storage) Get(ctx context.Context, table, id string) (storage.Document, error) {
	return getDocument(ctx, s.db, table, id)
}

// Insert stores doc under a freshly generated id
func (s *Storage) Insert(ctx context.Context, table string, doc storage.Document) (storage.Document, error) {
	now := s.now().UTC()

	out := maps.Clone(doc)
	if out == nil {
		out = storage.Document{}
	}
	out["id"] = uuid.New().String()
	out["created_at"] = now.Format(time.RFC3339Nano)
	out["updated_at"] = now.Format(time.RFC3339Nano)

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	query := `
		INSERT INTO records (tbl, id, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, table, out.ID(), string(raw), now.UnixNano(), now.UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return out, nil
}

// Update replaces the row with the result of mutate
func (s *Storage) Update(ctx context.Context, table, id string, mutate storage.Mutator) (storage.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := getDocument(ctx, tx, table, id)
	if err != nil {
		return nil, err
	}

	next, err := mutate(maps.Clone(current))
	if err != nil {
		return nil, err
	}

	// Служебные поля принадлежат хранилищу
	now := s.now().UTC()
	next["id"] = id
	next["created_at"] = current["created_at"]
	next["updated_at"] = now.Format(time.RFC3339Nano)

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	query := `UPDATE records SET doc = ?, updated_at = ? WHERE tbl = ? AND id = ?`
	if _, err := tx.ExecContext(ctx, query, string(raw), now.UnixNano(), table, id); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, nil
}

// Delete removes a row
func (s *Storage) Delete(ctx context.Context, table, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE tbl = ? AND id = ?`, table, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n > 0, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDocument(ctx context.Context, q queryer, table, id string) (storage.Document, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT doc FROM records WHERE tbl = ? AND id = ?`, table, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return decodeDocument(raw)
}

// decodeDocument keeps numbers as json.Number so decimals survive a round trip
func decodeDocument(raw string) (storage.Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var doc storage.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return doc, nil
}
