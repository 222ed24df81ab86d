package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/iudanet/vitrina/internal/server/storage"
	"github.com/iudanet/vitrina/internal/validation"
	"github.com/iudanet/vitrina/pkg/api"
)

// MaxBodySize ограничивает размер тела запроса на запись
const MaxBodySize = 1 << 20

// Служебные поля, которыми владеет хранилище
var storeOwnedFields = []string{"id", "created_at", "updated_at"}

// RecordsHandler обрабатывает запросы к таблицам /rest/v1/{table}
type RecordsHandler struct {
	logger  *slog.Logger
	storage storage.RecordStorage
	schemas map[string]Schema
}

// NewRecordsHandler создает новый handler для таблиц
func NewRecordsHandler(logger *slog.Logger, recordStorage storage.RecordStorage, schemas map[string]Schema) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger,
		storage: recordStorage,
		schemas: schemas,
	}
}

// Register mounts the table endpoints on mux
func (h *RecordsHandler) Register(mux *http.ServeMux) {
	path := api.RestPrefix + "{table}"
	mux.HandleFunc("GET "+path, h.Select)
	mux.HandleFunc("POST "+path, h.Insert)
	mux.HandleFunc("PATCH "+path, h.Update)
	mux.HandleFunc("DELETE "+path, h.Delete)
}

// Select обрабатывает GET /rest/v1/{table}
// Поддерживает ?id=eq.<id> и ?order=<field>.<asc|desc>
func (h *RecordsHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, _, ok := h.table(w, r)
	if !ok {
		return
	}

	q, err := parseQuery(r.URL.Query())
	if err != nil {
		sendError(w, http.StatusBadRequest, api.ErrorResponse{
			Code:    api.CodeBadRequest,
			Message: err.Error(),
			Hint:    "supported parameters: id=eq.<id>, order=<field>.<asc|desc>",
		})
		return
	}

	if q.id != "" {
		doc, err := h.storage.Get(ctx, table, q.id)
		if errors.Is(err, storage.ErrRecordNotFound) {
			h.sendRows(w, http.StatusOK, []storage.Document{})
			return
		}
		if err != nil {
			h.storageFailure(w, r, "failed to get record", err)
			return
		}
		h.sendRows(w, http.StatusOK, []storage.Document{doc})
		return
	}

	docs, err := h.storage.List(ctx, table, q.order)
	if errors.Is(err, storage.ErrInvalidOrder) {
		sendError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeBadRequest, Message: err.Error()})
		return
	}
	if err != nil {
		h.storageFailure(w, r, "failed to list records", err)
		return
	}

	h.sendRows(w, http.StatusOK, docs)
}

// Insert обрабатывает POST /rest/v1/{table}
// Тело: объект или массив объектов; id и временные метки назначает хранилище
func (h *RecordsHandler) Insert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, schema, ok := h.table(w, r)
	if !ok {
		return
	}

	docs, err := decodeDocuments(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode insert body", slog.String("table", table), slog.Any("error", err))
		sendError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeInvalidBody, Message: "invalid request body", Details: err.Error()})
		return
	}

	// Сначала проверяем все строки, чтобы не записать часть пакета
	canonical := make([]storage.Document, 0, len(docs))
	for _, doc := range docs {
		c, err := schema.Canonical(withoutStoreFields(doc))
		if err != nil {
			h.schemaFailure(w, r, err)
			return
		}
		canonical = append(canonical, c)
	}

	created := make([]storage.Document, 0, len(canonical))
	for _, doc := range canonical {
		row, err := h.storage.Insert(ctx, table, withoutStoreFields(doc))
		if err != nil {
			h.storageFailure(w, r, "failed to insert record", err)
			return
		}
		created = append(created, row)
	}

	role, _ := GetRole(ctx)
	h.logger.InfoContext(ctx, "records inserted", slog.String("table", table), slog.Int("count", len(created)), slog.String("role", role))

	h.sendWriteResult(w, r, http.StatusCreated, created)
}

// Update обрабатывает PATCH /rest/v1/{table}?id=eq.<id>
// Поля тела перекрывают поля строки; результат проходит проверку схемы
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, schema, ok := h.table(w, r)
	if !ok {
		return
	}

	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	docs, err := decodeDocuments(r.Body)
	if err == nil && len(docs) != 1 {
		err = fmt.Errorf("expected a single object")
	}
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode update body", slog.String("table", table), slog.Any("error", err))
		sendError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeInvalidBody, Message: "invalid request body", Details: err.Error()})
		return
	}
	patch := withoutStoreFields(docs[0])

	updated, err := h.storage.Update(ctx, table, id, func(current storage.Document) (storage.Document, error) {
		for k, v := range patch {
			current[k] = v
		}
		return schema.Canonical(current)
	})
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		h.sendWriteResult(w, r, http.StatusOK, []storage.Document{})
		return
	case isSchemaError(err):
		h.schemaFailure(w, r, err)
		return
	case err != nil:
		h.storageFailure(w, r, "failed to update record", err)
		return
	}

	h.logger.InfoContext(ctx, "record updated", slog.String("table", table), slog.String("id", id))

	h.sendWriteResult(w, r, http.StatusOK, []storage.Document{updated})
}

// Delete обрабатывает DELETE /rest/v1/{table}?id=eq.<id>
// Удаление отсутствующей строки не считается ошибкой
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, _, ok := h.table(w, r)
	if !ok {
		return
	}

	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	existed, err := h.storage.Delete(ctx, table, id)
	if err != nil {
		h.storageFailure(w, r, "failed to delete record", err)
		return
	}

	h.logger.InfoContext(ctx, "record deleted",
		slog.String("table", table),
		slog.String("id", id),
		slog.Bool("existed", existed))

	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) table(w http.ResponseWriter, r *http.Request) (string, Schema, bool) {
	table := r.PathValue("table")
	schema, ok := h.schemas[table]
	if !ok {
		sendError(w, http.StatusNotFound, api.ErrorResponse{
			Code:    api.CodeUndefinedTable,
			Message: fmt.Sprintf("relation %q does not exist", table),
		})
		return "", nil, false
	}
	return table, schema, true
}

func (h *RecordsHandler) requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	q, err := parseQuery(r.URL.Query())
	if err == nil && q.id == "" {
		err = fmt.Errorf("filter id=eq.<id> is required")
	}
	if err != nil {
		sendError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeBadRequest, Message: err.Error()})
		return "", false
	}
	return q.id, true
}

func (h *RecordsHandler) schemaFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "document rejected", slog.String("path", r.URL.Path), slog.Any("error", err))

	var verr *validation.Error
	if errors.As(err, &verr) {
		sendError(w, http.StatusBadRequest, api.ErrorResponse{
			Code:    api.CodeCheckViolation,
			Message: verr.Error(),
			Details: verr.Field,
		})
		return
	}

	sendError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeInvalidBody, Message: "invalid document", Details: err.Error()})
}

func (h *RecordsHandler) storageFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.String("path", r.URL.Path), slog.Any("error", err))
	sendError(w, http.StatusInternalServerError, api.ErrorResponse{Code: api.CodeInternal, Message: "internal server error"})
}

// sendWriteResult отвечает строками только при Prefer: return=representation
func (h *RecordsHandler) sendWriteResult(w http.ResponseWriter, r *http.Request, status int, rows []storage.Document) {
	if !strings.Contains(r.Header.Get("Prefer"), api.PreferRepresentation) {
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
		return
	}
	h.sendRows(w, status, rows)
}

func (h *RecordsHandler) sendRows(w http.ResponseWriter, status int, rows []storage.Document) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

type tableQuery struct {
	id    string
	order storage.Order
}

// parseQuery разбирает фильтры в стиле PostgREST
func parseQuery(values url.Values) (tableQuery, error) {
	var q tableQuery
	for key, vals := range values {
		if len(vals) != 1 {
			return q, fmt.Errorf("parameter %q must be given once", key)
		}
		v := vals[0]

		switch key {
		case "id":
			id, ok := strings.CutPrefix(v, "eq.")
			if !ok || id == "" {
				return q, fmt.Errorf("unsupported id filter %q", v)
			}
			q.id = id
		case "order":
			order, err := parseOrder(v)
			if err != nil {
				return q, err
			}
			q.order = order
		case "select":
			if v != "*" {
				return q, fmt.Errorf("column selection is not supported")
			}
		default:
			return q, fmt.Errorf("unsupported filter %q", key)
		}
	}
	return q, nil
}

func parseOrder(v string) (storage.Order, error) {
	field, dir, _ := strings.Cut(v, ".")

	order := storage.Order{Field: field}
	switch dir {
	case "", "asc":
	case "desc":
		order.Desc = true
	default:
		return order, fmt.Errorf("invalid order direction %q", dir)
	}

	if !storage.FieldPattern.MatchString(field) {
		return order, fmt.Errorf("invalid order field %q", field)
	}
	return order, nil
}

// decodeDocuments accepts a single JSON object or an array of objects
func decodeDocuments(body io.Reader) ([]storage.Document, error) {
	raw, err := io.ReadAll(io.LimitReader(body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(raw) > MaxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodySize)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if raw[0] == '[' {
		var docs []storage.Document
		if err := dec.Decode(&docs); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("empty array")
		}
		for _, d := range docs {
			if d == nil {
				return nil, fmt.Errorf("array items must be objects")
			}
		}
		return docs, nil
	}

	var doc storage.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("body must be an object")
	}
	return []storage.Document{doc}, nil
}

func withoutStoreFields(doc storage.Document) storage.Document {
	out := make(storage.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, f := range storeOwnedFields {
		delete(out, f)
	}
	return out
}

func isSchemaError(err error) bool {
	var berr *BodyError
	return validation.IsValidationError(err) || errors.As(err, &berr)
}

// sendError отправляет JSON ответ с ошибкой
func sendError(w http.ResponseWriter, status int, resp api.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// SendError отправляет ошибку в формате api.ErrorResponse
func SendError(w http.ResponseWriter, status int, code, message string) {
	sendError(w, status, api.ErrorResponse{Code: code, Message: message})
}
