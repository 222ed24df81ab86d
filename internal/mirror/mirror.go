// Package mirror keeps the client-side copy of catalog records together with
// the bookkeeping that survives remote outages: tombstones for deleted ids and
// shadow patches for updates the remote store has not accepted yet.
//
// Every collection is stored as one JSON value in a storage.KVStore under
// a key namespaced by entity kind:
//
//	<kind>:mirror      JSON array of records
//	<kind>:tombstones  JSON array of ids
//	<kind>:shadow      JSON object id -> patch
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/iudanet/vitrina/internal/client/storage"
	"github.com/iudanet/vitrina/internal/models"
)

// Store is the local mirror of one entity kind.
// Read-modify-write sequences are serialized by an in-process mutex.
type Store[T models.Entity[T]] struct {
	kv   storage.KVStore
	kind string
	mu   sync.Mutex
}

// New creates a mirror for kind over kv.
func New[T models.Entity[T]](kv storage.KVStore, kind string) *Store[T] {
	return &Store[T]{kv: kv, kind: kind}
}

// Kind returns the entity kind the store is namespaced by.
func (s *Store[T]) Kind() string {
	return s.kind
}

func (s *Store[T]) mirrorKey() string     { return s.kind + ":mirror" }
func (s *Store[T]) tombstonesKey() string { return s.kind + ":tombstones" }
func (s *Store[T]) shadowKey() string     { return s.kind + ":shadow" }

// Records returns all mirrored records in insertion order.
func (s *Store[T]) Records(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRecords(ctx)
}

// Get returns the mirrored copy of id.
func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(recs, id); i >= 0 {
		rec := recs[i]
		return &rec, nil
	}
	return nil, nil
}

// Put inserts rec or replaces the record with the same id.
func (s *Store[T]) Put(ctx context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(recs, rec.RecordID()); i >= 0 {
		recs[i] = rec
	} else {
		recs = append(recs, rec)
	}
	return s.saveRecords(ctx, recs)
}

// Replace swaps the record stored under oldID for rec, keeping its position.
// When oldID is not mirrored rec is stored as a regular Put.
func (s *Store[T]) Replace(ctx context.Context, oldID string, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx)
	if err != nil {
		return err
	}

	// удаляем возможный дубликат с новым id, чтобы не получить две копии
	if rec.RecordID() != oldID {
		if i := indexOf(recs, rec.RecordID()); i >= 0 {
			recs = slices.Delete(recs, i, i+1)
		}
	}

	if i := indexOf(recs, oldID); i >= 0 {
		recs[i] = rec
	} else {
		recs = append(recs, rec)
	}
	return s.saveRecords(ctx, recs)
}

// Patch applies patch to the mirrored copy of id; stamp, when set, refreshes timestamps.
// It returns nil when id is not mirrored.
func (s *Store[T]) Patch(ctx context.Context, id string, patch models.Patch, stamp func(T) T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(recs, id)
	if i < 0 {
		return nil, nil
	}

	patched, err := models.ApplyPatch(recs[i], patch)
	if err != nil {
		return nil, err
	}
	patched = patched.WithID(id)
	if stamp != nil {
		patched = stamp(patched)
	}
	recs[i] = patched

	if err := s.saveRecords(ctx, recs); err != nil {
		return nil, err
	}
	return &patched, nil
}

// Remove deletes the mirrored copy of id. It reports whether a copy existed.
func (s *Store[T]) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(recs, id)
	if i < 0 {
		return false, nil
	}
	recs = slices.Delete(recs, i, i+1)
	return true, s.saveRecords(ctx, recs)
}

// Tombstones returns the set of deleted ids.
func (s *Store[T]) Tombstones(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadTombstones(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// HasTombstone reports whether id has been deleted.
func (s *Store[T]) HasTombstone(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadTombstones(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// AddTombstone marks id as deleted. Adding an existing tombstone is a no-op.
func (s *Store[T]) AddTombstone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadTombstones(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return s.saveJSON(ctx, s.tombstonesKey(), append(ids, id))
}

// RemoveTombstone drops the tombstone of id once the deletion is confirmed remotely.
func (s *Store[T]) RemoveTombstone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadTombstones(ctx)
	if err != nil {
		return err
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return nil
	}
	return s.saveJSON(ctx, s.tombstonesKey(), slices.Delete(ids, i, i+1))
}

// Shadows returns all pending shadow patches keyed by record id.
func (s *Store[T]) Shadows(ctx context.Context) (map[string]models.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadShadows(ctx)
}

// Shadow returns the pending patch for id.
func (s *Store[T]) Shadow(ctx context.Context, id string) (models.Patch, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shadows, err := s.loadShadows(ctx)
	if err != nil {
		return nil, false, err
	}
	patch, ok := shadows[id]
	return patch, ok, nil
}

// AddShadow merges patch into the pending patch for id (newer fields win)
// and returns the merged result.
func (s *Store[T]) AddShadow(ctx context.Context, id string, patch models.Patch) (models.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shadows, err := s.loadShadows(ctx)
	if err != nil {
		return nil, err
	}
	merged := models.MergePatch(shadows[id], patch)
	shadows[id] = merged

	if err := s.saveJSON(ctx, s.shadowKey(), shadows); err != nil {
		return nil, err
	}
	return merged, nil
}

// SettleShadow removes fields from the pending patch for id once the remote
// store has accepted newer values for them, and returns what is still pending.
// The entry is dropped when no fields remain.
func (s *Store[T]) SettleShadow(ctx context.Context, id string, fields []string) (models.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shadows, err := s.loadShadows(ctx)
	if err != nil {
		return nil, err
	}
	pending, ok := shadows[id]
	if !ok {
		return nil, nil
	}

	rest := pending.Clone()
	for _, f := range fields {
		delete(rest, f)
	}
	if len(rest) == len(pending) {
		return pending, nil
	}

	if len(rest) == 0 {
		delete(shadows, id)
		rest = nil
	} else {
		shadows[id] = rest
	}
	if err := s.saveJSON(ctx, s.shadowKey(), shadows); err != nil {
		return nil, err
	}
	return rest, nil
}

// RemoveShadow drops the pending patch for id.
func (s *Store[T]) RemoveShadow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shadows, err := s.loadShadows(ctx)
	if err != nil {
		return err
	}
	if _, ok := shadows[id]; !ok {
		return nil
	}
	delete(shadows, id)
	return s.saveJSON(ctx, s.shadowKey(), shadows)
}

func (s *Store[T]) loadRecords(ctx context.Context) ([]T, error) {
	var recs []T
	if err := s.loadJSON(ctx, s.mirrorKey(), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store[T]) saveRecords(ctx context.Context, recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	return s.saveJSON(ctx, s.mirrorKey(), recs)
}

func (s *Store[T]) loadTombstones(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.loadJSON(ctx, s.tombstonesKey(), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store[T]) loadShadows(ctx context.Context) (map[string]models.Patch, error) {
	shadows := make(map[string]models.Patch)
	if err := s.loadJSON(ctx, s.shadowKey(), &shadows); err != nil {
		return nil, err
	}
	if shadows == nil {
		shadows = make(map[string]models.Patch)
	}
	return shadows, nil
}

func (s *Store[T]) loadJSON(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store[T]) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func indexOf[T models.Entity[T]](recs []T, id string) int {
	return slices.IndexFunc(recs, func(r T) bool { return r.RecordID() == id })
}
