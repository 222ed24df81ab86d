package records

import (
	"context"
	"fmt"
	"slices"

	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/notify"
	"github.com/iudanet/vitrina/internal/reconcile"
)

// ReconcileResult contains the outcome of one reconciliation pass
type ReconcileResult struct {
	Kind     string
	Pushed   int // локальные записи, созданные в удаленном хранилище
	Adopted  int // локальные записи, замененные существующей удаленной копией
	Patched  int // теневые патчи, примененные удаленно
	Deleted  int // tombstones, удаленные в удаленном хранилище
	Pruned   int // устаревшие tombstones, патчи и копии, снятые без удаленного вызова
	Rejected int // теневые патчи, отклоненные удаленным хранилищем и снятые
	Failed   int // операции, не выполненные из-за ошибок удаленного хранилища
}

// Changed reports whether the pass touched anything.
func (r ReconcileResult) Changed() bool {
	return r.Pushed+r.Adopted+r.Patched+r.Deleted+r.Pruned+r.Rejected > 0
}

// Reconcile replays locally queued changes against the remote store:
//  1. local-origin records are inserted remotely, or adopted when a remote
//     record with the same identity key already exists;
//  2. shadow patches are sent as remote updates; a patch the store rejects
//     is dropped and counted in Rejected;
//  3. tombstoned remote ids are deleted remotely, then the tombstone is pruned;
//  4. mirror copies of remote ids missing from the remote list are dropped.
//
// Other remote failures of single items are counted in Failed and retried on
// the next pass. The pass is aborted when the remote list cannot be fetched or
// the local mirror cannot be read or written.
func (s *Service[T]) Reconcile(ctx context.Context) (ReconcileResult, error) {
	result := ReconcileResult{Kind: s.kind.Name}

	list := s.remote.Select(ctx, s.kind.Order)
	if !list.OK() {
		return result, fmt.Errorf("%s reconcile: remote store unavailable: %w", s.kind.Name, list.Err)
	}

	policy := s.kind.Policy
	if policy.IdentityKey == nil {
		policy = reconcile.DefaultPolicy[T]()
	}

	byKey := make(map[string]T, len(list.Value))
	live := make(map[string]struct{}, len(list.Value))
	for _, rec := range list.Value {
		live[rec.RecordID()] = struct{}{}
		if key := policy.IdentityKey(rec); key != "" {
			byKey[key] = rec
		}
	}

	localErr := func(err error) error {
		return &LocalStorageError{Kind: s.kind.Name, Op: "reconcile", Err: err}
	}

	tombstones, err := s.mirror.Tombstones(ctx)
	if err != nil {
		return result, localErr(err)
	}
	shadows, err := s.mirror.Shadows(ctx)
	if err != nil {
		return result, localErr(err)
	}
	recs, err := s.mirror.Records(ctx)
	if err != nil {
		return result, localErr(err)
	}

	// 1. Локальные записи
	for _, rec := range recs {
		id := rec.RecordID()
		if !models.IsLocalID(id) {
			continue
		}

		if _, dead := tombstones[id]; dead {
			if _, err := s.mirror.Remove(ctx, id); err != nil {
				return result, localErr(err)
			}
			continue
		}

		pending := reconcile.Overlay(rec, shadows)

		if key := policy.IdentityKey(pending); key != "" {
			if existing, ok := byKey[key]; ok {
				if err := s.replaceLocal(ctx, id, existing); err != nil {
					return result, localErr(err)
				}
				s.logger.Info("Adopted remote record", "local_id", id, "id", existing.RecordID())
				result.Adopted++
				continue
			}
		}

		ins := s.remote.Insert(ctx, pending.WithID(""))
		if !ins.OK() {
			s.logger.Warn("Failed to push local record", "id", id, "error", ins.Err)
			result.Failed++
			continue
		}

		if err := s.replaceLocal(ctx, id, ins.Value); err != nil {
			return result, localErr(err)
		}
		live[ins.Value.RecordID()] = struct{}{}
		if key := policy.IdentityKey(ins.Value); key != "" {
			byKey[key] = ins.Value
		}
		s.logger.Info("Pushed local record", "local_id", id, "id", ins.Value.RecordID())
		s.publish(ctx, notify.RecordCreated, ins.Value.RecordID())
		result.Pushed++
	}

	// 2. Теневые патчи удаленных записей
	for _, id := range sortedKeys(shadows) {
		if models.IsLocalID(id) {
			continue
		}
		if _, dead := tombstones[id]; dead {
			if err := s.mirror.RemoveShadow(ctx, id); err != nil {
				return result, localErr(err)
			}
			result.Pruned++
			continue
		}

		up := s.remote.Update(ctx, id, shadows[id])
		if !up.OK() {
			if up.Err != nil && up.Err.Rejected() {
				// повторная отправка того же патча не поможет
				if err := s.mirror.RemoveShadow(ctx, id); err != nil {
					return result, localErr(err)
				}
				s.logger.Warn("Dropped rejected shadow patch", "id", id, "patch", shadows[id], "error", up.Err)
				result.Rejected++
				continue
			}
			s.logger.Warn("Failed to push shadow patch", "id", id, "error", up.Err)
			result.Failed++
			continue
		}

		if err := s.mirror.RemoveShadow(ctx, id); err != nil {
			return result, localErr(err)
		}

		if up.Value == nil {
			// удаленной строки больше нет, патчить нечего
			s.logger.Info("Dropped shadow patch for missing record", "id", id)
			result.Pruned++
			continue
		}

		cached, err := s.mirror.Get(ctx, id)
		if err != nil {
			return result, localErr(err)
		}
		if cached != nil {
			if err := s.mirror.Put(ctx, *up.Value); err != nil {
				return result, localErr(err)
			}
		}
		result.Patched++
	}

	// 3. Tombstones
	for _, id := range sortedKeys(tombstones) {
		if !models.IsLocalID(id) {
			if del := s.remote.Delete(ctx, id); !del.OK() {
				s.logger.Warn("Failed to push delete", "id", id, "error", del.Err)
				result.Failed++
				continue
			}
			result.Deleted++
		} else {
			result.Pruned++
		}

		if err := s.mirror.RemoveTombstone(ctx, id); err != nil {
			return result, localErr(err)
		}
	}

	// 4. Копии записей, удаленных другими клиентами
	for _, rec := range recs {
		id := rec.RecordID()
		if models.IsLocalID(id) {
			continue
		}
		if _, ok := live[id]; ok {
			continue
		}
		if _, dead := tombstones[id]; dead {
			continue
		}
		removed, err := s.mirror.Remove(ctx, id)
		if err != nil {
			return result, localErr(err)
		}
		if removed {
			s.logger.Info("Dropped stale mirror copy", "id", id)
			result.Pruned++
		}
	}

	s.logger.Info("Reconcile completed",
		"pushed", result.Pushed,
		"adopted", result.Adopted,
		"patched", result.Patched,
		"deleted", result.Deleted,
		"pruned", result.Pruned,
		"rejected", result.Rejected,
		"failed", result.Failed)

	return result, nil
}

// Pending returns how many local changes wait for reconciliation:
// local-origin records, shadow patches and tombstones.
func (s *Service[T]) Pending(ctx context.Context) (int, error) {
	recs, err := s.mirror.Records(ctx)
	if err != nil {
		return 0, &LocalStorageError{Kind: s.kind.Name, Op: "pending", Err: err}
	}
	shadows, err := s.mirror.Shadows(ctx)
	if err != nil {
		return 0, &LocalStorageError{Kind: s.kind.Name, Op: "pending", Err: err}
	}
	tombstones, err := s.mirror.Tombstones(ctx)
	if err != nil {
		return 0, &LocalStorageError{Kind: s.kind.Name, Op: "pending", Err: err}
	}

	count := len(shadows) + len(tombstones)
	for _, rec := range recs {
		if models.IsLocalID(rec.RecordID()) {
			count++
		}
	}
	return count, nil
}

// replaceLocal swaps a local-origin record for its remote counterpart and drops
// the shadow patch kept under the local id.
func (s *Service[T]) replaceLocal(ctx context.Context, localID string, rec T) error {
	if err := s.mirror.Replace(ctx, localID, rec); err != nil {
		return err
	}
	return s.mirror.RemoveShadow(ctx, localID)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
