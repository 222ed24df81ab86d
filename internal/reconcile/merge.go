// Package reconcile merges the remote result of a kind with the local mirror.
// Merge is a pure function so dedup and precedence rules can be tested without I/O.
package reconcile

import (
	"cmp"
	"slices"

	"github.com/iudanet/vitrina/internal/models"
)

// Policy describes how records of one kind are deduplicated and ordered.
type Policy[T models.Entity[T]] struct {
	// IdentityKey returns the dedup key; an empty key never collides
	IdentityKey func(T) string
	// Compare orders the merged list
	Compare func(a, b T) int
}

// DefaultPolicy dedups by the entity identity key and sorts by it, then by id.
func DefaultPolicy[T models.Entity[T]]() Policy[T] {
	return Policy[T]{
		IdentityKey: func(r T) string { return r.IdentityKey() },
		Compare: func(a, b T) int {
			return cmp.Or(
				cmp.Compare(a.IdentityKey(), b.IdentityKey()),
				cmp.Compare(a.RecordID(), b.RecordID()),
			)
		},
	}
}

// Input is everything Merge needs for one kind.
type Input[T models.Entity[T]] struct {
	Tombstones map[string]struct{}
	Shadows    map[string]models.Patch
	Base       []T // remote result, empty when the remote store is unreachable
	Mirror     []T // local mirror collection
}

// Merge builds the list a caller sees:
//   - tombstoned ids are dropped from both sources;
//   - shadow patches override fields of the record with the same id;
//   - a mirror record is added only when its id is not in the base and its
//     identity key does not collide with a base record (the remote copy wins);
//   - the result is sorted with policy.Compare.
func Merge[T models.Entity[T]](in Input[T], policy Policy[T]) []T {
	if policy.IdentityKey == nil || policy.Compare == nil {
		def := DefaultPolicy[T]()
		if policy.IdentityKey == nil {
			policy.IdentityKey = def.IdentityKey
		}
		if policy.Compare == nil {
			policy.Compare = def.Compare
		}
	}

	out := make([]T, 0, len(in.Base)+len(in.Mirror))
	ids := make(map[string]struct{}, len(in.Base))
	keys := make(map[string]struct{}, len(in.Base))

	for _, rec := range in.Base {
		if tombstoned(in.Tombstones, rec.RecordID()) {
			continue
		}
		if _, dup := ids[rec.RecordID()]; dup {
			continue
		}
		rec = Overlay(rec, in.Shadows)
		ids[rec.RecordID()] = struct{}{}
		if key := policy.IdentityKey(rec); key != "" {
			keys[key] = struct{}{}
		}
		out = append(out, rec)
	}

	for _, rec := range in.Mirror {
		if tombstoned(in.Tombstones, rec.RecordID()) {
			continue
		}
		if _, dup := ids[rec.RecordID()]; dup {
			continue
		}
		rec = Overlay(rec, in.Shadows)
		if key := policy.IdentityKey(rec); key != "" {
			if _, dup := keys[key]; dup {
				continue
			}
		}
		ids[rec.RecordID()] = struct{}{}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, policy.Compare)
	return out
}

// Overlay applies the shadow patch of rec, if any. A patch that cannot be
// applied leaves the record unchanged.
func Overlay[T models.Entity[T]](rec T, shadows map[string]models.Patch) T {
	patch, ok := shadows[rec.RecordID()]
	if !ok || len(patch) == 0 {
		return rec
	}
	patched, err := models.ApplyPatch(rec, patch)
	if err != nil {
		return rec
	}
	return patched.WithID(rec.RecordID())
}

func tombstoned(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
