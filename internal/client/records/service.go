// Package records implements the dual-store record service: every operation
// goes to the remote record store first and degrades to the local mirror when
// the remote store is unreachable.
package records

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/mirror"
	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/notify"
	"github.com/iudanet/vitrina/internal/reconcile"
	"github.com/iudanet/vitrina/internal/validation"
)

// RemoteStore is the remote adapter used by the service; *remote.Table satisfies it.
type RemoteStore[T any] interface {
	Select(ctx context.Context, order string) remote.Result[[]T]
	SelectByID(ctx context.Context, id string) remote.Result[*T]
	Insert(ctx context.Context, rec T) remote.Result[T]
	Update(ctx context.Context, id string, patch models.Patch) remote.Result[*T]
	Delete(ctx context.Context, id string) remote.Result[struct{}]
}

// Notifier receives fire-and-forget change events.
type Notifier interface {
	Publish(ctx context.Context, ev notify.Event)
}

// Kind describes one entity kind served by the service.
type Kind[T models.Entity[T]] struct {
	Policy   reconcile.Policy[T]
	Name     string   // entity kind, e.g. "product"
	Table    string   // remote table name
	Order    string   // remote ordering, e.g. "name.asc"
	Required []string // JSON fields that may not be blanked by a patch
}

// Service is the dual-store record service for one entity kind.
type Service[T models.Entity[T]] struct {
	remote   RemoteStore[T]
	notifier Notifier
	mirror   *mirror.Store[T]
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	kind     Kind[T]
}

// Option configures a Service.
type Option[T models.Entity[T]] func(*Service[T])

// WithClock overrides the time source used for local timestamps.
func WithClock[T models.Entity[T]](now func() time.Time) Option[T] {
	return func(s *Service[T]) { s.now = now }
}

// WithIDGenerator overrides how the random part of local ids is generated.
func WithIDGenerator[T models.Entity[T]](gen func() string) Option[T] {
	return func(s *Service[T]) { s.newID = gen }
}

// NewService creates a service for kind. notifier may be nil.
func NewService[T models.Entity[T]](
	kind Kind[T],
	remoteStore RemoteStore[T],
	mirrorStore *mirror.Store[T],
	notifier Notifier,
	logger *slog.Logger,
	opts ...Option[T],
) *Service[T] {
	s := &Service[T]{
		kind:     kind,
		remote:   remoteStore,
		mirror:   mirrorStore,
		notifier: notifier,
		logger:   logger.With("kind", kind.Name),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the entity kind name.
func (s *Service[T]) Kind() string {
	return s.kind.Name
}

// List returns the merged view of the remote store and the local mirror.
// It never fails: unreadable sources are treated as empty.
func (s *Service[T]) List(ctx context.Context) []T {
	var base []T
	if res := s.remote.Select(ctx, s.kind.Order); res.OK() {
		base = res.Value
	} else {
		s.remoteFailed("Remote list failed, using local mirror", res.Err)
	}

	in := reconcile.Input[T]{Base: base}

	var err error
	if in.Mirror, err = s.mirror.Records(ctx); err != nil {
		s.logger.Warn("Failed to read local mirror", "error", err)
	}
	if in.Tombstones, err = s.mirror.Tombstones(ctx); err != nil {
		s.logger.Warn("Failed to read tombstones", "error", err)
	}
	if in.Shadows, err = s.mirror.Shadows(ctx); err != nil {
		s.logger.Warn("Failed to read shadow patches", "error", err)
	}

	return reconcile.Merge(in, s.kind.Policy)
}

// GetByID returns the record with id from the remote store or, failing that,
// the local mirror, with any pending shadow patch applied. Tombstoned ids are absent.
// When the remote store answers that a remote id has no row, the mirror copy is
// stale and is dropped instead of being returned.
func (s *Service[T]) GetByID(ctx context.Context, id string) (T, bool) {
	var zero T

	if dead, err := s.mirror.HasTombstone(ctx, id); err != nil {
		s.logger.Warn("Failed to read tombstones", "error", err)
	} else if dead {
		return zero, false
	}

	shadow, hasShadow, err := s.mirror.Shadow(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to read shadow patches", "error", err)
	}

	var found *T
	useMirror := true
	if !models.IsLocalID(id) {
		res := s.remote.SelectByID(ctx, id)
		switch {
		case !res.OK():
			s.remoteFailed("Remote get failed, using local mirror", res.Err, "id", id)
		case res.Value != nil:
			found = res.Value
		default:
			useMirror = false
			s.dropStaleCopy(ctx, id)
		}
	}

	if found == nil && useMirror {
		if found, err = s.mirror.Get(ctx, id); err != nil {
			s.logger.Warn("Failed to read local mirror", "id", id, "error", err)
		}
	}

	switch {
	case found != nil:
		return reconcile.Overlay(*found, map[string]models.Patch{id: shadow}), true
	case hasShadow:
		// запись известна только по теневому патчу
		rec, err := models.ApplyPatch(zero, shadow)
		if err != nil {
			s.logger.Warn("Failed to apply shadow patch", "id", id, "error", err)
			return zero, false
		}
		return rec.WithID(id), true
	default:
		return zero, false
	}
}

// Create validates rec and stores it remotely, or locally under a local id
// when the remote store is unreachable. A caller-supplied id is ignored.
func (s *Service[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T

	rec = rec.Normalize().WithID("")
	if err := rec.Validate(); err != nil {
		return zero, err
	}

	res := s.remote.Insert(ctx, rec)
	if res.OK() {
		created := res.Value
		if err := s.mirror.Put(ctx, created); err != nil {
			s.logger.Warn("Failed to mirror created record", "id", created.RecordID(), "error", err)
		}
		s.publish(ctx, notify.RecordCreated, created.RecordID())
		return created, nil
	}

	s.remoteFailed("Remote insert failed, storing record locally", res.Err)

	local := rec.WithID(models.LocalIDPrefix + s.newID()).Stamp(s.now())
	if err := s.mirror.Put(ctx, local); err != nil {
		return zero, &LocalStorageError{Kind: s.kind.Name, Op: "create", Err: err}
	}

	s.publish(ctx, notify.RecordCreated, local.RecordID())
	return local, nil
}

// Update applies patch to the record with id. It returns nil when the id is
// unknown or tombstoned. When the remote store is unreachable the patch is kept
// as a shadow patch and the last known record with the patch applied is returned.
// Only patch itself is sent; shadowed fields it overwrites are settled, the rest
// stay pending until Reconcile.
func (s *Service[T]) Update(ctx context.Context, id string, patch models.Patch) (*T, error) {
	patch, err := s.validatePatch(id, patch)
	if err != nil {
		return nil, err
	}

	dead, err := s.mirror.HasTombstone(ctx, id)
	if err != nil {
		return nil, &LocalStorageError{Kind: s.kind.Name, Op: "update", Err: err}
	}
	if dead {
		return nil, nil
	}

	if models.IsLocalID(id) {
		updated, err := s.mirror.Patch(ctx, id, patch, s.restamp)
		if err != nil {
			return nil, &LocalStorageError{Kind: s.kind.Name, Op: "update", Err: err}
		}
		if updated != nil {
			s.publish(ctx, notify.RecordUpdated, id)
		}
		return updated, nil
	}

	res := s.remote.Update(ctx, id, patch)
	if res.OK() {
		return s.afterRemoteUpdate(ctx, id, patch, res.Value)
	}

	s.remoteFailed("Remote update failed, keeping shadow patch", res.Err, "id", id)

	merged, err := s.mirror.AddShadow(ctx, id, patch)
	if err != nil {
		return nil, &LocalStorageError{Kind: s.kind.Name, Op: "update", Err: err}
	}

	view, ok := s.shadowView(ctx, id, merged)
	if !ok {
		return nil, nil
	}
	s.publish(ctx, notify.RecordUpdated, id)
	return &view, nil
}

func (s *Service[T]) afterRemoteUpdate(ctx context.Context, id string, patch models.Patch, row *T) (*T, error) {
	if row == nil {
		// строки нет в удаленном хранилище: копия и теневой патч устарели
		s.dropStaleCopy(ctx, id)
		if err := s.mirror.RemoveShadow(ctx, id); err != nil {
			s.logger.Warn("Failed to remove shadow patch", "id", id, "error", err)
		}
		return nil, nil
	}

	rest, err := s.mirror.SettleShadow(ctx, id, patch.Fields())
	if err != nil {
		s.logger.Warn("Failed to settle shadow patch", "id", id, "error", err)
	}

	if cached, err := s.mirror.Get(ctx, id); err != nil {
		s.logger.Warn("Failed to read local mirror", "id", id, "error", err)
	} else if cached != nil {
		if err := s.mirror.Put(ctx, *row); err != nil {
			s.logger.Warn("Failed to update mirror copy", "id", id, "error", err)
		}
	}

	s.publish(ctx, notify.RecordUpdated, id)
	view := reconcile.Overlay(*row, map[string]models.Patch{id: rest})
	return &view, nil
}

// dropStaleCopy removes the mirror copy of a remote id the remote store no longer has.
func (s *Service[T]) dropStaleCopy(ctx context.Context, id string) {
	removed, err := s.mirror.Remove(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to remove stale mirror copy", "id", id, "error", err)
		return
	}
	if removed {
		s.logger.Info("Dropped stale mirror copy", "id", id)
	}
}

// shadowView builds what a caller sees for id while a shadow patch is pending.
// Without a mirror copy the view starts from the zero record, so fields the
// shadow does not carry are empty until the remote store answers again.
func (s *Service[T]) shadowView(ctx context.Context, id string, shadow models.Patch) (T, bool) {
	var base T
	cached, err := s.mirror.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to read local mirror", "id", id, "error", err)
	}
	if cached != nil {
		base = *cached
	}

	view, err := models.ApplyPatch(base, shadow)
	if err != nil {
		s.logger.Warn("Failed to apply shadow patch", "id", id, "error", err)
		return base, cached != nil
	}
	return view.WithID(id), true
}

// Delete removes the record with id. The id is tombstoned regardless of the
// remote outcome, so it disappears from List even if it only existed locally.
// It reports false with a *LocalStorageError only when both steps fail.
func (s *Service[T]) Delete(ctx context.Context, id string) (bool, error) {
	remoteOK := false
	if !models.IsLocalID(id) {
		if res := s.remote.Delete(ctx, id); res.OK() {
			remoteOK = true
		} else {
			s.remoteFailed("Remote delete failed, relying on tombstone", res.Err, "id", id)
		}
	}

	tombErr := s.mirror.AddTombstone(ctx, id)
	if tombErr != nil {
		s.logger.Warn("Failed to write tombstone", "id", id, "error", tombErr)
	}

	if _, err := s.mirror.Remove(ctx, id); err != nil {
		s.logger.Warn("Failed to remove mirror copy", "id", id, "error", err)
	}
	if err := s.mirror.RemoveShadow(ctx, id); err != nil {
		s.logger.Warn("Failed to remove shadow patch", "id", id, "error", err)
	}

	if !remoteOK && tombErr != nil {
		return false, &LocalStorageError{Kind: s.kind.Name, Op: "delete", Err: tombErr}
	}

	s.publish(ctx, notify.RecordDeleted, id)
	return true, nil
}

// remoteFailed logs a failed remote call; unreachable tells an outage apart
// from a request the store rejected
func (s *Service[T]) remoteFailed(msg string, err *remote.Error, args ...any) {
	unreachable := err == nil || err.Unavailable()
	s.logger.Warn(msg, append(args, "unreachable", unreachable, "error", err)...)
}

// validatePatch rejects patches that would blank required fields, carry values
// of the wrong type or break a record rule on the fields they touch, and
// returns the patch in canonical form.
func (s *Service[T]) validatePatch(id string, patch models.Patch) (models.Patch, error) {
	if _, ok := patch["id"]; ok {
		return nil, validation.New(s.kind.Name, "id", "cannot be changed")
	}

	patch = patch.Normalized()
	if len(patch) == 0 {
		return nil, validation.New(s.kind.Name, "", "patch is empty")
	}

	for _, field := range s.kind.Required {
		if v, ok := patch[field]; ok {
			if err := validation.RequiredString(s.kind.Name, field, v); err != nil {
				return nil, err
			}
		}
	}

	var zero T
	candidate, err := models.ApplyPatch(zero.WithID(id), patch)
	if err != nil {
		return nil, validation.New(s.kind.Name, "", "invalid patch: "+err.Error())
	}
	candidate = candidate.Normalize()

	if err := validation.Partial(s.kind.Name, candidate, patch.Fields()); err != nil {
		return nil, err
	}
	if err := checkPatchedRules(candidate, patch); err != nil {
		return nil, err
	}

	// приводим значения патча к каноническому виду (обрезка, регистр, округление)
	canonical, err := models.PatchFromRecord(candidate)
	if err != nil {
		s.logger.Warn("Failed to canonicalize patch, sending it as is", "id", id, "error", err)
		return patch, nil
	}
	for k := range patch {
		if v, ok := canonical[k]; ok {
			patch[k] = v
		}
	}
	return patch, nil
}

// checkPatchedRules runs the record rules of rec, if it has any, and reports
// only violations of fields the patch sets; the rest of rec is not known here.
func checkPatchedRules(rec any, patch models.Patch) error {
	rc, ok := rec.(models.RuleChecker)
	if !ok {
		return nil
	}
	err := rc.CheckRules()
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) && verr.Field != "" {
		if _, touched := patch[verr.Field]; !touched {
			return nil
		}
	}
	return err
}

func (s *Service[T]) restamp(rec T) T {
	return rec.Normalize().Stamp(s.now())
}

func (s *Service[T]) publish(ctx context.Context, typ, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, notify.Event{
		Type:   typ,
		Kind:   s.kind.Name,
		ID:     id,
		Origin: string(models.Origin(id)),
		At:     s.now(),
	})
}
