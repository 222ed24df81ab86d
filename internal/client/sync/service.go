package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/vitrina/internal/client/records"
	"github.com/iudanet/vitrina/internal/client/storage"
	"github.com/iudanet/vitrina/internal/notify"
)

//go:generate moq -out service_mock.go . Service
//go:generate moq -out reconciler_mock_test.go . Reconciler

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync replays queued local changes of every kind against the remote store
	Sync(ctx context.Context) (*SyncResult, error)

	// GetPendingSyncCount возвращает количество локальных изменений, ожидающих синхронизации
	GetPendingSyncCount(ctx context.Context) (int, error)

	// LastSyncTime returns the time of the last successful sync, zero if never synced
	LastSyncTime(ctx context.Context) (time.Time, error)
}

// Reconciler is one entity kind of the catalog; *records.Service satisfies it.
type Reconciler interface {
	Kind() string
	Reconcile(ctx context.Context) (records.ReconcileResult, error)
	Pending(ctx context.Context) (int, error)
}

// ErrRemoteUnavailable is returned when no kind could be reconciled because
// the remote store was unreachable.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

type service struct {
	metadataStorage storage.MetadataStorage
	notifier        records.Notifier
	logger          *slog.Logger
	now             func() time.Time
	reconcilers     []Reconciler
}

// NewService creates a new sync service. notifier may be nil.
func NewService(reconcilers []Reconciler, metadataStorage storage.MetadataStorage, notifier records.Notifier, logger *slog.Logger) Service {
	return &service{
		reconcilers:     reconcilers,
		metadataStorage: metadataStorage,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// SyncResult contains sync operation results
type SyncResult struct {
	Kinds    []records.ReconcileResult
	Skipped  []string // виды, пропущенные из-за недоступности хранилища
	Pushed   int      // локальные записи, отправленные на сервер
	Adopted  int      // локальные записи, замененные серверными дубликатами
	Patched  int      // отправленные теневые патчи
	Deleted  int      // подтвержденные удаления
	Pruned   int      // снятые устаревшие tombstones, патчи и копии
	Rejected int      // теневые патчи, отклоненные сервером
	Failed   int      // операции, которые будут повторены при следующей синхронизации
}

func (r *SyncResult) add(res records.ReconcileResult) {
	r.Kinds = append(r.Kinds, res)
	r.Pushed += res.Pushed
	r.Adopted += res.Adopted
	r.Patched += res.Patched
	r.Deleted += res.Deleted
	r.Pruned += res.Pruned
	r.Rejected += res.Rejected
	r.Failed += res.Failed
}

// Sync performs reconciliation for every kind:
// 1. Pushes records created while offline
// 2. Pushes shadow patches
// 3. Pushes tombstones
// A local storage failure aborts the sync; a remote outage skips the kind.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	s.logger.Info("Starting synchronization", "kinds", len(s.reconcilers))

	result := &SyncResult{}

	for _, r := range s.reconcilers {
		res, err := r.Reconcile(ctx)
		if err != nil {
			var lerr *records.LocalStorageError
			if errors.As(err, &lerr) {
				return nil, fmt.Errorf("sync %s: %w", r.Kind(), err)
			}
			s.logger.Warn("Skipping kind", "kind", r.Kind(), "error", err)
			result.Skipped = append(result.Skipped, r.Kind())
			continue
		}
		if res.Changed() {
			s.logger.Debug("Kind reconciled", "kind", r.Kind(), "pushed", res.Pushed, "patched", res.Patched, "deleted", res.Deleted, "rejected", res.Rejected)
		}
		result.add(res)
	}

	if len(s.reconcilers) > 0 && len(result.Skipped) == len(s.reconcilers) {
		return result, ErrRemoteUnavailable
	}

	s.logger.Info("Synchronization completed",
		"pushed", result.Pushed,
		"adopted", result.Adopted,
		"patched", result.Patched,
		"deleted", result.Deleted,
		"pruned", result.Pruned,
		"rejected", result.Rejected,
		"failed", result.Failed,
		"skipped", len(result.Skipped))

	// Сохраняем время синхронизации только если все виды обработаны
	if len(result.Skipped) == 0 {
		if err := s.metadataStorage.SaveLastSyncTimestamp(ctx, s.now().Unix()); err != nil {
			s.logger.Warn("Failed to save last sync timestamp", "error", err)
			// Не прерываем синхронизацию из-за ошибки сохранения timestamp
		}
	}

	if s.notifier != nil {
		s.notifier.Publish(ctx, notify.Event{Type: notify.SyncCompleted, At: s.now()})
	}

	return result, nil
}

// GetPendingSyncCount возвращает количество изменений, ожидающих синхронизации
func (s *service) GetPendingSyncCount(ctx context.Context) (int, error) {
	total := 0
	for _, r := range s.reconcilers {
		n, err := r.Pending(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count pending %s changes: %w", r.Kind(), err)
		}
		total += n
	}
	return total, nil
}

// LastSyncTime returns the time of the last complete sync
func (s *service) LastSyncTime(ctx context.Context) (time.Time, error) {
	ts, err := s.metadataStorage.GetLastSyncTimestamp(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts, 0), nil
}
