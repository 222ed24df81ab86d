package records

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/models"
)

// fakeRemote is an in-memory record store with an outage switch.
type fakeRemote[T models.Entity[T]] struct {
	rows    []T
	calls   map[string]int
	rejects map[string]*remote.Error // ответы на патчи, содержащие поле
	patches []models.Patch
	nextID  int
	down    bool
	mu      sync.Mutex
}

func newFakeRemote[T models.Entity[T]](rows ...T) *fakeRemote[T] {
	return &fakeRemote[T]{rows: rows, calls: make(map[string]int), rejects: make(map[string]*remote.Error)}
}

var errOffline = &remote.Error{Code: remote.CodeNetwork, Message: "request failed", Details: "connection refused"}

func (f *fakeRemote[T]) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// rejectField makes every update that sets field fail with err.
func (f *fakeRemote[T]) rejectField(field string, err *remote.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejects[field] = err
}

// sentPatches returns the patches of all update calls in order.
func (f *fakeRemote[T]) sentPatches() []models.Patch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.patches)
}

// drop removes a row the way another client would, without counting a call.
func (f *fakeRemote[T]) drop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		f.rows = slices.Delete(f.rows, i, i+1)
	}
}

func (f *fakeRemote[T]) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote[T]) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRemote[T]) snapshot() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows)
}

func (f *fakeRemote[T]) index(id string) int {
	return slices.IndexFunc(f.rows, func(r T) bool { return r.RecordID() == id })
}

func (f *fakeRemote[T]) Select(ctx context.Context, order string) remote.Result[[]T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["select"]++
	if f.down {
		return remote.Fail[[]T](errOffline)
	}
	return remote.OK(slices.Clone(f.rows))
}

func (f *fakeRemote[T]) SelectByID(ctx context.Context, id string) remote.Result[*T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["select_by_id"]++
	if f.down {
		return remote.Fail[*T](errOffline)
	}
	if i := f.index(id); i >= 0 {
		row := f.rows[i]
		return remote.OK(&row)
	}
	return remote.OK[*T](nil)
}

func (f *fakeRemote[T]) Insert(ctx context.Context, rec T) remote.Result[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["insert"]++
	if f.down {
		return remote.Fail[T](errOffline)
	}
	f.nextID++
	row := rec.WithID(fmt.Sprintf("r-%d", f.nextID)).Stamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	f.rows = append(f.rows, row)
	return remote.OK(row)
}

func (f *fakeRemote[T]) Update(ctx context.Context, id string, patch models.Patch) remote.Result[*T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.down {
		return remote.Fail[*T](errOffline)
	}
	f.patches = append(f.patches, patch.Clone())
	for _, field := range patch.Fields() {
		if err, ok := f.rejects[field]; ok {
			return remote.Fail[*T](err)
		}
	}
	i := f.index(id)
	if i < 0 {
		return remote.OK[*T](nil)
	}
	row, err := models.ApplyPatch(f.rows[i], patch)
	if err != nil {
		return remote.Fail[*T](&remote.Error{Status: 400, Code: "PGRST102", Message: err.Error()})
	}
	row = row.WithID(id)
	f.rows[i] = row
	return remote.OK(&row)
}

func (f *fakeRemote[T]) Delete(ctx context.Context, id string) remote.Result[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.down {
		return remote.Fail[struct{}](errOffline)
	}
	if i := f.index(id); i >= 0 {
		f.rows = slices.Delete(f.rows, i, i+1)
	}
	return remote.OK(struct{}{})
}
