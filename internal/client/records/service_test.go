package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/client/storage"
	"github.com/iudanet/vitrina/internal/client/storage/memory"
	"github.com/iudanet/vitrina/internal/mirror"
	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/notify"
	"github.com/iudanet/vitrina/internal/reconcile"
	"github.com/iudanet/vitrina/internal/validation"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func productKind() Kind[models.Product] {
	return Kind[models.Product]{
		Name:     models.KindProduct,
		Table:    "products",
		Order:    "name.asc",
		Required: []string{"name"},
		Policy:   reconcile.DefaultPolicy[models.Product](),
	}
}

type productFixture struct {
	svc    *Service[models.Product]
	remote *fakeRemote[models.Product]
	kv     *memory.Store
	mirror *mirror.Store[models.Product]
	bus    *notify.Bus
}

func newProductFixture(t *testing.T, rows ...models.Product) *productFixture {
	t.Helper()

	kv := memory.New()
	fr := newFakeRemote(rows...)
	ms := mirror.New[models.Product](kv, models.KindProduct)
	bus := notify.NewBus()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n := 0
	svc := NewService(productKind(), fr, ms, bus, logger,
		WithClock[models.Product](func() time.Time { return testNow }),
		WithIDGenerator[models.Product](func() string {
			n++
			return "gen-" + string(rune('0'+n))
		}),
	)

	return &productFixture{svc: svc, remote: fr, kv: kv, mirror: ms, bus: bus}
}

func productNames(recs []models.Product) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

// Повторное удаление возвращает true и запись не появляется в List
func TestService_Delete_Idempotent(t *testing.T) {
	for _, down := range []bool{false, true} {
		name := "remote up"
		if down {
			name = "remote down"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
			f.remote.setDown(down)

			ok, err := f.svc.Delete(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = f.svc.Delete(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, ok)

			f.remote.setDown(false)
			assert.Empty(t, f.svc.List(ctx))
		})
	}
}

// Tombstone скрывает запись, даже если удаленное хранилище все еще ее возвращает
func TestService_List_TombstonePrecedence(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t,
		models.Product{ID: "p1", Name: "Coat"},
		models.Product{ID: "p2", Name: "Dress"},
	)

	f.remote.setDown(true)
	ok, err := f.svc.Delete(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	f.remote.setDown(false)

	require.Len(t, f.remote.snapshot(), 2, "stale remote still has p1")
	assert.Equal(t, []string{"Dress"}, productNames(f.svc.List(ctx)))

	_, found := f.svc.GetByID(ctx, "p1")
	assert.False(t, found)
}

// Теневой патч перекрывает поля удаленной записи
func TestService_GetByID_ShadowOverlay(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "A", Price: decimal.NewFromInt(10)})

	_, err := f.mirror.AddShadow(ctx, "p1", models.Patch{"price": 12})
	require.NoError(t, err)

	got, found := f.svc.GetByID(ctx, "p1")
	require.True(t, found)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "A", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(12)), "price = %s", got.Price)

	list := f.svc.List(ctx)
	require.Len(t, list, 1)
	assert.True(t, list[0].Price.Equal(decimal.NewFromInt(12)))
}

// Создание без удаленного хранилища и последующее чтение
func TestService_Create_LocalFallbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.remote.setDown(true)

	created, err := f.svc.Create(ctx, models.Product{Name: "X"})
	require.NoError(t, err)
	assert.True(t, models.IsLocalID(created.ID))
	assert.Equal(t, testNow, created.CreatedAt)

	got, found := f.svc.GetByID(ctx, created.ID)
	require.True(t, found)
	assert.Equal(t, "X", got.Name)
	assert.Equal(t, 0, f.remote.callCount("select_by_id"), "local ids are not looked up remotely")
}

// Локальная копия с тем же именем (без учета регистра) уступает удаленной
func TestService_List_DedupByName(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "summer"})

	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "local-1", Name: "Summer"}))

	list := f.svc.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
	assert.Equal(t, "summer", list[0].Name)
}

// Невалидные данные отклоняются до любого ввода-вывода
func TestService_Create_ValidationGate(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	_, err := f.svc.Create(ctx, models.Product{Name: "  "})
	require.Error(t, err)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "product: name is required", err.Error())

	assert.Equal(t, 0, f.remote.totalCalls())
	assert.Equal(t, 0, f.kv.Keys())
}

// Полный сценарий при недоступном удаленном хранилище
func TestService_OfflineScenario(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.remote.setDown(true)

	created, err := f.svc.Create(ctx, models.Product{Name: " Shoes ", Description: " Runner "})
	require.NoError(t, err)
	assert.True(t, models.IsLocalID(created.ID))
	assert.Equal(t, "Shoes", created.Name)
	assert.Equal(t, "Runner", created.Description)

	updated, err := f.svc.Update(ctx, created.ID, models.Patch{"description": "Trail runner"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Trail runner", updated.Description)
	assert.Equal(t, "Shoes", updated.Name)
	assert.Equal(t, models.OriginLocal, models.Origin(updated.ID))

	ok, err := f.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, f.svc.List(ctx))
	_, found := f.svc.GetByID(ctx, created.ID)
	assert.False(t, found)
	assert.Equal(t, 0, f.remote.callCount("delete"), "local ids are not deleted remotely")
}

func TestService_Create_Remote(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	events, cancel := f.bus.Subscribe(4)
	defer cancel()

	created, err := f.svc.Create(ctx, models.Product{ID: "caller-id", Name: "Coat", Price: decimal.RequireFromString("99.999")})
	require.NoError(t, err)
	assert.Equal(t, "r-1", created.ID, "caller-supplied id is ignored")
	assert.Equal(t, "100", created.Price.String())

	cached, err := f.mirror.Get(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, cached, "created record is mirrored")

	// копия остается видимой при отключении удаленного хранилища
	f.remote.setDown(true)
	assert.Equal(t, []string{"Coat"}, productNames(f.svc.List(ctx)))

	ev := <-events
	assert.Equal(t, notify.RecordCreated, ev.Type)
	assert.Equal(t, "r-1", ev.ID)
	assert.Equal(t, string(models.OriginRemote), ev.Origin)
}

func TestService_Create_MirrorFailureAfterRemoteSuccess(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.kv.Fail(storage.ErrQuotaExceeded)

	created, err := f.svc.Create(ctx, models.Product{Name: "Coat"})
	require.NoError(t, err)
	assert.Equal(t, "r-1", created.ID)
}

func TestService_Create_LocalStorageFailure(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.remote.setDown(true)
	f.kv.Fail(storage.ErrQuotaExceeded)

	_, err := f.svc.Create(ctx, models.Product{Name: "Coat"})
	require.Error(t, err)

	var lerr *LocalStorageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, models.KindProduct, lerr.Kind)
	assert.Equal(t, "create", lerr.Op)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "product create: local storage failure")
}

func TestService_Update_Remote(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat", Stock: 1})
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "p1", Name: "Coat", Stock: 1}))

	updated, err := f.svc.Update(ctx, "p1", models.Patch{"stock": 5})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 5, updated.Stock)

	cached, err := f.mirror.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, cached.Stock, "mirror copy is kept consistent")
}

func TestService_Update_OfflineShadowMerge(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat", Description: "wool"})
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "p1", Name: "Coat", Description: "wool"}))
	f.remote.setDown(true)

	_, err := f.svc.Update(ctx, "p1", models.Patch{"name": "Long coat", "stock": 2})
	require.NoError(t, err)

	view, err := f.svc.Update(ctx, "p1", models.Patch{"stock": 3})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Long coat", view.Name)
	assert.Equal(t, 3, view.Stock)
	assert.Equal(t, "wool", view.Description)

	shadow, ok, err := f.mirror.Shadow(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Long coat", shadow["name"])
	assert.EqualValues(t, 3, shadow["stock"])

	// после восстановления связи отправляется только новый патч,
	// накопленные поля ждут синхронизации и остаются видны
	f.remote.setDown(false)
	updated, err := f.svc.Update(ctx, "p1", models.Patch{"description": "cashmere", "stock": 4})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Long coat", updated.Name)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, "cashmere", updated.Description)

	sent := f.remote.sentPatches()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"description", "stock"}, sent[0].Fields())

	shadow, ok, err = f.mirror.Shadow(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, shadow.Fields(), "fields written remotely are settled")

	res, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Patched)

	_, ok, err = f.mirror.Shadow(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	row := f.remote.snapshot()[0]
	assert.Equal(t, "Long coat", row.Name)
	assert.Equal(t, 4, row.Stock)
}

// Поле, отклоненное удаленным хранилищем, не мешает следующим обновлениям
func TestService_Update_RejectedShadowDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat", Stock: 1})
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "p1", Name: "Coat", Stock: 1}))
	f.remote.rejectField("category_id", &remote.Error{Status: 409, Code: "23503", Message: "unknown category"})

	view, err := f.svc.Update(ctx, "p1", models.Patch{"category_id": "c404"})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "c404", view.CategoryID)
	assert.Equal(t, "Coat", view.Name)

	for _, stock := range []int{4, 5} {
		updated, err := f.svc.Update(ctx, "p1", models.Patch{"stock": stock})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, stock, updated.Stock)
		assert.Equal(t, "c404", updated.CategoryID, "rejected field stays pending locally")
		assert.Equal(t, stock, f.remote.snapshot()[0].Stock)
	}

	sent := f.remote.sentPatches()
	require.Len(t, sent, 3)
	for _, patch := range sent[1:] {
		assert.Equal(t, []string{"stock"}, patch.Fields(), "pending shadow is not resent")
	}

	shadow, ok, err := f.mirror.Shadow(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Patch{"category_id": "c404"}, shadow)
}

// Без локальной копии офлайн-вид строится из патча, остальное дополняет GetByID
func TestService_Update_ShadowViewWithoutCopy(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat", Description: "wool"})
	f.remote.setDown(true)

	view, err := f.svc.Update(ctx, "p1", models.Patch{"stock": 2})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "p1", view.ID)
	assert.Equal(t, 2, view.Stock)
	assert.Empty(t, view.Name, "fields outside the patch are not known locally")

	f.remote.setDown(false)
	got, found := f.svc.GetByID(ctx, "p1")
	require.True(t, found)
	assert.Equal(t, "Coat", got.Name)
	assert.Equal(t, "wool", got.Description)
	assert.Equal(t, 2, got.Stock)
}

func TestService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})

	got, err := f.svc.Update(ctx, "missing", models.Patch{"stock": 1})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.Update(ctx, "local-missing", models.Patch{"stock": 1})
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := f.svc.Delete(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = f.svc.Update(ctx, "p1", models.Patch{"stock": 1})
	require.NoError(t, err)
	assert.Nil(t, got, "tombstoned ids are treated as not found")
}

func TestService_Update_Validation(t *testing.T) {
	tests := []struct {
		patch models.Patch
		name  string
		field string
	}{
		{name: "blank required field", patch: models.Patch{"name": "   "}, field: "name"},
		{name: "id change", patch: models.Patch{"id": "other"}, field: "id"},
		{name: "empty patch", patch: models.Patch{}, field: ""},
		{name: "negative stock", patch: models.Patch{"stock": -1}, field: "stock"},
		{name: "negative price", patch: models.Patch{"price": "-5"}, field: "price"},
		{name: "wrong type", patch: models.Patch{"stock": "many"}, field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})

			_, err := f.svc.Update(context.Background(), "p1", tt.patch)
			require.Error(t, err)

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 0, f.remote.totalCalls())
		})
	}
}

func TestService_Update_CanonicalPatch(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
	f.remote.setDown(true)

	_, err := f.svc.Update(ctx, "p1", models.Patch{"name": "  Trench  ", "price": 10.005})
	require.NoError(t, err)

	shadow, ok, err := f.mirror.Shadow(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Trench", shadow["name"])
	assert.Equal(t, "10.01", shadow["price"])
}

func TestService_Update_LocalStorageFailure(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
	f.remote.setDown(true)
	f.kv.Fail(storage.ErrStorageUnavailable)

	_, err := f.svc.Update(ctx, "p1", models.Patch{"stock": 1})

	var lerr *LocalStorageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "update", lerr.Op)
}

func TestService_Delete_BothFail(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
	f.remote.setDown(true)
	f.kv.Fail(storage.ErrStorageUnavailable)

	ok, err := f.svc.Delete(ctx, "p1")
	assert.False(t, ok)

	var lerr *LocalStorageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "delete", lerr.Op)
	assert.Equal(t, models.KindProduct, lerr.Kind)
}

func TestService_Delete_RemoteSucceedsLocalFails(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
	f.kv.Fail(storage.ErrStorageUnavailable)

	ok, err := f.svc.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.remote.snapshot())
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})

	got, found := f.svc.GetByID(ctx, "p1")
	require.True(t, found)
	assert.Equal(t, "Coat", got.Name)

	_, found = f.svc.GetByID(ctx, "nope")
	assert.False(t, found)

	// удаленное хранилище недоступно: используется локальная копия
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "p2", Name: "Dress"}))
	f.remote.setDown(true)
	got, found = f.svc.GetByID(ctx, "p2")
	require.True(t, found)
	assert.Equal(t, "Dress", got.Name)

	// известен только теневой патч
	_, err := f.mirror.AddShadow(ctx, "p9", models.Patch{"name": "Scarf"})
	require.NoError(t, err)
	got, found = f.svc.GetByID(ctx, "p9")
	require.True(t, found)
	assert.Equal(t, "p9", got.ID)
	assert.Equal(t, "Scarf", got.Name)
}

// Запись, удаленная другим клиентом, не возвращается из локальной копии
func TestService_GetByID_DeletedElsewhere(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	coat, err := f.svc.Create(ctx, models.Product{Name: "Coat"})
	require.NoError(t, err)
	dress, err := f.svc.Create(ctx, models.Product{Name: "Dress"})
	require.NoError(t, err)

	f.remote.drop(coat.ID)
	f.remote.drop(dress.ID)

	_, found := f.svc.GetByID(ctx, coat.ID)
	assert.False(t, found)

	cached, err := f.mirror.Get(ctx, coat.ID)
	require.NoError(t, err)
	assert.Nil(t, cached, "stale mirror copy is dropped")

	updated, err := f.svc.Update(ctx, dress.ID, models.Patch{"stock": 1})
	require.NoError(t, err)
	assert.Nil(t, updated)

	cached, err = f.mirror.Get(ctx, dress.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	f.remote.setDown(true)
	_, found = f.svc.GetByID(ctx, coat.ID)
	assert.False(t, found)
	assert.Empty(t, f.svc.List(ctx))
}

func TestService_Update_CategoryRules(t *testing.T) {
	kind := Kind[models.Category]{
		Name:     models.KindCategory,
		Table:    "categories",
		Order:    "name.asc",
		Required: []string{"name"},
		Policy:   reconcile.DefaultPolicy[models.Category](),
	}

	tests := []struct {
		patch   models.Patch
		name    string
		id      string
		wantErr bool
	}{
		{name: "own parent", id: "c1", patch: models.Patch{"parent_id": "c1"}, wantErr: true},
		{name: "own parent with spaces", id: "c1", patch: models.Patch{"parent_id": " c1 "}, wantErr: true},
		{name: "own parent on local record", id: "local-1", patch: models.Patch{"parent_id": "local-1"}, wantErr: true},
		{name: "other parent", id: "c1", patch: models.Patch{"parent_id": "c2"}},
		{name: "untouched parent", id: "c1", patch: models.Patch{"name": "Gowns"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fr := newFakeRemote(models.Category{ID: "c1", Name: "Dresses"}, models.Category{ID: "c2", Name: "Clothes"})
			ms := mirror.New[models.Category](memory.New(), models.KindCategory)
			require.NoError(t, ms.Put(ctx, models.Category{ID: "local-1", Name: "Bags"}))
			svc := NewService(kind, fr, ms, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

			got, err := svc.Update(ctx, tt.id, tt.patch)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.NotNil(t, got)
				return
			}

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "parent_id", verr.Field)
			assert.Equal(t, 0, fr.totalCalls())

			_, ok, err := ms.Shadow(ctx, tt.id)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// brittle is a record whose normalized form cannot be encoded.
type brittle struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	normalized bool
}

func (b brittle) MarshalJSON() ([]byte, error) {
	if b.normalized {
		return nil, errors.New("normalized record cannot be encoded")
	}
	type plain brittle
	return json.Marshal(plain(b))
}

func (b brittle) RecordID() string            { return b.ID }
func (b brittle) WithID(id string) brittle    { b.ID = id; return b }
func (b brittle) Normalize() brittle          { b.normalized = true; return b }
func (b brittle) Validate() error             { return nil }
func (b brittle) IdentityKey() string         { return "" }
func (b brittle) Stamp(now time.Time) brittle { return b }

func TestService_Update_CanonicalFormFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	fr := newFakeRemote(brittle{ID: "b1", Name: "old"})
	svc := NewService(Kind[brittle]{Name: "brittle", Order: "name.asc"}, fr,
		mirror.New[brittle](memory.New(), "brittle"), nil,
		slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	updated, err := svc.Update(ctx, "b1", models.Patch{"name": " new "})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "new", updated.Name)

	sent := fr.sentPatches()
	require.Len(t, sent, 1)
	assert.Equal(t, models.Patch{"name": "new"}, sent[0], "patch is sent as normalized")

	assert.Contains(t, buf.String(), "Failed to canonicalize patch")
	assert.Contains(t, buf.String(), "id=b1")
	assert.Contains(t, buf.String(), "normalized record cannot be encoded")
}

func TestService_List_DegradesOnLocalFailure(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p1", Name: "Coat"})
	f.kv.Fail(errors.New("storage disabled"))

	assert.Equal(t, []string{"Coat"}, productNames(f.svc.List(ctx)))

	f.remote.setDown(true)
	assert.Empty(t, f.svc.List(ctx))
}

func TestService_List_SortedUnion(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t, models.Product{ID: "p2", Name: "dress"})
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "local-1", Name: "Coat"}))
	require.NoError(t, f.mirror.Put(ctx, models.Product{ID: "local-2", Name: "Scarf"}))

	assert.Equal(t, []string{"Coat", "dress", "Scarf"}, productNames(f.svc.List(ctx)))
}

func TestLocalStorageError(t *testing.T) {
	base := errors.New("quota")
	err := &LocalStorageError{Kind: "category", Op: "delete", Err: base}

	assert.Equal(t, "category delete: local storage failure: quota", err.Error())
	assert.ErrorIs(t, err, base)
}
