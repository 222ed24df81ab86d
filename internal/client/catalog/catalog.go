// Package catalog wires one dual-store record service per entity kind
// over a shared local store, remote client and notification bus.
package catalog

import (
	"log/slog"

	"github.com/iudanet/vitrina/internal/client/records"
	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/client/storage"
	clientsync "github.com/iudanet/vitrina/internal/client/sync"
	"github.com/iudanet/vitrina/internal/mirror"
	"github.com/iudanet/vitrina/internal/models"
	"github.com/iudanet/vitrina/internal/reconcile"
	"github.com/iudanet/vitrina/pkg/api"
)

// DefaultOrder sorts every table by name.
const DefaultOrder = "name.asc"

// ProductKind describes products.
func ProductKind() records.Kind[models.Product] {
	return records.Kind[models.Product]{
		Name:     models.KindProduct,
		Table:    api.TableProducts,
		Order:    DefaultOrder,
		Required: []string{"name"},
		Policy:   reconcile.DefaultPolicy[models.Product](),
	}
}

// CategoryKind describes categories.
func CategoryKind() records.Kind[models.Category] {
	return records.Kind[models.Category]{
		Name:     models.KindCategory,
		Table:    api.TableCategories,
		Order:    DefaultOrder,
		Required: []string{"name"},
		Policy:   reconcile.DefaultPolicy[models.Category](),
	}
}

// AttributeKind describes attributes.
func AttributeKind() records.Kind[models.Attribute] {
	return records.Kind[models.Attribute]{
		Name:     models.KindAttribute,
		Table:    api.TableAttributes,
		Order:    DefaultOrder,
		Required: []string{"name"},
		Policy:   reconcile.DefaultPolicy[models.Attribute](),
	}
}

// Catalog groups the services of all entity kinds.
type Catalog struct {
	Products   *records.Service[models.Product]
	Categories *records.Service[models.Category]
	Attributes *records.Service[models.Attribute]
}

// New creates a catalog. notifier may be nil.
func New(kv storage.KVStore, client *remote.Client, notifier records.Notifier, logger *slog.Logger) *Catalog {
	return &Catalog{
		Products:   newService(ProductKind(), kv, client, notifier, logger),
		Categories: newService(CategoryKind(), kv, client, notifier, logger),
		Attributes: newService(AttributeKind(), kv, client, notifier, logger),
	}
}

// Reconcilers returns the services in the order they are synced:
// categories and attributes before the products referencing them.
func (c *Catalog) Reconcilers() []clientsync.Reconciler {
	return []clientsync.Reconciler{c.Categories, c.Attributes, c.Products}
}

func newService[T models.Entity[T]](
	kind records.Kind[T],
	kv storage.KVStore,
	client *remote.Client,
	notifier records.Notifier,
	logger *slog.Logger,
) *records.Service[T] {
	return records.NewService(
		kind,
		remote.NewTable[T](client, kind.Table),
		mirror.New[T](kv, kind.Name),
		notifier,
		logger,
	)
}
