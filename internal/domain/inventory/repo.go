package inventory

import (
	"context"

	"github.com/google/uuid"
)

type CatalogRepository interface {
	Create(ctx context.Context, ci *CatalogItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*CatalogItem, error)
	Update(ctx context.Context, ci *CatalogItem) error
	List(ctx context.Context, limit, offset int) ([]*CatalogItem, int, error)
	// ListAll returns the full catalog, used to build lookup indexes.
	ListAll(ctx context.Context) ([]*CatalogItem, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, it *Item) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Item, int, error)
	ListByCatalog(ctx context.Context, catalogID uuid.UUID, limit, offset int) ([]*Item, int, error)
	// Snapshot returns every unit at the facility in one read, unpaginated.
	Snapshot(ctx context.Context, facilityID uuid.UUID) ([]*Item, error)
}
