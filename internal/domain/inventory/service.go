package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CacheRefresher recomputes the readiness caches of cases touched by a stock
// or catalog write. Nil disables the recompute.
type CacheRefresher interface {
	RefreshForCatalog(ctx context.Context, catalogID uuid.UUID) error
}

type Service struct {
	catalog   CatalogRepository
	items     ItemRepository
	refresher CacheRefresher
}

func NewService(catalog CatalogRepository, items ItemRepository, refresher CacheRefresher) *Service {
	return &Service{catalog: catalog, items: items, refresher: refresher}
}

// refresh overwrites affected readiness caches so cached reads reflect the
// write that just happened.
func (s *Service) refresh(ctx context.Context, catalogID uuid.UUID) error {
	if s.refresher == nil {
		return nil
	}
	if err := s.refresher.RefreshForCatalog(ctx, catalogID); err != nil {
		return fmt.Errorf("refresh readiness cache: %w", err)
	}
	return nil
}

// -- Catalog --

func (s *Service) CreateCatalogItem(ctx context.Context, ci *CatalogItem) error {
	if ci.Name == "" {
		return fmt.Errorf("name is required")
	}
	if ci.Category == "" {
		return fmt.Errorf("category is required")
	}
	ci.IsActive = true
	return s.catalog.Create(ctx, ci)
}

func (s *Service) GetCatalogItem(ctx context.Context, id uuid.UUID) (*CatalogItem, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) UpdateCatalogItem(ctx context.Context, ci *CatalogItem) error {
	if ci.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.catalog.Update(ctx, ci); err != nil {
		return err
	}
	// Sterility requirements live on the catalog entry, so an update can flip
	// readiness for every case that requires it.
	return s.refresh(ctx, ci.ID)
}

func (s *Service) ListCatalogItems(ctx context.Context, limit, offset int) ([]*CatalogItem, int, error) {
	return s.catalog.List(ctx, limit, offset)
}

// -- Items --

// ReceiveItem registers a newly received physical unit as AVAILABLE.
func (s *Service) ReceiveItem(ctx context.Context, it *Item) error {
	if it.CatalogID == uuid.Nil {
		return fmt.Errorf("catalog_id is required")
	}
	if it.FacilityID == uuid.Nil {
		return fmt.Errorf("facility_id is required")
	}
	if _, err := s.catalog.GetByID(ctx, it.CatalogID); err != nil {
		return fmt.Errorf("catalog item not found: %w", err)
	}
	if it.Status == "" {
		it.Status = StatusAvailable
	}
	if !validItemStatuses[it.Status] {
		return fmt.Errorf("invalid status: %s", it.Status)
	}
	if err := s.items.Create(ctx, it); err != nil {
		return err
	}
	return s.refresh(ctx, it.CatalogID)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) ListItemsByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return s.items.ListByFacility(ctx, facilityID, limit, offset)
}

// VerifyItem stamps the unit as verified by the given actor. Verification
// does not change availability; it feeds the readiness verified count.
func (s *Service) VerifyItem(ctx context.Context, id, actorID uuid.UUID) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	it.LastVerifiedAt = &now
	it.LastVerifiedBy = &actorID
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, it.CatalogID); err != nil {
		return nil, err
	}
	return it, nil
}

// ReserveItem holds an AVAILABLE unit for a specific case.
func (s *Service) ReserveItem(ctx context.Context, id, caseID uuid.UUID) (*Item, error) {
	if caseID == uuid.Nil {
		return nil, fmt.Errorf("case_id is required")
	}
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusAvailable {
		return nil, fmt.Errorf("cannot reserve item in status %s", it.Status)
	}
	it.Status = StatusReserved
	it.ReservedCaseID = &caseID
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, it.CatalogID); err != nil {
		return nil, err
	}
	return it, nil
}

// ReleaseItem returns a RESERVED unit to AVAILABLE.
func (s *Service) ReleaseItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusReserved {
		return nil, fmt.Errorf("cannot release item in status %s", it.Status)
	}
	it.Status = StatusAvailable
	it.ReservedCaseID = nil
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, it.CatalogID); err != nil {
		return nil, err
	}
	return it, nil
}

// ConsumeItem marks a unit as used in surgery. Consumption also clears the
// sterility flag: a used unit must be reprocessed before it can count again.
func (s *Service) ConsumeItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusAvailable && it.Status != StatusReserved {
		return nil, fmt.Errorf("cannot consume item in status %s", it.Status)
	}
	it.Status = StatusInUse
	it.ReservedCaseID = nil
	it.IsSterile = false
	it.SterilityExpiresAt = nil
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, it.CatalogID); err != nil {
		return nil, err
	}
	return it, nil
}

// MarkItemMissing flags a unit that cannot be located.
func (s *Service) MarkItemMissing(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Status == StatusMissing {
		return it, nil
	}
	it.Status = StatusMissing
	it.ReservedCaseID = nil
	it.Location = nil
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, it.CatalogID); err != nil {
		return nil, err
	}
	return it, nil
}
