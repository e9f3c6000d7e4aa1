package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockCatalogRepo struct {
	items map[uuid.UUID]*CatalogItem
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{items: make(map[uuid.UUID]*CatalogItem)}
}

func (m *mockCatalogRepo) Create(_ context.Context, ci *CatalogItem) error {
	ci.ID = uuid.New()
	m.items[ci.ID] = ci
	return nil
}

func (m *mockCatalogRepo) GetByID(_ context.Context, id uuid.UUID) (*CatalogItem, error) {
	ci, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return ci, nil
}

func (m *mockCatalogRepo) Update(_ context.Context, ci *CatalogItem) error {
	m.items[ci.ID] = ci
	return nil
}

func (m *mockCatalogRepo) List(_ context.Context, limit, offset int) ([]*CatalogItem, int, error) {
	var result []*CatalogItem
	for _, ci := range m.items {
		result = append(result, ci)
	}
	return result, len(result), nil
}

type mockItemRepo struct {
	items map[uuid.UUID]*Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[uuid.UUID]*Item)}
}

func (m *mockCatalogRepo) ListAll(_ context.Context) ([]*CatalogItem, error) {
	var result []*CatalogItem
	for _, ci := range m.items {
		result = append(result, ci)
	}
	return result, nil
}

func (m *mockItemRepo) Create(_ context.Context, it *Item) error {
	it.ID = uuid.New()
	m.items[it.ID] = it
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return it, nil
}

func (m *mockItemRepo) Update(_ context.Context, it *Item) error {
	m.items[it.ID] = it
	return nil
}

func (m *mockItemRepo) ListByFacility(_ context.Context, facilityID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	var result []*Item
	for _, it := range m.items {
		if it.FacilityID == facilityID {
			result = append(result, it)
		}
	}
	return result, len(result), nil
}

func (m *mockItemRepo) ListByCatalog(_ context.Context, catalogID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	var result []*Item
	for _, it := range m.items {
		if it.CatalogID == catalogID {
			result = append(result, it)
		}
	}
	return result, len(result), nil
}

func (m *mockItemRepo) Snapshot(_ context.Context, facilityID uuid.UUID) ([]*Item, error) {
	var result []*Item
	for _, it := range m.items {
		if it.FacilityID == facilityID {
			result = append(result, it)
		}
	}
	return result, nil
}

type mockRefresher struct {
	catalogIDs []uuid.UUID
}

func (m *mockRefresher) RefreshForCatalog(_ context.Context, catalogID uuid.UUID) error {
	m.catalogIDs = append(m.catalogIDs, catalogID)
	return nil
}

// -- Tests --

func newTestService() (*Service, *mockCatalogRepo, *mockItemRepo) {
	catalog := newMockCatalogRepo()
	items := newMockItemRepo()
	return NewService(catalog, items, nil), catalog, items
}

func seedItem(t *testing.T, svc *Service, catalog *mockCatalogRepo) *Item {
	t.Helper()
	ci := &CatalogItem{Name: "tray", Category: "instrument"}
	if err := svc.CreateCatalogItem(context.Background(), ci); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	it := &Item{CatalogID: ci.ID, FacilityID: uuid.New()}
	if err := svc.ReceiveItem(context.Background(), it); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return it
}

func TestCreateCatalogItem(t *testing.T) {
	svc, _, _ := newTestService()
	ci := &CatalogItem{Name: "implant", Category: "implant"}
	if err := svc.CreateCatalogItem(context.Background(), ci); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ci.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if !ci.IsActive {
		t.Error("expected is_active to be true")
	}
}

func TestCreateCatalogItem_NameRequired(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.CreateCatalogItem(context.Background(), &CatalogItem{Category: "implant"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestReceiveItem_DefaultsAvailable(t *testing.T) {
	svc, catalog, _ := newTestService()
	it := seedItem(t, svc, catalog)
	if it.Status != StatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", it.Status)
	}
}

func TestReceiveItem_UnknownCatalog(t *testing.T) {
	svc, _, _ := newTestService()
	it := &Item{CatalogID: uuid.New(), FacilityID: uuid.New()}
	if err := svc.ReceiveItem(context.Background(), it); err == nil {
		t.Error("expected error for unknown catalog item")
	}
}

func TestVerifyItem_Stamps(t *testing.T) {
	svc, catalog, _ := newTestService()
	it := seedItem(t, svc, catalog)
	actor := uuid.New()

	got, err := svc.VerifyItem(context.Background(), it.ID, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LastVerifiedAt == nil {
		t.Error("expected last_verified_at to be set")
	}
	if got.LastVerifiedBy == nil || *got.LastVerifiedBy != actor {
		t.Error("expected last_verified_by to record actor")
	}
}

func TestReserveRelease(t *testing.T) {
	svc, catalog, _ := newTestService()
	it := seedItem(t, svc, catalog)
	caseID := uuid.New()

	got, err := svc.ReserveItem(context.Background(), it.ID, caseID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusReserved || got.ReservedCaseID == nil || *got.ReservedCaseID != caseID {
		t.Error("expected item reserved for case")
	}

	// Double reservation conflicts.
	if _, err := svc.ReserveItem(context.Background(), it.ID, uuid.New()); err == nil {
		t.Error("expected error reserving a RESERVED item")
	}

	got, err = svc.ReleaseItem(context.Background(), it.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusAvailable || got.ReservedCaseID != nil {
		t.Error("expected item released to AVAILABLE")
	}
}

func TestConsumeItem_ClearsSterility(t *testing.T) {
	svc, catalog, _ := newTestService()
	it := seedItem(t, svc, catalog)
	exp := time.Now().Add(24 * time.Hour)
	it.IsSterile = true
	it.SterilityExpiresAt = &exp

	got, err := svc.ConsumeItem(context.Background(), it.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusInUse {
		t.Errorf("expected IN_USE, got %s", got.Status)
	}
	if got.IsSterile || got.SterilityExpiresAt != nil {
		t.Error("expected sterility cleared after consumption")
	}

	if _, err := svc.ConsumeItem(context.Background(), it.ID); err == nil {
		t.Error("expected error consuming an IN_USE item")
	}
}

func TestMarkItemMissing(t *testing.T) {
	svc, catalog, _ := newTestService()
	it := seedItem(t, svc, catalog)
	loc := "shelf 3"
	it.Location = &loc

	got, err := svc.MarkItemMissing(context.Background(), it.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusMissing {
		t.Errorf("expected MISSING, got %s", got.Status)
	}
	if got.Location != nil {
		t.Error("expected location cleared for missing item")
	}

	// Idempotent.
	if _, err := svc.MarkItemMissing(context.Background(), it.ID); err != nil {
		t.Errorf("unexpected error on repeat: %v", err)
	}
}

func TestItemWrites_RefreshReadinessCache(t *testing.T) {
	catalog := newMockCatalogRepo()
	items := newMockItemRepo()
	ref := &mockRefresher{}
	svc := NewService(catalog, items, ref)

	ci := &CatalogItem{Name: "tray", Category: "instrument"}
	if err := svc.CreateCatalogItem(context.Background(), ci); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	it := &Item{CatalogID: ci.ID, FacilityID: uuid.New()}
	if err := svc.ReceiveItem(context.Background(), it); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if _, err := svc.VerifyItem(context.Background(), it.ID, uuid.New()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.ReserveItem(context.Background(), it.ID, uuid.New()); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.ReleaseItem(context.Background(), it.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := svc.ConsumeItem(context.Background(), it.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}

	// Receive, verify, reserve, release, consume: five stock writes, five
	// refreshes, all for the item's catalog entry.
	if len(ref.catalogIDs) != 5 {
		t.Fatalf("expected 5 refreshes, got %d", len(ref.catalogIDs))
	}
	for i, id := range ref.catalogIDs {
		if id != ci.ID {
			t.Errorf("refresh %d targeted catalog %s, want %s", i, id, ci.ID)
		}
	}
}

func TestUpdateCatalogItem_RefreshesReadinessCache(t *testing.T) {
	catalog := newMockCatalogRepo()
	ref := &mockRefresher{}
	svc := NewService(catalog, newMockItemRepo(), ref)

	ci := &CatalogItem{Name: "tray", Category: "instrument"}
	if err := svc.CreateCatalogItem(context.Background(), ci); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	ref.catalogIDs = nil

	ci.RequiresSterility = true
	if err := svc.UpdateCatalogItem(context.Background(), ci); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(ref.catalogIDs) != 1 || ref.catalogIDs[0] != ci.ID {
		t.Errorf("expected one refresh for the updated entry, got %v", ref.catalogIDs)
	}
}

func TestAvailableForCase(t *testing.T) {
	caseID := uuid.New()
	other := uuid.New()

	it := &Item{Status: StatusAvailable}
	if !it.AvailableForCase(caseID) {
		t.Error("AVAILABLE item should satisfy any case")
	}

	it = &Item{Status: StatusReserved, ReservedCaseID: &caseID}
	if !it.AvailableForCase(caseID) {
		t.Error("item reserved for the case should satisfy it")
	}
	if it.AvailableForCase(other) {
		t.Error("item reserved for another case should not satisfy")
	}

	it = &Item{Status: StatusMissing}
	if it.AvailableForCase(caseID) {
		t.Error("MISSING item should not satisfy")
	}
}

func TestSterileAsOf(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := cutoff.Add(-time.Hour)
	after := cutoff.Add(time.Hour)

	it := &Item{IsSterile: true, SterilityExpiresAt: &after}
	if !it.SterileAsOf(cutoff) {
		t.Error("expiry after cutoff should count as sterile")
	}

	it = &Item{IsSterile: true, SterilityExpiresAt: &cutoff}
	if !it.SterileAsOf(cutoff) {
		t.Error("expiry exactly at cutoff should count as sterile")
	}

	it = &Item{IsSterile: true, SterilityExpiresAt: &before}
	if it.SterileAsOf(cutoff) {
		t.Error("expired sterility should not count")
	}

	it = &Item{IsSterile: true}
	if !it.SterileAsOf(cutoff) {
		t.Error("no expiry stamp should count as sterile")
	}

	it = &Item{IsSterile: false, SterilityExpiresAt: &after}
	if it.SterileAsOf(cutoff) {
		t.Error("non-sterile item should not count")
	}
}
