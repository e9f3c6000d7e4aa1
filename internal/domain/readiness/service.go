package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/cases"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/inventory"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/telemetry"
)

// Service assembles snapshots for the evaluator and maintains the readiness
// cache. The evaluator itself never reads or writes storage.
type Service struct {
	cases    cases.CaseRepository
	surgeons cases.SurgeonRepository
	catalog  inventory.CatalogRepository
	items    inventory.ItemRepository
	cache    CacheRepository
	atts     AttestationRepository
	metrics  *telemetry.Provider
}

func NewService(caseRepo cases.CaseRepository, surgeonRepo cases.SurgeonRepository,
	catalogRepo inventory.CatalogRepository, itemRepo inventory.ItemRepository,
	cacheRepo CacheRepository, attRepo AttestationRepository, metrics *telemetry.Provider) *Service {
	return &Service{
		cases:    caseRepo,
		surgeons: surgeonRepo,
		catalog:  catalogRepo,
		items:    itemRepo,
		cache:    cacheRepo,
		atts:     attRepo,
		metrics:  metrics,
	}
}

// EvaluateCase loads the current snapshot for one case, computes readiness
// with the case's scheduled date as the sterility cutoff, and overwrites the
// cache with the result.
func (s *Service) EvaluateCase(ctx context.Context, caseID uuid.UUID) (*Result, error) {
	cs, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	reqs, err := s.cases.GetRequirements(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}
	catalog, err := s.catalogIndex(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.Snapshot(ctx, cs.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("load inventory snapshot: %w", err)
	}
	atts, err := s.atts.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load attestations: %w", err)
	}

	res := Evaluate(cs, reqs, catalog, items, atts, cs.ScheduledDate)
	if err := s.cache.Upsert(ctx, &Cache{
		CaseID:        res.CaseID,
		State:         res.State,
		Shortages:     res.Shortages,
		TotalRequired: res.TotalRequired,
		TotalVerified: res.TotalVerified,
		ComputedAt:    time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("upsert readiness cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ReadinessEvaluated(string(res.State))
	}
	return &res, nil
}

// RefreshCase recomputes and overwrites one case's cache row. The cases
// service calls this after a requirement write.
func (s *Service) RefreshCase(ctx context.Context, caseID uuid.UUID) error {
	_, err := s.EvaluateCase(ctx, caseID)
	return err
}

// RefreshForCatalog recomputes every scheduled case that requires the catalog
// entry. The inventory service calls this after a stock or catalog write, so
// a cached read never serves a state older than the last mutation.
func (s *Service) RefreshForCatalog(ctx context.Context, catalogID uuid.UUID) error {
	ids, err := s.cases.ListIDsRequiring(ctx, catalogID)
	if err != nil {
		return fmt.Errorf("load cases requiring catalog entry: %w", err)
	}
	for _, id := range ids {
		if _, err := s.EvaluateCase(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetCached returns the last persisted evaluation without recomputing.
func (s *Service) GetCached(ctx context.Context, caseID uuid.UUID) (*Cache, error) {
	return s.cache.GetByCase(ctx, caseID)
}

// Dashboard evaluates every scheduled case in the window against one shared
// inventory snapshot. Results are computed fresh and not written back.
func (s *Service) Dashboard(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]Result, error) {
	scheduled, err := s.cases.ListScheduled(ctx, facilityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load scheduled cases: %w", err)
	}
	catalog, err := s.catalogIndex(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.Snapshot(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("load inventory snapshot: %w", err)
	}
	surgeonList, err := s.surgeons.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("load surgeons: %w", err)
	}
	surgeons := make(map[uuid.UUID]*cases.Surgeon, len(surgeonList))
	for _, sg := range surgeonList {
		surgeons[sg.ID] = sg
	}

	caseIDs := make([]uuid.UUID, 0, len(scheduled))
	reqsByCase := make(map[uuid.UUID][]*cases.Requirement, len(scheduled))
	for _, cs := range scheduled {
		caseIDs = append(caseIDs, cs.ID)
		reqs, err := s.cases.GetRequirements(ctx, cs.ID)
		if err != nil {
			return nil, fmt.Errorf("load requirements for case %s: %w", cs.ID, err)
		}
		reqsByCase[cs.ID] = reqs
	}
	attsByCase, err := s.atts.ListByCases(ctx, caseIDs)
	if err != nil {
		return nil, fmt.Errorf("load attestations: %w", err)
	}

	results := EvaluateBatch(BatchInput{
		Cases:        scheduled,
		Requirements: reqsByCase,
		Catalog:      catalog,
		Items:        items,
		Attestations: attsByCase,
		Surgeons:     surgeons,
	}, to)
	if s.metrics != nil {
		for _, res := range results {
			s.metrics.ReadinessEvaluated(string(res.State))
		}
	}
	return results, nil
}

// Attest appends an attestation row. Attestations never alter computed state.
func (s *Service) Attest(ctx context.Context, a *Attestation) error {
	if a.CaseID == uuid.Nil {
		return fmt.Errorf("case_id is required")
	}
	if !validAttestationTypes[a.Type] {
		return fmt.Errorf("invalid attestation type: %s", a.Type)
	}
	if a.ActorID == uuid.Nil {
		return fmt.Errorf("actor_id is required")
	}
	if _, err := s.cases.GetByID(ctx, a.CaseID); err != nil {
		return fmt.Errorf("case not found: %w", err)
	}
	return s.atts.Create(ctx, a)
}

func (s *Service) ListAttestations(ctx context.Context, caseID uuid.UUID) ([]*Attestation, error) {
	return s.atts.ListByCase(ctx, caseID)
}

func (s *Service) catalogIndex(ctx context.Context) (map[uuid.UUID]*inventory.CatalogItem, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	index := make(map[uuid.UUID]*inventory.CatalogItem, len(entries))
	for _, ci := range entries {
		index[ci.ID] = ci
	}
	return index, nil
}
