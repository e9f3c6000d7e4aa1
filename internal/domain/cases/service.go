package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validCaseStatuses = map[string]bool{
	"scheduled": true, "completed": true, "cancelled": true,
}

// CacheRefresher recomputes derived per-case state after a requirement
// change. Nil disables the recompute.
type CacheRefresher interface {
	RefreshCase(ctx context.Context, caseID uuid.UUID) error
}

type Service struct {
	cases     CaseRepository
	surgeons  SurgeonRepository
	refresher CacheRefresher
}

func NewService(cases CaseRepository, surgeons SurgeonRepository, refresher CacheRefresher) *Service {
	return &Service{cases: cases, surgeons: surgeons, refresher: refresher}
}

func (s *Service) CreateCase(ctx context.Context, cs *Case) error {
	if cs.FacilityID == uuid.Nil {
		return fmt.Errorf("facility_id is required")
	}
	if cs.PatientRef == "" {
		return fmt.Errorf("patient_ref is required")
	}
	if cs.SurgeonID == uuid.Nil {
		return fmt.Errorf("surgeon_id is required")
	}
	if cs.ScheduledDate.IsZero() {
		return fmt.Errorf("scheduled_date is required")
	}
	if _, err := s.surgeons.GetByID(ctx, cs.SurgeonID); err != nil {
		return fmt.Errorf("surgeon not found: %w", err)
	}
	if cs.Status == "" {
		cs.Status = "scheduled"
	}
	if !validCaseStatuses[cs.Status] {
		return fmt.Errorf("invalid status: %s", cs.Status)
	}
	return s.cases.Create(ctx, cs)
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.cases.GetByID(ctx, id)
}

func (s *Service) UpdateCase(ctx context.Context, cs *Case) error {
	if cs.Status != "" && !validCaseStatuses[cs.Status] {
		return fmt.Errorf("invalid status: %s", cs.Status)
	}
	return s.cases.Update(ctx, cs)
}

func (s *Service) ListCasesByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Case, int, error) {
	return s.cases.ListByFacility(ctx, facilityID, limit, offset)
}

func (s *Service) ListScheduled(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]*Case, error) {
	return s.cases.ListScheduled(ctx, facilityID, from, to)
}

// -- Requirements --

func (s *Service) AddRequirement(ctx context.Context, req *Requirement) error {
	if req.CaseID == uuid.Nil {
		return fmt.Errorf("case_id is required")
	}
	if req.CatalogID == uuid.Nil {
		return fmt.Errorf("catalog_id is required")
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	if err := s.cases.AddRequirement(ctx, req); err != nil {
		return err
	}
	return s.refresh(ctx, req.CaseID)
}

func (s *Service) GetRequirements(ctx context.Context, caseID uuid.UUID) ([]*Requirement, error) {
	return s.cases.GetRequirements(ctx, caseID)
}

func (s *Service) RemoveRequirement(ctx context.Context, id uuid.UUID) error {
	caseID, err := s.cases.RemoveRequirement(ctx, id)
	if err != nil {
		return err
	}
	if caseID == uuid.Nil {
		return nil
	}
	return s.refresh(ctx, caseID)
}

// refresh overwrites the case's readiness cache so cached reads reflect the
// write that just happened.
func (s *Service) refresh(ctx context.Context, caseID uuid.UUID) error {
	if s.refresher == nil {
		return nil
	}
	if err := s.refresher.RefreshCase(ctx, caseID); err != nil {
		return fmt.Errorf("refresh readiness cache: %w", err)
	}
	return nil
}

// -- Surgeons --

func (s *Service) CreateSurgeon(ctx context.Context, sg *Surgeon) error {
	if sg.FacilityID == uuid.Nil {
		return fmt.Errorf("facility_id is required")
	}
	if sg.Name == "" {
		return fmt.Errorf("name is required")
	}
	sg.IsActive = true
	return s.surgeons.Create(ctx, sg)
}

func (s *Service) GetSurgeon(ctx context.Context, id uuid.UUID) (*Surgeon, error) {
	return s.surgeons.GetByID(ctx, id)
}

func (s *Service) ListSurgeons(ctx context.Context, facilityID uuid.UUID) ([]*Surgeon, error) {
	return s.surgeons.ListByFacility(ctx, facilityID)
}
