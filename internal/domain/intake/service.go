package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/cases"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/db"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/telemetry"
)

// Service drives the intake lifecycle. Every transition updates the request
// and appends its audit event inside one transaction, so a recorded status
// change always has a matching audit row and vice versa.
type Service struct {
	requests RequestRepository
	mappings MappingRepository
	cases    *cases.Service
	metrics  *telemetry.Provider
	runTx    db.TxRunner
}

func NewService(requests RequestRepository, mappings MappingRepository, caseSvc *cases.Service,
	metrics *telemetry.Provider, runTx db.TxRunner) *Service {
	return &Service{requests: requests, mappings: mappings, cases: caseSvc, metrics: metrics, runTx: runTx}
}

// SubmitResult is a Submit call's outcome: the request row now visible for
// the dedup key plus what the call actually did.
type SubmitResult struct {
	Request *SurgeryRequest `json:"request"`
	Outcome SubmitOutcome   `json:"outcome"`
}

// Submit handles a clinic submission idempotently. The dedup key is
// (clinic_id, external_id): an unknown key creates the request, a known key
// in any status but RETURNED_TO_CLINIC is returned unchanged, and a returned
// request is resubmitted with the next submission number.
func (s *Service) Submit(ctx context.Context, req *SurgeryRequest) (*SubmitResult, error) {
	if req.FacilityID == uuid.Nil {
		return nil, fmt.Errorf("facility_id is required")
	}
	if req.ClinicID == uuid.Nil {
		return nil, fmt.Errorf("clinic_id is required")
	}
	if req.ExternalID == "" {
		return nil, fmt.Errorf("external_id is required")
	}
	if req.PatientRef == "" {
		return nil, fmt.Errorf("patient_ref is required")
	}
	if req.SurgeonRef == "" {
		return nil, fmt.Errorf("surgeon_ref is required")
	}

	existing, err := s.requests.GetByDedupKey(ctx, req.ClinicID, req.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	switch {
	case existing == nil:
		return s.submitNew(ctx, req)
	case existing.Status != StatusReturnedToClinic:
		// At-least-once delivery from the clinic side; duplicate intake is
		// absorbed without new rows.
		return &SubmitResult{Request: existing, Outcome: OutcomeExisting}, nil
	default:
		return s.resubmit(ctx, existing)
	}
}

func (s *Service) submitNew(ctx context.Context, req *SurgeryRequest) (*SubmitResult, error) {
	now := time.Now().UTC()
	req.Status = StatusSubmitted
	req.LastSubmittedAt = now

	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if err := s.requests.AddSubmission(ctx, &Submission{
			RequestID: req.ID, Seq: 1, SubmittedAt: now, ReceivedAt: now,
		}); err != nil {
			return fmt.Errorf("add submission: %w", err)
		}
		return s.requests.AddAuditEvent(ctx, &AuditEvent{
			RequestID: req.ID, Type: EventSubmitted, ActorType: ActorClinic, ActorID: req.ClinicID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.count(EventSubmitted)
	return &SubmitResult{Request: req, Outcome: OutcomeCreated}, nil
}

func (s *Service) resubmit(ctx context.Context, existing *SurgeryRequest) (*SubmitResult, error) {
	next, err := nextStatus(existing.Status, EventResubmitted)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.runTx(ctx, func(ctx context.Context) error {
		subs, err := s.requests.ListSubmissions(ctx, existing.ID)
		if err != nil {
			return fmt.Errorf("list submissions: %w", err)
		}
		if err := s.requests.AddSubmission(ctx, &Submission{
			RequestID: existing.ID, Seq: len(subs) + 1, SubmittedAt: now, ReceivedAt: now,
		}); err != nil {
			return fmt.Errorf("add submission: %w", err)
		}
		existing.Status = next
		existing.LastSubmittedAt = now
		if err := s.requests.Update(ctx, existing); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		return s.requests.AddAuditEvent(ctx, &AuditEvent{
			RequestID: existing.ID, Type: EventResubmitted, ActorType: ActorClinic, ActorID: existing.ClinicID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.count(EventResubmitted)
	return &SubmitResult{Request: existing, Outcome: OutcomeResubmitted}, nil
}

// Return sends a submitted request back to the clinic. A reason is required.
func (s *Service) Return(ctx context.Context, id, actorID uuid.UUID, reasonCode string, note *string) (*SurgeryRequest, error) {
	if reasonCode == "" {
		return nil, fmt.Errorf("reason_code is required")
	}
	return s.transition(ctx, id, EventReturned, ActorFacility, actorID, &reasonCode, note)
}

// Accept moves a submitted request to ACCEPTED.
func (s *Service) Accept(ctx context.Context, id, actorID uuid.UUID, note *string) (*SurgeryRequest, error) {
	return s.transition(ctx, id, EventAccepted, ActorFacility, actorID, nil, note)
}

// Reject terminally rejects a submitted request. A reason is required.
func (s *Service) Reject(ctx context.Context, id, actorID uuid.UUID, reasonCode string, note *string) (*SurgeryRequest, error) {
	if reasonCode == "" {
		return nil, fmt.Errorf("reason_code is required")
	}
	return s.transition(ctx, id, EventRejected, ActorFacility, actorID, &reasonCode, note)
}

// Withdraw terminally withdraws a request on the clinic's behalf.
func (s *Service) Withdraw(ctx context.Context, id, actorID uuid.UUID, note *string) (*SurgeryRequest, error) {
	return s.transition(ctx, id, EventWithdrawn, ActorClinic, actorID, nil, note)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, event EventType,
	actorType ActorType, actorID uuid.UUID, reasonCode, note *string) (*SurgeryRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	next, err := nextStatus(req.Status, event)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		req.Status = next
		if err := s.requests.Update(ctx, req); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		return s.requests.AddAuditEvent(ctx, &AuditEvent{
			RequestID: req.ID, Type: event, ActorType: actorType, ActorID: actorID,
			ReasonCode: reasonCode, Note: note,
		})
	})
	if err != nil {
		return nil, err
	}
	s.count(event)
	return req, nil
}

// Convert turns an accepted request into a scheduled case, exactly once. The
// surgeon reference must resolve through the clinic's mapping table; without
// one the caller gets ErrSurgeonNotMapped and should return the request.
func (s *Service) Convert(ctx context.Context, id, actorID uuid.UUID) (*Conversion, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	next, err := nextStatus(req.Status, EventConverted)
	if err != nil {
		return nil, err
	}

	mapping, err := s.mappings.Resolve(ctx, req.ClinicID, req.SurgeonRef)
	if err != nil {
		return nil, fmt.Errorf("resolve surgeon mapping: %w", err)
	}
	if mapping == nil {
		return nil, ErrSurgeonNotMapped
	}

	scheduledDate := time.Now().UTC()
	if req.PreferredDate != nil {
		scheduledDate = *req.PreferredDate
	}

	conversion := &Conversion{RequestID: req.ID, ConvertedBy: actorID}
	err = s.runTx(ctx, func(ctx context.Context) error {
		cs := &cases.Case{
			FacilityID:       req.FacilityID,
			PatientRef:       req.PatientRef,
			SurgeonID:        mapping.SurgeonID,
			ProcedureCode:    req.ProcedureCode,
			ProcedureDisplay: req.ProcedureDisplay,
			ScheduledDate:    scheduledDate,
			Note:             req.Note,
		}
		if err := s.cases.CreateCase(ctx, cs); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		conversion.CaseID = cs.ID
		if err := s.requests.AddConversion(ctx, conversion); err != nil {
			return fmt.Errorf("add conversion: %w", err)
		}
		req.Status = next
		if err := s.requests.Update(ctx, req); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		return s.requests.AddAuditEvent(ctx, &AuditEvent{
			RequestID: req.ID, Type: EventConverted, ActorType: ActorFacility, ActorID: actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.count(EventConverted)
	return conversion, nil
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, facilityID uuid.UUID, status RequestStatus, limit, offset int) ([]*SurgeryRequest, int, error) {
	return s.requests.ListByFacility(ctx, facilityID, status, limit, offset)
}

// Timeline returns the full audit trail for a request, oldest first.
func (s *Service) Timeline(ctx context.Context, requestID uuid.UUID) ([]*AuditEvent, error) {
	return s.requests.ListAuditEvents(ctx, requestID)
}

func (s *Service) Submissions(ctx context.Context, requestID uuid.UUID) ([]*Submission, error) {
	return s.requests.ListSubmissions(ctx, requestID)
}

func (s *Service) GetConversion(ctx context.Context, requestID uuid.UUID) (*Conversion, error) {
	return s.requests.GetConversion(ctx, requestID)
}

// CreateMapping registers a clinic surgeon reference for conversion.
func (s *Service) CreateMapping(ctx context.Context, m *SurgeonMapping) error {
	if m.FacilityID == uuid.Nil || m.ClinicID == uuid.Nil {
		return fmt.Errorf("facility_id and clinic_id are required")
	}
	if m.SurgeonRef == "" {
		return fmt.Errorf("surgeon_ref is required")
	}
	if m.SurgeonID == uuid.Nil {
		return fmt.Errorf("surgeon_id is required")
	}
	if _, err := s.cases.GetSurgeon(ctx, m.SurgeonID); err != nil {
		return fmt.Errorf("surgeon not found: %w", err)
	}
	return s.mappings.Create(ctx, m)
}

func (s *Service) ListMappings(ctx context.Context, clinicID uuid.UUID) ([]*SurgeonMapping, error) {
	return s.mappings.ListByClinic(ctx, clinicID)
}

func (s *Service) count(event EventType) {
	if s.metrics != nil {
		s.metrics.IntakeTransition(string(event))
	}
}
