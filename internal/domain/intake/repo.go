package intake

import (
	"context"

	"github.com/google/uuid"
)

// RequestRepository persists requests and their append-only history tables.
// GetByDedupKey and GetConversion return (nil, nil) when no row exists.
type RequestRepository interface {
	Create(ctx context.Context, r *SurgeryRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error)
	GetByDedupKey(ctx context.Context, clinicID uuid.UUID, externalID string) (*SurgeryRequest, error)
	Update(ctx context.Context, r *SurgeryRequest) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID, status RequestStatus, limit, offset int) ([]*SurgeryRequest, int, error)

	AddSubmission(ctx context.Context, sub *Submission) error
	ListSubmissions(ctx context.Context, requestID uuid.UUID) ([]*Submission, error)

	AddAuditEvent(ctx context.Context, ev *AuditEvent) error
	ListAuditEvents(ctx context.Context, requestID uuid.UUID) ([]*AuditEvent, error)

	AddConversion(ctx context.Context, cv *Conversion) error
	GetConversion(ctx context.Context, requestID uuid.UUID) (*Conversion, error)
}

// MappingRepository resolves clinic surgeon references to facility surgeons.
// Resolve returns (nil, nil) when no mapping exists.
type MappingRepository interface {
	Create(ctx context.Context, m *SurgeonMapping) error
	Resolve(ctx context.Context, clinicID uuid.UUID, surgeonRef string) (*SurgeonMapping, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*SurgeonMapping, error)
}
