package cases

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CaseRepository interface {
	Create(ctx context.Context, cs *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	Update(ctx context.Context, cs *Case) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Case, int, error)
	ListScheduled(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]*Case, error)
	// Requirements
	AddRequirement(ctx context.Context, req *Requirement) error
	GetRequirements(ctx context.Context, caseID uuid.UUID) ([]*Requirement, error)
	// RemoveRequirement reports the owning case's id, or uuid.Nil when the
	// requirement does not exist.
	RemoveRequirement(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	// ListIDsRequiring returns ids of scheduled cases with a requirement on
	// the catalog entry.
	ListIDsRequiring(ctx context.Context, catalogID uuid.UUID) ([]uuid.UUID, error)
}

type SurgeonRepository interface {
	Create(ctx context.Context, sg *Surgeon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Surgeon, error)
	ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*Surgeon, error)
}
