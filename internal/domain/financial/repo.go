package financial

import (
	"context"

	"github.com/google/uuid"
)

// SignalRepository persists the three append-only signal tables. Latest*
// methods return (nil, nil) when no row exists for the request; historical
// rows are never updated or deleted.
type SignalRepository interface {
	AppendDeclaration(ctx context.Context, d *ClinicDeclaration) error
	AppendVerification(ctx context.Context, v *AscVerification) error
	AppendOverride(ctx context.Context, o *Override) error
	LatestDeclaration(ctx context.Context, requestID uuid.UUID) (*ClinicDeclaration, error)
	LatestVerification(ctx context.Context, requestID uuid.UUID) (*AscVerification, error)
	LatestOverride(ctx context.Context, requestID uuid.UUID) (*Override, error)
	ListDeclarations(ctx context.Context, requestID uuid.UUID) ([]*ClinicDeclaration, error)
	ListVerifications(ctx context.Context, requestID uuid.UUID) ([]*AscVerification, error)
	ListOverrides(ctx context.Context, requestID uuid.UUID) ([]*Override, error)
}

type CacheRepository interface {
	Upsert(ctx context.Context, c *Cache) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*Cache, error)
	ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Cache, int, error)
}
