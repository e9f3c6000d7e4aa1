package readiness

import (
	"context"

	"github.com/google/uuid"
)

type CacheRepository interface {
	Upsert(ctx context.Context, c *Cache) error
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Cache, error)
}

type AttestationRepository interface {
	Create(ctx context.Context, a *Attestation) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Attestation, error)
	ListByCases(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]*Attestation, error)
}
