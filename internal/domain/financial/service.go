package financial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/db"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/telemetry"
)

// Service appends financial signals and recomputes the risk cache in the same
// unit of work, so the cache can never drift from the append-only history.
type Service struct {
	signals SignalRepository
	cache   CacheRepository
	metrics *telemetry.Provider
	runTx   db.TxRunner
}

func NewService(signals SignalRepository, cache CacheRepository, metrics *telemetry.Provider, runTx db.TxRunner) *Service {
	return &Service{signals: signals, cache: cache, metrics: metrics, runTx: runTx}
}

// RecordDeclaration appends a clinic declaration and recomputes the cache.
func (s *Service) RecordDeclaration(ctx context.Context, d *ClinicDeclaration) error {
	if d.RequestID == uuid.Nil {
		return fmt.Errorf("request_id is required")
	}
	if !validClinicStates[d.State] {
		return fmt.Errorf("invalid clinic declaration state: %s", d.State)
	}
	if d.ActorID == uuid.Nil {
		return fmt.Errorf("actor_id is required")
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.signals.AppendDeclaration(ctx, d); err != nil {
			return fmt.Errorf("append declaration: %w", err)
		}
		return s.recompute(ctx, d.RequestID)
	})
}

// RecordVerification appends a facility verification and recomputes the cache.
func (s *Service) RecordVerification(ctx context.Context, v *AscVerification) error {
	if v.RequestID == uuid.Nil {
		return fmt.Errorf("request_id is required")
	}
	if !validAscStates[v.State] {
		return fmt.Errorf("invalid verification state: %s", v.State)
	}
	if v.ActorID == uuid.Nil {
		return fmt.Errorf("actor_id is required")
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.signals.AppendVerification(ctx, v); err != nil {
			return fmt.Errorf("append verification: %w", err)
		}
		return s.recompute(ctx, v.RequestID)
	})
}

// RecordOverride appends an administrative override and recomputes the cache.
func (s *Service) RecordOverride(ctx context.Context, o *Override) error {
	if o.RequestID == uuid.Nil {
		return fmt.Errorf("request_id is required")
	}
	if !validOverrideStates[o.State] {
		return fmt.Errorf("invalid override state: %s", o.State)
	}
	if o.ActorID == uuid.Nil {
		return fmt.Errorf("actor_id is required")
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.signals.AppendOverride(ctx, o); err != nil {
			return fmt.Errorf("append override: %w", err)
		}
		return s.recompute(ctx, o.RequestID)
	})
}

// recompute derives the current value of each source from its latest row and
// overwrites the cache with the computed tier.
func (s *Service) recompute(ctx context.Context, requestID uuid.UUID) error {
	clinic := ClinicUnknown
	if d, err := s.signals.LatestDeclaration(ctx, requestID); err != nil {
		return fmt.Errorf("latest declaration: %w", err)
	} else if d != nil {
		clinic = d.State
	}

	asc := AscUnknown
	if v, err := s.signals.LatestVerification(ctx, requestID); err != nil {
		return fmt.Errorf("latest verification: %w", err)
	} else if v != nil {
		asc = v.State
	}

	override := OverrideNone
	if o, err := s.signals.LatestOverride(ctx, requestID); err != nil {
		return fmt.Errorf("latest override: %w", err)
	} else if o != nil {
		override = o.State
	}

	tier := ComputeRisk(clinic, asc, override)
	if err := s.cache.Upsert(ctx, &Cache{
		RequestID:     requestID,
		ClinicState:   clinic,
		AscState:      asc,
		OverrideState: override,
		RiskTier:      tier,
		ComputedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert risk cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RiskRecomputed(string(tier))
	}
	return nil
}

// GetRisk returns the cached tier, computing an UNKNOWN baseline row on first
// read if no signal has ever arrived.
func (s *Service) GetRisk(ctx context.Context, requestID uuid.UUID) (*Cache, error) {
	c, err := s.cache.GetByRequest(ctx, requestID)
	if err == nil {
		return c, nil
	}
	if err := s.runTx(ctx, func(ctx context.Context) error {
		return s.recompute(ctx, requestID)
	}); err != nil {
		return nil, err
	}
	return s.cache.GetByRequest(ctx, requestID)
}

func (s *Service) Dashboard(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Cache, int, error) {
	return s.cache.ListByFacility(ctx, facilityID, limit, offset)
}

// History returns the full append-only trail for a request.
type History struct {
	Declarations  []*ClinicDeclaration `json:"declarations"`
	Verifications []*AscVerification   `json:"verifications"`
	Overrides     []*Override          `json:"overrides"`
}

func (s *Service) GetHistory(ctx context.Context, requestID uuid.UUID) (*History, error) {
	decls, err := s.signals.ListDeclarations(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	vers, err := s.signals.ListVerifications(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	overrides, err := s.signals.ListOverrides(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return &History{Declarations: decls, Verifications: vers, Overrides: overrides}, nil
}
