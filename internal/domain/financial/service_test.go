package financial

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockSignalRepo struct {
	declarations  map[uuid.UUID][]*ClinicDeclaration
	verifications map[uuid.UUID][]*AscVerification
	overrides     map[uuid.UUID][]*Override
	seq           int
}

func newMockSignalRepo() *mockSignalRepo {
	return &mockSignalRepo{
		declarations:  make(map[uuid.UUID][]*ClinicDeclaration),
		verifications: make(map[uuid.UUID][]*AscVerification),
		overrides:     make(map[uuid.UUID][]*Override),
	}
}

// stamp produces strictly increasing creation times so "latest" is stable.
func (m *mockSignalRepo) stamp() time.Time {
	m.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
}

func (m *mockSignalRepo) AppendDeclaration(_ context.Context, d *ClinicDeclaration) error {
	d.ID = uuid.New()
	d.CreatedAt = m.stamp()
	m.declarations[d.RequestID] = append(m.declarations[d.RequestID], d)
	return nil
}

func (m *mockSignalRepo) AppendVerification(_ context.Context, v *AscVerification) error {
	v.ID = uuid.New()
	v.CreatedAt = m.stamp()
	m.verifications[v.RequestID] = append(m.verifications[v.RequestID], v)
	return nil
}

func (m *mockSignalRepo) AppendOverride(_ context.Context, o *Override) error {
	o.ID = uuid.New()
	o.CreatedAt = m.stamp()
	m.overrides[o.RequestID] = append(m.overrides[o.RequestID], o)
	return nil
}

func (m *mockSignalRepo) LatestDeclaration(_ context.Context, requestID uuid.UUID) (*ClinicDeclaration, error) {
	rows := m.declarations[requestID]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (m *mockSignalRepo) LatestVerification(_ context.Context, requestID uuid.UUID) (*AscVerification, error) {
	rows := m.verifications[requestID]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (m *mockSignalRepo) LatestOverride(_ context.Context, requestID uuid.UUID) (*Override, error) {
	rows := m.overrides[requestID]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (m *mockSignalRepo) ListDeclarations(_ context.Context, requestID uuid.UUID) ([]*ClinicDeclaration, error) {
	return m.declarations[requestID], nil
}

func (m *mockSignalRepo) ListVerifications(_ context.Context, requestID uuid.UUID) ([]*AscVerification, error) {
	return m.verifications[requestID], nil
}

func (m *mockSignalRepo) ListOverrides(_ context.Context, requestID uuid.UUID) ([]*Override, error) {
	return m.overrides[requestID], nil
}

type mockCacheRepo struct {
	caches map[uuid.UUID]*Cache
}

func (m *mockCacheRepo) Upsert(_ context.Context, c *Cache) error {
	m.caches[c.RequestID] = c
	return nil
}

func (m *mockCacheRepo) GetByRequest(_ context.Context, requestID uuid.UUID) (*Cache, error) {
	c, ok := m.caches[requestID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockCacheRepo) ListByFacility(_ context.Context, facilityID uuid.UUID, limit, offset int) ([]*Cache, int, error) {
	var result []*Cache
	for _, c := range m.caches {
		result = append(result, c)
	}
	return result, len(result), nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockSignalRepo, *mockCacheRepo) {
	signals := newMockSignalRepo()
	cache := &mockCacheRepo{caches: make(map[uuid.UUID]*Cache)}
	return NewService(signals, cache, nil, passthroughTx), signals, cache
}

// -- Tests --

func TestRecordDeclaration_RecomputesCache(t *testing.T) {
	svc, _, _ := newTestService()
	requestID := uuid.New()
	actor := uuid.New()

	err := svc.RecordDeclaration(context.Background(), &ClinicDeclaration{
		RequestID: requestID, State: DeclaredAtRisk, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache, err := svc.GetRisk(context.Background(), requestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.RiskTier != TierMedium {
		t.Errorf("expected MEDIUM, got %s", cache.RiskTier)
	}
	if cache.ClinicState != DeclaredAtRisk || cache.AscState != AscUnknown || cache.OverrideState != OverrideNone {
		t.Errorf("cache states out of sync: %+v", cache)
	}
}

func TestLatestRowWinsPerSource(t *testing.T) {
	svc, signals, _ := newTestService()
	requestID := uuid.New()
	actor := uuid.New()

	for _, state := range []ClinicState{DeclaredAtRisk, DeclaredCleared} {
		if err := svc.RecordDeclaration(context.Background(), &ClinicDeclaration{
			RequestID: requestID, State: state, ActorID: actor,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := svc.RecordVerification(context.Background(), &AscVerification{
		RequestID: requestID, State: VerifiedCleared, ActorID: actor,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache, _ := svc.GetRisk(context.Background(), requestID)
	if cache.RiskTier != TierLow {
		t.Errorf("latest declaration should win: expected LOW, got %s", cache.RiskTier)
	}
	// History keeps every appended row.
	if len(signals.declarations[requestID]) != 2 {
		t.Errorf("expected 2 declaration rows, got %d", len(signals.declarations[requestID]))
	}
}

func TestRecordOverride_WinsOverSignals(t *testing.T) {
	svc, _, _ := newTestService()
	requestID := uuid.New()
	actor := uuid.New()

	if err := svc.RecordVerification(context.Background(), &AscVerification{
		RequestID: requestID, State: VerifiedAtRisk, ActorID: actor,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RecordOverride(context.Background(), &Override{
		RequestID: requestID, State: OverrideCleared, ActorID: actor,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache, _ := svc.GetRisk(context.Background(), requestID)
	if cache.RiskTier != TierLow {
		t.Errorf("override cleared must win: expected LOW, got %s", cache.RiskTier)
	}
}

func TestRecord_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	actor := uuid.New()

	if err := svc.RecordDeclaration(context.Background(), &ClinicDeclaration{
		State: DeclaredCleared, ActorID: actor,
	}); err == nil {
		t.Error("expected error for missing request_id")
	}
	if err := svc.RecordDeclaration(context.Background(), &ClinicDeclaration{
		RequestID: uuid.New(), State: "BOGUS", ActorID: actor,
	}); err == nil {
		t.Error("expected error for invalid state")
	}
	if err := svc.RecordVerification(context.Background(), &AscVerification{
		RequestID: uuid.New(), State: VerifiedCleared,
	}); err == nil {
		t.Error("expected error for missing actor_id")
	}
	if err := svc.RecordOverride(context.Background(), &Override{
		RequestID: uuid.New(), State: "MAYBE", ActorID: actor,
	}); err == nil {
		t.Error("expected error for invalid override state")
	}
}

func TestGetRisk_ComputesBaselineOnFirstRead(t *testing.T) {
	svc, _, cache := newTestService()
	requestID := uuid.New()

	c, err := svc.GetRisk(context.Background(), requestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.RiskTier != TierUnknown {
		t.Errorf("expected UNKNOWN baseline, got %s", c.RiskTier)
	}
	if len(cache.caches) != 1 {
		t.Errorf("expected baseline row persisted, got %d", len(cache.caches))
	}
}
