package readiness

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/cases"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/inventory"
)

var cutoff = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	cs      *cases.Case
	reqs    []*cases.Requirement
	catalog map[uuid.UUID]*inventory.CatalogItem
	items   []*inventory.Item
	atts    []*Attestation
}

func newFixture() *fixture {
	return &fixture{
		cs:      &cases.Case{ID: uuid.New(), FacilityID: uuid.New(), SurgeonID: uuid.New()},
		catalog: make(map[uuid.UUID]*inventory.CatalogItem),
	}
}

func (f *fixture) addCatalog(name string, sterile bool) uuid.UUID {
	id := uuid.New()
	f.catalog[id] = &inventory.CatalogItem{ID: id, Name: name, RequiresSterility: sterile, IsActive: true}
	return id
}

func (f *fixture) require(catalogID uuid.UUID, qty int) {
	f.reqs = append(f.reqs, &cases.Requirement{
		ID: uuid.New(), CaseID: f.cs.ID, CatalogID: catalogID, Quantity: qty,
	})
}

type unitOpt func(*inventory.Item)

func verified(it *inventory.Item) {
	at := cutoff.AddDate(0, 0, -1)
	it.LastVerifiedAt = &at
}

func noLocation(it *inventory.Item) { it.Location = nil }

func unavailable(it *inventory.Item) { it.Status = inventory.StatusUnavailable }

func expired(it *inventory.Item) {
	at := cutoff.AddDate(0, 0, -1)
	it.SterilityExpiresAt = &at
}

func notSterile(it *inventory.Item) { it.IsSterile = false }

func (f *fixture) addUnit(catalogID uuid.UUID, opts ...unitOpt) *inventory.Item {
	loc := "OR-1"
	exp := cutoff.AddDate(0, 0, 30)
	it := &inventory.Item{
		ID:                 uuid.New(),
		CatalogID:          catalogID,
		FacilityID:         f.cs.FacilityID,
		Location:           &loc,
		IsSterile:          true,
		SterilityExpiresAt: &exp,
		Status:             inventory.StatusAvailable,
	}
	for _, opt := range opts {
		opt(it)
	}
	f.items = append(f.items, it)
	return it
}

func (f *fixture) evaluate() Result {
	return Evaluate(f.cs, f.reqs, f.catalog, f.items, f.atts, cutoff)
}

func TestEvaluate_GreenWhenVerified(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("implant tray", true)
	f.require(catID, 2)
	f.addUnit(catID, verified)
	f.addUnit(catID, verified)

	res := f.evaluate()
	if res.State != StateGreen {
		t.Fatalf("expected GREEN, got %s (shortages %v)", res.State, res.Shortages)
	}
	if res.TotalRequired != 2 || res.TotalVerified != 2 {
		t.Errorf("expected 2/2, got %d/%d", res.TotalVerified, res.TotalRequired)
	}
}

func TestEvaluate_OrangeWhenUnverified(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("implant tray", true)
	f.require(catID, 2)
	f.addUnit(catID, verified)
	f.addUnit(catID)

	res := f.evaluate()
	if res.State != StateOrange {
		t.Fatalf("expected ORANGE, got %s", res.State)
	}
	if res.TotalVerified != 1 {
		t.Errorf("expected 1 verified, got %d", res.TotalVerified)
	}
}

func TestEvaluate_MissingCatalogEntry(t *testing.T) {
	f := newFixture()
	unknown := uuid.New()
	f.require(unknown, 3)

	res := f.evaluate()
	if res.State != StateRed {
		t.Fatalf("expected RED, got %s", res.State)
	}
	if len(res.Shortages) != 1 {
		t.Fatalf("expected 1 shortage, got %d", len(res.Shortages))
	}
	sh := res.Shortages[0]
	if sh.Reason != ReasonNotInInventory || sh.RequiredQty != 3 || sh.AvailableQty != 0 {
		t.Errorf("unexpected shortage %+v", sh)
	}
}

func TestEvaluate_ReservedForThisCaseQualifies(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("scope", false)
	f.require(catID, 1)
	it := f.addUnit(catID, verified)
	it.Status = inventory.StatusReserved
	it.ReservedCaseID = &f.cs.ID

	if res := f.evaluate(); res.State != StateGreen {
		t.Errorf("reserved-for-this-case unit should qualify, got %s", res.State)
	}
}

func TestEvaluate_ReservedForOtherCaseDoesNot(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("scope", false)
	f.require(catID, 1)
	other := uuid.New()
	it := f.addUnit(catID)
	it.Status = inventory.StatusReserved
	it.ReservedCaseID = &other

	res := f.evaluate()
	if res.State != StateRed {
		t.Fatalf("expected RED, got %s", res.State)
	}
	if res.Shortages[0].Reason != ReasonNotAvailable {
		t.Errorf("expected NOT_AVAILABLE, got %s", res.Shortages[0].Reason)
	}
}

func TestEvaluate_ShortageReasonMajority(t *testing.T) {
	tests := []struct {
		name  string
		opts  [][]unitOpt
		want  ShortageReason
		avail int
	}{
		{
			name: "availability dominates",
			opts: [][]unitOpt{{unavailable}, {unavailable}, {noLocation}},
			want: ReasonNotAvailable,
		},
		{
			name: "location dominates",
			opts: [][]unitOpt{{unavailable}, {noLocation}, {noLocation}},
			want: ReasonNoLocation,
		},
		{
			name: "tie breaks toward availability",
			opts: [][]unitOpt{{unavailable}, {noLocation}},
			want: ReasonNotAvailable,
		},
		{
			name: "expired sterility when no majority blocker",
			opts: [][]unitOpt{{expired}, {expired}, {expired}},
			want: ReasonSterilityExpired,
		},
		{
			name: "not sterile",
			opts: [][]unitOpt{{notSterile}},
			want: ReasonNotSterile,
		},
		{
			name:  "insufficient quantity with no disqualified units",
			opts:  [][]unitOpt{{verified}},
			want:  ReasonInsufficientQuantity,
			avail: 1,
		},
		{
			name: "no units at all",
			opts: nil,
			want: ReasonNotVerified,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			catID := f.addCatalog("tray", true)
			f.require(catID, 2)
			for _, opts := range tt.opts {
				f.addUnit(catID, opts...)
			}
			res := f.evaluate()
			if res.State != StateRed {
				t.Fatalf("expected RED, got %s", res.State)
			}
			sh := res.Shortages[0]
			if sh.Reason != tt.want {
				t.Errorf("expected reason %s, got %s", tt.want, sh.Reason)
			}
			if sh.AvailableQty != tt.avail {
				t.Errorf("expected available %d, got %d", tt.avail, sh.AvailableQty)
			}
		})
	}
}

func TestEvaluate_VerifiedCappedAtRequired(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("clamp", false)
	f.require(catID, 1)
	f.addUnit(catID, verified)
	f.addUnit(catID, verified)
	f.addUnit(catID, verified)

	res := f.evaluate()
	if res.TotalVerified != 1 {
		t.Errorf("verified count should cap at required quantity, got %d", res.TotalVerified)
	}
	if res.State != StateGreen {
		t.Errorf("expected GREEN, got %s", res.State)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("tray", true)
	f.require(catID, 2)
	f.addUnit(catID, verified)
	f.addUnit(catID, expired)

	first := f.evaluate()
	for i := 0; i < 5; i++ {
		if got := f.evaluate(); !reflect.DeepEqual(got, first) {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestEvaluate_Monotonicity(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("tray", true)
	f.require(catID, 2)
	f.addUnit(catID, verified)

	if res := f.evaluate(); res.State != StateRed {
		t.Fatalf("expected RED before supply, got %s", res.State)
	}
	f.addUnit(catID)
	if res := f.evaluate(); res.State != StateOrange {
		t.Fatalf("expected ORANGE after unverified supply, got %s", res.State)
	}
	verified(f.items[1])
	if res := f.evaluate(); res.State != StateGreen {
		t.Fatalf("expected GREEN after verified supply, got %s", res.State)
	}
}

func TestEvaluate_AttestationResolution(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("tray", false)
	f.require(catID, 1)
	f.addUnit(catID, verified)

	older := &Attestation{ID: uuid.New(), CaseID: f.cs.ID, Type: AttestationCaseReadiness,
		CreatedAt: cutoff.AddDate(0, 0, -3)}
	newer := &Attestation{ID: uuid.New(), CaseID: f.cs.ID, Type: AttestationCaseReadiness,
		CreatedAt: cutoff.AddDate(0, 0, -1)}
	ack := &Attestation{ID: uuid.New(), CaseID: f.cs.ID, Type: AttestationSurgeonAcknowledgment,
		CreatedAt: cutoff.AddDate(0, 0, -2)}
	f.atts = []*Attestation{older, ack, newer}

	res := f.evaluate()
	if res.Attestation == nil || res.Attestation.ID != newer.ID {
		t.Error("expected the most recent CASE_READINESS attestation")
	}
	if res.Acknowledgment == nil || res.Acknowledgment.ID != ack.ID {
		t.Error("expected the surgeon acknowledgment")
	}
	if res.State != StateGreen {
		t.Errorf("attestations must not change computed state, got %s", res.State)
	}
}

func TestEvaluateBatch_SkipsUnresolvableSurgeon(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("tray", false)
	f.require(catID, 1)
	f.addUnit(catID, verified)

	orphan := &cases.Case{ID: uuid.New(), FacilityID: f.cs.FacilityID, SurgeonID: uuid.New()}

	results := EvaluateBatch(BatchInput{
		Cases:        []*cases.Case{f.cs, orphan},
		Requirements: map[uuid.UUID][]*cases.Requirement{f.cs.ID: f.reqs},
		Catalog:      f.catalog,
		Items:        f.items,
		Attestations: map[uuid.UUID][]*Attestation{},
		Surgeons: map[uuid.UUID]*cases.Surgeon{
			f.cs.SurgeonID: {ID: f.cs.SurgeonID, Name: "Dr. Okafor"},
		},
	}, cutoff)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].CaseID != f.cs.ID {
		t.Error("expected the resolvable case in the batch output")
	}
}

func TestEvaluateBatch_SharedSnapshot(t *testing.T) {
	f := newFixture()
	catID := f.addCatalog("tray", false)
	f.require(catID, 1)
	f.addUnit(catID, verified)

	second := &cases.Case{ID: uuid.New(), FacilityID: f.cs.FacilityID, SurgeonID: f.cs.SurgeonID}
	secondReqs := []*cases.Requirement{{ID: uuid.New(), CaseID: second.ID, CatalogID: catID, Quantity: 1}}

	results := EvaluateBatch(BatchInput{
		Cases:        []*cases.Case{f.cs, second},
		Requirements: map[uuid.UUID][]*cases.Requirement{f.cs.ID: f.reqs, second.ID: secondReqs},
		Catalog:      f.catalog,
		Items:        f.items,
		Attestations: map[uuid.UUID][]*Attestation{},
		Surgeons: map[uuid.UUID]*cases.Surgeon{
			f.cs.SurgeonID: {ID: f.cs.SurgeonID, Name: "Dr. Okafor"},
		},
	}, cutoff)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Reservation is per evaluation, not consumed across the batch: both
	// cases see the same single available unit.
	for _, res := range results {
		if res.State != StateGreen {
			t.Errorf("case %s: expected GREEN, got %s", res.CaseID, res.State)
		}
	}
}
