package readiness

import (
	"time"

	"github.com/google/uuid"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/cases"
	"github.com/Twaynet/ASC-Inventory-sub003/internal/domain/inventory"
)

// Evaluate computes a case's readiness from a point-in-time snapshot. It is a
// pure function: no I/O, no clock beyond the explicit cutoff, safe to call
// redundantly.
func Evaluate(cs *cases.Case, reqs []*cases.Requirement, catalog map[uuid.UUID]*inventory.CatalogItem,
	items []*inventory.Item, atts []*Attestation, cutoff time.Time) Result {
	return evaluateIndexed(cs, reqs, catalog, indexByCatalog(items), atts, cutoff)
}

// BatchInput carries one shared snapshot for a facility-wide evaluation.
type BatchInput struct {
	Cases        []*cases.Case
	Requirements map[uuid.UUID][]*cases.Requirement
	Catalog      map[uuid.UUID]*inventory.CatalogItem
	Items        []*inventory.Item
	Attestations map[uuid.UUID][]*Attestation
	Surgeons     map[uuid.UUID]*cases.Surgeon
}

// EvaluateBatch evaluates many cases against one shared inventory snapshot.
// Cases whose surgeon cannot be resolved are skipped, not failed; one bad row
// must not blank the dashboard.
func EvaluateBatch(in BatchInput, cutoff time.Time) []Result {
	byCatalog := indexByCatalog(in.Items)
	results := make([]Result, 0, len(in.Cases))
	for _, cs := range in.Cases {
		if _, ok := in.Surgeons[cs.SurgeonID]; !ok {
			continue
		}
		results = append(results, evaluateIndexed(cs, in.Requirements[cs.ID], in.Catalog,
			byCatalog, in.Attestations[cs.ID], cutoff))
	}
	return results
}

func indexByCatalog(items []*inventory.Item) map[uuid.UUID][]*inventory.Item {
	byCatalog := make(map[uuid.UUID][]*inventory.Item, len(items))
	for _, it := range items {
		byCatalog[it.CatalogID] = append(byCatalog[it.CatalogID], it)
	}
	return byCatalog
}

func evaluateIndexed(cs *cases.Case, reqs []*cases.Requirement, catalog map[uuid.UUID]*inventory.CatalogItem,
	byCatalog map[uuid.UUID][]*inventory.Item, atts []*Attestation, cutoff time.Time) Result {
	res := Result{
		CaseID:      cs.ID,
		State:       StateGreen,
		Shortages:   []Shortage{},
		EvaluatedAt: cutoff,
	}

	for _, req := range reqs {
		res.TotalRequired += req.Quantity

		entry, ok := catalog[req.CatalogID]
		if !ok {
			res.Shortages = append(res.Shortages, Shortage{
				CatalogID:   req.CatalogID,
				RequiredQty: req.Quantity,
				Reason:      ReasonNotInInventory,
			})
			continue
		}

		qualifying, verified, disq := partitionUnits(cs.ID, entry, byCatalog[req.CatalogID], cutoff)
		if qualifying < req.Quantity {
			res.Shortages = append(res.Shortages, Shortage{
				CatalogID:    entry.ID,
				CatalogName:  entry.Name,
				RequiredQty:  req.Quantity,
				AvailableQty: qualifying,
				Reason:       attributeShortage(qualifying, disq),
			})
			continue
		}

		// Extra verified units beyond the requirement do not inflate the score.
		if verified > req.Quantity {
			verified = req.Quantity
		}
		res.TotalVerified += verified
	}

	switch {
	case len(res.Shortages) > 0:
		res.State = StateRed
	case res.TotalVerified < res.TotalRequired:
		res.State = StateOrange
	}

	res.Attestation = latestAttestation(atts, AttestationCaseReadiness)
	res.Acknowledgment = latestAttestation(atts, AttestationSurgeonAcknowledgment)
	return res
}

// disqualCounts tallies why candidate units failed to qualify.
type disqualCounts struct {
	notAvailable     int
	noLocation       int
	sterilityExpired int
	notSterile       int
}

func (d disqualCounts) total() int {
	return d.notAvailable + d.noLocation + d.sterilityExpired + d.notSterile
}

// partitionUnits filters a requirement's candidate pool. A unit qualifies only
// if it is available for this case, has a known location, and, when the
// catalog entry demands sterility, is sterile with expiry at or after the
// cutoff. Each disqualified unit is counted under its first failing check.
func partitionUnits(caseID uuid.UUID, entry *inventory.CatalogItem, pool []*inventory.Item,
	cutoff time.Time) (qualifying, verified int, disq disqualCounts) {
	for _, it := range pool {
		switch {
		case !it.AvailableForCase(caseID):
			disq.notAvailable++
		case it.Location == nil || *it.Location == "":
			disq.noLocation++
		case entry.RequiresSterility && !it.SterileAsOf(cutoff):
			if it.IsSterile {
				disq.sterilityExpired++
			} else {
				disq.notSterile++
			}
		default:
			qualifying++
			if it.LastVerifiedAt != nil {
				verified++
			}
		}
	}
	return qualifying, verified, disq
}

// attributeShortage picks the shortage reason by majority cause among the
// disqualified units, checked in fixed priority order. Availability and
// location failures win when they account for at least half the disqualified
// pool; sterility causes win on presence; ties break in the listed order.
func attributeShortage(qualifying int, disq disqualCounts) ShortageReason {
	pool := disq.total()
	switch {
	case pool > 0 && 2*disq.notAvailable >= pool:
		return ReasonNotAvailable
	case pool > 0 && 2*disq.noLocation >= pool:
		return ReasonNoLocation
	case disq.sterilityExpired > 0:
		return ReasonSterilityExpired
	case disq.notSterile > 0:
		return ReasonNotSterile
	case qualifying > 0:
		return ReasonInsufficientQuantity
	default:
		return ReasonNotVerified
	}
}

// latestAttestation selects the most recent attestation of the given type by
// creation time, or nil when none exists.
func latestAttestation(atts []*Attestation, typ AttestationType) *Attestation {
	var latest *Attestation
	for _, a := range atts {
		if a.Type != typ {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}
