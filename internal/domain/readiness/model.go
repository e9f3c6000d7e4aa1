package readiness

import (
	"time"

	"github.com/google/uuid"
)

// State is the traffic-light summary of whether a case's required items are
// physically sufficient and verified.
type State string

const (
	StateGreen  State = "GREEN"
	StateOrange State = "ORANGE"
	StateRed    State = "RED"
)

// ShortageReason attributes why a requirement cannot currently be satisfied.
type ShortageReason string

const (
	ReasonNotInInventory       ShortageReason = "NOT_IN_INVENTORY"
	ReasonNotAvailable         ShortageReason = "NOT_AVAILABLE"
	ReasonNoLocation           ShortageReason = "NO_LOCATION"
	ReasonSterilityExpired     ShortageReason = "STERILITY_EXPIRED"
	ReasonNotSterile           ShortageReason = "NOT_STERILE"
	ReasonInsufficientQuantity ShortageReason = "INSUFFICIENT_QUANTITY"
	ReasonNotVerified          ShortageReason = "NOT_VERIFIED"
)

// Shortage is a single requirement the inventory cannot cover, with the
// attributed reason.
type Shortage struct {
	CatalogID    uuid.UUID      `json:"catalog_id"`
	CatalogName  string         `json:"catalog_name"`
	RequiredQty  int            `json:"required_qty"`
	AvailableQty int            `json:"available_qty"`
	Reason       ShortageReason `json:"reason"`
}

// AttestationType distinguishes staff sign-off from surgeon acknowledgment.
type AttestationType string

const (
	AttestationCaseReadiness         AttestationType = "CASE_READINESS"
	AttestationSurgeonAcknowledgment AttestationType = "SURGEON_ACKNOWLEDGMENT"
)

var validAttestationTypes = map[AttestationType]bool{
	AttestationCaseReadiness:         true,
	AttestationSurgeonAcknowledgment: true,
}

// Attestation maps to the case_attestation table. Rows are append-only;
// attestations are informational and never change a computed state.
type Attestation struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	CaseID    uuid.UUID       `db:"case_id" json:"case_id"`
	Type      AttestationType `db:"type" json:"type"`
	State     State           `db:"state" json:"state"`
	ActorID   uuid.UUID       `db:"actor_id" json:"actor_id"`
	Note      *string         `db:"note" json:"note,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Result is one case's computed readiness.
type Result struct {
	CaseID         uuid.UUID    `json:"case_id"`
	State          State        `json:"state"`
	Shortages      []Shortage   `json:"shortages"`
	TotalRequired  int          `json:"total_required"`
	TotalVerified  int          `json:"total_verified"`
	Attestation    *Attestation `json:"attestation,omitempty"`
	Acknowledgment *Attestation `json:"acknowledgment,omitempty"`
	EvaluatedAt    time.Time    `json:"evaluated_at"`
}

// Cache maps to the readiness_cache table: a read-optimized projection of the
// latest evaluation, always re-derivable from the current snapshot.
type Cache struct {
	CaseID        uuid.UUID  `db:"case_id" json:"case_id"`
	State         State      `db:"state" json:"state"`
	Shortages     []Shortage `db:"shortages" json:"shortages"`
	TotalRequired int        `db:"total_required" json:"total_required"`
	TotalVerified int        `db:"total_verified" json:"total_verified"`
	ComputedAt    time.Time  `db:"computed_at" json:"computed_at"`
}
