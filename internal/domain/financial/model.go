package financial

import (
	"time"

	"github.com/google/uuid"
)

// RiskTier is the advisory financial-risk classification for a surgery
// request. It never blocks scheduling or conversion.
type RiskTier string

const (
	TierLow     RiskTier = "LOW"
	TierMedium  RiskTier = "MEDIUM"
	TierHigh    RiskTier = "HIGH"
	TierUnknown RiskTier = "UNKNOWN"
)

// ClinicState is the clinic-side declaration signal.
type ClinicState string

const (
	DeclaredCleared ClinicState = "DECLARED_CLEARED"
	DeclaredAtRisk  ClinicState = "DECLARED_AT_RISK"
	ClinicUnknown   ClinicState = "UNKNOWN"
)

var validClinicStates = map[ClinicState]bool{
	DeclaredCleared: true, DeclaredAtRisk: true, ClinicUnknown: true,
}

// AscState is the facility-side verification signal.
type AscState string

const (
	VerifiedCleared AscState = "VERIFIED_CLEARED"
	VerifiedAtRisk  AscState = "VERIFIED_AT_RISK"
	AscUnknown      AscState = "UNKNOWN"
)

var validAscStates = map[AscState]bool{
	VerifiedCleared: true, VerifiedAtRisk: true, AscUnknown: true,
}

// OverrideState is the administrative override signal.
type OverrideState string

const (
	OverrideCleared OverrideState = "OVERRIDE_CLEARED"
	OverrideAtRisk  OverrideState = "OVERRIDE_AT_RISK"
	OverrideNone    OverrideState = "NONE"
)

var validOverrideStates = map[OverrideState]bool{
	OverrideCleared: true, OverrideAtRisk: true, OverrideNone: true,
}

// ClinicDeclaration maps to the clinic_financial_declaration table. Rows are
// append-only; the current value is the most recently created row.
type ClinicDeclaration struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	RequestID   uuid.UUID   `db:"request_id" json:"request_id"`
	State       ClinicState `db:"state" json:"state"`
	ReasonCodes []string    `db:"reason_codes" json:"reason_codes,omitempty"`
	Note        *string     `db:"note" json:"note,omitempty"`
	ActorID     uuid.UUID   `db:"actor_id" json:"actor_id"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// AscVerification maps to the asc_financial_verification table. Append-only.
type AscVerification struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RequestID   uuid.UUID `db:"request_id" json:"request_id"`
	State       AscState  `db:"state" json:"state"`
	ReasonCodes []string  `db:"reason_codes" json:"reason_codes,omitempty"`
	Note        *string   `db:"note" json:"note,omitempty"`
	ActorID     uuid.UUID `db:"actor_id" json:"actor_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Override maps to the financial_override table. Append-only.
type Override struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	RequestID uuid.UUID     `db:"request_id" json:"request_id"`
	State     OverrideState `db:"state" json:"state"`
	Note      *string       `db:"note" json:"note,omitempty"`
	ActorID   uuid.UUID     `db:"actor_id" json:"actor_id"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Cache maps to the financial_readiness_cache table: one mutable row per
// surgery request, re-derivable by re-running the compute engine against the
// latest rows of the three append-only tables.
type Cache struct {
	RequestID     uuid.UUID     `db:"request_id" json:"request_id"`
	ClinicState   ClinicState   `db:"clinic_state" json:"clinic_state"`
	AscState      AscState      `db:"asc_state" json:"asc_state"`
	OverrideState OverrideState `db:"override_state" json:"override_state"`
	RiskTier      RiskTier      `db:"risk_tier" json:"risk_tier"`
	ComputedAt    time.Time     `db:"computed_at" json:"computed_at"`
}
