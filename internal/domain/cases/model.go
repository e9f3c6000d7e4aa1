package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case maps to the surgical_case table. Room/time assignment is manual and
// lives on the schedule fields; this core never optimizes it.
type Case struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	FacilityID       uuid.UUID  `db:"facility_id" json:"facility_id"`
	PatientRef       string     `db:"patient_ref" json:"patient_ref"`
	SurgeonID        uuid.UUID  `db:"surgeon_id" json:"surgeon_id"`
	ProcedureCode    string     `db:"procedure_code" json:"procedure_code"`
	ProcedureDisplay string     `db:"procedure_display" json:"procedure_display"`
	Status           string     `db:"status" json:"status"`
	ScheduledDate    time.Time  `db:"scheduled_date" json:"scheduled_date"`
	ScheduledStart   *time.Time `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd     *time.Time `db:"scheduled_end" json:"scheduled_end,omitempty"`
	Note             *string    `db:"note" json:"note,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Requirement maps to the case_requirement table: one catalog item a case
// needs, with the quantity. Quantity must be positive.
type Requirement struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CaseID     uuid.UUID `db:"case_id" json:"case_id"`
	CatalogID  uuid.UUID `db:"catalog_id" json:"catalog_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	IsOverride bool      `db:"is_override" json:"is_override"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Surgeon maps to the surgeon table: a facility-credentialed practitioner.
type Surgeon struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	Name       string    `db:"name" json:"name"`
	NPI        *string   `db:"npi" json:"npi,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
