package intake

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle status of a clinic-submitted surgery request.
type RequestStatus string

const (
	StatusSubmitted        RequestStatus = "SUBMITTED"
	StatusReturnedToClinic RequestStatus = "RETURNED_TO_CLINIC"
	StatusAccepted         RequestStatus = "ACCEPTED"
	StatusRejected         RequestStatus = "REJECTED"
	StatusWithdrawn        RequestStatus = "WITHDRAWN"
	StatusConverted        RequestStatus = "CONVERTED"
)

// Terminal reports whether no transition may ever leave this status.
func (s RequestStatus) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn || s == StatusConverted
}

// SurgeryRequest maps to the surgery_request table. The pair
// (clinic_id, external_id) is the deduplication key for submissions; status
// changes only through the lifecycle transitions.
type SurgeryRequest struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	FacilityID       uuid.UUID     `db:"facility_id" json:"facility_id"`
	ClinicID         uuid.UUID     `db:"clinic_id" json:"clinic_id"`
	ExternalID       string        `db:"external_id" json:"external_id"`
	Status           RequestStatus `db:"status" json:"status"`
	PatientRef       string        `db:"patient_ref" json:"patient_ref"`
	SurgeonRef       string        `db:"surgeon_ref" json:"surgeon_ref"`
	ProcedureCode    string        `db:"procedure_code" json:"procedure_code"`
	ProcedureDisplay string        `db:"procedure_display" json:"procedure_display"`
	PreferredDate    *time.Time    `db:"preferred_date" json:"preferred_date,omitempty"`
	Note             *string       `db:"note" json:"note,omitempty"`
	LastSubmittedAt  time.Time     `db:"last_submitted_at" json:"last_submitted_at"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// Submission maps to the surgery_request_submission table. Append-only, one
// row per physical submission attempt, numbered by a per-request sequence.
type Submission struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RequestID   uuid.UUID `db:"request_id" json:"request_id"`
	Seq         int       `db:"seq" json:"seq"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	ReceivedAt  time.Time `db:"received_at" json:"received_at"`
}

// EventType labels one lifecycle transition on the audit timeline.
type EventType string

const (
	EventSubmitted   EventType = "SUBMITTED"
	EventResubmitted EventType = "RESUBMITTED"
	EventReturned    EventType = "RETURNED"
	EventAccepted    EventType = "ACCEPTED"
	EventRejected    EventType = "REJECTED"
	EventWithdrawn   EventType = "WITHDRAWN"
	EventConverted   EventType = "CONVERTED"
)

// ActorType distinguishes which side of the intake boundary acted.
type ActorType string

const (
	ActorClinic   ActorType = "CLINIC"
	ActorFacility ActorType = "FACILITY"
)

// AuditEvent maps to the surgery_request_audit_event table. Append-only;
// every status transition writes exactly one row in the same transaction.
type AuditEvent struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RequestID  uuid.UUID `db:"request_id" json:"request_id"`
	Type       EventType `db:"type" json:"type"`
	ActorType  ActorType `db:"actor_type" json:"actor_type"`
	ActorID    uuid.UUID `db:"actor_id" json:"actor_id"`
	ReasonCode *string   `db:"reason_code" json:"reason_code,omitempty"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Conversion maps to the surgery_request_conversion table. Created exactly
// once per request; its existence is the proof the request reached CONVERTED.
type Conversion struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RequestID   uuid.UUID `db:"request_id" json:"request_id"`
	CaseID      uuid.UUID `db:"case_id" json:"case_id"`
	ConvertedBy uuid.UUID `db:"converted_by" json:"converted_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SurgeonMapping maps a clinic's surgeon reference string to a facility
// practitioner. Convert fails with ErrSurgeonNotMapped without one.
type SurgeonMapping struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	ClinicID   uuid.UUID `db:"clinic_id" json:"clinic_id"`
	SurgeonRef string    `db:"surgeon_ref" json:"surgeon_ref"`
	SurgeonID  uuid.UUID `db:"surgeon_id" json:"surgeon_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
