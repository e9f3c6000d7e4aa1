package inventory

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem maps to the item_catalog table. Shared reference data for
// everything the facility stocks or borrows.
type CatalogItem struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Category          string    `db:"category" json:"category"`
	RequiresSterility bool      `db:"requires_sterility" json:"requires_sterility"`
	IsLoaner          bool      `db:"is_loaner" json:"is_loaner"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ItemStatus is the availability state of a physical inventory unit.
type ItemStatus string

const (
	StatusAvailable   ItemStatus = "AVAILABLE"
	StatusReserved    ItemStatus = "RESERVED"
	StatusInUse       ItemStatus = "IN_USE"
	StatusUnavailable ItemStatus = "UNAVAILABLE"
	StatusMissing     ItemStatus = "MISSING"
)

var validItemStatuses = map[ItemStatus]bool{
	StatusAvailable: true, StatusReserved: true, StatusInUse: true,
	StatusUnavailable: true, StatusMissing: true,
}

// Item maps to the inventory_item table: a single trackable physical unit.
type Item struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	CatalogID          uuid.UUID  `db:"catalog_id" json:"catalog_id"`
	FacilityID         uuid.UUID  `db:"facility_id" json:"facility_id"`
	SerialNumber       *string    `db:"serial_number" json:"serial_number,omitempty"`
	Location           *string    `db:"location" json:"location,omitempty"`
	IsSterile          bool       `db:"is_sterile" json:"is_sterile"`
	SterilityExpiresAt *time.Time `db:"sterility_expires_at" json:"sterility_expires_at,omitempty"`
	Status             ItemStatus `db:"status" json:"status"`
	ReservedCaseID     *uuid.UUID `db:"reserved_case_id" json:"reserved_case_id,omitempty"`
	LastVerifiedAt     *time.Time `db:"last_verified_at" json:"last_verified_at,omitempty"`
	LastVerifiedBy     *uuid.UUID `db:"last_verified_by" json:"last_verified_by,omitempty"`
	Note               *string    `db:"note" json:"note,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// AvailableForCase reports whether the unit can satisfy a requirement of the
// given case: free for anyone, or already held for that case.
func (i *Item) AvailableForCase(caseID uuid.UUID) bool {
	switch i.Status {
	case StatusAvailable:
		return true
	case StatusReserved:
		return i.ReservedCaseID != nil && *i.ReservedCaseID == caseID
	default:
		return false
	}
}

// SterileAsOf reports whether the unit is sterile with an expiry at or after
// the cutoff. Units with no expiry stamp count as sterile indefinitely.
func (i *Item) SterileAsOf(cutoff time.Time) bool {
	if !i.IsSterile {
		return false
	}
	if i.SterilityExpiresAt == nil {
		return true
	}
	return !i.SterilityExpiresAt.Before(cutoff)
}
