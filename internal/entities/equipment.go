package entities

import (
	"github.com/aarondl/null/v8"

	"lab-inventory-system/pkg/types"
)

// Equipment is an inventory record with two independent approval slots.
// FullyApproved is derived: true iff both slots are set.
type Equipment struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	EquipmentTypeID uint64  `json:"equipment_type_id"`
	LabID           uint64  `json:"lab_id"`
	Rate            float64 `json:"rate"`
	Quantity        uint64  `json:"quantity"`
	CreatedBy       uint64  `json:"created_by"`

	ApprovedByIncharge null.Uint64 `json:"approved_by_incharge"`
	ApprovedByHOD      null.Uint64 `json:"approved_by_hod"`
	FullyApproved      bool        `json:"fully_approved"`

	// PendingDelete marks the tombstone awaiting HOD ratification. The row
	// stays until the HOD purges or restores it.
	PendingDelete bool `json:"pending_delete"`

	types.BaseEntity

	Lab           *Lab           `json:"lab,omitempty" db:"-"`
	EquipmentType *EquipmentType `json:"equipment_type,omitempty" db:"-"`
}

// RecomputeApproval refreshes the derived flag from the two slots.
func (e *Equipment) RecomputeApproval() {
	e.FullyApproved = e.ApprovedByIncharge.Valid && e.ApprovedByHOD.Valid
}
