package entities

import (
	"github.com/aarondl/null/v8"

	"lab-inventory-system/pkg/types"
)

const (
	IssueStatusOpen     = "open"
	IssueStatusResolved = "resolved"
)

// Issue is a fault report against approved equipment. Once resolved it is
// immutable; remark and repair cost are recorded at resolution time.
type Issue struct {
	ID          uint64       `json:"id"`
	EquipmentID uint64       `json:"equipment_id"`
	ReportedBy  uint64       `json:"reported_by"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Remark      null.String  `json:"remark"`
	RepairCost  null.Float64 `json:"repair_cost"`
	ResolvedBy  null.Uint64  `json:"resolved_by"`
	ResolvedAt  null.Time    `json:"resolved_at"`

	types.BaseEntity

	Equipment *Equipment `json:"equipment,omitempty" db:"-"`
}
