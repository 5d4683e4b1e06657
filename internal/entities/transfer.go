package entities

import (
	"github.com/aarondl/null/v8"

	"lab-inventory-system/pkg/types"
)

const (
	TransferStatusPending  = "pending"
	TransferStatusReceived = "received"
)

// Transfer moves a fully approved equipment record between labs. The
// equipment's lab assignment is updated optimistically at creation time;
// undoing a transfer takes a fresh reverse transfer, never a rollback.
type Transfer struct {
	ID          uint64      `json:"id"`
	EquipmentID uint64      `json:"equipment_id"`
	FromLabID   uint64      `json:"from_lab_id"`
	ToLabID     uint64      `json:"to_lab_id"`
	InitiatedBy uint64      `json:"initiated_by"`
	Status      string      `json:"status"`
	ReceivedBy  null.Uint64 `json:"received_by"`
	ReceivedAt  null.Time   `json:"received_at"`

	types.BaseEntity

	Equipment *Equipment `json:"equipment,omitempty" db:"-"`
	FromLab   *Lab       `json:"from_lab,omitempty" db:"-"`
	ToLab     *Lab       `json:"to_lab,omitempty" db:"-"`
}
