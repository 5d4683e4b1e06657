package dto

import "lab-inventory-system/pkg/types"

// ListResponse wraps a filtered listing with its pagination metadata.
type ListResponse struct {
	Items      interface{}      `json:"items"`
	Pagination types.Pagination `json:"pagination"`
}

// GuardRequestDTO asks whether a named guard would permit an action, so the
// presentation layer can decide which actions to offer at all.
type GuardRequestDTO struct {
	Name        string  `json:"name" validate:"required"`
	EquipmentID *uint64 `json:"equipment_id,omitempty"`
	TransferID  *uint64 `json:"transfer_id,omitempty"`
	IssueID     *uint64 `json:"issue_id,omitempty"`
	FromLabID   *uint64 `json:"from_lab_id,omitempty"`
}

// TransitionRequestDTO is the generic transition endpoint's body.
type TransitionRequestDTO struct {
	EntityKind     string   `json:"entity_kind" validate:"required,oneof=equipment transfer issue"`
	TransitionKind string   `json:"transition_kind" validate:"required"`
	EntityID       uint64   `json:"entity_id" validate:"required"`
	Remark         *string  `json:"remark,omitempty"`
	RepairCost     *float64 `json:"repair_cost,omitempty"`
}
