package dto

type CreateIssueDTO struct {
	EquipmentID uint64 `json:"equipment_id" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type ResolveIssueDTO struct {
	Remark     *string  `json:"remark,omitempty"`
	RepairCost *float64 `json:"repair_cost,omitempty" validate:"omitempty,gte=0"`
}
