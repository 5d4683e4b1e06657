package dto

type CreateTransferDTO struct {
	EquipmentID uint64 `json:"equipment_id" validate:"required"`
	ToLabID     uint64 `json:"to_lab_id" validate:"required"`
}
