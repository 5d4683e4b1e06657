package dto

type CreateEquipmentDTO struct {
	Name            string  `json:"name" validate:"required"`
	EquipmentTypeID uint64  `json:"equipment_type_id" validate:"required"`
	Rate            float64 `json:"rate" validate:"gte=0"`
	Quantity        uint64  `json:"quantity" validate:"required,gte=1"`
}

type UpdateEquipmentDTO struct {
	Name            string  `json:"name" validate:"required"`
	EquipmentTypeID uint64  `json:"equipment_type_id" validate:"required"`
	Rate            float64 `json:"rate" validate:"gte=0"`
	Quantity        uint64  `json:"quantity" validate:"required,gte=1"`
}
