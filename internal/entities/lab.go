package entities

import "lab-inventory-system/pkg/types"

type Lab struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`

	types.BaseEntity
}

type EquipmentType struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`

	types.BaseEntity
}
