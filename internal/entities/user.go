package entities

import (
	"github.com/aarondl/null/v8"

	"lab-inventory-system/pkg/types"
)

type User struct {
	ID           uint64      `json:"id"`
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         string      `json:"role"`
	LabID        null.Uint64 `json:"lab_id"`

	types.BaseEntity

	Lab *Lab `json:"lab,omitempty" db:"-"`
}
