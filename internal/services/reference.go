package services

import (
	"context"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/repositories"
)

// ReferenceService serves the static lookup data behind the forms: labs,
// equipment types and the user directory.
type ReferenceService struct {
	labRepo  repositories.LabRepositoryInterface
	userRepo repositories.UserRepositoryInterface
}

func NewReferenceService(labRepo repositories.LabRepositoryInterface, userRepo repositories.UserRepositoryInterface) *ReferenceService {
	return &ReferenceService{labRepo: labRepo, userRepo: userRepo}
}

func (s *ReferenceService) GetLabs(ctx context.Context) ([]entities.Lab, error) {
	return s.labRepo.GetLabs(ctx)
}

func (s *ReferenceService) GetEquipmentTypes(ctx context.Context) ([]entities.EquipmentType, error) {
	return s.labRepo.GetEquipmentTypes(ctx)
}

func (s *ReferenceService) GetUsers(ctx context.Context) ([]entities.User, error) {
	return s.userRepo.GetUsers(ctx)
}
