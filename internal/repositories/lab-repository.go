package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
)

type LabRepositoryInterface interface {
	GetLabs(ctx context.Context) ([]entities.Lab, error)
	FindLab(ctx context.Context, id uint64) (*entities.Lab, error)
	GetEquipmentTypes(ctx context.Context) ([]entities.EquipmentType, error)
}

type LabRepository struct {
	storage *pgxpool.Pool
}

func NewLabRepository(storage *pgxpool.Pool) LabRepositoryInterface {
	return &LabRepository{storage: storage}
}

func (r *LabRepository) GetLabs(ctx context.Context) ([]entities.Lab, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, name, location, created_at, updated_at FROM labs ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labs []entities.Lab
	for rows.Next() {
		var l entities.Lab
		if err := rows.Scan(&l.ID, &l.Name, &l.Location, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		labs = append(labs, l)
	}
	return labs, rows.Err()
}

func (r *LabRepository) FindLab(ctx context.Context, id uint64) (*entities.Lab, error) {
	var l entities.Lab
	err := r.storage.QueryRow(ctx,
		"SELECT id, name, location, created_at, updated_at FROM labs WHERE id = $1", id,
	).Scan(&l.ID, &l.Name, &l.Location, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LabRepository) GetEquipmentTypes(ctx context.Context) ([]entities.EquipmentType, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, name, created_at, updated_at FROM equipment_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.EquipmentType
	for rows.Next() {
		var t entities.EquipmentType
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
