package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/types"
)

const equipmentFields = `e.id, e.name, e.equipment_type_id, e.lab_id, e.rate, e.quantity, e.created_by,
	e.approved_by_incharge, e.approved_by_hod, e.fully_approved, e.pending_delete, e.created_at, e.updated_at`

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, eq *entities.Equipment) (*entities.Equipment, error)
	UpdateDetails(ctx context.Context, eq *entities.Equipment) error
	SetInchargeApproval(ctx context.Context, id, approverID uint64) (bool, error)
	SetHODApproval(ctx context.Context, id, approverID uint64) (bool, error)
	MarkPendingDelete(ctx context.Context, id uint64) error
	RestoreEquipment(ctx context.Context, id uint64) error
	PurgeEquipment(ctx context.Context, id uint64) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func scanEquipment(row pgx.Row, withJoins bool) (*entities.Equipment, error) {
	var eq entities.Equipment
	dest := []interface{}{
		&eq.ID, &eq.Name, &eq.EquipmentTypeID, &eq.LabID, &eq.Rate, &eq.Quantity, &eq.CreatedBy,
		&eq.ApprovedByIncharge, &eq.ApprovedByHOD, &eq.FullyApproved, &eq.PendingDelete,
		&eq.CreatedAt, &eq.UpdatedAt,
	}
	if withJoins {
		eq.Lab = &entities.Lab{}
		eq.EquipmentType = &entities.EquipmentType{}
		dest = append(dest, &eq.Lab.Name, &eq.EquipmentType.Name)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if withJoins {
		eq.Lab.ID = eq.LabID
		eq.EquipmentType.ID = eq.EquipmentTypeID
	}
	return &eq, nil
}

// GetEquipments lists equipment under the active filter. The same predicate
// semantics drive the reconciliation engine's match against pushed rows.
func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	builder := sq.Select(equipmentFields+", l.name AS lab_name, t.name AS type_name").
		From("equipments e").
		Join("labs l ON l.id = e.lab_id").
		Join("equipment_types t ON t.id = e.equipment_type_id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"e.name": pattern},
			sq.ILike{"l.name": pattern},
			sq.ILike{"t.name": pattern},
		})
	}
	switch filter.Status {
	case "approved":
		builder = builder.Where(sq.Eq{"e.fully_approved": true})
	case "pending":
		builder = builder.Where(sq.Eq{"e.fully_approved": false})
	}
	if filter.LabID != nil {
		builder = builder.Where(sq.Eq{"e.lab_id": *filter.LabID})
	}
	if filter.TypeID != nil {
		builder = builder.Where(sq.Eq{"e.equipment_type_id": *filter.TypeID})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"e.created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"e.created_at": *filter.DateTo})
	}

	builder = builder.Column("COUNT(*) OVER() AS total").OrderBy("e.created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit).Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []entities.Equipment
	var total uint64
	for rows.Next() {
		var eq entities.Equipment
		eq.Lab = &entities.Lab{}
		eq.EquipmentType = &entities.EquipmentType{}
		err := rows.Scan(
			&eq.ID, &eq.Name, &eq.EquipmentTypeID, &eq.LabID, &eq.Rate, &eq.Quantity, &eq.CreatedBy,
			&eq.ApprovedByIncharge, &eq.ApprovedByHOD, &eq.FullyApproved, &eq.PendingDelete,
			&eq.CreatedAt, &eq.UpdatedAt,
			&eq.Lab.Name, &eq.EquipmentType.Name, &total,
		)
		if err != nil {
			return nil, 0, err
		}
		eq.Lab.ID = eq.LabID
		eq.EquipmentType.ID = eq.EquipmentTypeID
		result = append(result, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return findEquipment(ctx, r.storage, id)
}

// findEquipment takes a querier so the same lookup works on the pool and
// inside an open transaction.
func findEquipment(ctx context.Context, q querier, id uint64) (*entities.Equipment, error) {
	query := `SELECT ` + equipmentFields + `, l.name, t.name
		FROM equipments e
		JOIN labs l ON l.id = e.lab_id
		JOIN equipment_types t ON t.id = e.equipment_type_id
		WHERE e.id = $1`
	return scanEquipment(q.QueryRow(ctx, query, id), true)
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, eq *entities.Equipment) (*entities.Equipment, error) {
	err := r.storage.QueryRow(ctx, `
		INSERT INTO equipments (name, equipment_type_id, lab_id, rate, quantity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		eq.Name, eq.EquipmentTypeID, eq.LabID, eq.Rate, eq.Quantity, eq.CreatedBy,
	).Scan(&eq.ID, &eq.CreatedAt, &eq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return eq, nil
}

// UpdateDetails applies a creator edit. The store re-checks that the record
// is still unapproved so a racing approval cannot be overwritten.
func (r *EquipmentRepository) UpdateDetails(ctx context.Context, eq *entities.Equipment) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE equipments
		SET name = $2, equipment_type_id = $3, rate = $4, quantity = $5, updated_at = now()
		WHERE id = $1 AND fully_approved = FALSE AND pending_delete = FALSE`,
		eq.ID, eq.Name, eq.EquipmentTypeID, eq.Rate, eq.Quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"equipment can no longer be edited")
	}
	return nil
}

// SetInchargeApproval fills the incharge slot iff it is still unset and
// recomputes the derived flag in the same statement. A zero row count means
// the slot was already set: reported as unchanged, not as an error.
func (r *EquipmentRepository) SetInchargeApproval(ctx context.Context, id, approverID uint64) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE equipments
		SET approved_by_incharge = $2,
		    fully_approved = (approved_by_hod IS NOT NULL),
		    updated_at = now()
		WHERE id = $1 AND approved_by_incharge IS NULL`,
		id, approverID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EquipmentRepository) SetHODApproval(ctx context.Context, id, approverID uint64) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE equipments
		SET approved_by_hod = $2,
		    fully_approved = (approved_by_incharge IS NOT NULL),
		    updated_at = now()
		WHERE id = $1 AND approved_by_hod IS NULL`,
		id, approverID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EquipmentRepository) MarkPendingDelete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE equipments SET pending_delete = TRUE, updated_at = now() WHERE id = $1 AND pending_delete = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"equipment is already awaiting delete ratification")
	}
	return nil
}

func (r *EquipmentRepository) RestoreEquipment(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE equipments SET pending_delete = FALSE, updated_at = now() WHERE id = $1 AND pending_delete = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"equipment is not awaiting delete ratification")
	}
	return nil
}

func (r *EquipmentRepository) PurgeEquipment(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`DELETE FROM equipments WHERE id = $1 AND pending_delete = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
