package repositories

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/types"
)

const transferFields = `t.id, t.equipment_id, t.from_lab_id, t.to_lab_id, t.initiated_by,
	t.status, t.received_by, t.received_at, t.created_at, t.updated_at`

type TransferRepositoryInterface interface {
	GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error)
	FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error)
	CreateWithLabMove(ctx context.Context, tr *entities.Transfer) (*entities.Transfer, *entities.Equipment, error)
	MarkReceived(ctx context.Context, id, receiverID uint64, receivedAt time.Time) (bool, error)
	DeletePending(ctx context.Context, id uint64) error
}

type TransferRepository struct {
	storage *pgxpool.Pool
}

func NewTransferRepository(storage *pgxpool.Pool) TransferRepositoryInterface {
	return &TransferRepository{storage: storage}
}

func (r *TransferRepository) GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error) {
	builder := sq.Select(transferFields + `, e.name AS equipment_name, fl.name AS from_lab, tl.name AS to_lab, COUNT(*) OVER() AS total`).
		From("transfers t").
		Join("equipments e ON e.id = t.equipment_id").
		Join("labs fl ON fl.id = t.from_lab_id").
		Join("labs tl ON tl.id = t.to_lab_id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"e.name": pattern},
			sq.ILike{"fl.name": pattern},
			sq.ILike{"tl.name": pattern},
		})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"t.status": filter.Status})
	}
	if filter.LabID != nil {
		// A lab sees transfers it sends or receives.
		builder = builder.Where(sq.Or{
			sq.Eq{"t.from_lab_id": *filter.LabID},
			sq.Eq{"t.to_lab_id": *filter.LabID},
		})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"t.created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"t.created_at": *filter.DateTo})
	}

	builder = builder.OrderBy("t.created_at DESC")
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

	var result []entities.Transfer
	var total uint64
	for rows.Next() {
		var tr entities.Transfer
		tr.Equipment = &entities.Equipment{}
		tr.FromLab = &entities.Lab{}
		tr.ToLab = &entities.Lab{}
		err := rows.Scan(
			&tr.ID, &tr.EquipmentID, &tr.FromLabID, &tr.ToLabID, &tr.InitiatedBy,
			&tr.Status, &tr.ReceivedBy, &tr.ReceivedAt, &tr.CreatedAt, &tr.UpdatedAt,
			&tr.Equipment.Name, &tr.FromLab.Name, &tr.ToLab.Name, &total,
		)
		if err != nil {
			return nil, 0, err
		}
		tr.Equipment.ID = tr.EquipmentID
		tr.FromLab.ID = tr.FromLabID
		tr.ToLab.ID = tr.ToLabID
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *TransferRepository) FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error) {
	var tr entities.Transfer
	err := r.storage.QueryRow(ctx, `SELECT `+transferFields+` FROM transfers t WHERE t.id = $1`, id).Scan(
		&tr.ID, &tr.EquipmentID, &tr.FromLabID, &tr.ToLabID, &tr.InitiatedBy,
		&tr.Status, &tr.ReceivedBy, &tr.ReceivedAt, &tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

// CreateWithLabMove inserts the transfer and reassigns the equipment to the
// destination lab in one transaction, returning the moved equipment row as
// read inside that transaction. The reassignment is optimistic: there is no
// rollback on an unreceived transfer, only a fresh reverse transfer. The
// WHERE clause re-checks the source lab so two concurrent transfers of the
// same record cannot both succeed.
func (r *TransferRepository) CreateWithLabMove(ctx context.Context, tr *entities.Transfer) (*entities.Transfer, *entities.Equipment, error) {
	var moved *entities.Equipment
	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE equipments SET lab_id = $2, updated_at = now()
			WHERE id = $1 AND lab_id = $3 AND fully_approved = TRUE AND pending_delete = FALSE`,
			tr.EquipmentID, tr.ToLabID, tr.FromLabID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
				"equipment is not transferable from this lab")
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO transfers (equipment_id, from_lab_id, to_lab_id, initiated_by)
			VALUES ($1, $2, $3, $4)
			RETURNING id, status, created_at, updated_at`,
			tr.EquipmentID, tr.FromLabID, tr.ToLabID, tr.InitiatedBy,
		).Scan(&tr.ID, &tr.Status, &tr.CreatedAt, &tr.UpdatedAt)
		if err != nil {
			return err
		}

		// Re-read in the same transaction so the feed publishes exactly
		// the equipment state that commits with the transfer.
		moved, err = findEquipment(ctx, tx, tr.EquipmentID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return tr, moved, nil
}

// MarkReceived stamps the receiver iff the transfer is still pending. A zero
// row count means it was already received; the caller rejects that as an
// invalid transition rather than ignoring it.
func (r *TransferRepository) MarkReceived(ctx context.Context, id, receiverID uint64, receivedAt time.Time) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE transfers
		SET status = $2, received_by = $3, received_at = $4, updated_at = now()
		WHERE id = $1 AND status = $5`,
		id, entities.TransferStatusReceived, receiverID, receivedAt, entities.TransferStatusPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransferRepository) DeletePending(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`DELETE FROM transfers WHERE id = $1 AND status = $2`, id, entities.TransferStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewRejection(apperrors.ErrInvalidStateTransition,
			"only a pending transfer can be deleted")
	}
	return nil
}
