package repositories

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/types"
)

const issueFields = `i.id, i.equipment_id, i.reported_by, i.description, i.status,
	i.remark, i.repair_cost, i.resolved_by, i.resolved_at, i.created_at, i.updated_at`

type IssueRepositoryInterface interface {
	GetIssues(ctx context.Context, filter types.Filter) ([]entities.Issue, uint64, error)
	FindIssue(ctx context.Context, id uint64) (*entities.Issue, error)
	CreateIssue(ctx context.Context, is *entities.Issue) (*entities.Issue, error)
	MarkResolved(ctx context.Context, id, resolverID uint64, remark null.String, cost null.Float64, resolvedAt time.Time) (bool, error)
}

type IssueRepository struct {
	storage *pgxpool.Pool
}

func NewIssueRepository(storage *pgxpool.Pool) IssueRepositoryInterface {
	return &IssueRepository{storage: storage}
}

func (r *IssueRepository) GetIssues(ctx context.Context, filter types.Filter) ([]entities.Issue, uint64, error) {
	builder := sq.Select(issueFields + `, e.name AS equipment_name, e.lab_id, COUNT(*) OVER() AS total`).
		From("issues i").
		Join("equipments e ON e.id = i.equipment_id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"i.description": pattern},
			sq.ILike{"e.name": pattern},
		})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"i.status": filter.Status})
	}
	if filter.LabID != nil {
		builder = builder.Where(sq.Eq{"e.lab_id": *filter.LabID})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"i.created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"i.created_at": *filter.DateTo})
	}

	builder = builder.OrderBy("i.created_at DESC")
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

	var result []entities.Issue
	var total uint64
	for rows.Next() {
		var is entities.Issue
		is.Equipment = &entities.Equipment{}
		err := rows.Scan(
			&is.ID, &is.EquipmentID, &is.ReportedBy, &is.Description, &is.Status,
			&is.Remark, &is.RepairCost, &is.ResolvedBy, &is.ResolvedAt, &is.CreatedAt, &is.UpdatedAt,
			&is.Equipment.Name, &is.Equipment.LabID, &total,
		)
		if err != nil {
			return nil, 0, err
		}
		is.Equipment.ID = is.EquipmentID
		result = append(result, is)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *IssueRepository) FindIssue(ctx context.Context, id uint64) (*entities.Issue, error) {
	var is entities.Issue
	err := r.storage.QueryRow(ctx, `SELECT `+issueFields+` FROM issues i WHERE i.id = $1`, id).Scan(
		&is.ID, &is.EquipmentID, &is.ReportedBy, &is.Description, &is.Status,
		&is.Remark, &is.RepairCost, &is.ResolvedBy, &is.ResolvedAt, &is.CreatedAt, &is.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &is, nil
}

func (r *IssueRepository) CreateIssue(ctx context.Context, is *entities.Issue) (*entities.Issue, error) {
	err := r.storage.QueryRow(ctx, `
		INSERT INTO issues (equipment_id, reported_by, description)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, updated_at`,
		is.EquipmentID, is.ReportedBy, is.Description,
	).Scan(&is.ID, &is.Status, &is.CreatedAt, &is.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return is, nil
}

// MarkResolved resolves the issue iff it is still open; remark and cost are
// written once and never touched again.
func (r *IssueRepository) MarkResolved(ctx context.Context, id, resolverID uint64, remark null.String, cost null.Float64, resolvedAt time.Time) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE issues
		SET status = $2, remark = $3, repair_cost = $4, resolved_by = $5, resolved_at = $6, updated_at = now()
		WHERE id = $1 AND status = $7`,
		id, entities.IssueStatusResolved, remark, cost, resolverID, resolvedAt, entities.IssueStatusOpen,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
