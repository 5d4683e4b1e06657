package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lab-inventory-system/internal/entities"
	apperrors "lab-inventory-system/pkg/errors"
)

const notificationFields = `n.id, n.event_id, n.recipient_id, n.actor_id, n.action,
	n.entity_type, n.entity_id, n.entity_name, n.message, n.is_read, n.created_at`

type NotificationRepositoryInterface interface {
	Fanout(ctx context.Context, n *entities.Notification, targetID *uint64) (int, error)
	ListByEvent(ctx context.Context, eventID string) ([]entities.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint64, limit, offset uint64) ([]entities.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint64) (uint64, error)
	MarkRead(ctx context.Context, id, recipientID uint64) error
	MarkAllRead(ctx context.Context, recipientID uint64) error
}

type NotificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage}
}

// Fanout delegates the multi-recipient insert to the create_notification
// stored procedure so all rows of one logical event commit atomically. A
// loop of client-issued inserts could partially fail and leave recipients
// un-notified; the procedure is the only supported strategy.
func (r *NotificationRepository) Fanout(ctx context.Context, n *entities.Notification, targetID *uint64) (int, error) {
	var inserted int
	err := r.storage.QueryRow(ctx,
		`SELECT create_notification($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.EventID, n.Action, n.EntityType, n.EntityID, n.EntityName, n.Message, n.ActorID, targetID,
	).Scan(&inserted)
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *NotificationRepository) ListByEvent(ctx context.Context, eventID string) ([]entities.Notification, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+notificationFields+` FROM notifications n WHERE n.event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uint64, limit, offset uint64) ([]entities.Notification, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.storage.Query(ctx, `
		SELECT `+notificationFields+`, u.full_name AS actor_name
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3`,
		recipientID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.Notification
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(
			&n.ID, &n.EventID, &n.RecipientID, &n.ActorID, &n.Action,
			&n.EntityType, &n.EntityID, &n.EntityName, &n.Message, &n.IsRead, &n.CreatedAt,
			&n.ActorName,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID uint64) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID,
	).Scan(&count)
	return count, err
}

// MarkRead flips the read flag. Row-level scoping: a recipient can only
// mark their own rows.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uint64) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID,
	)
	return err
}

func scanNotifications(rows pgx.Rows) ([]entities.Notification, error) {
	var result []entities.Notification
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(
			&n.ID, &n.EventID, &n.RecipientID, &n.ActorID, &n.Action,
			&n.EntityType, &n.EntityID, &n.EntityName, &n.Message, &n.IsRead, &n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
