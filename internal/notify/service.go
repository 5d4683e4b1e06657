// Package notify implements the fan-out side of notifications: one row per
// recipient per logical event, created atomically at the store boundary.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/repositories"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/eventbus"
)

// Action verbs carried by notifications.
const (
	ActionCreated         = "created"
	ActionApproved        = "approved"
	ActionEdited          = "edited"
	ActionDeleteRequested = "delete_requested"
	ActionRestored        = "restored"
	ActionPurged          = "purged"
	ActionReceived        = "received"
	ActionReported        = "reported"
	ActionResolved        = "resolved"
)

// Subject entity types.
const (
	EntityEquipment = "equipment"
	EntityTransfer  = "transfer"
	EntityIssue     = "issue"
)

const TableNotifications = "notifications"

// CacheKeyUnread is the redis key of a recipient's unread counter.
const CacheKeyUnread = "notifications:unread:%d"

type Service struct {
	repo   repositories.NotificationRepositoryInterface
	cache  repositories.CacheRepositoryInterface
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewService(
	repo repositories.NotificationRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *Service {
	return &Service{repo: repo, cache: cache, bus: bus, logger: logger}
}

// NotifyAll fans one logical event out to its recipient set (every
// registered user except the actor, or only targetID when set). The
// multi-row insert is one stored-procedure call, so it either reaches every
// recipient or none: there is no partially notified state to clean up.
//
// Delivery is best-effort relative to the triggering transition — the
// transition has already committed and is authoritative, so a fan-out
// failure is logged and reported, never used to roll anything back.
func (s *Service) NotifyAll(ctx context.Context, actorID uint64, action, entityType string, entityID uint64, entityName, message string, targetID *uint64) error {
	eventID := uuid.NewString()

	notification := &entities.Notification{
		EventID:    eventID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Message:    message,
	}

	inserted, err := s.repo.Fanout(ctx, notification, targetID)
	if err != nil {
		s.logger.Error("notification fan-out failed",
			zap.String("eventID", eventID),
			zap.String("action", action),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", apperrors.ErrPartialFanout, err)
	}

	rows, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("failed to read back fanned-out notifications",
			zap.String("eventID", eventID), zap.Error(err))
		return nil
	}

	for i := range rows {
		row := rows[i]
		if err := s.cache.Del(ctx, fmt.Sprintf(CacheKeyUnread, row.RecipientID)); err != nil {
			s.logger.Warn("failed to invalidate unread counter cache",
				zap.Uint64("recipientID", row.RecipientID), zap.Error(err))
		}
		s.bus.Publish(ctx, eventbus.Mutation{
			Type:  eventbus.EventInsert,
			Table: TableNotifications,
			Row:   &row,
		})
	}

	s.logger.Info("notification fanned out",
		zap.String("eventID", eventID),
		zap.String("action", action),
		zap.String("entityType", entityType),
		zap.Uint64("entityID", entityID),
		zap.Int("recipients", inserted),
	)
	return nil
}
