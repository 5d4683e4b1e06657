package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/notify"
	"lab-inventory-system/internal/repositories"
)

// NotificationService is the read side of notifications: listing a
// recipient's rows, the cached unread counter and the read flags. Writing
// notifications is notify.Service's job.
type NotificationService struct {
	repo           repositories.NotificationRepositoryInterface
	cache          repositories.CacheRepositoryInterface
	unreadCacheTTL time.Duration
	logger         *zap.Logger
}

func NewNotificationService(
	repo repositories.NotificationRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	unreadCacheTTL time.Duration,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:           repo,
		cache:          cache,
		unreadCacheTTL: unreadCacheTTL,
		logger:         logger,
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID, limit, offset uint64) ([]entities.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit, offset)
}

// UnreadCount serves the badge counter. The cache is invalidated on every
// fan-out and read flip, so the TTL only bounds staleness after a miss of
// those invalidations.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint64) (uint64, error) {
	key := fmt.Sprintf(notify.CacheKeyUnread, recipientID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if count, err := strconv.ParseUint(cached, 10, 64); err == nil {
			return count, nil
		}
	}

	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, key, count, s.unreadCacheTTL); err != nil {
		s.logger.Warn("failed to cache unread counter",
			zap.Uint64("recipientID", recipientID), zap.Error(err))
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint64) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint64) error {
	if err := s.repo.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, recipientID uint64) {
	key := fmt.Sprintf(notify.CacheKeyUnread, recipientID)
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate unread counter cache",
			zap.Uint64("recipientID", recipientID), zap.Error(err))
	}
}
