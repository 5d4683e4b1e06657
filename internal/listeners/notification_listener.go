package listeners

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/notify"
	"lab-inventory-system/pkg/config"
	"lab-inventory-system/pkg/eventbus"
	ws "lab-inventory-system/pkg/websocket"
)

// NotificationListener is the receiving side of the fan-out: it watches the
// notifications feed and pushes each row to the recipient's open sessions.
// Per recipient it keeps a short-lived dedup window, so a row replayed by
// the at-least-once feed is delivered — and counted — only once.
type NotificationListener struct {
	hub    *ws.Hub
	cfg    config.NotificationsConfig
	logger *zap.Logger

	mu      sync.Mutex
	windows map[uint64]*notify.DedupWindow
}

func NewNotificationListener(hub *ws.Hub, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{
		hub:     hub,
		cfg:     cfg,
		logger:  logger,
		windows: make(map[uint64]*notify.DedupWindow),
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(notify.TableNotifications, l.handleNotification)
}

func (l *NotificationListener) windowFor(recipientID uint64) *notify.DedupWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	window, ok := l.windows[recipientID]
	if !ok {
		window = notify.NewDedupWindow(l.cfg.DedupCapacity, l.cfg.DedupWindow)
		l.windows[recipientID] = window
	}
	return window
}

func (l *NotificationListener) handleNotification(ctx context.Context, m eventbus.Mutation) error {
	if m.Type != eventbus.EventInsert {
		return nil
	}
	row, ok := m.Row.(*entities.Notification)
	if !ok {
		return nil
	}

	if l.windowFor(row.RecipientID).Seen(row.EventID, time.Now()) {
		l.logger.Debug("duplicate notification delivery suppressed",
			zap.String("eventID", row.EventID),
			zap.Uint64("recipientID", row.RecipientID),
		)
		return nil
	}

	return l.hub.SendToUser(row.RecipientID, row, ws.TypeNotification)
}
