package linux

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod      = notificationsName + ".Notify"

	appName       = "duskctl"
	notifyTimeout = int32(4000)
)

// NotifierService implements platform.NotifierService over the session bus.
type NotifierService struct {
	logger *log.Logger
	bus    func() (*dbus.Conn, error)
}

// NewNotifierService creates a notifier using the shared session bus.
func NewNotifierService(logger *log.Logger) *NotifierService {
	return &NotifierService{
		logger: logger,
		bus:    dbus.SessionBus,
	}
}

// Notify sends a freedesktop notification.
func (s *NotifierService) Notify(ctx context.Context, summary, body string) error {
	conn, err := s.bus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(notificationsName, notificationsPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName,
		uint32(0),
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		notifyTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	s.logger.Debug("notification sent", "summary", summary)
	return nil
}
