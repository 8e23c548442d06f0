package worker

import (
	"github.com/techdesk/helpdesk-service/internal/events"
	"github.com/techdesk/helpdesk-service/internal/service"
)

// StartNotificationWorker registers the notification subscriber and the Redis
// event mirror on the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, publisher *events.RedisPublisher, dispatcher events.Dispatcher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil {
		publisher.RegisterHandlers(dispatcher)
	}
}
