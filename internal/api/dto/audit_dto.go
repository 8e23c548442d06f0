package dto

import (
	"time"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// AuditLogResponse represents one audit trail entry.
type AuditLogResponse struct {
	ID          string              `json:"id"`
	TicketID    string              `json:"ticket_id"`
	ChangedByID string              `json:"changed_by_id"`
	LogType     domain.AuditLogType `json:"log_type"`
	Description string              `json:"description"`
	Timestamp   time.Time           `json:"timestamp"`
}
