package domain

import "time"

// AuditLogType captures what kind of event an audit entry records.
type AuditLogType string

const (
	AuditLogStatusChange AuditLogType = "STATUS_CHANGE"
	AuditLogCommentAdded AuditLogType = "COMMENT_ADDED"
)

// AuditLogEntry is an append-only record of a ticket event. Entries are never
// mutated; they are deleted only en masse when their ticket is deleted.
type AuditLogEntry struct {
	ID          string
	TicketID    string
	ChangedByID string
	LogType     AuditLogType
	Description string
	Timestamp   time.Time
}
