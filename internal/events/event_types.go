package events

import (
	"time"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// AllEventTypes lists every event the service emits, in declaration order.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketAssigned,
	EventTicketStatusChanged,
	EventTicketUpdated,
	EventTicketDeleted,
	EventTicketCommentAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	AssignedToID *string               `json:"assigned_to_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedToID string `json:"assigned_to_id"`
	OpenTickets  int    `json:"open_tickets"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.TicketCategory `json:"category"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	DeletedComments int `json:"deleted_comments"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}
