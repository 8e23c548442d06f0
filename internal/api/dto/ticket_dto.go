package dto

import (
	"time"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Priority and category arrive as enum names and
// are parsed at the boundary.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// UpdateTicketEmployeeRequest payload for creator edits of NEW tickets.
type UpdateTicketEmployeeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse provides full ticket info with the comment thread embedded.
type TicketResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	CreatedByID  string                `json:"created_by_id"`
	AssignedToID *string               `json:"assigned_to_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    *time.Time            `json:"updated_at"`
	Comments     []CommentResponse     `json:"comments"`
}

// PageMeta carries pagination info alongside any listing.
type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}
