package dto

import "time"

// CommentRequest payload.
type CommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents one comment in a ticket thread.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
