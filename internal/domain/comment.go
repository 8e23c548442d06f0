package domain

import "time"

// Comment is a note on a ticket authored by an IT support agent. Comments are
// owned by their ticket and removed first during cascade deletion.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
