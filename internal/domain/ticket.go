package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// OpenStatuses are the statuses counted toward an agent's workload.
// RESOLVED and CLOSED tickets no longer load the assignee.
var OpenStatuses = []TicketStatus{TicketStatusNew, TicketStatusInProgress}

// ParseTicketStatus resolves a status name case-insensitively.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	switch TicketStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case TicketStatusNew:
		return TicketStatusNew, true
	case TicketStatusInProgress:
		return TicketStatusInProgress, true
	case TicketStatusResolved:
		return TicketStatusResolved, true
	case TicketStatusClosed:
		return TicketStatusClosed, true
	}
	return "", false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ParseTicketPriority resolves a priority name case-insensitively.
func ParseTicketPriority(value string) (TicketPriority, bool) {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(value))) {
	case TicketPriorityLow:
		return TicketPriorityLow, true
	case TicketPriorityMedium:
		return TicketPriorityMedium, true
	case TicketPriorityHigh:
		return TicketPriorityHigh, true
	case TicketPriorityUrgent:
		return TicketPriorityUrgent, true
	}
	return "", false
}

// TicketCategory enumerates the kind of problem reported.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategoryAccess   TicketCategory = "ACCESS"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// ParseTicketCategory resolves a category name case-insensitively.
func ParseTicketCategory(value string) (TicketCategory, bool) {
	switch TicketCategory(strings.ToUpper(strings.TrimSpace(value))) {
	case TicketCategoryHardware:
		return TicketCategoryHardware, true
	case TicketCategorySoftware:
		return TicketCategorySoftware, true
	case TicketCategoryNetwork:
		return TicketCategoryNetwork, true
	case TicketCategoryAccess:
		return TicketCategoryAccess, true
	case TicketCategoryOther:
		return TicketCategoryOther, true
	}
	return "", false
}

// Ticket is the aggregate for support requests. CreatedByID is set once at
// creation; AssignedToID is nil only between construction and the assignment
// decision inside the creation transaction.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Category     TicketCategory
	CreatedByID  string
	AssignedToID *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// IsOpen reports whether the ticket still counts toward assignee workload.
func (t *Ticket) IsOpen() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusClosed
}
