package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/service"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// parseTicketID validates the :id path parameter before it reaches SQL; the
// ticket columns are UUIDs and Postgres rejects malformed values with a cast
// error rather than a clean no-rows result.
func parseTicketID(value string) (string, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return "", apperrors.NewValidationError("invalid ticket id format", nil)
	}
	return parsed.String(), nil
}

func parsePageRequest(c *fiber.Ctx) domain.PageRequest {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "20"))
	return domain.PageRequest{Page: page, Size: size}.Normalize()
}

func pageMeta[T any](page domain.Page[T]) dto.PageMeta {
	return dto.PageMeta{
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

func accountResponse(account *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}

func ticketResponse(item *service.TicketWithComments) dto.TicketResponse {
	comments := make([]dto.CommentResponse, 0, len(item.Comments))
	for i := range item.Comments {
		comments = append(comments, commentResponse(&item.Comments[i]))
	}
	ticket := item.Ticket
	return dto.TicketResponse{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		Category:     ticket.Category,
		CreatedByID:  ticket.CreatedByID,
		AssignedToID: ticket.AssignedToID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		Comments:     comments,
	}
}

func bareTicketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return ticketResponse(&service.TicketWithComments{Ticket: *ticket, Comments: nil})
}

func auditLogResponse(entry *domain.AuditLogEntry) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:          entry.ID,
		TicketID:    entry.TicketID,
		ChangedByID: entry.ChangedByID,
		LogType:     entry.LogType,
		Description: entry.Description,
		Timestamp:   entry.Timestamp,
	}
}
