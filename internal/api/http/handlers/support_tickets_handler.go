package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/service"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// SupportTicketsHandler manages IT-support-facing ticket endpoints.
type SupportTicketsHandler struct {
	service *service.TicketService
}

// NewSupportTicketsHandler constructs handler.
func NewSupportTicketsHandler(ticketService *service.TicketService) *SupportTicketsHandler {
	return &SupportTicketsHandler{service: ticketService}
}

// ListAllTickets GET /support/tickets.
func (h *SupportTicketsHandler) ListAllTickets(c *fiber.Ctx) error {
	page, err := h.service.GetAllTickets(c.UserContext(), parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}

// SearchTickets GET /support/tickets/search?ticketId=&status=.
func (h *SupportTicketsHandler) SearchTickets(c *fiber.Ctx) error {
	page, err := h.service.SearchTickets(c.UserContext(), c.Query("ticketId"), c.Query("status"), parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, bareTicketResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}

// UpdateTicketStatus PUT /support/tickets/:id/status.
func (h *SupportTicketsHandler) UpdateTicketStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseTicketStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("invalid status value", nil)
	}
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}

	ticket, err := h.service.UpdateTicketStatus(c.UserContext(), ticketID, principal.Account.ID, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bareTicketResponse(ticket)})
}
