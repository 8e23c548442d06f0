package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/service"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// TicketsHandler manages employee-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := ticketInputFromRequest(req.Title, req.Description, req.Priority, req.Category)
	if err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), input, principal.Account.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bareTicketResponse(ticket)})
}

// ListTickets GET /tickets — the caller's own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page, err := h.service.GetTicketsForEmployee(c.UserContext(), principal.Account.ID, parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}

// GetTicket GET /tickets/:id — creator-only view.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	item, err := h.service.GetTicketByIDForEmployee(c.UserContext(), ticketID, principal.Account.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(item)})
}

// UpdateTicket PUT /tickets/:id — creator edit while status is NEW.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := ticketInputFromRequest(req.Title, req.Description, req.Priority, req.Category)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}

	ticket, err := h.service.UpdateTicketByEmployee(c.UserContext(), ticketID, principal.Account.ID, service.TicketUpdateInput(input))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bareTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id — creators and IT support; the service
// decides per role.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), ticketID, principal.Account.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketInputFromRequest(title, description, priorityText, categoryText string) (service.TicketCreateInput, error) {
	priority, ok := domain.ParseTicketPriority(priorityText)
	if !ok {
		return service.TicketCreateInput{}, apperrors.NewValidationError("invalid priority value", nil)
	}
	category, ok := domain.ParseTicketCategory(categoryText)
	if !ok {
		return service.TicketCreateInput{}, apperrors.NewValidationError("invalid category value", nil)
	}
	return service.TicketCreateInput{
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    category,
	}, nil
}
