package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/service"
)

// AuditLogsHandler exposes the read-only audit trail.
type AuditLogsHandler struct {
	service *service.AuditLogService
}

// NewAuditLogsHandler constructs handler.
func NewAuditLogsHandler(auditService *service.AuditLogService) *AuditLogsHandler {
	return &AuditLogsHandler{service: auditService}
}

// ListForTicket GET /tickets/:id/audit-logs.
func (h *AuditLogsHandler) ListForTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	page, err := h.service.GetLogsForTicket(c.UserContext(), ticketID, parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, auditLogResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}

// ListAll GET /audit-logs.
func (h *AuditLogsHandler) ListAll(c *fiber.Ctx) error {
	page, err := h.service.GetAllLogs(c.UserContext(), parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, auditLogResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}
