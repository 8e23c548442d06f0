package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/service"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// CommentsHandler manages the comment thread endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// AddComment POST /tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}

	comment, err := h.service.AddCommentToTicket(c.UserContext(), ticketID, req.Text, principal.Account.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	page, err := h.service.GetCommentsForTicket(c.UserContext(), ticketID, parsePageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, commentResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": items, "meta": pageMeta(page)})
}
