package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/dto"
	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/service"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return apperrors.NewValidationError("invalid role value", nil)
	}

	account, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(account)})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	account, token, expiresAt, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Account:   accountResponse(account),
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}
