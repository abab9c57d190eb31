package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wuyan/lifescope/internal/api/dto"
	"github.com/wuyan/lifescope/internal/api/response"
	"github.com/wuyan/lifescope/internal/api/validation"
	"github.com/wuyan/lifescope/internal/service"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// AuthHandler exposes registration, login and the current-user endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return response.OKWithMessage(c, "registered", authResponse(result))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return response.OKWithMessage(c, "login successful", authResponse(result))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, dto.NewUserInfo(user))
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserInfo(result.User),
	}
}
