package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartup/onec-supply-sync/internal/application/auth"
	"github.com/smartup/onec-supply-sync/internal/application/dto"
	"github.com/smartup/onec-supply-sync/internal/domain"
)

// AuthHandler issues bearer tokens to the 1C integration user.
type AuthHandler struct {
	uc *auth.UseCase
}

// NewAuthHandler builds the handler.
func NewAuthHandler(uc *auth.UseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Token POST /api/auth/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in dto.TokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid JSON format"})
	}
	token, err := h.uc.IssueToken(in.Username, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username and password are required"})
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.TokenResponse{AccessToken: token})
}
