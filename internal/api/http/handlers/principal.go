package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wuyan/lifescope/internal/auth"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// currentUserID returns the caller's id. The policy gate guarantees a
// principal on protected routes; its absence here is still an Unauthorized.
func currentUserID(c *fiber.Ctx) (int64, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return 0, apperrors.NewUnauthorized()
	}
	return principal.UserID, nil
}
