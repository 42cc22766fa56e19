package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/session"
)

// CurrentUser reads the session cookie and returns the logged-in user, or
// nil when no valid session is present.
func CurrentUser(c *fiber.Ctx) *models.User {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil
	}

	if sessionData.User.ID == 0 {
		return nil
	}

	return &sessionData.User
}

// RequirePermissions creates Fiber middleware gating a route behind the
// given module actions. The institution context is taken from the
// ":institution_id" route parameter when present; routes whose institution
// is derived differently (e.g. from a request's stored institution) call
// Service.Authorize inside the handler instead.
func RequirePermissions(authService *Service, m Module, actions ...Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)

		institutionID, err := c.ParamsInt("institution_id", 0)
		if err != nil || institutionID < 0 {
			institutionID = 0
		}

		err = authService.Authorize(user, uint64(institutionID), Require(m, actions...))

		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
		case errors.Is(err, ErrAccountDisabled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_disabled"})
		case errors.Is(err, ErrForbidden):
			log.Warn().Uint64("user_id", user.ID).Int("institution_id", institutionID).
				Str("module", string(m)).Msg("user lacks required permissions")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		default:
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
	}
}

// RequireAuthenticated creates Fiber middleware that only requires a logged
// in, active account (the zero-permission gate).
func RequireAuthenticated(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authService.Authorize(CurrentUser(c), 0); err != nil {
			return Deny(c, err)
		}

		return c.Next()
	}
}

// Deny maps a guard error to the JSON response of a handler-level check.
// Handlers that derive the institution from the target entity call
// Service.Authorize themselves and hand the error here.
func Deny(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	case errors.Is(err, ErrAccountDisabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_disabled"})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	default:
		log.Error().Err(err).Msg("authorization check failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
