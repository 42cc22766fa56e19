package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/session"
)

// maintenanceExempt lists the path prefixes that stay reachable during
// maintenance so admins can still log in and switch it off.
var maintenanceExempt = []string{ //nolint:gochecknoglobals
	"/login",
	"/logout",
	CheckAlivePath,
}

// MaintenanceMiddleware returns 503 with the configured message while the
// portal is in maintenance mode. Site admins pass through.
func (s *Service) MaintenanceMiddleware(c *fiber.Ctx) error {
	path := strings.ToLower(c.Path())

	for _, prefix := range maintenanceExempt {
		if strings.HasPrefix(path, prefix) {
			return c.Next()
		}
	}

	active, err := siteconfig.MaintenanceActive(s.db)
	if err != nil || !active {
		// an unseeded config never blocks traffic
		return c.Next()
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err == nil && sessionData.IsAdmin {
			return c.Next()
		}
	}

	message := "the portal is under maintenance"
	if cfg, err := siteconfig.Get(s.db); err == nil && cfg.MaintenanceMessage != "" {
		message = cfg.MaintenanceMessage
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   "maintenance",
		"message": message,
	})
}
