// Package settings provides handlers for the site-wide settings row,
// including the maintenance switch.
package settings

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for site settings.
	Path = handler.RootPath + "admin/settings"
)

// Service provides the site settings handlers.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, gated behind the setting module.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermissions(authService, auth.ModuleSetting, auth.ActionShow),
		s.Show,
	)
	app.Put(Path,
		auth.RequirePermissions(authService, auth.ModuleSetting, auth.ActionUpdate),
		s.Update,
	)
}

// Show returns the site config row.
func (s *Service) Show(c *fiber.Ctx) error {
	cfg, err := siteconfig.Get(s.db)
	if err != nil {
		if errors.Is(err, siteconfig.ErrNotSeeded) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to load site config")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(cfg)
}

// Update applies the non-nil fields of the payload to the site config row.
func (s *Service) Update(c *fiber.Ctx) error {
	var in struct {
		PageSize           *int    `json:"page_size"           validate:"omitempty,min=1,max=100"`
		ContactInfo        *string `json:"contact_info"        validate:"omitempty,max=512"`
		MaintenanceActive  *bool   `json:"maintenance_active"`
		MaintenanceMessage *string `json:"maintenance_message" validate:"omitempty,max=512"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	updated, err := siteconfig.Apply(s.db, siteconfig.Update{
		PageSize:           in.PageSize,
		ContactInfo:        in.ContactInfo,
		MaintenanceActive:  in.MaintenanceActive,
		MaintenanceMessage: in.MaintenanceMessage,
	})
	if err != nil {
		if errors.Is(err, siteconfig.ErrNotSeeded) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to update site config")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(updated)
}
