// Package institution provides handlers for managing institutions.
package institution

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	institutioncontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/institution"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for institution management.
	Path = handler.RootPath + "institutions"
)

// Service provides CRUD operations for institutions.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Every route is gated behind the institution module;
// only site admins hold those permissions.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionIndex),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionCreate),
		s.Create,
	)
	app.Get(Path+"/:institution_id",
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionShow),
		s.Show,
	)
	app.Put(Path+"/:institution_id",
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionUpdate),
		s.Update,
	)
	app.Post(Path+"/:institution_id/activate",
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionActivate),
		s.Activate,
	)
	app.Post(Path+"/:institution_id/deactivate",
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionDeactivate),
		s.Deactivate,
	)
	app.Delete(Path+"/:institution_id",
		auth.RequirePermissions(authService, auth.ModuleInstitution, auth.ActionDestroy),
		s.Delete,
	)
}

type institutionInput struct {
	Name                string `json:"name"                   validate:"required,max=255"`
	Information         string `json:"information"            validate:"max=512"`
	Address             string `json:"address"                validate:"max=255"`
	Location            string `json:"location"               validate:"max=255"`
	Web                 string `json:"web"                    validate:"max=255"`
	Keywords            string `json:"keywords"               validate:"max=255"`
	Email               string `json:"email"                  validate:"omitempty,email,max=255"`
	DaysAndOpeningHours string `json:"days_and_opening_hours" validate:"max=255"`
}

func (in institutionInput) config() institutioncontroller.Config {
	return institutioncontroller.Config{
		Name:                in.Name,
		Information:         in.Information,
		Address:             in.Address,
		Location:            in.Location,
		Web:                 in.Web,
		Keywords:            in.Keywords,
		Email:               in.Email,
		DaysAndOpeningHours: in.DaysAndOpeningHours,
	}
}

// List returns all institutions.
func (s *Service) List(c *fiber.Ctx) error {
	institutions, err := institutioncontroller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list institutions")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"institutions": institutions})
}

// Create adds a new institution, initially disabled.
func (s *Service) Create(c *fiber.Ctx) error {
	var in institutionInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	created, err := institutioncontroller.Create(s.db, in.config())
	if err != nil {
		if errors.Is(err, institutioncontroller.ErrNameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create institution")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Show returns one institution.
func (s *Service) Show(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	found, err := institutioncontroller.Get(s.db, uint64(institutionID))
	if err != nil {
		if errors.Is(err, institutioncontroller.ErrInstitutionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to load institution")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(found)
}

// Update applies changes to an institution.
func (s *Service) Update(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	var in institutionInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	updated, err := institutioncontroller.Update(s.db, uint64(institutionID), in.config())
	if err != nil {
		if errors.Is(err, institutioncontroller.ErrInstitutionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to update institution")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(updated)
}

// Activate enables an institution.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setEnabled(c, true)
}

// Deactivate disables an institution.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setEnabled(c, false)
}

func (s *Service) setEnabled(c *fiber.Ctx, enabled bool) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	updated, err := institutioncontroller.SetEnabled(s.db, uint64(institutionID), enabled)
	if err != nil {
		if errors.Is(err, institutioncontroller.ErrInstitutionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to toggle institution")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(updated)
}

// Delete removes an institution and everything scoped to it.
func (s *Service) Delete(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	if err := institutioncontroller.Delete(s.db, uint64(institutionID)); err != nil {
		if errors.Is(err, institutioncontroller.ErrInstitutionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to delete institution")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
