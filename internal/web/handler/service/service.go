// Package service provides handlers for the services an institution
// publishes.
package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	servicecontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/service"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for service management within an institution.
	Path = handler.RootPath + "institutions/:institution_id/services"
)

// Service provides CRUD operations for institution services.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, gated behind the services module of the target
// institution.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionIndex),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionCreate),
		s.Create,
	)
	app.Get(Path+"/:service_id",
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionShow),
		s.Show,
	)
	app.Put(Path+"/:service_id",
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionUpdate),
		s.Update,
	)
	app.Post(Path+"/:service_id/activate",
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionUpdate),
		s.Activate,
	)
	app.Post(Path+"/:service_id/deactivate",
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionUpdate),
		s.Deactivate,
	)
	app.Delete(Path+"/:service_id",
		auth.RequirePermissions(authService, auth.ModuleServices, auth.ActionDestroy),
		s.Delete,
	)
}

type serviceInput struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"max=512"`
	Keywords    string `json:"keywords"    validate:"max=255"`
	Kind        string `json:"kind"        validate:"required,oneof=analysis consultancy development"`
	Enabled     bool   `json:"enabled"`
}

func (in serviceInput) config() servicecontroller.Config {
	return servicecontroller.Config{
		Name:        in.Name,
		Description: in.Description,
		Keywords:    in.Keywords,
		Kind:        models.ServiceKind(in.Kind),
		Enabled:     in.Enabled,
	}
}

// List returns one page of the institution's services.
func (s *Service) List(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	page, pageSize := pagination(c, s.db)

	services, total, err := servicecontroller.ListByInstitution(s.db, uint64(institutionID), page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list services")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"services":  services,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Create publishes a new service under the institution.
func (s *Service) Create(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	var in serviceInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	created, err := servicecontroller.Create(s.db, uint64(institutionID), in.config())
	if err != nil {
		if errors.Is(err, servicecontroller.ErrInstitutionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create service")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Show returns one service of the institution.
func (s *Service) Show(c *fiber.Ctx) error {
	found, err := s.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	return c.JSON(found)
}

// Update applies changes to a service.
func (s *Service) Update(c *fiber.Ctx) error {
	found, err := s.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	var in serviceInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	updated, err := servicecontroller.Update(s.db, found.ID, in.config())
	if err != nil {
		log.Error().Err(err).Msg("failed to update service")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(updated)
}

// Activate opens the service for new requests.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setEnabled(c, true)
}

// Deactivate closes the service for new requests.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setEnabled(c, false)
}

func (s *Service) setEnabled(c *fiber.Ctx, enabled bool) error {
	found, err := s.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	updated, err := servicecontroller.SetEnabled(s.db, found.ID, enabled)
	if err != nil {
		log.Error().Err(err).Msg("failed to toggle service")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(updated)
}

// Delete removes a service.
func (s *Service) Delete(c *fiber.Ctx) error {
	found, err := s.load(c)
	if err != nil {
		return respondLoadError(c, err)
	}

	if err := servicecontroller.Delete(s.db, found.ID); err != nil {
		log.Error().Err(err).Msg("failed to delete service")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

var errBadParams = errors.New("invalid parameters")

// load resolves the target service and verifies it belongs to the
// institution of the route; the route guard authorized that institution.
func (s *Service) load(c *fiber.Ctx) (*models.Service, error) {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return nil, errBadParams
	}

	serviceID, err := c.ParamsInt("service_id")
	if err != nil || serviceID <= 0 {
		return nil, errBadParams
	}

	found, err := servicecontroller.Get(s.db, uint64(serviceID))
	if err != nil {
		return nil, err
	}

	if found.InstitutionID != uint64(institutionID) {
		return nil, servicecontroller.ErrServiceNotFound
	}

	return found, nil
}

func respondLoadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errBadParams):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, servicecontroller.ErrServiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to load service")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// pagination reads page and page_size from the query, the default page size
// coming from the site config.
func pagination(c *fiber.Ctx, db *gorm.DB) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	defaultSize := handler.DefaultPageSize
	if cfg, err := siteconfig.Get(db); err == nil {
		defaultSize = cfg.PageSize
	}

	pageSize := c.QueryInt("page_size", defaultSize)
	if pageSize < 1 || pageSize > handler.MaxPageSize {
		pageSize = defaultSize
	}

	return page, pageSize
}
