// Package request provides handlers for the service-request lifecycle.
package request

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	requestcontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/request"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/siteconfig"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for service requests.
	Path = handler.RootPath + "requests"

	// InstitutionPath lists an institution's requests for its staff.
	InstitutionPath = handler.RootPath + "institutions/:institution_id/requests"
)

// Service provides the service-request handlers.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Creation and the "my requests" listing only need an
// authenticated account; everything acting on a stored request derives the
// institution from that request and guards inside the handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Post(Path,
		auth.RequireAuthenticated(authService),
		s.Create,
	)
	app.Get(Path+"/mine",
		auth.RequireAuthenticated(authService),
		s.ListMine,
	)
	app.Get(Path+"/:request_id", s.Show)
	app.Get(Path+"/:request_id/history", s.History)
	app.Put(Path+"/:request_id/status", s.Transition)
	app.Get(Path+"/:request_id/notes", s.ListNotes)
	app.Post(Path+"/:request_id/notes", s.AddNote)

	app.Get(InstitutionPath,
		auth.RequirePermissions(authService, auth.ModuleServiceRequest, auth.ActionIndex),
		s.ListByInstitution,
	)
}

// Create opens a new request against a service. The owning institution comes
// from the service, never from the caller.
func (s *Service) Create(c *fiber.Ctx) error {
	current := auth.CurrentUser(c)

	var in struct {
		ServiceID   uint64 `json:"service_id"  validate:"required"`
		Title       string `json:"title"       validate:"required,max=32"`
		Description string `json:"description" validate:"required,max=512"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	created, err := requestcontroller.Create(s.db, current.ID, in.ServiceID, in.Title, in.Description)

	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(created)
	case errors.Is(err, requestcontroller.ErrServiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, requestcontroller.ErrServiceDisabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to create request")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// ListMine returns one page of the logged-in user's own requests.
func (s *Service) ListMine(c *fiber.Ctx) error {
	current := auth.CurrentUser(c)
	page, pageSize := s.pagination(c)

	requests, total, err := requestcontroller.ListByUser(s.db, current.ID, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list requests")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"requests":  requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Show returns one request. The requester sees their own requests; staff
// need service_request_show within the request's institution.
func (s *Service) Show(c *fiber.Ctx) error {
	found, ok := s.loadGuarded(c, auth.ActionShow)
	if !ok {
		return nil
	}

	return c.JSON(found)
}

// History returns the request's status trajectory, oldest first.
func (s *Service) History(c *fiber.Ctx) error {
	found, ok := s.loadGuarded(c, auth.ActionShow)
	if !ok {
		return nil
	}

	entries, err := requestcontroller.History(s.db, found.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load request history")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"history": entries})
}

// Transition moves a request to a new status. Staff only; a transition to
// the current status changes nothing.
func (s *Service) Transition(c *fiber.Ctx) error {
	found, ok := s.loadStaffGuarded(c, auth.ActionUpdate)
	if !ok {
		return nil
	}

	var in struct {
		Status      string `json:"status"      validate:"required"`
		Observation string `json:"observation" validate:"max=512"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	changed, err := requestcontroller.Transition(s.db, found.ID, models.RequestStatus(in.Status), in.Observation)

	switch {
	case err == nil:
		updated, err := requestcontroller.Get(s.db, found.ID)
		if err != nil {
			log.Error().Err(err).Msg("failed to reload request")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}

		return c.JSON(fiber.Map{"request": updated, "changed": changed})
	case errors.Is(err, requestcontroller.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to transition request")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// ListNotes returns the request's notes, oldest first. Staff only; notes are
// internal to the institution.
func (s *Service) ListNotes(c *fiber.Ctx) error {
	found, ok := s.loadStaffGuarded(c, auth.ActionUpdate)
	if !ok {
		return nil
	}

	notes, err := requestcontroller.Notes(s.db, found.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load request notes")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"notes": notes})
}

// AddNote attaches a note to the request without touching its status.
func (s *Service) AddNote(c *fiber.Ctx) error {
	found, ok := s.loadStaffGuarded(c, auth.ActionUpdate)
	if !ok {
		return nil
	}

	var in struct {
		Note string `json:"note" validate:"required,max=512"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	note, err := requestcontroller.AddNote(s.db, found.ID, auth.CurrentUser(c).ID, in.Note)
	if err != nil {
		log.Error().Err(err).Msg("failed to add request note")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// ListByInstitution returns one page of an institution's requests.
func (s *Service) ListByInstitution(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	page, pageSize := s.pagination(c)

	requests, total, err := requestcontroller.ListByInstitution(s.db, uint64(institutionID), page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list requests")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"requests":  requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// loadGuarded resolves the target request and authorizes read access: the
// requester themselves, or staff holding the action within the request's
// institution. When it returns ok=false the response has been written.
func (s *Service) loadGuarded(c *fiber.Ctx, action auth.Action) (*models.ServiceRequest, bool) {
	current := auth.CurrentUser(c)

	found, ok := s.load(c, current)
	if !ok {
		return nil, false
	}

	if current.ID == found.UserID {
		if err := s.authService.Authorize(current, 0); err != nil {
			_ = auth.Deny(c, err) //nolint:errcheck // response written
			return nil, false
		}

		return found, true
	}

	err := s.authService.Authorize(current, found.InstitutionID,
		auth.Require(auth.ModuleServiceRequest, action))
	if err != nil {
		_ = auth.Deny(c, err) //nolint:errcheck // response written
		return nil, false
	}

	return found, true
}

// loadStaffGuarded is loadGuarded without the owner shortcut: only staff of
// the request's institution pass.
func (s *Service) loadStaffGuarded(c *fiber.Ctx, action auth.Action) (*models.ServiceRequest, bool) {
	current := auth.CurrentUser(c)

	found, ok := s.load(c, current)
	if !ok {
		return nil, false
	}

	err := s.authService.Authorize(current, found.InstitutionID,
		auth.Require(auth.ModuleServiceRequest, action))
	if err != nil {
		_ = auth.Deny(c, err) //nolint:errcheck // response written
		return nil, false
	}

	return found, true
}

func (s *Service) load(c *fiber.Ctx, current *models.User) (*models.ServiceRequest, bool) {
	if current == nil {
		_ = auth.Deny(c, auth.ErrUnauthenticated) //nolint:errcheck // response written
		return nil, false
	}

	requestID, err := c.ParamsInt("request_id")
	if err != nil || requestID <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"}) //nolint:errcheck
		return nil, false
	}

	found, err := requestcontroller.Get(s.db, uint64(requestID))
	if err != nil {
		if errors.Is(err, requestcontroller.ErrRequestNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()}) //nolint:errcheck
			return nil, false
		}

		log.Error().Err(err).Msg("failed to load request")

		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"}) //nolint:errcheck

		return nil, false
	}

	return found, true
}

func (s *Service) pagination(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	defaultSize := handler.DefaultPageSize
	if cfg, err := siteconfig.Get(s.db); err == nil {
		defaultSize = cfg.PageSize
	}

	pageSize := c.QueryInt("page_size", defaultSize)
	if pageSize < 1 || pageSize > handler.MaxPageSize {
		pageSize = defaultSize
	}

	return page, pageSize
}
