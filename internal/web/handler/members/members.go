// Package members provides handlers for managing an institution's role
// assignments.
package members

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	usercontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/user"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for institution membership management.
	Path = handler.RootPath + "institutions/:institution_id/members"
)

// Service provides the membership handlers.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, gated behind the user_institution module. Besides
// site admins only the institution's owner holds these permissions.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermissions(authService, auth.ModuleUserInstitution, auth.ActionIndex),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermissions(authService, auth.ModuleUserInstitution, auth.ActionCreate),
		s.Assign,
	)
	app.Put(Path+"/:user_id",
		auth.RequirePermissions(authService, auth.ModuleUserInstitution, auth.ActionUpdate),
		s.Replace,
	)
	app.Delete(Path+"/:user_id",
		auth.RequirePermissions(authService, auth.ModuleUserInstitution, auth.ActionDestroy),
		s.Remove,
	)
}

// List returns the institution's members with their role names.
func (s *Service) List(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	members, err := usercontroller.ListByInstitution(s.db, uint64(institutionID))
	if err != nil {
		log.Error().Err(err).Msg("failed to list members")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"members": members})
}

// Assign gives a user a role within the institution. A user holds at most
// one role per institution; an existing assignment must be removed first.
func (s *Service) Assign(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	var in struct {
		UserID uint64 `json:"user_id" validate:"required"`
		Role   string `json:"role"    validate:"required"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	err = s.authService.AssignRole(in.UserID, uint64(institutionID), auth.RoleName(in.Role))

	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "assigned"})
	case errors.Is(err, auth.ErrRoleNotAssignable), errors.Is(err, auth.ErrRoleNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrUserIsSiteAdmin):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrAlreadyAssigned):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to assign role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// Replace swaps the role of an existing member.
func (s *Service) Replace(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var in struct {
		Role string `json:"role" validate:"required"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	err = s.authService.ReplaceRole(uint64(userID), uint64(institutionID), auth.RoleName(in.Role))

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "updated"})
	case errors.Is(err, auth.ErrRoleNotAssignable), errors.Is(err, auth.ErrRoleNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrAssignmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to update role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// Remove deletes a role assignment. The role name must match the stored
// assignment exactly.
func (s *Service) Remove(c *fiber.Ctx) error {
	institutionID, err := c.ParamsInt("institution_id")
	if err != nil || institutionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid institution id"})
	}

	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	role := c.Query("role")
	if role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role is required"})
	}

	err = s.authService.RemoveRole(uint64(userID), uint64(institutionID), auth.RoleName(role))

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "removed"})
	case errors.Is(err, auth.ErrRoleNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrAssignmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to remove role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
