// Package user provides handlers for managing users (CRUD) in the admin
// area.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	usercontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/user"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/users"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, gated behind the user module; only site admins hold
// those permissions.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionIndex),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionCreate),
		s.Create,
	)
	app.Get(Path+"/:user_id",
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionShow),
		s.Show,
	)
	app.Put(Path+"/:user_id",
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionUpdate),
		s.Update,
	)
	app.Post(Path+"/:user_id/toggle-active",
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionUpdate),
		s.ToggleActive,
	)
	app.Delete(Path+"/:user_id",
		auth.RequirePermissions(authService, auth.ModuleUser, auth.ActionDestroy),
		s.Delete,
	)
}

type userInput struct {
	Username       string `json:"username"        validate:"required,min=3,max=100"`
	Email          string `json:"email"           validate:"required,email,max=255"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"      validate:"max=100"`
	LastName       string `json:"last_name"       validate:"max=100"`
	DocumentType   string `json:"document_type"   validate:"omitempty,oneof=dni lc le"`
	DocumentNumber string `json:"document_number" validate:"max=32"`
	Gender         string `json:"gender"          validate:"omitempty,oneof=male female other not_specified"`
	GenderOther    string `json:"gender_other"    validate:"max=100"`
	Address        string `json:"address"         validate:"max=255"`
	Phone          string `json:"phone"           validate:"max=32"`
}

func (in userInput) config() usercontroller.Config {
	return usercontroller.Config{
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DocumentType:   models.DocumentType(in.DocumentType),
		DocumentNumber: in.DocumentNumber,
		Gender:         models.Gender(in.Gender),
		GenderOther:    in.GenderOther,
		Address:        in.Address,
		Phone:          in.Phone,
	}
}

// List shows users with simple pagination and an optional email search plus
// an active filter.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("page_size", DefaultPageSize)
	if pageSize < 1 || pageSize > handler.MaxPageSize {
		pageSize = DefaultPageSize
	}

	var active *bool

	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid active filter"})
		}

		active = &parsed
	}

	users, total, err := usercontroller.List(s.db, c.Query("email"), active, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}

	return c.JSON(fiber.Map{
		"users":     out,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Create adds a new user account.
func (s *Service) Create(c *fiber.Ctx) error {
	var in userInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password is required"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	created, err := usercontroller.Create(s.db, in.config())
	if err != nil {
		if errors.Is(err, usercontroller.ErrEmailTaken) || errors.Is(err, usercontroller.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(userJSON(created))
}

// Show returns one user.
func (s *Service) Show(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	found, err := usercontroller.Get(s.db, uint64(userID))
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to load user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(found))
}

// Update applies profile changes to a user.
func (s *Service) Update(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var in userInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	updated, err := usercontroller.Update(s.db, uint64(userID), in.config())
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(updated))
}

// ToggleActive flips a user's active flag (the admin enable/disable switch).
func (s *Service) ToggleActive(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	updated, err := usercontroller.ToggleActive(s.db, uint64(userID))
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to toggle user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(updated))
}

// Delete removes a user. Site admins and the logged-in account itself are
// refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	// a user cannot delete their own account
	if sessionID := c.Cookies("session"); sessionID != "" {
		current := new(session.Data)
		if errSess := current.Read(sessionID); errSess == nil && current.User.ID == uint64(userID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot delete your own account"})
		}
	}

	err = usercontroller.Delete(s.db, uint64(userID))

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "deleted"})
	case errors.Is(err, usercontroller.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usercontroller.ErrUserIsSiteAdmin):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("failed to delete user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func userJSON(u *models.User) fiber.Map {
	return fiber.Map{
		"id":              u.ID,
		"active":          u.Active,
		"username":        u.Username,
		"email":           u.Email,
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"document_type":   u.DocumentType,
		"document_number": u.DocumentNumber,
		"gender":          u.Gender,
		"gender_other":    u.GenderOther,
		"address":         u.Address,
		"phone":           u.Phone,
	}
}
