// Package account provides the self-service endpoints of the logged-in user:
// registration, profile management and reactivation of a disabled account.
package account

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/auth"
	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	usercontroller "github.com/GoServices-Admin/GoServices-Admin/internal/db/controller/user"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/handler"
)

const (
	// Path is the base path for account self-service.
	Path = handler.RootPath + "account"

	// RegisterPath is the public registration endpoint.
	RegisterPath = handler.RootPath + "register"
)

// Service provides the account self-service handlers.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. The reactivation route deliberately skips the usual
// active-account gate; it is the one operation a disabled account may call.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Post(RegisterPath, s.Register)

	app.Get(Path,
		auth.RequireAuthenticated(authService),
		s.Show,
	)
	app.Put(Path,
		auth.RequireAuthenticated(authService),
		s.Update,
	)
	app.Post(Path+"/reactivate", s.Reactivate)
}

type profileInput struct {
	FirstName      string `json:"first_name"      validate:"max=100"`
	LastName       string `json:"last_name"       validate:"max=100"`
	DocumentType   string `json:"document_type"   validate:"omitempty,oneof=dni lc le"`
	DocumentNumber string `json:"document_number" validate:"max=32"`
	Gender         string `json:"gender"          validate:"omitempty,oneof=male female other not_specified"`
	GenderOther    string `json:"gender_other"    validate:"max=100"`
	Address        string `json:"address"         validate:"max=255"`
	Phone          string `json:"phone"           validate:"max=32"`
}

// Register creates a new end-user account. The endpoint is public; new
// accounts start active and without any role.
func (s *Service) Register(c *fiber.Ctx) error {
	var in struct {
		Username string `json:"username" validate:"required,min=3,max=100"`
		Email    string `json:"email"    validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,min=8"`
		profileInput
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	created, err := usercontroller.Create(s.db, usercontroller.Config{
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
	})
	if err != nil {
		if errors.Is(err, usercontroller.ErrEmailTaken) || errors.Is(err, usercontroller.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to register user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(userJSON(created))
}

// Show returns the profile of the logged-in user.
func (s *Service) Show(c *fiber.Ctx) error {
	current := auth.CurrentUser(c)

	dbUser, err := usercontroller.Get(s.db, current.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(dbUser))
}

// Update applies profile changes to the logged-in user.
func (s *Service) Update(c *fiber.Ctx) error {
	current := auth.CurrentUser(c)

	var in profileInput

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form data"})
	}

	updated, err := usercontroller.Update(s.db, current.ID, usercontroller.Config{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DocumentType:   models.DocumentType(in.DocumentType),
		DocumentNumber: in.DocumentNumber,
		Gender:         models.Gender(in.Gender),
		GenderOther:    in.GenderOther,
		Address:        in.Address,
		Phone:          in.Phone,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to update profile")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(updated))
}

// Reactivate lets a disabled account flip itself back to active. The guard
// skips the active-account rule for exactly this route.
func (s *Service) Reactivate(c *fiber.Ctx) error {
	current := auth.CurrentUser(c)

	if err := s.authService.AuthorizeReactivation(current, 0); err != nil {
		return auth.Deny(c, err)
	}

	// the session snapshot may be stale; decide on the stored flag
	dbUser, err := usercontroller.Get(s.db, current.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load account")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	if dbUser.Active {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "account already active"})
	}

	updated, err := usercontroller.ToggleActive(s.db, current.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reactivate account")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(userJSON(updated))
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
