package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/config"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/dsn"
	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web"
	"github.com/GoServices-Admin/GoServices-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg))

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = Migrate(db); err != nil {
		panic("failed to migrate database")
	}

	if err = Seed(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	// Initialize fiber session store
	sessionStorage := sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	return &Daemon{
		cfg:        cfg,
		webService: *web.New(cfg, db),
	}
}

// Migrate applies the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.Service{},
		&models.ServiceRequest{},
		&models.RequestHistoryEntry{},
		&models.RequestNote{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserInstitutionRole{},
		&models.SiteAdmin{},
		&models.SiteConfig{},
	)
}
