package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/fasbit/thesisvault/internal/app/auth"
	appControllers "github.com/fasbit/thesisvault/internal/app/controllers"
	appMigrations "github.com/fasbit/thesisvault/internal/app/migrations"
	appRepos "github.com/fasbit/thesisvault/internal/app/repositories"
	appRoutes "github.com/fasbit/thesisvault/internal/app/routes"
	appServices "github.com/fasbit/thesisvault/internal/app/services"
	"github.com/fasbit/thesisvault/internal/config"
	"github.com/fasbit/thesisvault/internal/db"
	appMiddleware "github.com/fasbit/thesisvault/internal/middleware"
	pkgAuth "github.com/fasbit/thesisvault/internal/pkg/auth"
	"github.com/fasbit/thesisvault/internal/pkg/filestorage"
	"github.com/fasbit/thesisvault/internal/pkg/logger"
	"github.com/fasbit/thesisvault/internal/pkg/pdftext"
	"github.com/fasbit/thesisvault/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	ThesisService    appServices.ThesisService
	AccountService   appServices.AccountService
	AuthController   *appControllers.AuthController
	ThesisController *appControllers.ThesisController
	UserController   *appControllers.UserController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	Resolver         *appAuth.Resolver
	Logger           zerolog.Logger
	FileStorage      *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenExp(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Resolver = appAuth.NewResolver(deps.JWTService)

	deps.ThesisService = appServices.NewThesisService(
		deps.Repos.ThesisRepository,
		deps.FileStorage,
		pdftext.Extract,
	)
	deps.AccountService = appServices.NewAccountService(
		deps.Repos.UserRepository,
		deps.Repos.ThesisRepository,
		deps.JWTService,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Resolver)

	deps.AuthController = appControllers.NewAuthController(deps.AccountService)
	deps.ThesisController = appControllers.NewThesisController(deps.ThesisService)
	deps.UserController = appControllers.NewUserController(deps.AccountService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ThesisController,
		deps.UserController,
		deps.AuthMiddleware,
	)

	return router
}
