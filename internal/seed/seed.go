package seed

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/fasbit/thesisvault/internal/app/models"
	appRepos "github.com/fasbit/thesisvault/internal/app/repositories"
	"github.com/fasbit/thesisvault/internal/config"
	pkgAuth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

// CreateDefaultData ensures the default admin account exists so a fresh
// deployment is administrable without touching the database by hand.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default admin account...")

	exists, err := userRepo.LoginKeyExists(ctx, cfg.Admin.Email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin account exists")
		return err
	}
	if exists {
		lgr.Info().Str("email", cfg.Admin.Email).Msg("Admin account already exists, skipping creation")
		return nil
	}

	if cfg.Admin.Password == "" {
		lgr.Warn().Str("email", cfg.Admin.Email).Msg("No admin password configured, skipping admin account creation")
		return nil
	}

	hash, err := pkgAuth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.User{
		Email:     cfg.Admin.Email,
		Password:  hash,
		Role:      appModels.RoleAdmin,
		CreatedAt: time.Now(),
	}

	adminID, err := userRepo.Create(ctx, admin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Str("email", cfg.Admin.Email).Msg("Default admin account created")
	return nil
}
