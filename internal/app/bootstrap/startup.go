// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/authutil"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It applies the configured handler timeouts, starts the index retry worker
// and makes sure the configured admin account exists. Registration never grants the admin role, so this
// is the only way an admin comes to exist.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if deps.IndexRetry != nil {
		deps.IndexRetry.Start()
	}

	if appCfg.AdminEmail == "" {
		logger.Info("admin_email not set; skipping admin bootstrap")
		return nil
	}
	return ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName, logger)
}

// ensureAdmin promotes the account with email to admin, or creates it with
// password when it does not exist yet.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password, name string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if _, err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote %s to admin: %w", email, err)
		}
		logger.Info("promoted existing user to admin",
			zap.String("email", existing.Email),
			zap.String("previous_role", string(existing.Role)))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("look up admin %s: %w", email, err)
	}

	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin_password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Administrator"
	}

	u, err := users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin %s: %w", email, err)
	}
	logger.Info("created admin user", zap.String("email", u.Email), zap.String("id", u.ID.Hex()))
	return nil
}
