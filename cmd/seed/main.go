// Command seed provisions the initial admin account and default master
// data. Safe to run repeatedly; existing records are left alone.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/quyenpham2020/shinsei-portal/internal/config"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/repository"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
	"github.com/quyenpham2020/shinsei-portal/pkg/database"
	"github.com/quyenpham2020/shinsei-portal/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	store := sqlite.NewDB(db.DB, logger)
	ctx := context.Background()

	if err := seedAdmin(ctx, store, cfg, logger); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}
	if err := seedApplicationTypes(ctx, store, logger); err != nil {
		logger.Fatal("Failed to seed application types", zap.Error(err))
	}

	logger.Info("Seed completed")
}

func seedAdmin(ctx context.Context, store *sqlite.DB, cfg *config.Config, logger *zap.Logger) error {
	userRepo := repository.NewUserRepository(store, logger)
	accessRepo := repository.NewSystemAccessRepository(store, logger)

	if _, err := userRepo.GetByEmployeeID(ctx, cfg.Seed.AdminEmployeeID); err == nil {
		logger.Info("Admin account already exists", zap.String("employee_id", cfg.Seed.AdminEmployeeID))
		return nil
	} else if !apperr.IsNotFound(err) {
		return err
	}

	password := cfg.Seed.AdminPassword
	if password == "" {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be set to create the admin account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	admin := &entity.User{
		EmployeeID:         cfg.Seed.AdminEmployeeID,
		Name:               cfg.Seed.AdminName,
		Email:              cfg.Seed.AdminEmail,
		PasswordHash:       string(hash),
		Role:               authz.RoleAdmin,
		MustChangePassword: true,
		WeeklyReportExempt: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	return store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		return accessRepo.ReplaceForUser(ctx, admin.ID, entity.AllSystems())
	})
}

func seedApplicationTypes(ctx context.Context, store *sqlite.DB, logger *zap.Logger) error {
	typeRepo := repository.NewApplicationTypeRepository(store, logger)

	defaults := []*entity.ApplicationType{
		{Code: "vacation", Name: "Vacation Request", DisplayOrder: 1},
		{Code: "expense", Name: "Expense Claim", RequiresAmount: true, RequiresAttachment: true, DisplayOrder: 2},
		{Code: "purchase", Name: "Purchase Request", RequiresAmount: true, DisplayOrder: 3},
		{Code: "business-trip", Name: "Business Trip", RequiresAmount: true, DisplayOrder: 4},
		{Code: "other", Name: "Other Request", DisplayOrder: 5},
	}

	for _, typ := range defaults {
		if _, err := typeRepo.GetByCode(ctx, typ.Code); err == nil {
			continue
		} else if !apperr.IsNotFound(err) {
			return err
		}

		typ.ApprovalLevels = 1
		typ.IsActive = true
		typ.CreatedAt = time.Now()
		if err := typeRepo.Create(ctx, typ); err != nil {
			return err
		}
		logger.Info("Seeded application type", zap.String("code", typ.Code))
	}
	return nil
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
