package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/dispatcher"
	"github.com/quyenpham2020/shinsei-portal/internal/application/service"
	"github.com/quyenpham2020/shinsei-portal/internal/config"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/repository"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/quyenpham2020/shinsei-portal/internal/interfaces/http"
	"github.com/quyenpham2020/shinsei-portal/pkg/database"
	"github.com/quyenpham2020/shinsei-portal/pkg/utils"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
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

	logger.Info("Starting portal server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

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

	// Transaction-aware handle shared by every repository
	store := sqlite.NewDB(db.DB, logger)

	appRepo := repository.NewApplicationRepository(store, logger)
	typeRepo := repository.NewApplicationTypeRepository(store, logger)
	commentRepo := repository.NewCommentRepository(store, logger)
	attachmentRepo := repository.NewAttachmentRepository(store, logger)
	favoriteRepo := repository.NewFavoriteRepository(store, logger)
	userRepo := repository.NewUserRepository(store, logger)
	accessRepo := repository.NewSystemAccessRepository(store, logger)
	deptRepo := repository.NewDepartmentRepository(store, logger)
	teamRepo := repository.NewTeamRepository(store, logger)
	approverRepo := repository.NewApproverRepository(store, logger)
	reportRepo := repository.NewWeeklyReportRepository(store, logger)
	auditRepo := repository.NewAuditRepository(store, logger)

	slog := kvLogger{logger.Sugar()}

	// Event dispatch with the audit trail subscribed to every type
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(slog))
	defer disp.Close()

	auditService := service.NewAuditService(auditRepo, slog)
	auditService.Register(disp)
	registerNotificationLog(disp, logger)

	services := httpadapter.Services{
		Auth:         service.NewAuthService(userRepo, accessRepo, cfg.JWT.Secret, cfg.JWT.Expiration, slog),
		Application:  service.NewApplicationService(appRepo, typeRepo, commentRepo, approverRepo, disp, cfg.Workflow.ApproverScope, slog),
		WeeklyReport: service.NewWeeklyReportService(reportRepo, userRepo, store, slog),
		User:         service.NewUserService(userRepo, accessRepo, store, slog),
		MasterData:   service.NewMasterDataService(deptRepo, teamRepo, typeRepo, approverRepo, userRepo, slog),
		Favorite:     service.NewFavoriteService(favoriteRepo, appRepo, slog),
		Attachment:   service.NewAttachmentService(attachmentRepo, appRepo, slog),
		Audit:        auditService,
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, services, slog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}

// registerNotificationLog subscribes a logging sink to every workflow
// event type, next to the audit trail recorder.
func registerNotificationLog(disp dispatcher.Dispatcher, logger *zap.Logger) {
	types := []event.Type{
		event.TypeApplicationCreated,
		event.TypeApplicationSubmitted,
		event.TypeApplicationApproved,
		event.TypeApplicationRejected,
		event.TypeApplicationCommented,
		event.TypeApplicationDeleted,
	}
	for _, typ := range types {
		disp.SubscribeNamed(typ, "notification-log", func(ctx context.Context, evt *event.Event) error {
			logger.Info("Workflow event",
				zap.String("event_id", evt.ID),
				zap.String("type", evt.Type.String()),
				zap.Int64("application_id", evt.ApplicationID),
				zap.Int64("actor_id", evt.ActorID))
			return nil
		})
	}
}

// kvLogger adapts zap's sugared logger to the key-value Logger
// interfaces the services, dispatcher and HTTP adapter expect.
type kvLogger struct {
	s *zap.SugaredLogger
}

func (l kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
