package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/techdesk/helpdesk-service/internal/api/http"
	"github.com/techdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/config"
	"github.com/techdesk/helpdesk-service/internal/events"
	"github.com/techdesk/helpdesk-service/internal/observability"
	"github.com/techdesk/helpdesk-service/internal/persistence"
	"github.com/techdesk/helpdesk-service/internal/repository"
	"github.com/techdesk/helpdesk-service/internal/service"
	"github.com/techdesk/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	auditLogRepo := repository.NewAuditLogRepository(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewInMemoryDispatcher()

	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo: accountRepo,
		Logger:      logger,
	})
	auditLogService := service.NewAuditLogService(service.AuditLogDependencies{
		AuditLogRepo: auditLogRepo,
		TicketRepo:   ticketRepo,
		Logger:       logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AccountRepo: accountRepo,
		TicketRepo:  ticketRepo,
		Logger:      logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		AccountRepo: accountRepo,
		AuditLogs:   auditLogService,
		TxManager:   txManager,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		AccountRepo: accountRepo,
		CommentRepo: commentRepo,
		Comments:    commentService,
		AuditLogs:   auditLogService,
		Assigner:    assignmentService,
		TxManager:   txManager,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	redisPublisher := events.NewRedisPublisher(redis.Client, cfg.Redis.EventChannel, logger)
	worker.StartNotificationWorker(notificationService, redisPublisher, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pool, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		SupportTickets: handlers.NewSupportTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		AuditLogs:      handlers.NewAuditLogsHandler(auditLogService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
