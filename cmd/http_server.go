package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/audit"
	auditPostgres "github.com/giulianni/client-portal/internal/audit/postgres"
	"github.com/giulianni/client-portal/internal/auth"
	authPostgres "github.com/giulianni/client-portal/internal/auth/postgres"
	"github.com/giulianni/client-portal/internal/cases"
	casesPostgres "github.com/giulianni/client-portal/internal/cases/postgres"
	"github.com/giulianni/client-portal/internal/core/events"
	"github.com/giulianni/client-portal/internal/document"
	documentPostgres "github.com/giulianni/client-portal/internal/document/postgres"
	"github.com/giulianni/client-portal/internal/identity"
	"github.com/giulianni/client-portal/internal/lifecycle"
	"github.com/giulianni/client-portal/internal/message"
	messagePostgres "github.com/giulianni/client-portal/internal/message/postgres"
	"github.com/giulianni/client-portal/internal/notification"
	notificationPostgres "github.com/giulianni/client-portal/internal/notification/postgres"
	"github.com/giulianni/client-portal/internal/objectstore"
	"github.com/giulianni/client-portal/internal/rbac"
	rbacPostgres "github.com/giulianni/client-portal/internal/rbac/postgres"
	"github.com/giulianni/client-portal/internal/transport/rest"
	"github.com/giulianni/client-portal/internal/user"
	userPostgres "github.com/giulianni/client-portal/internal/user/postgres"
	"github.com/giulianni/client-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the same pgx connection pool as sqlx.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	blobs, err := objectstore.NewS3Store(context.Background(), config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	identityClient := identity.NewClient(identity.Config{
		BaseURL:    config.Identity.BaseURL,
		ServiceKey: config.Identity.ServiceKey,
		Timeout:    config.Identity.Timeout,
	}, log)

	principalRepo := rbacPostgres.NewPrincipalRepository(gormDB)
	bindingRepo := rbacPostgres.NewBindingRepository(db)
	resolver := rbac.NewResolver(principalRepo, bindingRepo, log)
	gate := rbac.NewGate(resolver)

	auditService := audit.NewService(auditPostgres.NewAuditRepository(gormDB), log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, resolver, config.Security.BCryptCost, log)

	userRepo := userPostgres.NewRepository(gormDB)
	userService := user.NewService(userRepo, identityClient, auditService, config.Security.BCryptCost, log)

	caseRepo := casesPostgres.NewRepository(gormDB)
	caseService := cases.NewService(caseRepo, principalRepo, auditService, log)

	documentRepo := documentPostgres.NewRepository(gormDB)
	documentService := document.NewService(documentRepo, blobs, caseRepo, auditService, config.Storage.Bucket, log)

	messageRepo := messagePostgres.NewRepository(gormDB)
	messageService := message.NewService(messageRepo, caseRepo)

	eventBus := events.NewEventBus(log)
	notificationRepo := notificationPostgres.NewRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, eventBus, auditService, log)
	eventBus.Subscribe(events.EventTypeNotificationCreated, notificationService.FanOutReceipts)

	orchestrator := lifecycle.NewOrchestrator(lifecycle.Config{
		Gate:        gate,
		Receipts:    notificationRepo,
		Documents:   documentRepo,
		Blobs:       blobs,
		Principals:  userRepo,
		Identities:  identityClient,
		Assignments: caseRepo,
		Messages:    messageRepo,
		Cases:       caseRepo,
		Auditor:     auditService,
		Logger:      log,
	})

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:         auth.NewHandler(authService),
			User:         user.NewHandler(userService),
			Cases:        cases.NewHandler(caseService),
			Document:     document.NewHandler(documentService),
			Message:      message.NewHandler(messageService),
			Notification: notification.NewHandler(notificationService),
			Lifecycle:    lifecycle.NewHandler(orchestrator),
			Audit:        audit.NewHandler(auditService),
		},
	}, nil
}

// initDB opens the pgx-backed connection pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
