package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/account"
	"jobtracker-backend/internal/applications"
	googleauth "jobtracker-backend/internal/auth"
	"jobtracker-backend/internal/calendar"
	"jobtracker-backend/internal/queue"
	"jobtracker-backend/internal/services/health"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/server"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Queue               queue.Client
	UsersRepo           users.Repo
	ApplicationsRepo    applications.Repo
	UsersService        *users.Service
	ApplicationsService *applications.Service
	AccountService      *account.Service
	Reconciler          *calendar.Reconciler
	CalendarClients     *calendar.ClientFactory
	ApplicationHandler  *applications.Handler
	CalendarHandler     *calendar.Handler
	AccountHandler      *account.Handler
	UsersHandler        *users.Handler
	GoogleAuth          *googleauth.GoogleService
	CalendarConsent     *googleauth.CalendarConsent
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		Health:             health.NewService(app.DB),
		ApplicationHandler: app.ApplicationHandler,
		CalendarHandler:    app.CalendarHandler,
		AccountHandler:     app.AccountHandler,
		UserHandler:        app.UsersHandler,
		GoogleAuth:         app.GoogleAuth,
		CalendarConsent:    app.CalendarConsent,
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
}

func buildServices(app *App) error {
	var userRepo users.Repo
	var applicationRepo applications.Repo

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		applicationRepo = &applications.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		applicationRepo = applications.NewMemoryRepo()
	}

	cfg := app.Config
	userSvc := users.NewService(userRepo)

	calendarOAuth := calendar.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CalendarRedirectURL)
	clients := &calendar.ClientFactory{
		OAuth:      calendarOAuth,
		CalendarID: cfg.CalendarID,
		Tokens:     userSvc,
		Timeout:    cfg.CalendarSyncTimeout,
	}
	payload := calendar.PayloadOptions{
		TimeZone: cfg.CalendarTimeZone,
		Duration: cfg.CalendarEventDuration,
	}
	reconciler := calendar.NewReconciler(clients, payload, cfg.CalendarSyncTimeout)

	applicationSvc := applications.NewService(applicationRepo, userSvc, reconciler, app.Queue)
	accountSvc := account.NewService(applicationSvc)

	app.UsersRepo = userRepo
	app.ApplicationsRepo = applicationRepo
	app.UsersService = userSvc
	app.ApplicationsService = applicationSvc
	app.AccountService = accountSvc
	app.Reconciler = reconciler
	app.CalendarClients = clients
	app.ApplicationHandler = applications.NewHandler(applicationSvc)
	app.CalendarHandler = calendar.NewHandler(userSvc, clients, payload)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)
	app.CalendarConsent = googleauth.NewCalendarConsent(calendarOAuth, userSvc, cfg.DashboardURL)

	if app.ApplicationHandler == nil || app.CalendarHandler == nil || app.UsersHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
