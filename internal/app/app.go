// Package app assembles the service from its configuration.
package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/rs/cors"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/notifications"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"gorm.io/gorm"
)

// App is the application context. Everything a request or background
// worker needs is reachable from it; there is no package level state.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *gorm.DB
	Metrics    *metrics.Metrics
	Dispatcher *notifications.Dispatcher
	Scheduler  *notifications.Scheduler
	Router     *gin.Engine

	handler   http.Handler
	redisPool *redis.Pool
}

type options struct {
	mailer     notifications.Mailer
	bcryptCost int
}

// Option customizes New
type Option func(*options)

// WithMailer replaces the mailer selected from configuration.
func WithMailer(m notifications.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// New wires repositories, services, the notification pipeline and the
// router. Background workers are not started; call Start.
func New(cfg *config.Config, logger *slog.Logger, db *gorm.DB, opts ...Option) *App {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Metrics: metrics.New(),
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Notification infrastructure first, concrete handlers and jobs after.
	queue, locker := a.notificationBackends()
	mailer := o.mailer
	if mailer == nil {
		mailer = newMailer(cfg.Mail, logger)
	}

	a.Dispatcher = notifications.NewDispatcher(queue, notifications.DispatcherConfig{
		Workers:        cfg.Notifications.Workers,
		MaxAttempts:    cfg.Notifications.MaxAttempts,
		RetryBackoff:   cfg.Notifications.RetryBackoff,
		EnqueueTimeout: cfg.Notifications.EnqueueTimeout,
	}, logger.With(slog.String("component", "dispatcher")), a.Metrics)
	a.Scheduler = notifications.NewScheduler(locker, logger.With(slog.String("component", "scheduler")), a.Metrics)

	taskEvents := notifications.NewTaskEventHandler(taskRepo, userRepo, mailer, a.Metrics, logger)
	a.Dispatcher.Register(notifications.ActionAssigned, taskEvents)
	a.Dispatcher.Register(notifications.ActionStatusChanged, taskEvents)
	a.Scheduler.Register(
		notifications.NewOverdueDigestJob(userRepo, taskRepo, mailer, a.Metrics, logger),
		cfg.Notifications.DigestInterval,
	)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(o.bcryptCost), tokens)
	projectService := services.NewProjectService(projectRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, a.Dispatcher)

	a.Router = a.routes(
		tokens,
		handlers.NewAuthHandler(authService, logger),
		handlers.NewProjectHandler(projectService, logger),
		handlers.NewTaskHandler(taskService, logger),
	)

	a.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(a.Router)

	return a
}

func (a *App) notificationBackends() (notifications.Queue, notifications.Locker) {
	if a.Config.Redis.URL == "" {
		return notifications.NewMemoryQueue(a.Config.Notifications.QueueSize), notifications.NewMemoryLocker()
	}

	a.redisPool = notifications.NewRedisPool(a.Config.Redis.URL)
	prefix := a.Config.Notifications.QueueName + ":"
	a.Logger.Info("using redis for notifications", slog.String("queue", a.Config.Notifications.QueueName))
	return notifications.NewRedisQueue(a.redisPool, a.Config.Notifications.QueueName),
		notifications.NewRedisLocker(a.redisPool, prefix)
}

func newMailer(cfg config.MailConfig, logger *slog.Logger) notifications.Mailer {
	if cfg.Host == "" {
		logger.Warn("mail.host is not set, outbound mail will only be logged")
		return notifications.NewLogMailer(logger)
	}
	return notifications.NewSMTPMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
}

func (a *App) routes(tokens auth.TokenManager, authHandler *handlers.AuthHandler, projectHandler *handlers.ProjectHandler, taskHandler *handlers.TaskHandler) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(a.Logger),
		middleware.Metrics(a.Metrics),
		middleware.Identify(tokens),
	)

	r.GET("/", handlers.Root)
	r.GET("/healthz", handlers.Health)
	r.GET("/favicon.ico", handlers.Favicon)
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.RequireAuth(), authHandler.Me)
	}

	projects := r.Group("/projects", middleware.RequireAuth())
	{
		projects.POST("/", projectHandler.CreateProject)
		projects.GET("/", projectHandler.ListProjects)
		projects.GET("/:id", middleware.RequireIDParam(), projectHandler.GetProject)
		projects.PATCH("/:id", middleware.RequireIDParam(), projectHandler.UpdateProject)
		projects.DELETE("/:id", middleware.RequireIDParam(), projectHandler.DeleteProject)
	}

	tasks := r.Group("/tasks", middleware.RequireAuth())
	{
		tasks.POST("/", taskHandler.CreateTask)
		tasks.GET("/", taskHandler.ListTasks)
		tasks.GET("/:id", middleware.RequireIDParam(), taskHandler.GetTask)
		tasks.PATCH("/:id", middleware.RequireIDParam(), taskHandler.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireIDParam(), taskHandler.DeleteTask)
	}

	return r
}

// Handler returns the HTTP handler with CORS applied.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Start launches the notification workers and the scheduler.
func (a *App) Start() {
	a.Dispatcher.Start()
	a.Scheduler.Start()
}

// Stop stops the scheduler and the dispatcher, then releases Redis.
func (a *App) Stop() {
	a.Scheduler.Stop()
	a.Dispatcher.Stop()
	if a.redisPool != nil {
		if err := a.redisPool.Close(); err != nil {
			a.Logger.Warn("failed to close redis pool", slog.Any("error", err))
		}
	}
}
