package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/files"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/migrations"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/repository/task/postgres"
	userinmemory "taskManager/internal/repository/user/inmemory"
	userpostgres "taskManager/internal/repository/user/postgres"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config      *config.Config
	server      *http.Server
	router      *chi.Mux
	taskService *service.TaskService
	userService *service.UserService
	files       *files.Storage
	shutdowns   []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init wires logging, storage, services and the router.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	if err := a.initRepositories(ctx); err != nil {
		return err
	}

	storage, err := files.NewStorage(afero.NewOsFs(), a.config.Files.Dir, a.config.Files.MaxSize)
	if err != nil {
		return fmt.Errorf("initializing file storage: %w", err)
	}
	a.files = storage

	a.router = NewRouter(a.config, a.taskService, a.userService, a.files)
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "taskmanager-api"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) initRepositories(ctx context.Context) error {
	switch a.config.Repository.Type {
	case "postgres":
		if err := migrations.Up(a.config.Database.URL); err != nil {
			return err
		}
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		a.taskService = service.NewTaskService(storage)
		a.userService = service.NewUserService(userpostgres.NewUserStorage(storage.Pool()))
	default:
		a.taskService = service.NewTaskService(inmemory.NewTaskStorage())
		a.userService = service.NewUserService(userinmemory.NewUserStorage())
	}
	logger.Info("App: repositories ready", zap.String("type", a.config.Repository.Type))
	return nil
}

// NewRouter builds the HTTP API. /health is public; everything else requires a bearer token.
func NewRouter(cfg *config.Config, tasks handlers.TaskService, users handlers.UserService, storage *files.Storage) *chi.Mux {
	taskHandler := handlers.NewTaskHandler(tasks)
	userHandler := handlers.NewUserHandler(users)
	fileHandler := handlers.NewFileHandler(storage)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Server.RateLimitRPM > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimitRPM))
	}

	r.Get("/health", taskHandler.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)
			r.Post("/", taskHandler.PostTask)
			r.Get("/stats/summary", taskHandler.GetStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)
				r.Put("/", taskHandler.UpdateTaskByID)
				r.Delete("/", taskHandler.DeleteTaskByID)
				r.Post("/share", taskHandler.ShareTask)
			})
		})

		r.Route("/external-users", func(r chi.Router) {
			r.Get("/", userHandler.GetUsers)
			r.Post("/", userHandler.PostUser)
			r.Get("/active", userHandler.GetActiveUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.PutUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/upload", fileHandler.Upload)
			r.Get("/images/{name}", fileHandler.GetImage)
			r.Delete("/images/{name}", fileHandler.DeleteImage)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		return err
	case <-ctx.Done():
	}

	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("App: shutting down server")
	err := a.server.Shutdown(shutdownCtx)
	a.Shutdown()
	return err
}

// Shutdown runs the registered cleanup functions in reverse order.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
