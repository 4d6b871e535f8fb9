package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tiktask/internal/auth"
	"tiktask/internal/config"
	"tiktask/internal/files"
	"tiktask/internal/handlers"
	"tiktask/internal/logger"
	"tiktask/internal/middleware"
	"tiktask/internal/repository/postgres"
	"tiktask/internal/service"
	"tiktask/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	storage   *postgres.Storage
	worker    *worker.CleanupWorker
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
		MaxConns:    a.config.Database.MaxConnections,
		MinConns:    a.config.Database.MinConnections,
		IdleTimeout: a.config.Database.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("подключение к БД: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, storage.Close)

	if err := storage.Migrate(); err != nil {
		return err
	}

	store, err := files.NewStore(filepath.Dir(a.config.Uploads.Dir), filepath.Base(a.config.Uploads.Dir))
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("инициализация токенов: %w", err)
	}

	authService := service.NewAuthService(storage, tokens)
	taskService := service.NewTaskService(storage, store)
	userService := service.NewUserService(storage, storage, store)

	if err := authService.SeedAdmin(ctx); err != nil {
		return err
	}

	a.router = a.buildRouter(tokens, store,
		handlers.NewAuthHandler(authService),
		handlers.NewTaskHandler(taskService),
		handlers.NewUserHandler(userService),
		handlers.NewHealthHandler(storage),
	)

	if a.config.Cleanup.Enabled {
		a.worker = worker.NewCleanupWorker(storage, store.Dir(),
			a.config.Cleanup.Interval, a.config.Cleanup.MinAge)
	}

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (a *App) buildRouter(tokens *auth.TokenManager, store *files.Store,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(middleware.RateLimit(100))

	authenticate := middleware.Authenticate(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", taskHandler.GetTasks)     // GET /api/tasks
			r.Post("/", taskHandler.PostTask)    // POST /api/tasks
			r.Get("/stats", taskHandler.GetStats)

			r.With(middleware.AdminOnly).Get("/all", taskHandler.GetAllTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Patch("/complete", taskHandler.ToggleComplete)
				r.Delete("/attachments/{attachmentId}", taskHandler.DeleteAttachment)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate, middleware.AdminOnly)

			r.Get("/", userHandler.GetUsers)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})

		r.Get("/health", healthHandler.HealthCheck)
	})

	// раздача загруженных файлов по публичному префиксу
	fileServer(r, a.config.Uploads.PublicPrefix, store.Dir())

	if a.config.Static.Dir != "" {
		a.mountStatic(r)
	}

	return r
}

// mountStatic раздаёт фронтенд, если каталог настроен; иначе API-only режим
func (a *App) mountStatic(r *chi.Mux) {
	dir := a.config.Static.Dir

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("App: Каталог статики недоступен, режим API-only")
		return
	}

	indexPath := filepath.Join(dir, "index.html")
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, indexPath)
	})
	fileServer(r, "/static", dir)
}

func fileServer(r *chi.Mux, prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// Run запускает сервер и фонового воркера, блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	if a.worker != nil {
		go a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен на " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("сервер: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	a.Shutdown()
	return nil
}

// Shutdown вызывает зарегистрированные функции остановки в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
