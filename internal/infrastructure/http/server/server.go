// Package server provides the HTTP server and route wiring
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	adminapp "github.com/cookingcapture/api/internal/application/admin"
	recipeapp "github.com/cookingcapture/api/internal/application/recipe"
	userapp "github.com/cookingcapture/api/internal/application/user"
	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/infrastructure/http/handlers"
	"github.com/cookingcapture/api/internal/infrastructure/http/middleware"
	"github.com/cookingcapture/api/internal/infrastructure/security"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	router *chi.Mux
	server *http.Server
}

// Deps groups everything the route table needs.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	Tokens        *security.TokenService
	UserService   *userapp.Service
	RecipeService *recipeapp.Service
	AdminService  *adminapp.Service
	ContactMailer handlers.ContactMailer
}

// NewServer creates a new HTTP server instance
func NewServer(deps Deps) *Server {
	s := &Server{
		config: deps.Config,
		logger: deps.Logger,
		db:     deps.DB,
	}
	s.router = s.setupRouter(deps)
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", deps.Config.Server.Host, deps.Config.Server.Port),
		Handler:           s.router,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if s.config.Server.EnableMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := middleware.NewMetrics(registry)
		r.Use(metrics.Handler)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	auth := handlers.NewAuthHandlers(deps.UserService, s.logger)
	recipes := handlers.NewRecipeHandlers(deps.RecipeService, s.logger)
	admin := handlers.NewAdminHandlers(deps.AdminService, deps.ContactMailer, s.logger)

	r.Route("/api", func(r chi.Router) {
		// Processed recipe photos are served straight off disk
		uploads := http.FileServer(http.Dir(s.config.Storage.UploadsDir))
		r.Handle("/uploads/*", http.StripPrefix(s.config.Storage.PublicBaseURL+"/", uploads))

		// Public routes
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/forgot-password", auth.ForgotPassword)
		r.Post("/auth/reset-password", auth.ResetPassword)
		r.Post("/contact", admin.Contact)
		r.Get("/recipes/public/recent", recipes.ListPublicRecent)
		r.Get("/recipes/public/{id}", recipes.GetPublic)
		r.Post("/recipes/{id}/request", recipes.Request)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(deps.Tokens))

			r.Route("/auth/me", func(r chi.Router) {
				r.Get("/", auth.Me)
				r.Put("/", auth.UpdateName)
				r.Delete("/", auth.DeleteAccount)
				r.Put("/password", auth.ChangePassword)
			})

			r.Route("/filters", func(r chi.Router) {
				r.Get("/", auth.ListFilters)
				r.Post("/", auth.CreateFilter)
				r.Put("/{id}", auth.RenameFilter)
				r.Delete("/{id}", auth.DeleteFilter)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", recipes.List)
				r.Post("/extract", recipes.ImportFromURL)
				r.Post("/extract-text", recipes.ImportFromText)
				r.Post("/upload", recipes.ImportFromFile)
				r.Post("/manual", recipes.Create)
				r.Post("/copy/{id}", recipes.Copy)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", recipes.Get)
					r.Put("/", recipes.Update)
					r.Delete("/", recipes.Delete)
					r.Post("/send-email", recipes.SendByEmail)
					r.Post("/upload-image", recipes.UploadImage)
					r.Delete("/image", recipes.DeleteImage)
				})
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly(s.config.Admin.Email))
				r.Get("/stats", admin.Stats)
				r.Get("/users", admin.ListUsers)
				r.Post("/users", admin.CreateUser)
				r.Put("/users/{id}", admin.UpdateUser)
				r.Delete("/users/{id}", admin.DeleteUser)
				r.Get("/users/{id}/export", admin.ExportUserData)
				r.Post("/users/{id}/send-data", admin.SendUserData)
				r.Post("/email", admin.EmailUsers)
				r.Post("/email/all", admin.Broadcast)
			})
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"message":"%s API","version":%q}`, s.config.App.Name, s.config.App.Version)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			s.logger.Warn("health check database ping failed", zap.Error(err))
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	fmt.Fprintf(w, `{"status":%q,"version":%q}`, status, s.config.App.Version)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
