// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"net/http"

	adminapp "github.com/cookingcapture/api/internal/application/admin"
	recipeapp "github.com/cookingcapture/api/internal/application/recipe"
	userapp "github.com/cookingcapture/api/internal/application/user"
	"github.com/cookingcapture/api/internal/infrastructure/ai/openai"
	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/infrastructure/email"
	"github.com/cookingcapture/api/internal/infrastructure/fetch"
	"github.com/cookingcapture/api/internal/infrastructure/http/server"
	gormrepo "github.com/cookingcapture/api/internal/infrastructure/persistence/gorm"
	"github.com/cookingcapture/api/internal/infrastructure/security"
	"github.com/cookingcapture/api/internal/infrastructure/storage"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"github.com/cookingcapture/api/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	gormlib "gorm.io/gorm"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	AdapterModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
		})
	},
)

// DatabaseModule provides the database connection and repositories
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gormlib.DB, error) {
		db, err := gormrepo.NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("connected to database", zap.String("driver", cfg.Database.Driver))
		return db, nil
	},
	gormrepo.NewRecipeRepository,
	gormrepo.NewUserRepository,
)

// AdapterModule provides outbound adapters
var AdapterModule = fx.Provide(
	security.NewTokenService,

	fx.Annotate(
		openai.NewClient,
		fx.As(new(outbound.RecipeExtractor)),
	),
	fx.Annotate(
		fetch.NewFetcher,
		fx.As(new(outbound.PageFetcher)),
	),
	fx.Annotate(
		storage.NewImageStore,
		fx.As(new(outbound.ImageStore)),
	),
	fx.Annotate(
		email.NewResendSender,
		fx.As(new(outbound.EmailSender)),
	),
	email.NewNotifier,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		userRepo outbound.UserRepository,
		recipeRepo outbound.RecipeRepository,
		tokens *security.TokenService,
		notifier *email.Notifier,
		log *zap.Logger,
	) *userapp.Service {
		return userapp.NewService(userRepo, recipeRepo, tokens, notifier, log)
	},

	func(
		recipeRepo outbound.RecipeRepository,
		userRepo outbound.UserRepository,
		extractor outbound.RecipeExtractor,
		fetcher outbound.PageFetcher,
		images outbound.ImageStore,
		notifier *email.Notifier,
		cfg *config.Config,
		log *zap.Logger,
	) *recipeapp.Service {
		return recipeapp.NewService(recipeRepo, userRepo, extractor, fetcher, images, notifier, cfg.Storage.MaxFileSize, log)
	},

	func(
		userRepo outbound.UserRepository,
		recipeRepo outbound.RecipeRepository,
		images outbound.ImageStore,
		notifier *email.Notifier,
		log *zap.Logger,
	) *adminapp.Service {
		return adminapp.NewService(userRepo, recipeRepo, images, notifier, log)
	},
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		db *gormlib.DB,
		tokens *security.TokenService,
		users *userapp.Service,
		recipes *recipeapp.Service,
		admin *adminapp.Service,
		notifier *email.Notifier,
	) *server.Server {
		return server.NewServer(server.Deps{
			Config:        cfg,
			Logger:        log,
			DB:            db,
			Tokens:        tokens,
			UserService:   users,
			RecipeService: recipes,
			AdminService:  admin,
			ContactMailer: notifier,
		})
	},
)

// LifecycleModule registers application lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks starts and stops the HTTP server with the app
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gormlib.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting application",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start HTTP server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				log.Error("failed to shut down HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
