// Package bootstrap wires configuration, storage, the subject graph, the
// checkout guard and the HTTP surface together at startup.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mvarela/uniregistro/internal/app/catalog"
	appControllers "github.com/mvarela/uniregistro/internal/app/controllers"
	"github.com/mvarela/uniregistro/internal/app/guard"
	appMigrations "github.com/mvarela/uniregistro/internal/app/migrations"
	appRepos "github.com/mvarela/uniregistro/internal/app/repositories"
	appRoutes "github.com/mvarela/uniregistro/internal/app/routes"
	appServices "github.com/mvarela/uniregistro/internal/app/services"
	"github.com/mvarela/uniregistro/internal/config"
	"github.com/mvarela/uniregistro/internal/db"
	appMiddleware "github.com/mvarela/uniregistro/internal/middleware"
	pkgAuth "github.com/mvarela/uniregistro/internal/pkg/auth"
	"github.com/mvarela/uniregistro/internal/pkg/logger"
	"github.com/mvarela/uniregistro/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos             *appRepos.Repositories
	Graph             *catalog.Graph
	Guard             *guard.Guard
	Services          *appServices.Services
	JWTService        *pkgAuth.JWTService
	AuthMiddleware    *appMiddleware.AuthMiddleware
	AuthController    *appControllers.AuthController
	SubjectController *appControllers.SubjectController
	StudentController *appControllers.StudentController
	UserController    *appControllers.UserController
	RedisClient       *redis.Client
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	logger.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data
func SetupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	logger.Info().Msg("Database connection established")

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(dbPool)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := migrator.MigrateDir(ctx, migrationsDir); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(ctx, dbPool, cfg.Seed.AdminPassword); err != nil {
		logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, the subject graph, the checkout
// guard, services and controllers
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// The graph is warmed once from the database and is the in-process
	// authority for catalog invariants from then on.
	deps.Graph = catalog.NewGraph()

	// Checkout tokens live in redis when available so multiple instances see
	// the same holds; the in-memory store serves single-instance setups.
	var tokenStore guard.TokenStore
	if cfg.Redis.Enabled {
		client, err := db.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.RedisClient = client
		tokenStore = appRepos.NewCheckoutTokenRepository(client)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis checkout token store")
	} else {
		tokenStore = guard.NewMemoryTokenStore()
		logger.Info().Msg("Using in-memory checkout token store")
	}

	deps.Guard = guard.New(deps.Repos.StudentRepository, tokenStore, cfg.CheckoutHoldDuration())

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(deps.Repos, deps.Graph, deps.Guard, deps.JWTService)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := deps.Services.CatalogService.WarmFromStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to load subject catalog: %w", err)
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.SubjectController = appControllers.NewSubjectController(deps.Services.CatalogService)
	deps.StudentController = appControllers.NewStudentController(deps.Services.StudentService)
	deps.UserController = appControllers.NewUserController(deps.Services.UserService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		logger.Error().Err(err).Msg("Failed to register custom validators")
	}

	router := gin.Default()

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.SubjectController,
		deps.StudentController,
		deps.UserController,
		deps.AuthMiddleware,
	)

	return router
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
