package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/config"
	infraCache "bookrental-backend/internal/infrastructure/cache"
	"bookrental-backend/internal/infrastructure/database"
	"bookrental-backend/pkg/cache"
	"bookrental-backend/pkg/jwt"

	bookHandler "bookrental-backend/internal/domains/book/handler"
	bookRepo "bookrental-backend/internal/domains/book/repository"
	bookService "bookrental-backend/internal/domains/book/service"
	readerHandler "bookrental-backend/internal/domains/reader/handler"
	readerRepo "bookrental-backend/internal/domains/reader/repository"
	readerService "bookrental-backend/internal/domains/reader/service"
	rentalHandler "bookrental-backend/internal/domains/rental/handler"
	rentalRepo "bookrental-backend/internal/domains/rental/repository"
	rentalService "bookrental-backend/internal/domains/rental/service"
	staffHandler "bookrental-backend/internal/domains/staff/handler"
	staffRepo "bookrental-backend/internal/domains/staff/repository"
	staffService "bookrental-backend/internal/domains/staff/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API and the worker
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB    // nil with STORAGE_DRIVER=memory
	Redis      *infraCache.RedisClient // nil when Redis is unreachable at start
	Cache      cache.Cache             // nil when Redis is unreachable at start
	JWTManager *jwt.Manager

	// Repositories
	BookRepo   bookRepo.RepositoryInterface
	ReaderRepo readerRepo.RepositoryInterface
	RentalRepo rentalRepo.RepositoryInterface
	StaffRepo  staffRepo.RepositoryInterface

	// Services
	BookService   bookService.ServiceInterface
	ReaderService readerService.ServiceInterface
	RentalService rentalService.ServiceInterface
	StaffService  staffService.ServiceInterface

	// Handlers
	BookHandler   *bookHandler.Handler
	ReaderHandler *readerHandler.Handler
	RentalHandler *rentalHandler.Handler
	StaffHandler  *staffHandler.Handler
}

// NewContainer loads the configuration from the environment and builds the graph
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return Build(context.Background(), cfg)
}

// Build wires every layer in order: infrastructure, repositories, services, handlers
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Str("storage", cfg.App.StorageDriver).Msg("Initializing container")

	c := &Container{Config: cfg}

	// STEP 1: database
	if cfg.App.StorageDriver == "postgres" {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	// STEP 2: cache (non-critical)
	c.initCache(ctx)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// STEP 3-5
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	// STEP 6: seed the admin account
	if err := c.StaffService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Info().Msg("Container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	return nil
}

func (c *Container) initCache(ctx context.Context) {
	rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rc.Connect(pingCtx); err != nil {
		// caching and the distributed rental lock are optional
		log.Warn().Err(err).Msg("Redis unavailable, running without cache and with a process-local rental lock")
		_ = rc.Close()
		return
	}

	c.Redis = rc
	c.Cache = infraCache.NewRedisCache(rc.Client)
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		c.BookRepo = bookRepo.NewMemoryRepository()
		c.ReaderRepo = readerRepo.NewMemoryRepository()
		c.RentalRepo = rentalRepo.NewMemoryRepository()
		c.StaffRepo = staffRepo.NewMemoryRepository()
		return
	}

	pool := c.DB.Pool
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ReaderRepo = readerRepo.NewPostgresRepository(pool)
	c.RentalRepo = rentalRepo.NewPostgresRepository(pool)
	c.StaffRepo = staffRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	rules := c.Config.Rental

	c.BookService = bookService.NewService(c.BookRepo, c.Cache, rules.BookCacheTTL)
	c.ReaderService = readerService.NewService(c.ReaderRepo)
	c.RentalService = rentalService.NewService(
		c.RentalRepo,
		c.BookService,
		c.ReaderService,
		c.Cache,
		rentalService.Options{
			MaxActivePerReader: rules.MaxActivePerReader,
			LockTTL:            rules.LockTTL,
			StatisticsTTL:      rules.StatisticsCacheTTL,
		},
	)
	c.StaffService = staffService.NewService(c.StaffRepo, c.JWTManager, staffService.DefaultBcryptCost)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.ReaderHandler = readerHandler.NewHandler(c.ReaderService)
	c.RentalHandler = rentalHandler.NewHandler(c.RentalService)
	c.StaffHandler = staffHandler.NewHandler(c.StaffService)
}

// HealthCheck reports the status of each dependency. Redis is optional.
func (c *Container) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{"database": "disabled", "redis": "disabled"}

	if c.DB != nil {
		status["database"] = "ok"
		if err := c.DB.HealthCheck(ctx); err != nil {
			status["database"] = err.Error()
		}
	}
	if c.Redis != nil {
		status["redis"] = "ok"
		if err := c.Redis.HealthCheck(ctx); err != nil {
			status["redis"] = err.Error()
		}
	}
	return status
}

// Cleanup releases pools; safe to call on a partially built container
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database pool")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	log.Info().Msg("Container cleanup completed")
}
