package app

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodtracking/backend/config"
	"github.com/pageza/foodtracking/backend/internal/database"
	"github.com/pageza/foodtracking/backend/internal/health"
	"github.com/pageza/foodtracking/backend/internal/metrics"
	"github.com/pageza/foodtracking/backend/internal/middleware"
	"github.com/pageza/foodtracking/backend/internal/router"
	"github.com/pageza/foodtracking/backend/internal/service"
)

// App holds the wired services shared by the API server and foodctl.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Health    service.HealthStore
	Registry  *prometheus.Registry
	Entries   *service.EntryService
	Favorites *service.FavoriteService
	Settings  *service.SettingsService
	Sync      *service.HealthSyncService
	Tokens    *service.TokenService
	Images    *service.ImageService

	syncMetrics *metrics.SyncMetrics
}

// New connects to every configured backend and builds the services. Redis
// and S3 are optional; without them preferences live in memory and photo
// upload is disabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.New(cfg, database.DefaultMigrationsDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		DB:       db,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.syncMetrics, err = metrics.NewSyncMetrics(a.Registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	var prefs service.PreferenceStore = service.NewMemoryPreferenceStore()
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Printf("[App] Warning: Redis unavailable, preferences will not persist: %v", err)
		} else {
			a.Redis = client
			prefs = service.NewRedisPreferenceStore(client, "")
		}
	}

	if cfg.HealthStoreURL != "" {
		a.Health = health.NewClient(cfg.HealthStoreURL, cfg.HealthStoreToken, nil)
	} else {
		log.Println("[App] HEALTH_STORE_URL not set, using the in-memory health store")
		a.Health = health.NewMemoryStore()
	}

	entryRepo := service.NewGormEntryRepository(db)
	a.Entries = service.NewEntryService(entryRepo, a.Health)
	a.Favorites = service.NewFavoriteService(service.NewGormFavoriteRepository(db), entryRepo)
	a.Settings = service.NewSettingsService(prefs)
	a.Sync = service.NewHealthSyncService(entryRepo, a.Health,
		service.WithSyncWindow(cfg.SyncWindowDays),
		service.WithSyncConcurrency(cfg.SyncConcurrency),
		service.WithSyncRecorder(a.syncMetrics),
	)
	a.Tokens = service.NewTokenService(cfg.JWTSecret, service.DefaultTokenTTL)

	if cfg.S3BucketName != "" {
		s3Cfg, err := config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.Printf("[App] Warning: S3 unavailable, photo upload disabled: %v", err)
		} else {
			a.Images = service.NewImageService(s3Cfg, entryRepo)
		}
	}

	return a, nil
}

// Router builds the HTTP surface over the app's services.
func (a *App) Router() (*gin.Engine, error) {
	httpMetrics, err := metrics.NewHTTPMetrics(a.Registry)
	if err != nil {
		return nil, err
	}

	deps := router.Dependencies{
		Tokens:       a.Tokens,
		ClientSecret: a.Config.APIClientSecret,
		Entries:      a.Entries,
		Favorites:    a.Favorites,
		Settings:     a.Settings,
		Syncer:       a.Sync,
		Registry:     a.Registry,
		HTTPMetrics:  httpMetrics,
		Ping: func(ctx context.Context) error {
			return database.HealthCheck(ctx, a.DB)
		},
	}
	if a.Images != nil {
		deps.Images = a.Images
	}
	if a.Redis != nil {
		deps.SyncLimiter = middleware.NewSyncRateLimiter(a.Redis)
	}
	return router.SetupRouter(deps), nil
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("[App] Failed to close Redis: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("[App] Failed to close database: %v", err)
			}
		}
	}
}
