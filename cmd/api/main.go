package main

import (
	"context"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/repository/postgres"
	sessionport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/auth"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/database"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/imageproc"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/middleware"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/observability"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/redisconn"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/scheduler"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/server"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/reaper"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, "asset-pipeline", cfg.Server.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Upload.SessionStore == "redis" || cfg.RateLimit.Enabled {
		redisClient, err = redisconn.New(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Repositories and stores
	assetRepo := postgres.NewAssetRepo(pool)

	var sessions sessionport.Store
	if cfg.Upload.SessionStore == "redis" {
		sessions = session.NewRedisStore(redisClient)
	} else {
		logger.Warn("using in-memory upload sessions; they are lost on restart and not shared between replicas")
		sessions = session.NewMemoryStore()
	}

	// Infrastructure services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	provider, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to create storage provider", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	defaultFormat, err := valueobject.ParseCodec(cfg.Processing.DefaultFormat)
	if err != nil {
		logger.Fatal("invalid default format", zap.Error(err))
	}

	processor := imageproc.NewProcessor(
		imageproc.WithDecoder(imageproc.CodecDecoder{MaxPixels: cfg.Processing.MaxPixels}),
		imageproc.WithPolicy(imageproc.PolicyFromBounds(cfg.Processing.SizeBounds)),
		imageproc.WithConcurrency(cfg.Processing.Concurrency),
	)

	// Use cases
	uploadSvc := upload.NewService(assetRepo, sessions, provider, processor, upload.Options{
		SessionTTL:        cfg.Upload.SessionTTL,
		PresignTTL:        cfg.Upload.PresignTTL,
		Kinds:             cfg.Upload.Kinds,
		DefaultFormat:     defaultFormat,
		UploadConcurrency: cfg.Upload.UploadConcurrency,
		CleanupTimeout:    cfg.Upload.CleanupTimeout,
	}, logger)
	reaperSvc := reaper.NewService(sessions, provider, reaper.Options{
		Grace:     cfg.Reaper.Grace,
		BatchSize: cfg.Reaper.BatchSize,
	}, logger)

	// Handlers
	uploadHandler := handler.NewUploadHandler(uploadSvc)
	assetHandler := handler.NewAssetHandler(uploadSvc)

	var directUploadHandler *handler.DirectUploadHandler
	var filesDir string
	if local, ok := provider.(*storage.LocalStorage); ok {
		directUploadHandler = handler.NewDirectUploadHandler(local)
		filesDir = local.Dir()
	}

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit, logger)
	}

	// Router
	router := server.NewRouter(server.RouterConfig{
		UploadHandler:       uploadHandler,
		AssetHandler:        assetHandler,
		DirectUploadHandler: directUploadHandler,
		FilesDir:            filesDir,
		AuthMiddleware:      authMiddleware,
		RateLimiter:         rateLimiter,
		Logger:              logger,
		Environment:         cfg.Server.Environment,
	})

	// Background jobs
	jobs := scheduler.New(logger)
	if cfg.Reaper.Enabled {
		err := jobs.Add("reap-abandoned-uploads", cfg.Reaper.Schedule, func(ctx context.Context) error {
			_, err := reaperSvc.Sweep(ctx)
			return err
		})
		if err != nil {
			logger.Fatal("failed to schedule reaper", zap.Error(err))
		}
	}
	jobs.Start()

	// Server
	srv := server.NewServer(server.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Handler:         router.Engine(),
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := jobs.Stop(stopCtx); err != nil {
		logger.Error("scheduler shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
