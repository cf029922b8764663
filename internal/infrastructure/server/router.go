package server

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/middleware"
)

const publicFilesPrefix = "assets"

type Router struct {
	engine              *gin.Engine
	uploadHandler       *handler.UploadHandler
	assetHandler        *handler.AssetHandler
	directUploadHandler *handler.DirectUploadHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimiter         *middleware.RateLimiter
	filesDir            string
	logger              *zap.Logger
}

type RouterConfig struct {
	UploadHandler *handler.UploadHandler
	AssetHandler  *handler.AssetHandler
	// DirectUploadHandler and FilesDir are only set for local storage.
	DirectUploadHandler *handler.DirectUploadHandler
	FilesDir            string
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimiter         *middleware.RateLimiter
	Logger              *zap.Logger
	Environment         string
}

func NewRouter(cfg RouterConfig) *Router {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:              engine,
		uploadHandler:       cfg.UploadHandler,
		assetHandler:        cfg.AssetHandler,
		directUploadHandler: cfg.DirectUploadHandler,
		authMiddleware:      cfg.AuthMiddleware,
		rateLimiter:         cfg.RateLimiter,
		filesDir:            cfg.FilesDir,
		logger:              cfg.Logger,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger, "/health"))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.CORS())
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Only finished assets are public; raw uploads under incoming/ are not.
	if r.filesDir != "" {
		r.engine.Static("/files/"+publicFilesPrefix, filepath.Join(r.filesDir, publicFilesPrefix))
	}

	api := r.engine.Group("/api/v1")
	{
		uploads := api.Group("/uploads")
		{
			if r.directUploadHandler != nil {
				uploads.PUT("/direct/*key", r.directUploadHandler.Put)
			}

			admin := uploads.Group("")
			admin.Use(r.authMiddleware.RequireAuth())
			{
				admin.POST("/sign", r.limit("sign", r.uploadHandler.Sign)...)
				admin.POST("/:id/complete", r.limit("complete", r.uploadHandler.Complete)...)
				admin.DELETE("/:id", r.uploadHandler.Cancel)
			}
		}

		assets := api.Group("/assets")
		assets.Use(r.authMiddleware.RequireAuth())
		{
			assets.GET("", r.assetHandler.List)
			assets.GET("/:id", r.assetHandler.Get)
			assets.DELETE("/:id", r.assetHandler.Delete)
		}
	}
}

// limit prefixes h with the rate limiter for scope when one is configured.
func (r *Router) limit(scope string, h gin.HandlerFunc) []gin.HandlerFunc {
	if r.rateLimiter == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{r.rateLimiter.Limit(scope), h}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
