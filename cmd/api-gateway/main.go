package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushub/campus-portal-api/api/swagger"
	"github.com/campushub/campus-portal-api/internal/handler"
	"github.com/campushub/campus-portal-api/internal/middleware"
	"github.com/campushub/campus-portal-api/internal/repository"
	"github.com/campushub/campus-portal-api/internal/service"
	"github.com/campushub/campus-portal-api/pkg/cache"
	"github.com/campushub/campus-portal-api/pkg/config"
	"github.com/campushub/campus-portal-api/pkg/database"
	"github.com/campushub/campus-portal-api/pkg/logger"
	"github.com/campushub/campus-portal-api/pkg/mail"
	corsmiddleware "github.com/campushub/campus-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/campus-portal-api/pkg/middleware/requestid"
)

// @title Campus Portal API
// @version 1.0.0
// @description Identity, access control and approval workflows for the campus portal
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Analytics degrades to uncached reads without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	mailer := mail.New(cfg.SMTP, logr)
	validate := validator.New()

	principalRepo := repository.NewPrincipalRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	instituteRepo := repository.NewInstituteRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(principalRepo, auditRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	authzSvc := service.NewAuthzService(principalRepo, logr)
	achievementSvc := service.NewAchievementService(achievementRepo, principalRepo, authzSvc, auditRepo, mailer, validate, logr)
	instituteSvc := service.NewInstituteService(instituteRepo, auditRepo, mailer, validate, logr)

	var analyticsSvc *service.AnalyticsService
	if cfg.Analytics.Enabled {
		analyticsSvc = service.NewAnalyticsService(analyticsRepo, cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr)
	} else {
		analyticsSvc = service.NewAnalyticsService(analyticsRepo, nil, metricsSvc, cfg.Analytics.CacheTTL, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.RegisterRoutes(api, handler.Dependencies{
		Auth:        authSvc,
		Cookie:      handler.CookieConfig{MaxAge: cfg.JWT.Expiration, Secure: cfg.Env == config.EnvProduction},
		Achievement: achievementSvc,
		Institute:   instituteSvc,
		Analytics:   analyticsSvc,
		Audit:       auditRepo,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
