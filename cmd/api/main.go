package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/patto-app/patto-api/api/swagger"
	"github.com/patto-app/patto-api/internal/handler"
	"github.com/patto-app/patto-api/internal/middleware"
	"github.com/patto-app/patto-api/internal/repository"
	"github.com/patto-app/patto-api/internal/service"
	"github.com/patto-app/patto-api/pkg/cache"
	"github.com/patto-app/patto-api/pkg/config"
	"github.com/patto-app/patto-api/pkg/database"
	"github.com/patto-app/patto-api/pkg/export"
	"github.com/patto-app/patto-api/pkg/logger"
	corsmiddleware "github.com/patto-app/patto-api/pkg/middleware/cors"
	reqidmiddleware "github.com/patto-app/patto-api/pkg/middleware/requestid"
	"github.com/patto-app/patto-api/pkg/token"
)

// @title Patto API
// @version 1.0.0
// @description Daily support record keeping for after-school day services
// @BasePath /
// @schemes http

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
		logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	profileRepo := repository.NewProfileRepository(db)
	childRepo := repository.NewChildRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	phraseRepo := repository.NewPhraseRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	authService := service.NewAuthService(profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "patto-api",
	})
	recordService := service.NewRecordService(recordRepo, childRepo, phraseRepo, validate, logr)
	childService := service.NewChildService(childRepo, validate, logr)
	phraseService := service.NewPhraseService(phraseRepo, validate, logr)
	generationService := service.NewGenerationService(cfg.Generation, validate, logr)
	profileService := service.NewProfileService(profileRepo, validate, logr)
	facilityService := service.NewFacilityService(facilityRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, childRepo, validate, logr)
	statsService := service.NewStatsService(statsRepo, recordRepo, profileRepo, cacheRepo, cfg.Stats, logr)
	exportService := service.NewExportService(recordRepo, childRepo, attendanceRepo,
		export.NewCSVExporter(), export.NewPDFExporter("", ""), logr)
	metricsService := service.NewMetricsService()

	inviteSigner := token.NewInviteSigner(cfg.Invites.SigningSecret, cfg.Invites.TTL)
	inviteService := service.NewInviteService(inviteRepo, profileRepo, authService, inviteSigner, cfg.Invites.JoinBaseURL, validate, logr)

	adminSigner := middleware.NewAdminSessionSigner(cfg.Admin.Password, cfg.Admin.SessionTTL)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	recordHandler := handler.NewRecordHandler(recordService, generationService)
	childHandler := handler.NewChildHandler(childService)
	phraseHandler := handler.NewPhraseHandler(phraseService)
	staffHandler := handler.NewStaffHandler(profileService, inviteService)
	joinHandler := handler.NewJoinHandler(inviteService)
	facilityHandler := handler.NewFacilityHandler(facilityService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	exportHandler := handler.NewExportHandler(exportService)
	adminHandler := handler.NewAdminHandler(statsService, facilityService, adminSigner, cfg.Admin.Password)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.GET("/join", joinHandler.Inspect)
		api.POST("/join", joinHandler.Redeem)

		authed := api.Group("")
		authed.Use(middleware.JWT(authService))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.POST("/auth/change-password", authHandler.ChangePassword)

			authed.GET("/me", staffHandler.Me)
			authed.PATCH("/profile", staffHandler.UpdateDisplayName)

			authed.GET("/catalogs", childHandler.Catalogs)

			authed.GET("/children", childHandler.List)
			authed.POST("/children", childHandler.Create)
			authed.GET("/children/:id", childHandler.Get)
			authed.PUT("/children/:id", childHandler.Update)
			authed.DELETE("/children/:id", childHandler.Deactivate)

			authed.GET("/records", recordHandler.History)
			authed.POST("/records", recordHandler.Save)
			authed.GET("/records/form/:childId", recordHandler.Form)
			authed.POST("/records/generate", recordHandler.Generate)
			authed.DELETE("/records/:id", recordHandler.Delete)

			authed.GET("/phrases", phraseHandler.List)
			authed.POST("/phrases", phraseHandler.Create)
			authed.PUT("/phrases/:id", phraseHandler.Update)
			authed.DELETE("/phrases/:id", phraseHandler.Delete)

			authed.GET("/attendances", attendanceHandler.DailySheet)
			authed.PUT("/attendances", attendanceHandler.Mark)
			authed.GET("/attendances/children/:childId", attendanceHandler.MonthlyByChild)

			authed.GET("/exports/daily-log", exportHandler.DailyLog)
			authed.GET("/exports/monthly-attendance", exportHandler.MonthlyAttendance)
			authed.GET("/exports/service-record", exportHandler.ServiceRecord)

			authed.GET("/facility", facilityHandler.Get)

			admin := authed.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.PUT("/facility", facilityHandler.Update)
				admin.GET("/staff", staffHandler.List)
				admin.PATCH("/staff/:id/role", staffHandler.ToggleRole)
				admin.POST("/invites", staffHandler.IssueInvite)
			}
		}
	}

	operator := r.Group("/admin")
	operator.Use(middleware.AdminGate(adminSigner))
	{
		operator.POST("/login", adminHandler.Login)
		operator.POST("/logout", adminHandler.Logout)

		operator.GET("/api/stats", adminHandler.Stats)
		operator.GET("/api/facilities", adminHandler.Facilities)
		operator.POST("/api/facilities", adminHandler.CreateFacility)
		operator.GET("/api/facilities/:id", adminHandler.FacilityDetail)
		operator.PUT("/api/facilities/:id", adminHandler.UpdateFacility)
		operator.GET("/api/users", adminHandler.Users)
		operator.GET("/api/records/breakdown", adminHandler.Breakdown)
		operator.GET("/api/records/recent", adminHandler.RecentRecords)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
