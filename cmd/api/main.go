package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/skolaris/skolaris-api/api/swagger"
	"github.com/skolaris/skolaris-api/internal/handler"
	"github.com/skolaris/skolaris-api/internal/middleware"
	"github.com/skolaris/skolaris-api/internal/repository"
	"github.com/skolaris/skolaris-api/internal/service"
	"github.com/skolaris/skolaris-api/pkg/cache"
	"github.com/skolaris/skolaris-api/pkg/config"
	"github.com/skolaris/skolaris-api/pkg/database"
	"github.com/skolaris/skolaris-api/pkg/logger"
	corsmiddleware "github.com/skolaris/skolaris-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skolaris/skolaris-api/pkg/middleware/requestid"
)

// @title Skolaris API
// @version 0.1.0
// @description Scheduling and ordered-assignment backend for school planning
// @BasePath /api/v1
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

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Assignments.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, assignment boards uncached", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret)

	sessionRepo := repository.NewSessionRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	planningSvc := service.NewPlanningService(sessionRepo, validate, logr)
	moduleSvc := service.NewModuleService(moduleRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, logr)
	exportSvc := service.NewExportService(sessionRepo, courseRepo, logr)

	moduleCoursesSvc := service.NewAssignmentService(
		"module", "course",
		repository.NewModuleCourseLinks(db),
		repository.NewModuleAssignmentViews(db),
		moduleRepo, courseRepo,
		cacheRepo, cfg.Assignments.CacheTTL, metricsSvc,
		validate, logr,
	)
	courseModulesSvc := service.NewAssignmentService(
		"course", "module",
		repository.NewCourseModuleLinks(db),
		repository.NewCourseAssignmentViews(db),
		courseRepo, moduleRepo,
		cacheRepo, cfg.Assignments.CacheTTL, metricsSvc,
		validate, logr,
	)

	sessionHandler := handler.NewSessionHandler(planningSvc, cfg.Planning.MaxPageSize)
	moduleHandler := handler.NewModuleHandler(moduleSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	moduleCoursesHandler := handler.NewModuleAssignmentHandler(moduleCoursesSvc)
	courseModulesHandler := handler.NewCourseAssignmentHandler(courseModulesSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	api.GET("/sessions", sessionHandler.List)
	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.PUT("/sessions/:id", sessionHandler.Update)
	api.DELETE("/sessions/:id", sessionHandler.Delete)

	api.GET("/modules", moduleHandler.List)
	api.GET("/modules/:id", moduleHandler.Get)
	api.GET("/modules/:id/assignments", moduleCoursesHandler.Board)
	api.POST("/modules/:id/courses", moduleCoursesHandler.Add)
	api.PUT("/modules/:id/courses", moduleCoursesHandler.Replace)
	api.POST("/modules/:id/courses/batch", moduleCoursesHandler.Batch)
	api.DELETE("/modules/:id/courses/:courseId", moduleCoursesHandler.Remove)
	api.PATCH("/modules/:id/courses/:courseId", moduleCoursesHandler.Deactivate)

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	api.GET("/courses/:id/assignments", courseModulesHandler.Board)
	api.POST("/courses/:id/modules", courseModulesHandler.Add)
	api.PUT("/courses/:id/modules", courseModulesHandler.Replace)
	api.POST("/courses/:id/modules/batch", courseModulesHandler.Batch)
	api.DELETE("/courses/:id/modules/:moduleId", courseModulesHandler.Remove)
	api.PATCH("/courses/:id/modules/:moduleId", courseModulesHandler.Deactivate)

	if cfg.Export.Enabled {
		api.GET("/planning/export", exportHandler.PlanningPDF)
		api.GET("/courses/export", exportHandler.CoursesCSV)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
