package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/plantspeak/internal/config"
	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/middleware"
	"anoa.com/plantspeak/internal/modules/media"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/logger"
	"anoa.com/plantspeak/pkg/ratelimiter"
	"anoa.com/plantspeak/pkg/storage"

	geoHttp "anoa.com/plantspeak/internal/modules/geocoding/delivery/http"
	geoService "anoa.com/plantspeak/internal/modules/geocoding/service"

	searchService "anoa.com/plantspeak/internal/modules/search/service"

	submissionHttp "anoa.com/plantspeak/internal/modules/submission/delivery/http"
	submissionRepo "anoa.com/plantspeak/internal/modules/submission/repository"
	submissionService "anoa.com/plantspeak/internal/modules/submission/service"

	userHttp "anoa.com/plantspeak/internal/modules/user/delivery/http"
	userRepo "anoa.com/plantspeak/internal/modules/user/repository"
	userService "anoa.com/plantspeak/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) (*Server, error) {
	fileStorage, err := NewFileStorage(ctx, cfg.Media, log)
	if err != nil {
		return nil, err
	}

	index := searchService.NewDisabled()
	if cfg.MeiliSearchHost != "" {
		index = searchService.NewMeiliSearchService(searchService.NewMeiliClient(cfg.MeiliSearchHost, cfg.MeiliMasterKey), log)
	}

	limiter := ratelimiter.New(redisClient)
	tokens := session.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	submissionRepository := submissionRepo.NewSubmissionRepository(db, cfg.DB.LockTimeout)
	userRepository := userRepo.NewUserRepository(db, cfg.DB.LockTimeout)

	userSvc := userService.NewUserService(userRepository, submissionRepository, tokens, limiter, cfg.RateLimitRegister, log)
	userHandler := userHttp.NewUserHandler(userSvc)

	sidecar := media.NewSidecar(fileStorage, cfg.Media.MaxUploadBytes, log)
	submissionSvc := submissionService.NewSubmissionService(submissionRepository, sidecar, index, userSvc, limiter, cfg.RateLimitSubmission, log)
	submissionHandler := submissionHttp.NewSubmissionHandler(submissionSvc)

	geocoder := geoService.NewGeocoder(geoService.Config{
		BaseURL:   cfg.Geo.BaseURL,
		IPBaseURL: cfg.Geo.IPBaseURL,
		Timeout:   cfg.Geo.Timeout,
		UserAgent: cfg.Geo.UserAgent,
	}, log)
	geoHandler := geoHttp.NewGeoHandler(geocoder)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(middleware.RequestID())
	router.Use(logger.GinMiddleware(log, "/api/health"))
	router.Use(logger.Recovery(log))

	authMiddleware := middleware.NewAuthMiddleware(tokens, i18n.Parse(cfg.DefaultLanguage))

	api := router.Group("/api")
	api.Use(authMiddleware.Session())

	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.GET("/session", userHandler.Session)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	profile := api.Group("/profile")
	profile.Use(authMiddleware.RequireAuth(), middleware.WithView(session.ViewProfile))
	{
		profile.GET("/me", userHandler.GetCurrentProfile)
		profile.PUT("", userHandler.UpdateProfile)
	}

	submissions := api.Group("/submissions")
	{
		submissions.POST("", middleware.WithView(session.ViewEntry), submissionHandler.Create)

		browse := submissions.Group("")
		browse.Use(middleware.WithView(session.ViewSubmissions))
		browse.GET("", submissionHandler.List)
		browse.GET("/search", submissionHandler.Search)
		browse.GET("/export.csv", submissionHandler.Export)
		browse.GET("/categories", submissionHandler.Vocabulary)
		browse.GET("/:id", submissionHandler.Get)
		browse.GET("/:id/media/:kind", submissionHandler.Media)
	}

	geo := api.Group("/geo")
	{
		geo.GET("/search", geoHandler.Search)
		geo.GET("/reverse", geoHandler.Reverse)
		geo.GET("/ip", geoHandler.FromIP)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		logger:      log,
	}, nil
}

// NewFileStorage builds the attachment backend named by MEDIA_BACKEND.
func NewFileStorage(ctx context.Context, cfg config.MediaConfig, log *zap.Logger) (storage.FileStorage, error) {
	switch cfg.Backend {
	case "local", "":
		return storage.NewLocalStorage(cfg.UploadsDir)
	case "cloudinary":
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		return s, nil
	case "s3":
		s, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			PresignTTL:   cfg.S3PresignTTL,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", cfg.Backend)
	}
}

func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.logger.Info("server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
