package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/config"
	"github.com/Yukoval-Dakia/stone/internal/handler"
	"github.com/Yukoval-Dakia/stone/internal/repository"
	"github.com/Yukoval-Dakia/stone/internal/service"
	"github.com/Yukoval-Dakia/stone/internal/wordpress"
	"github.com/Yukoval-Dakia/stone/pkg/asseturl"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger, store repository.ScientistRepository) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(&cfg.Server)))

	assetRepo, err := repository.NewS3Repository(&cfg.S3, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset repository: %w", err)
	}

	resolver := asseturl.NewResolver(cfg.S3.PublicBaseURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	scientistService := service.NewScientistService(store, assetRepo, resolver, rng, log)

	wpClient := wordpress.NewClient(&cfg.WordPress, log)
	contentService := service.NewContentService(wpClient, log)

	h := handler.NewHandler(scientistService, contentService, &cfg.App, log)

	router.GET("/health", h.HealthCheck)

	scientists := router.Group("/scientists")
	{
		scientists.GET("", h.ListScientists)
		scientists.GET("/:id", h.GetScientist)
		scientists.POST("", h.CreateScientist)
		scientists.PATCH("/:id", h.UpdateScientist)
		scientists.DELETE("/:id", h.DeleteScientist)
	}

	wp := router.Group("/wordpress")
	{
		wp.GET("/pages/:slug", h.GetPageBySlug)
		wp.GET("/posts", h.ListPosts)
		wp.GET("/posts/:id", h.GetPost)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        router,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

func corsConfig(cfg *config.ServerConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	c.MaxAge = 12 * time.Hour
	return c
}

func (s *Server) Run() error {
	s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
