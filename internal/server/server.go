package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yatube-dev/yatube/backend/internal/config"
	"github.com/yatube-dev/yatube/backend/internal/database"
	"github.com/yatube-dev/yatube/backend/internal/handlers"
	"github.com/yatube-dev/yatube/backend/internal/middleware"
	"github.com/yatube-dev/yatube/backend/internal/pagecache"
	"github.com/yatube-dev/yatube/backend/internal/storage"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
	cache   *pagecache.Store
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	cfg := config.Load()

	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}
	db := database.New()

	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	newServer := &Server{
		db:      db,
		handler: handlers.NewHandler(db.GetDB(), store),
		cache:   pagecache.New(cfg.IndexCacheTTL),
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	fmt.Println("Press Ctrl+C to stop the server")

	return server
}

func buildStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.MinioEndpoint != "" {
		return storage.NewMinio(
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.MinioBucket,
			cfg.MinioUseSSL,
		)
	}
	return storage.NewDisk(cfg.MediaRoot)
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	return Routes(s.handler, s.cache, s.db.Health)
}

// Routes builds the routing table on a fresh engine. Split from NewServer so
// tests can run the real routes against their own database.
func Routes(h *handlers.Handler, cache *pagecache.Store, health func() map[string]string) *gin.Engine {
	handlers.RegisterValidators()

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, health())
	})

	// Public reads. The index page sits behind the short-TTL cache: new
	// posts stay invisible there until expiry or an explicit clear.
	r.GET("/", cache.Middleware(), middleware.OptionalAuth(), h.Post.Index)
	r.GET("/group/:slug", h.Group.Feed)
	r.GET("/profile/:username", middleware.OptionalAuth(), h.Profile.Profile)
	r.GET("/posts/:id", middleware.OptionalAuth(), h.Post.Detail)

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/password_change", middleware.RequireAuth(), h.Auth.PasswordChange)
		auth.POST("/password_reset", h.Auth.PasswordReset)
	}

	// Protected routes (authentication required)
	protected := r.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/create", h.Post.CreateForm)
		protected.POST("/create", h.Post.Create)

		protected.GET("/posts/:id/edit", h.Post.EditForm)
		protected.POST("/posts/:id/edit", h.Post.Edit)

		protected.POST("/posts/:id/comment", h.Comment.Add)

		protected.GET("/follow", h.Profile.FollowFeed)

		// Follow toggles accept GET too so plain links work.
		protected.GET("/profile/:username/follow", h.Profile.Follow)
		protected.POST("/profile/:username/follow", h.Profile.Follow)
		protected.GET("/profile/:username/unfollow", h.Profile.Unfollow)
		protected.POST("/profile/:username/unfollow", h.Profile.Unfollow)
	}

	// Explicit cache clear for the admin path and the test harness.
	r.POST("/internal/cache/clear", func(c *gin.Context) {
		cache.Clear()
		c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
	})

	return r
}
