package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"agrilocal/internal/catalog"
	"agrilocal/internal/config"
	"agrilocal/internal/flow"
	"agrilocal/internal/geo"
	custommiddleware "agrilocal/internal/middleware"
	"agrilocal/internal/repository"
	"agrilocal/internal/service"
	"agrilocal/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)

	// Initialize services. The catalog browses whatever the product
	// repository reports as available.
	authService := service.NewAuthService(profileRepo, refreshTokenRepo, cfg.JWT.Secret)
	productService := service.NewProductService(productRepo, profileRepo)
	catalogService := service.NewCatalogService(catalog.SourceFunc(productRepo.ListAvailable), productRepo)

	// Flow sessions live in Redis; the locator backs location detection
	flowStore := flow.NewStore(redisClient, cfg.Flow.SessionTTL)
	locator := geo.NewHTTPLocator(cfg.Geo.ProviderURL, cfg.Geo.Timeout, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	flowHandler := transport.NewFlowHandler(flowStore, authService, locator, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireFarmer := custommiddleware.RequireFarmer(logger)

	// Auth endpoints are rate limited per client
	authRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:auth",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(authRateLimit)
		authHandler.RegisterRoutes(r, authMiddleware)
	})
	catalogHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, requireFarmer)
	flowHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
