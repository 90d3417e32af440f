package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing_api/internal/config"
	"billing_api/internal/handler"
	"billing_api/internal/metrics"
	"billing_api/internal/middleware"
	"billing_api/internal/repository"
	"billing_api/internal/service"
	"billing_api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stores bundles the repositories of the selected backend
type stores struct {
	users repository.UserRepository
	bills repository.BillRepository
	ping  handler.Pinger
	close func()
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- Storage ---
	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	st, err := openStores(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTTTL)
	appMetrics := metrics.New()

	// --- Initialize Services ---
	credentials := service.NewCredentialStore(st.users, cfg.BcryptCost, logger)
	authService := service.NewAuthService(credentials, jwtUtil, logger)
	billService := service.NewBillService(st.bills, logger)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, logger, appMetrics)
	billHandler := handler.NewBillHandler(billService, logger, appMetrics)

	// --- Setup Gin Router ---
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(appMetrics),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil, credentials, logger, appMetrics)

	// --- Register Routes ---
	handler.RegisterHealthRoutes(router, st.ping)
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))
	authHandler.RegisterAuthRoutes(&router.RouterGroup)
	billHandler.RegisterBillRoutes(&router.RouterGroup, jwtAuthMW)

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

func openStores(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := config.ConnectDB(ctx, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		if err := config.AutoMigrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			users: repository.NewUserRepository(pool),
			bills: repository.NewBillRepository(pool),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	default:
		client, db, err := config.ConnectMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			users: repository.NewMongoUserRepository(db),
			bills: repository.NewMongoBillRepository(db),
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					logger.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil
	}
}
