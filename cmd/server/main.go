package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/internal/api"
	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/service"
	"github.com/snapfeed/snapfeed/internal/session"
	"github.com/snapfeed/snapfeed/internal/uploads"
	"github.com/snapfeed/snapfeed/pkg/config"
	"github.com/snapfeed/snapfeed/pkg/logging"
	"github.com/snapfeed/snapfeed/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Snapfeed server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Open the database and migrate the schema
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close()

	// Session store: Redis when configured, in-memory otherwise
	var sessions session.Store
	redisSessions, err := session.NewRedis(&cfg.Redis, cfg.Session.TTL)
	if err != nil {
		logger.Fatal("Failed to connect session store", zap.Error(err))
	}
	if redisSessions != nil {
		defer redisSessions.Close()
		sessions = redisSessions
	} else {
		sessions = session.NewMemory(cfg.Session.TTL)
	}

	svc := service.New(database, uploads.New(cfg.Uploads.Root), sessions)

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(limitBody(cfg.Uploads.MaxBytes))
	router.MaxMultipartMemory = cfg.Uploads.MaxBytes

	api.NewRouter(svc, &cfg.Session).SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// limitBody caps request bodies; long uploads are bounded here at the
// boundary rather than in the core
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
