package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/config"
	"fireforce-invoice-api/internal/handlers"
	"fireforce-invoice-api/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handlers.SetupMiddleware(router)
	handlers.SetupRoutes(router, &handlers.RouterConfig{
		DataService:    container.DataService,
		AuthService:    container.AuthService,
		BackupService:  container.BackupService,
		RestoreService: container.RestoreService,
		Scheduler:      container.Scheduler,
		TokenService:   container.TokenService,
		OfficeInfo:     cfg.Office,
	})

	// The scheduler nags about stale backups and runs automatic ones
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	container.Scheduler.Start(schedulerCtx)
	defer stopScheduler()

	// Log reminders so they reach the operator even without a client
	// polling the stats endpoint
	go func() {
		for event := range container.Scheduler.Subscribe() {
			container.Logger.WithField("last_backup", event.LastBackup).Warn(event.Message)
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	container.Logger.WithField("port", cfg.Port).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		container.Logger.Fatalf("Server forced to shutdown: %v", err)
	}

	container.Logger.Info("Server exited")
}
