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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-founder-sourcing/internal/app"
	"go-founder-sourcing/internal/config"
	"go-founder-sourcing/internal/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer zl.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize", zap.Error(err))
	}
	defer a.Close()

	runs := newRunManager(ctx, a.Pipeline, 30*time.Minute, zl)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(runs, a.Metrics.Handler()),
	}

	go func() {
		zl.Info("Server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("server shutdown", zap.Error(err))
	}
	runs.Wait()
}

func newRouter(runs *runManager, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Founder sourcing API is running!",
			"status":  "healthy",
			"running": runs.Running(),
		})
	})

	r.GET("/metrics", gin.WrapH(metrics))

	r.POST("/runs", func(c *gin.Context) {
		if !runs.Start() {
			c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	})

	r.GET("/runs/last", func(c *gin.Context) {
		last, ok := runs.Last()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run has finished yet"})
			return
		}
		c.JSON(http.StatusOK, last)
	})

	return r
}
