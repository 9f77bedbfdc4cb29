package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/app"
	"go-founder-sourcing/internal/config"
	"go-founder-sourcing/internal/logger"
	"go-founder-sourcing/internal/models"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $SOURCER_CONFIG or configs/config.yaml)")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	logDir := flag.String("log-dir", "logs", "directory for the per-run stats file")
	flag.Parse()

	os.Exit(run(*configPath, *timeout, *logDir))
}

// run returns the process exit code so deferred cleanup always happens.
func run(configPath string, timeout time.Duration, logDir string) int {
	//load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("❌ Failed to load config: %v", err)
		return 1
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Printf("❌ Failed to init logger: %v", err)
		return 1
	}
	defer zl.Sync()
	zl.Info("🔧 Config loaded",
		zap.String("store", cfg.Store.Backend),
		zap.String("ai", cfg.AI.Provider),
		zap.String("cache", cfg.Cache.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Error("❌ Failed to initialize", zap.Error(err))
		return 1
	}
	defer a.Close()

	zl.Info("🚀 Starting founder sourcing run...")
	stats, runErr := a.Pipeline.Run(ctx)
	if runErr != nil {
		zl.Error("❌ Run aborted", zap.Error(runErr))
		if a.Reporter != nil {
			if err := a.Reporter.SendError(runErr); err != nil {
				zl.Warn("⚠️ Failed to send error to Telegram", zap.Error(err))
			}
		}
	}

	//push before exit, nothing will scrape a finished batch job
	pushCtx, pushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pushCancel()
	if err := a.Metrics.Push(pushCtx, cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
		zl.Warn("⚠️ Failed to push metrics", zap.Error(err))
	}

	saveStats(zl, logDir, stats)

	zl.Info("🏁 Execution finished.")
	if runErr != nil {
		return 1
	}
	return 0
}

func saveStats(zl *zap.Logger, dir string, stats models.RunStats) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		zl.Warn("⚠️ Failed to create logs directory", zap.Error(err))
		return
	}

	//gen filename: sourcing-run-YYYY-MM-DD.json
	filename := fmt.Sprintf("sourcing-run-%s.json", stats.StartedAt.Format("2006-01-02"))
	filePath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(stats, "", " ")
	if err != nil {
		zl.Warn("⚠️ Failed to marshal run stats", zap.Error(err))
		return
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		zl.Warn("⚠️ Failed to write stats file", zap.Error(err))
		return
	}
	zl.Info("📁 Run stats saved", zap.String("path", filePath))
}
