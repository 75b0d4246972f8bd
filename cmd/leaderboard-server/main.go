package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/leaderboard/internal/config"
	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/httpapi"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding config.json, boards.json, and per-board save files")
	flag.Parse()

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatal("create data dir", zap.Error(err))
	}

	cfg, err := config.Load(filepath.Join(*dataDir, "config.json"))
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	reg, err := registry.Load(filepath.Join(*dataDir, "boards.json"), *dataDir, log)
	if err != nil {
		log.Fatal("load registry", zap.Error(err))
	}

	saver := persist.New(reg, *dataDir, log)
	saver.Start(cfg.SaveInterval())
	defer saver.Stop()

	d := dispatcher.New(reg, log)
	engine := httpapi.NewEngine(d, reg, log)
	httpserver := httpapi.NewServer(":"+strconv.Itoa(cfg.Port), engine, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("running HTTP server", zap.Int("port", cfg.Port))
		if err := httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SaveInterval())
	defer cancel()
	if err := httpserver.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}

	saver.Stop()
	if err := saver.SaveAll(context.Background()); err != nil {
		log.Error("final save failed", zap.Error(err))
	}
}

