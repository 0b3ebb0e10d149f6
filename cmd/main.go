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

	"golang.org/x/sync/errgroup"

	"pothole-vision/config"
	"pothole-vision/internal/api/rest"
	"pothole-vision/internal/api/telegram"
	"pothole-vision/internal/container"
	"pothole-vision/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, logg)
	if err != nil {
		logg.Fatalf("Failed to build container: %v", err)
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logg.Errorf("Shutdown error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := rest.NewHandler(appContainer.DetectionService, rest.Limits{
		MaxImageBytes:  cfg.MaxImageBytes,
		MaxVideoBytes:  cfg.MaxVideoBytes,
		MaxBatchImages: cfg.MaxBatchImages,
	}, logg)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rest.WithCORS(handler.Routes(appContainer.FilesDir), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken != "" {
		// Создаём бота
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.DetectionService, telegram.Limits{
			MaxImageBytes: cfg.MaxImageBytes,
			MaxVideoBytes: cfg.MaxVideoBytes,
		}, logg)
		if err != nil {
			logg.Errorf("Failed to create bot: %v", err)
		} else {
			g.Go(func() error {
				logg.Info("Bot is running...")
				return bot.Run(gctx)
			})
		}
	} else {
		logg.Warn("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	if err := g.Wait(); err != nil {
		logg.Errorf("Service error: %v", err)
	}
	logg.Info("Service stopped")
}
