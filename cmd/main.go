package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/interair/filmtherapy-chat-bot/internal/app"
	"github.com/interair/filmtherapy-chat-bot/internal/config"
	"github.com/interair/filmtherapy-chat-bot/internal/db"
	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

func main() {
	// .env опционален; в контейнере конфиг приходит из окружения.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", "booking-core")
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.NewGormDB(cfg.DB)
	if err != nil {
		log.Error("init db", "error", err)
		os.Exit(1)
	}

	if err := model.AutoMigrate(gormDB); err != nil {
		log.Error("auto migrate", "error", err)
		os.Exit(1)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error("sql DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	engine := app.New(gormDB, cfg, log)

	// Стартовая проверка: хранилище правил доступно и читается.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rules, err := engine.Schedule.GetAll(ctx)
	cancel()
	if err != nil {
		log.Error("read schedule rules", "error", err)
		os.Exit(1)
	}

	log.Info("booking core ready",
		"schedule_rules", len(rules),
		"cache_ttl_sec", cfg.ScheduleCacheTTLSec,
	)

	// Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down booking core")
}
