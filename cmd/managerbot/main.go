package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/acropolistg/Manager-Bot/internal/billing"
	"github.com/acropolistg/Manager-Bot/internal/bot"
	"github.com/acropolistg/Manager-Bot/internal/config"
	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/ops"
	"github.com/acropolistg/Manager-Bot/internal/store"
	"github.com/acropolistg/Manager-Bot/internal/telegram"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.Init(cfg); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	if err := run(cfg); err != nil {
		logger.Error(logger.Background(), "app", "fatal",
			slog.String("err", err.Error()),
		)
		_ = logger.Shutdown()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	file := store.NewFileStore(cfg.Store.UsersFile)
	users := file.Load()

	svc := billing.New(cfg.Telegram.AdminID, users, file)
	b := bot.New(cfg, svc)

	opsServer := ops.NewServer(cfg.Ops, svc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return opsServer.Run(gctx)
	})

	g.Go(func() error {
		return telegram.RunTelegram(gctx, telegram.RunOptions{
			Config:      cfg,
			Registry:    b.Registry(),
			Middlewares: telegram.DefaultMiddlewares(cfg, nil),
			Routes:      b.Routes(),
			OnStop: func(ctx context.Context, rt telegram.Runtime) error {
				// Final snapshot so a crash-free shutdown never loses state.
				return svc.Flush()
			},
		})
	})

	return g.Wait()
}
