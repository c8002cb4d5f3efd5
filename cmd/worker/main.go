package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/tawreed/tawreed/internal/app"
	"github.com/tawreed/tawreed/internal/inventory"
	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/orders"
	"github.com/tawreed/tawreed/internal/platform/cache"
	"github.com/tawreed/tawreed/internal/platform/db"
	"github.com/tawreed/tawreed/internal/rates"
	"github.com/tawreed/tawreed/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewNotifier(queue, logger)

	ratesRepo := rates.NewRepository(pool)
	ratesService := rates.NewService(ratesRepo, cache.NewStore(redisClient, cache.DefaultPolicy()))

	inventoryRepo := inventory.NewRepository(pool)
	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, inventoryRepo, func(ctx context.Context, fn func(pgx.Tx) error) error {
		return db.WithTx(ctx, pool, fn)
	})

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, ordersService, notifier)

	deliverer := jobs.NewDeliverer(jobs.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}, cfg.PushGatewayURL, cfg.PushGatewayKey, logger)

	overdueScan := func(ctx context.Context, t *asynq.Task) error {
		flipped, err := invoicesService.OverdueScan(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info("overdue scan finished", slog.Int("flipped", flipped))
		return nil
	}
	ratesExpire := func(ctx context.Context, t *asynq.Task) error {
		expired, err := ratesService.ExpireOutdated(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info("rate expiry sweep finished", slog.Int64("expired", expired))
		return nil
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Deliverer: deliverer,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInvoiceOverdueScan, Handler: overdueScan},
			{Type: jobs.TaskTypeRatesExpire, Handler: ratesExpire},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: jobs.NewInvoiceOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: jobs.NewRatesExpireTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
