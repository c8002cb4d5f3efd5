package main

import (
	"context"
	"log/slog"
	"net/http"
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
	"github.com/tawreed/tawreed/internal/observability"
	"github.com/tawreed/tawreed/internal/orders"
	"github.com/tawreed/tawreed/internal/partners"
	"github.com/tawreed/tawreed/internal/payments"
	"github.com/tawreed/tawreed/internal/platform/cache"
	"github.com/tawreed/tawreed/internal/platform/db"
	"github.com/tawreed/tawreed/internal/quotes"
	"github.com/tawreed/tawreed/internal/rates"
	"github.com/tawreed/tawreed/internal/roles"
	"github.com/tawreed/tawreed/internal/shared"
	"github.com/tawreed/tawreed/internal/shipments"
	"github.com/tawreed/tawreed/internal/users"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

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

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	rolesMW := roles.Middleware{Logger: logger}

	ratesRepo := rates.NewRepository(pool)
	ratesService := rates.NewService(ratesRepo, cache.NewStore(redisClient, cache.DefaultPolicy()))
	ratesHandler := rates.NewHandler(logger, ratesService, rolesMW)

	quotesRepo := quotes.NewRepository(pool)
	quotesService := quotes.NewService(quotesRepo, ratesService)
	quotesHandler := quotes.NewHandler(logger, quotesService, rolesMW)

	shipmentsRepo := shipments.NewRepository(pool)
	shipmentsService := shipments.NewService(shipmentsRepo, notifier)
	shipmentsHandler := shipments.NewHandler(logger, shipmentsService, rolesMW)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rolesMW)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, inventoryRepo, func(ctx context.Context, fn func(pgx.Tx) error) error {
		return db.WithTx(ctx, pool, fn)
	})
	ordersHandler := orders.NewHandler(logger, ordersService, rolesMW)

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, ordersService, notifier)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, rolesMW)

	partnersRepo := partners.NewRepository(pool)
	partnersService := partners.NewService(partnersRepo, notifier)
	partnersHandler := partners.NewHandler(logger, partnersService, rolesMW)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, inventoryRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, rolesMW)

	paymentClient := payments.NewClient(cfg.PaymentProviderURL, cfg.PaymentProviderKey)
	paymentsHandler := payments.NewHandler(logger, paymentClient, shipmentsService, invoicesService, idempotencyStore, cfg.PaymentReturnURL)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		RatesHandler:     ratesHandler,
		QuotesHandler:    quotesHandler,
		ShipmentsHandler: shipmentsHandler,
		InventoryHandler: inventoryHandler,
		OrdersHandler:    ordersHandler,
		InvoicesHandler:  invoicesHandler,
		PartnersHandler:  partnersHandler,
		UsersHandler:     usersHandler,
		PaymentsHandler:  paymentsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
