// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-payment-notifier/internal/config"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/adapter"
	"telegram-payment-notifier/internal/infra/logging"
	"telegram-payment-notifier/internal/infra/metrics"
	pay "telegram-payment-notifier/internal/infra/payment"
	red "telegram-payment-notifier/internal/infra/redis"
	"telegram-payment-notifier/internal/infra/sched"
	tele "telegram-payment-notifier/internal/infra/telegram"
	"telegram-payment-notifier/internal/infra/web"
	"telegram-payment-notifier/internal/infra/worker"
	"telegram-payment-notifier/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop notifier)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	recipientStore := red.NewRecipientStore(redisClient)
	taskStore := red.NewRetryTaskStore(redisClient)

	// ---- Notifier & recipient ----
	var notifier adapter.Notifier
	var chatID int64
	if cfg.Runtime.Dev {
		notifier = tele.NewNoopNotifier(logger)
		chatID = cfg.Telegram.ChatID
		if chatID == 0 {
			logger.Warn().Msg("dev mode without telegram.chat_id; notifications go to chat 0")
		}
	} else {
		tgNotifier, err := tele.NewNotifier(cfg.Telegram.Token, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		notifier = tgNotifier

		// Resolve the single notification recipient before the server starts.
		resolveCtx, resolveCancel := context.WithTimeout(ctx, time.Minute)
		chatID, err = usecase.ResolveRecipient(resolveCtx, cfg.Telegram.ChatID, recipientStore, tgNotifier, logger)
		resolveCancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("no notification recipient: set telegram.chat_id or message the bot")
		}
	}
	logger.Info().Int64("chat_id", chatID).Msg("notification recipient resolved")

	// ---- Payment gateway ----
	gateway := pay.NewYooKassaGateway(cfg.YooKassa.ShopID, cfg.YooKassa.SecretKey, cfg.YooKassa.BaseURL, pay.UUIDKeyGenerator{})

	// ---- Retry scheduler ----
	// payUC is assigned below; the closures only run once the scheduler ticks.
	var payUC usecase.PaymentUseCase
	pool := worker.NewPool(cfg.Retry.Workers, logger)
	pool.Start(ctx)
	scheduler := sched.NewRetryScheduler(
		taskStore,
		pool,
		func(ctx context.Context, task *model.RetryTask) (*model.Payment, error) {
			return payUC.RecreateFromTask(ctx, task)
		},
		func(ctx context.Context, task *model.RetryTask, payment *model.Payment) {
			payUC.NotifyRetrySucceeded(ctx, task, payment)
		},
		func(ctx context.Context, task *model.RetryTask) {
			payUC.NotifyRetryExhausted(ctx, task)
		},
		cfg.Retry.Tick,
		cfg.Retry.Delay,
		logger,
	)
	payUC = usecase.NewPaymentUseCase(gateway, notifier, scheduler, chatID, cfg.Server.PublicURL, cfg.Retry.MaxAttempts, logger)
	go scheduler.Start(ctx)

	// ---- HTTP server ----
	metrics.MustRegister()
	srv := web.NewServer(payUC, scheduler, cfg.Server.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
}
