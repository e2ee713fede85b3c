// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ecpay-checkout-bot/internal/application"
	"ecpay-checkout-bot/internal/config"
	payAdapters "ecpay-checkout-bot/internal/infra/adapters/payment"
	tele "ecpay-checkout-bot/internal/infra/adapters/telegram"
	"ecpay-checkout-bot/internal/infra/logging"
	"ecpay-checkout-bot/internal/infra/metrics"
	red "ecpay-checkout-bot/internal/infra/redis"
	"ecpay-checkout-bot/internal/infra/web"
	"ecpay-checkout-bot/internal/usecase"
)

var (
	version = "1.2.0"
	commit  = "dev"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose output)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Shutdown signal ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info().Msg("shutdown requested")
		cancel()
	}()

	// ---- Setup web UI ----
	// When the credentials ship incomplete the process serves the setup
	// form and waits; the bot starts once they are saved.
	var webSrv *web.Server
	if cfg.Web.Enabled {
		webSrv = web.NewServer(cfg, logger)
		go func() {
			if err := webSrv.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("web server stopped")
			}
		}()
	}
	if !cfg.ECPay.Complete() {
		if webSrv == nil {
			logger.Fatal().Msg("ecpay credentials incomplete and web setup disabled")
		}
		logger.Info().Msg("waiting for merchant credentials via the setup UI")
		select {
		case <-webSrv.Ready():
			logger.Info().Msg("merchant credentials configured")
		case <-ctx.Done():
			return
		}
	}

	// ---- Redis (optional, rate limiting only) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.addr not set; per-user rate limiting disabled")
	}

	// ---- Payment gateway ----
	gateway, err := payAdapters.NewECPayGateway(payAdapters.Config{
		MerchantID:        cfg.ECPay.MerchantID,
		HashKey:           cfg.ECPay.HashKey,
		HashIV:            cfg.ECPay.HashIV,
		PaymentType:       cfg.ECPay.PaymentType,
		EncryptType:       cfg.ECPay.EncryptType,
		ExpireDays:        cfg.ECPay.ExpireDays,
		ReturnURL:         cfg.ECPay.ReturnURL,
		ClientRedirectURL: cfg.ECPay.ClientRedirectURL,
		Sandbox:           cfg.ECPay.Sandbox,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("ecpay gateway")
	}
	logger.Info().
		Str("gateway", gateway.Name()).
		Str("merchant_id", cfg.ECPay.MerchantID).
		Bool("sandbox", cfg.ECPay.Sandbox).
		Msg("payment gateway ready")

	// ---- Use cases and facade ----
	paymentUC := usecase.NewPaymentUseCase(gateway, logger)
	facade := application.NewBotFacade(paymentUC, &cfg.ECPay)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	if strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}

	logger.Info().Int("workers", cfg.Bot.Workers).Msg("starting telegram polling")
	if err := botAdapter.StartPolling(ctx); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("telegram polling stopped")
	}
}
