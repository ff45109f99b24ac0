// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ssfi-membership-portal/internal/config"
	"ssfi-membership-portal/internal/domain/ports/adapter"
	"ssfi-membership-portal/internal/infra/api"
	pg "ssfi-membership-portal/internal/infra/db/postgres"
	"ssfi-membership-portal/internal/infra/gateway"
	"ssfi-membership-portal/internal/infra/logging"
	"ssfi-membership-portal/internal/infra/metrics"
	"ssfi-membership-portal/internal/infra/notify"
	red "ssfi-membership-portal/internal/infra/redis"
	"ssfi-membership-portal/internal/infra/web"
	"ssfi-membership-portal/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Redis (optional: limiter and lock degrade to off) ----
	var limiter usecase.RateLimiter
	var locker adapter.PaymentLocker
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; otp throttling and webhook locking disabled")
	}

	// ---- Repositories ----
	counterRepo := pg.NewCounterRepo(pool)
	hierarchyRepo := pg.NewHierarchyRepo(pool)
	registrantRepo := pg.NewRegistrantRepo(pool)
	otpRepo := pg.NewOTPRepo(pool)
	ledgerRepo := pg.NewLedgerRepo(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	eventRegRepo := pg.NewEventRegistrationRepo(pool)

	// ---- Delivery adapter ----
	var sender adapter.CodeSender
	if cfg.Runtime.Dev || cfg.SMS.BaseURL == "" {
		sender = notify.NewNoopSender()
		logger.Warn().Msg("sms gateway not configured; codes are not delivered")
	} else {
		sender, err = notify.NewSMSSender(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
		if err != nil {
			log.Fatalf("sms sender: %v", err)
		}
	}

	// ---- Use cases ----
	allocator := usecase.NewSequenceAllocator(counterRepo, logger)
	verificationUC := usecase.NewVerificationUseCase(registrantRepo, otpRepo, sender, limiter, tm, usecase.VerificationConfig{
		CodeTTL:     cfg.OTP.TTL,
		IssueLimit:  cfg.OTP.IssueLimit,
		IssueWindow: cfg.OTP.IssueWindow,
	}, logger)
	registrationUC := usecase.NewRegistrationUseCase(hierarchyRepo, registrantRepo, allocator, verificationUC, logger)
	approvalUC := usecase.NewApprovalUseCase(registrantRepo, logger)

	decoder := gateway.NewWebhookDecoder(cfg.Payment.WebhookSecret)
	reconcileUC := usecase.NewReconcileUseCase(decoder, locker, ledgerRepo, membershipRepo, eventRegRepo, registrantRepo, tm, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	srv := api.NewServer(registrationUC, verificationUC, approvalUC, reconcileUC, auth,
		cfg.Payment.SignatureHeader, cfg.HTTP.WebhookTimeout, logger)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: srv.Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.HTTP.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// Periodic pool stats for the dashboard.
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
