package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"olea/internal/extraction"
	extractionhandler "olea/internal/extraction/handler"
	formhandler "olea/internal/form/handler"
	formstore "olea/internal/form/store"
	jwttoken "olea/internal/jwt_token"
	"olea/internal/platform/config"
	"olea/internal/platform/httpserver"
	"olea/internal/platform/logger"
	"olea/internal/platform/metrics"
	"olea/internal/platform/postgres"
	"olea/internal/platform/redis"
	"olea/internal/prediction"
	predictionhandler "olea/internal/prediction/handler"
	predictionmetrics "olea/internal/prediction/metrics"
	predictionstore "olea/internal/prediction/store"
	"olea/internal/session"
	sessionhandler "olea/internal/session/handler"
	"olea/internal/transport/http/router"
	"olea/internal/user"
	userhandler "olea/internal/user/handler"
	userstore "olea/internal/user/store"
	"olea/pkg/platform/audit"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional infrastructure: each backend degrades gracefully when its
	// URL is absent.
	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	var auditPublisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		auditPublisher = kafka
	}

	platformMetrics := metrics.New()
	predMetrics := predictionmetrics.New()

	// Stores: postgres when configured, memory otherwise.
	var (
		forms       formhandler.Store
		predictions prediction.Store
		users       user.Store
	)
	if pool != nil {
		formsPG := formstore.NewPostgres(pool)
		predictionsPG := predictionstore.NewPostgres(pool)
		usersPG := userstore.NewPostgres(pool)
		for _, m := range []interface {
			Migrate(context.Context) error
		}{formsPG, predictionsPG, usersPG} {
			if err := m.Migrate(ctx); err != nil {
				log.Error("migration failed", "error", err)
				os.Exit(1)
			}
		}
		forms, predictions, users = formsPG, predictionsPG, usersPG
	} else {
		forms, predictions, users = formstore.NewInMemory(), predictionstore.NewInMemory(), userstore.NewInMemory()
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "olea", "olea")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	extractionSvc := extraction.NewService(
		extraction.NewHTTPEngine(cfg.OCREngineURL),
		extraction.WithLogger(log),
		extraction.WithMetrics(platformMetrics),
		extraction.WithAuditPublisher(auditPublisher),
	)

	sessions := session.NewRouter(
		session.WithLogger(log),
		session.WithAuditPublisher(auditPublisher),
	)

	orchestrator := prediction.NewOrchestrator(
		prediction.NewScoringClient(cfg.ScoringURL),
		prediction.NewExplanationClient(cfg.ExplanationURL),
		predictions,
		prediction.WithLogger(log),
		prediction.WithCache(prediction.NewCache(cache, cfg.CacheTTL, log)),
		prediction.WithSessions(sessions),
		prediction.WithMetrics(predMetrics),
		prediction.WithAuditPublisher(auditPublisher),
	)

	userSvc := user.NewService(users, jwtService, cfg.TokenTTL,
		user.WithLogger(log),
		user.WithMetrics(platformMetrics),
		user.WithAuditPublisher(auditPublisher),
	)

	api := router.New(router.Deps{
		Logger:     log,
		Metrics:    platformMetrics,
		Cache:      cache,
		Extraction: extractionhandler.New(extractionSvc, log),
		Forms:      formhandler.New(forms, log),
		Prediction: predictionhandler.New(orchestrator, forms, log),
		Session:    sessionhandler.New(sessions, extractionSvc, orchestrator, log),
		Users:      userhandler.New(userSvc, validator, log),
	})

	srv := httpserver.New(cfg.Addr, api)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
