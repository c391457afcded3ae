package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/infowows/trg-crm-sub000/internal/app"
	"github.com/infowows/trg-crm-sub000/internal/auth"
	"github.com/infowows/trg-crm-sub000/internal/crm/care"
	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/opportunities"
	"github.com/infowows/trg-crm-sub000/internal/crm/quotations"
	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/crm/surveys"
	"github.com/infowows/trg-crm-sub000/internal/observability"
	"github.com/infowows/trg-crm-sub000/internal/platform/blob"
	"github.com/infowows/trg-crm-sub000/internal/platform/cache"
	"github.com/infowows/trg-crm-sub000/internal/platform/db"
	"github.com/infowows/trg-crm-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	validate := validator.New()
	metrics := observability.NewMetrics()
	blobs := blob.NewHTTPStore(cfg.BlobURL)
	gen := sequence.NewGenerator(sequence.NewCounters(dbpool))

	tokens := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL, redisClient)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, validate)

	customerRepo := customers.NewRepository(dbpool)
	customerService := customers.NewService(customerRepo, gen)
	customerHandler := customers.NewHandler(logger, customerService, validate)

	opportunityRepo := opportunities.NewRepository(dbpool)
	opportunityService := opportunities.NewService(opportunityRepo, customerRepo, gen)
	opportunityHandler := opportunities.NewHandler(logger, opportunityService, validate)

	surveyRepo := surveys.NewRepository(dbpool)
	surveyService := surveys.NewService(surveyRepo, customerRepo)
	surveyHandler := surveys.NewHandler(logger, surveyService, validate)

	quotationRepo := quotations.NewRepository(dbpool)
	quotationService := quotations.NewService(logger, quotationRepo, customerRepo, surveyRepo)
	quotationHandler := quotations.NewHandler(logger, quotationService, validate)

	careRepo := care.NewRepository(dbpool)
	careService := care.NewService(logger, careRepo, customerRepo, opportunityRepo, blobs, gen)
	careHandler := care.NewHandler(logger, careService, validate)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		TokenManager:       tokens,
		AuthHandler:        authHandler,
		CustomerHandler:    customerHandler,
		OpportunityHandler: opportunityHandler,
		CareHandler:        careHandler,
		SurveyHandler:      surveyHandler,
		QuotationHandler:   quotationHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
