package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/healthlab/pkg/api"
	"github.com/synaptica-ai/healthlab/pkg/common/config"
	"github.com/synaptica-ai/healthlab/pkg/common/database"
	"github.com/synaptica-ai/healthlab/pkg/common/kafka"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/middleware"
	"github.com/synaptica-ai/healthlab/pkg/common/random"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
	"github.com/synaptica-ai/healthlab/pkg/observability/metrics"
	"github.com/synaptica-ai/healthlab/pkg/report"
	"github.com/synaptica-ai/healthlab/pkg/risk"
	"github.com/synaptica-ai/healthlab/pkg/staging"
	"github.com/synaptica-ai/healthlab/pkg/textclass"
)

func main() {
	logger.Init("assessment-service")
	cfg := config.Load()

	profiles, err := textclass.LoadProfiles(cfg.TextProfilesPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.TextProfilesPath).Fatal("Failed to load text profiles")
	}

	src := random.New(cfg.RandomSeed)
	store := newStagingStore(cfg)
	m := metrics.New()

	var publisher api.Publisher
	if cfg.EventsEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.AssessmentEventsTopic)
		defer producer.Close()
		publisher = producer
	}

	service := api.NewService(api.Deps{
		Scorer:     risk.NewScorer(src, report.SystemClock),
		Summarizer: dataset.NewSummarizer(src, report.SystemClock, cfg.PreviewRows),
		Classifier: textclass.NewClassifier(profiles, report.SystemClock),
		Store:      store,
		Publisher:  publisher,
		Metrics:    m,

		PublishTimeout: cfg.PublishTimeout,
	})

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst), middleware.BodyLimit(cfg.MaxUploadBytes))
	api.NewHTTPHandler(service).Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":    cfg.ServerHost,
			"port":    cfg.ServerPort,
			"events":  cfg.EventsEnabled,
			"staging": cfg.StagingBackend,
		}).Info("Assessment Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Assessment Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Assessment Service stopped")
}

// newStagingStore uses Redis when configured and reachable, otherwise process memory.
func newStagingStore(cfg *config.Config) staging.Store {
	if cfg.StagingBackend != "redis" {
		return staging.NewMemoryStore(cfg.StagingTTL)
	}
	client, err := database.OpenRedis(context.Background(), cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis staging unavailable, using in-memory staging")
		return staging.NewMemoryStore(cfg.StagingTTL)
	}
	return staging.NewRedisStore(client, cfg.StagingTTL)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
