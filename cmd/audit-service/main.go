package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/healthlab/pkg/audit"
	"github.com/synaptica-ai/healthlab/pkg/common/config"
	"github.com/synaptica-ai/healthlab/pkg/common/database"
	"github.com/synaptica-ai/healthlab/pkg/common/kafka"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/middleware"
	"github.com/synaptica-ai/healthlab/pkg/dlp"
	"github.com/synaptica-ai/healthlab/pkg/observability/metrics"
)

func main() {
	logger.Init("audit-service")
	cfg := config.Load()

	db, err := database.OpenPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate audit tables")
	}

	m := metrics.New()
	rules, err := dlp.LoadRules(cfg.DLPRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load DLP rules, using defaults")
		rules = dlp.DefaultRules()
	}
	redactor, err := dlp.NewRedactor(rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid DLP rules")
	}
	sink := audit.NewSink(repo, m).WithRedactor(redactor)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.AssessmentEventsTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"topic":    cfg.AssessmentEventsTopic,
			"group_id": cfg.KafkaGroupID,
		}).Info("Consuming assessment events")

		if err := consumer.Consume(ctx, sink.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Event consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	audit.NewHTTPHandler(repo).Register(router.PathPrefix("/api/v1").Subrouter())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.AuditPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.AuditPort,
		}).Info("Audit Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Audit Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Audit Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
