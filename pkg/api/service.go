// Package api is the assessment service: it fronts the risk scorer, the dataset summarizer
// and the text classifier with upload staging, metrics and event publishing.
package api

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
	"github.com/synaptica-ai/healthlab/pkg/loader"
	"github.com/synaptica-ai/healthlab/pkg/observability/metrics"
	"github.com/synaptica-ai/healthlab/pkg/risk"
	"github.com/synaptica-ai/healthlab/pkg/staging"
	"github.com/synaptica-ai/healthlab/pkg/textclass"
)

const eventSource = "assessment-service"

// DefaultPublishTimeout bounds how long a request waits on the event broker.
const DefaultPublishTimeout = 2 * time.Second

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	scorer     *risk.Scorer
	summarizer *dataset.Summarizer
	classifier *textclass.Classifier
	store      staging.Store
	publisher  Publisher
	metrics    *metrics.Metrics

	publishTimeout time.Duration
}

// Deps wires a Service. Publisher may be nil, in which case no events are sent.
type Deps struct {
	Scorer     *risk.Scorer
	Summarizer *dataset.Summarizer
	Classifier *textclass.Classifier
	Store      staging.Store
	Publisher  Publisher
	Metrics    *metrics.Metrics

	// PublishTimeout defaults to DefaultPublishTimeout.
	PublishTimeout time.Duration
}

func NewService(d Deps) *Service {
	s := &Service{
		scorer:     d.Scorer,
		summarizer: d.Summarizer,
		classifier: d.Classifier,
		store:      d.Store,
		publisher:  d.Publisher,
		metrics:    d.Metrics,

		publishTimeout: d.PublishTimeout,
	}
	if s.publishTimeout <= 0 {
		s.publishTimeout = DefaultPublishTimeout
	}
	if s.scorer == nil {
		s.scorer = risk.NewScorer(nil, nil)
	}
	if s.summarizer == nil {
		s.summarizer = dataset.NewSummarizer(nil, nil, 0)
	}
	if s.classifier == nil {
		s.classifier = textclass.NewClassifier(nil, nil)
	}
	if s.store == nil {
		s.store = staging.NewMemoryStore(30 * time.Minute)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// StagedDataset describes an uploaded dataset waiting for analysis.
type StagedDataset struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	StagedAt time.Time `json:"staged_at"`
}

func (s *Service) ScoreRisk(ctx context.Context, profile models.RiskProfile) (models.RiskResult, error) {
	start := time.Now()
	result, err := s.scorer.Score(profile)
	s.finish(metrics.OpRiskScore, start, err)
	if err != nil {
		return models.RiskResult{}, err
	}

	s.metrics.ObserveRiskBand(string(result.Band))
	s.publish(ctx, models.EventRiskScored, map[string]interface{}{
		"score":     result.Score,
		"band":      string(result.Band),
		"age":       profile.Age,
		"symptoms":  result.Factors.MatchedSymptoms,
		"timestamp": result.Timestamp,
	})
	return result, nil
}

// StageDataset parses an upload and keeps it for later AnalyzeStaged calls.
func (s *Service) StageDataset(ctx context.Context, name string, r io.Reader) (StagedDataset, error) {
	start := time.Now()
	staged, err := s.stage(ctx, name, r)
	s.finish(metrics.OpDatasetStage, start, err)
	return staged, err
}

func (s *Service) stage(ctx context.Context, name string, r io.Reader) (StagedDataset, error) {
	d, err := loader.Load(name, r)
	if err != nil {
		return StagedDataset{}, err
	}
	entry, err := s.store.Put(ctx, name, d)
	if err != nil {
		return StagedDataset{}, err
	}
	s.refreshStagedGauge(ctx)
	return StagedDataset{
		ID:       entry.ID,
		Name:     entry.Name,
		Rows:     len(d.Rows),
		Columns:  d.Columns,
		StagedAt: entry.StagedAt,
	}, nil
}

// AnalyzeStaged summarizes a previously staged dataset. Unknown ids return staging.ErrNotFound.
func (s *Service) AnalyzeStaged(ctx context.Context, id string, cfg models.AnalysisConfig) (models.AnalysisResult, error) {
	start := time.Now()
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		s.finish(metrics.OpDatasetAnalysis, start, err)
		return models.AnalysisResult{}, err
	}
	return s.analyze(ctx, start, entry.Name, entry.Dataset, cfg)
}

// Analyze loads and summarizes an upload in one step.
func (s *Service) Analyze(ctx context.Context, name string, r io.Reader, cfg models.AnalysisConfig) (models.AnalysisResult, error) {
	start := time.Now()
	d, err := loader.Load(name, r)
	if err != nil {
		s.finish(metrics.OpDatasetAnalysis, start, err)
		return models.AnalysisResult{}, err
	}
	return s.analyze(ctx, start, name, d, cfg)
}

func (s *Service) analyze(ctx context.Context, start time.Time, name string, d *dataset.Dataset, cfg models.AnalysisConfig) (models.AnalysisResult, error) {
	result, err := s.summarizer.Summarize(d, cfg)
	s.finish(metrics.OpDatasetAnalysis, start, err)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	s.publish(ctx, models.EventDatasetAnalyzed, map[string]interface{}{
		"file":               name,
		"rows":               result.Dataset.Rows,
		"columns":            result.Dataset.Columns,
		"missing_rate":       result.Dataset.MissingRate,
		"federated_learning": result.Config.FederatedLearning,
		"privacy_protection": result.Config.PrivacyProtection,
		"privacy_level":      string(result.Config.PrivacyLevel),
	})
	return result, nil
}

func (s *Service) ClassifyText(ctx context.Context, text, category string) (models.TextAnalysisResult, error) {
	start := time.Now()
	result, err := s.classifier.Classify(text, category)
	s.finish(metrics.OpTextClassify, start, err)
	if err != nil {
		return models.TextAnalysisResult{}, err
	}

	s.publish(ctx, models.EventTextClassified, map[string]interface{}{
		"category":          result.Category,
		"resolved_category": result.ResolvedCategory,
		"fallback":          result.Fallback,
		"chars":             result.Stats.Chars,
	})
	return result, nil
}

func (s *Service) Categories() (names []string, fallback string) {
	return s.classifier.Categories(), s.classifier.DefaultCategory()
}

func (s *Service) finish(operation string, start time.Time, err error) {
	s.metrics.Observe(operation, outcomeLabel(err), time.Since(start))
	if err == nil {
		return
	}

	entry := logger.Log.WithError(err).WithField("operation", operation)
	switch {
	case errors.Is(err, staging.ErrNotFound):
		entry.Info("Staged dataset not found")
	case outcome.Is(err, outcome.KindComputationFailure):
		entry.Error("Assessment failed")
	case outcome.Is(err, outcome.KindInvalidInput), outcome.Is(err, outcome.KindEmptyInput), outcome.Is(err, outcome.KindUnsupportedFormat):
		entry.Info("Assessment rejected")
	default:
		entry.Error("Assessment failed")
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, staging.ErrNotFound) {
		return "not_found"
	}
	if kind, ok := outcome.KindOf(err); ok {
		return string(kind)
	}
	return "error"
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("Assessment event not published")
	}
}

func (s *Service) refreshStagedGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to count staged datasets")
		return
	}
	s.metrics.SetStagedDatasets(n)
}
