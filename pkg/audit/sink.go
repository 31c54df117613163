package audit

import (
	"context"

	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
)

type observer interface {
	ObserveAudited(eventType string)
}

type redactor interface {
	Redact(data map[string]interface{}) (map[string]interface{}, int)
}

// Sink turns consumed events into audit rows. Its Handle method fits kafka.EventHandler.
type Sink struct {
	repo     *Repository
	metrics  observer
	redactor redactor
}

func NewSink(repo *Repository, metrics observer) *Sink {
	return &Sink{repo: repo, metrics: metrics}
}

// WithRedactor masks identifiers in event payloads before they are stored.
func (s *Sink) WithRedactor(r redactor) *Sink {
	s.redactor = r
	return s
}

func (s *Sink) Handle(ctx context.Context, event models.Event) error {
	masked := 0
	if s.redactor != nil && event.Data != nil {
		event.Data, masked = s.redactor.Redact(event.Data)
	}
	if _, err := s.repo.Record(ctx, event); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveAudited(event.Type)
	}
	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"redacted":   masked,
	}).Debug("Assessment event audited")
	return nil
}
