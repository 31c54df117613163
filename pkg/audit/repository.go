// Package audit keeps an operational trail of assessment events. Nothing in the scoring path
// reads it back.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("audit entry not found")

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// AssessmentLog is the persistence model for one assessment event.
type AssessmentLog struct {
	ID         uuid.UUID         `gorm:"primaryKey;column:id" json:"id"`
	EventID    string            `gorm:"column:event_id;uniqueIndex" json:"event_id"`
	Type       string            `gorm:"column:type;index" json:"type"`
	Source     string            `gorm:"column:source" json:"source"`
	Summary    datatypes.JSONMap `gorm:"column:summary" json:"summary"`
	OccurredAt time.Time         `gorm:"column:occurred_at" json:"occurred_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

// TableName overrides gorm naming.
func (AssessmentLog) TableName() string {
	return "assessment_logs"
}

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AssessmentLog{})
}

// Record stores event. A redelivered event with an already stored id is not written again;
// the stored entry is returned instead.
func (r *Repository) Record(ctx context.Context, event models.Event) (AssessmentLog, error) {
	entry := AssessmentLog{
		ID:         uuid.New(),
		EventID:    event.ID,
		Type:       event.Type,
		Source:     event.Source,
		Summary:    datatypes.JSONMap(event.Data),
		OccurredAt: event.Timestamp.UTC(),
		CreatedAt:  r.now().UTC(),
	}
	if entry.Summary == nil {
		entry.Summary = datatypes.JSONMap{}
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return AssessmentLog{}, res.Error
	}
	if res.RowsAffected == 0 {
		var stored AssessmentLog
		if err := r.db.WithContext(ctx).Where("event_id = ?", event.ID).First(&stored).Error; err != nil {
			return AssessmentLog{}, err
		}
		return stored, nil
	}
	return entry, nil
}

// Recent returns the most recent entries, newest first, up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]AssessmentLog, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	var logs []AssessmentLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (AssessmentLog, error) {
	var entry AssessmentLog
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AssessmentLog{}, ErrNotFound
	}
	return entry, err
}

// Count reports how many entries of eventType exist; an empty type counts all.
func (r *Repository) Count(ctx context.Context, eventType string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&AssessmentLog{})
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
