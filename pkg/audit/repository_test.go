package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/dlp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Silence()
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.AutoMigrate())

	clock := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func event(id, eventType string) models.Event {
	return models.Event{
		ID:        id,
		Type:      eventType,
		Source:    "assessment-service",
		Data:      map[string]interface{}{"band": "medium", "score": 0.55},
		Timestamp: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

type countingObserver struct {
	types []string
}

func (o *countingObserver) ObserveAudited(eventType string) {
	o.types = append(o.types, eventType)
}

func TestRecordAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry, err := repo.Record(ctx, event("evt-1", models.EventRiskScored))
	require.NoError(t, err)

	got, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, models.EventRiskScored, got.Type)
	assert.Equal(t, "medium", got.Summary["band"])
	assert.Equal(t, 0.55, got.Summary["score"])

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordIgnoresRedelivery(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Record(ctx, event("evt-1", models.EventRiskScored))
	require.NoError(t, err)
	again, err := repo.Record(ctx, event("evt-1", models.EventRiskScored))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, first.CreatedAt.Equal(again.CreatedAt))

	stored, err := repo.Get(ctx, again.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", stored.EventID)

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRecentNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Record(ctx, event(id, models.EventTextClassified))
		require.NoError(t, err)
	}

	logs, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].EventID)
	assert.Equal(t, "b", logs[1].EventID)

	n, err := repo.Count(ctx, models.EventRiskScored)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSink(t *testing.T) {
	repo := newTestRepository(t)
	obs := &countingObserver{}
	sink := NewSink(repo, obs)

	require.NoError(t, sink.Handle(context.Background(), event("evt-9", models.EventDatasetAnalyzed)))
	assert.Equal(t, []string{models.EventDatasetAnalyzed}, obs.types)

	n, err := repo.Count(context.Background(), models.EventDatasetAnalyzed)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSinkRedactsPayload(t *testing.T) {
	repo := newTestRepository(t)
	r, err := dlp.NewRedactor(dlp.DefaultRules())
	require.NoError(t, err)
	sink := NewSink(repo, nil).WithRedactor(r)

	evt := event("evt-10", models.EventDatasetAnalyzed)
	evt.Data = map[string]interface{}{"file": "随访_13812345678.csv", "rows": 4}
	require.NoError(t, sink.Handle(context.Background(), evt))

	logs, err := repo.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "随访_***********.csv", logs[0].Summary["file"])
}

func TestHTTPHandler(t *testing.T) {
	repo := newTestRepository(t)
	entry, err := repo.Record(context.Background(), event("evt-1", models.EventRiskScored))
	require.NoError(t, err)

	router := mux.NewRouter()
	NewHTTPHandler(repo).Register(router.PathPrefix("/api/v1").Subrouter())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/audit/recent?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Entries []AssessmentLog `json:"entries"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, entry.ID, listed.Entries[0].ID)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/audit/"+entry.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"event_id":"evt-1"`)

	for path, code := range map[string]int{
		"/api/v1/audit/" + uuid.New().String(): http.StatusNotFound,
		"/api/v1/audit/not-a-uuid":             http.StatusBadRequest,
		"/api/v1/audit/recent?limit=x":         http.StatusBadRequest,
	} {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, rr.Code, path)
	}
}
