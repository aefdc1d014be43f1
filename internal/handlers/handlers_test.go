package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Nachikxt91/feedback-backend/internal/llm"
	custommw "github.com/Nachikxt91/feedback-backend/internal/middleware"
	"github.com/Nachikxt91/feedback-backend/internal/models"
	"github.com/Nachikxt91/feedback-backend/internal/service"
)

const testAdminKey = "test-admin-key"

// memStore is a minimal in-memory service.FeedbackStore for handler tests.
// The err fields force failures on the matching calls.
type memStore struct {
	mu         sync.Mutex
	records    map[bson.ObjectID]*models.Feedback
	findAllErr error
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[bson.ObjectID]*models.Feedback)}
}

func (m *memStore) Create(ctx context.Context, fb *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb.ID = bson.NewObjectID()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	if fb.Source == "" {
		fb.Source = models.SourceWeb
	}
	stored := *fb
	m.records[fb.ID] = &stored
	return nil
}

func (m *memStore) CreateMany(ctx context.Context, fbs []*models.Feedback) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, fb := range fbs {
		if err := m.Create(ctx, fb); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) FindAll(ctx context.Context) ([]models.Feedback, error) {
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Feedback, 0, len(m.records))
	for _, fb := range m.records {
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	out := *fb
	return &out, nil
}

func (m *memStore) FindPending(ctx context.Context, limit int) ([]models.Feedback, error) {
	all, _ := m.FindAll(ctx)
	var out []models.Feedback
	for _, fb := range all {
		if !fb.Enriched() && len(out) < limit {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m *memStore) FindRecentEnriched(ctx context.Context, limit int) ([]models.Feedback, error) {
	all, _ := m.FindAll(ctx)
	var out []models.Feedback
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Enriched() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (m *memStore) SetEnrichment(ctx context.Context, id bson.ObjectID, e models.Enrichment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb, ok := m.records[id]
	if !ok {
		return nil
	}
	now := time.Now()
	fb.Sentiment = e.Sentiment
	fb.Summary = e.Summary
	fb.Response = e.Response
	fb.ActionItems = e.ActionItems
	fb.EnrichedAt = &now
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memInsights struct {
	mu     sync.Mutex
	cached *models.Insight
}

func (m *memInsights) Get(ctx context.Context) (*models.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached == nil {
		return nil, nil
	}
	out := *m.cached
	return &out, nil
}

func (m *memInsights) Upsert(ctx context.Context, insight *models.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *insight
	m.cached = &out
	return nil
}

type stubEnricher struct {
	analysis *llm.Analysis
	err      error
	report   *llm.InsightReport
}

func (s *stubEnricher) AnalyzeFeedback(ctx context.Context, review string, rating int) (*llm.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	a := *s.analysis
	return &a, nil
}

func (s *stubEnricher) GenerateInsights(ctx context.Context, fbs []models.Feedback) (*llm.InsightReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.report
	return &r, nil
}

type noopNotifier struct{}

func (noopNotifier) Publish(ctx context.Context, subject, message string) error { return nil }

// newTestRouter mounts the handlers the same way cmd/server does.
func newTestRouter(store *memStore, enricher *stubEnricher) http.Handler {
	logger := zap.NewNop().Sugar()
	svc := service.NewFeedbackService(store, &memInsights{}, enricher, noopNotifier{}, logger)

	feedbackHandler := NewFeedbackHandler(svc, logger, "test")
	adminHandler := NewAdminHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/health", feedbackHandler.Health)
	r.Post("/api/feedback", feedbackHandler.SubmitFeedback)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(custommw.APIKeyAuth(testAdminKey))
		r.Get("/feedbacks", adminHandler.ListFeedbacks)
		r.Get("/feedbacks/{id}", adminHandler.GetFeedback)
		r.Get("/analytics", adminHandler.Analytics)
		r.Get("/insights", adminHandler.Insights)
		r.Post("/import/csv", adminHandler.ImportCSV)
		r.Get("/export/csv", adminHandler.ExportCSV)
		r.Get("/export/json", adminHandler.ExportJSON)
		r.Post("/process-pending", adminHandler.ProcessPending)
	})
	return r
}

func testAnalysis() *llm.Analysis {
	return &llm.Analysis{
		Sentiment:   models.SentimentPositive,
		Summary:     "Short summary.",
		Response:    "Thanks for the feedback!",
		ActionItems: []string{"Keep it up"},
	}
}
