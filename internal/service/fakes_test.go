package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Nachikxt91/feedback-backend/internal/llm"
	"github.com/Nachikxt91/feedback-backend/internal/models"
)

// fakeStore is an in-memory FeedbackStore. It stores copies, like a real
// database would, so enrichment is only visible when SetEnrichment ran.
type fakeStore struct {
	mu        sync.Mutex
	records   map[bson.ObjectID]*models.Feedback
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[bson.ObjectID]*models.Feedback)}
}

func (f *fakeStore) Create(ctx context.Context, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	feedback.ID = bson.NewObjectID()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	if feedback.Source == "" {
		feedback.Source = models.SourceWeb
	}
	stored := *feedback
	f.records[feedback.ID] = &stored
	return nil
}

func (f *fakeStore) CreateMany(ctx context.Context, feedbacks []*models.Feedback) error {
	for _, fb := range feedbacks {
		if fb.Source == "" {
			fb.Source = models.SourceImportCSV
		}
		if err := f.Create(ctx, fb); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) FindAll(ctx context.Context) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Feedback, 0, len(f.records))
	for _, fb := range f.records {
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	out := *fb
	return &out, nil
}

func (f *fakeStore) FindPending(ctx context.Context, limit int) ([]models.Feedback, error) {
	all, _ := f.FindAll(ctx)
	var out []models.Feedback
	for _, fb := range all {
		if !fb.Enriched() && len(out) < limit {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRecentEnriched(ctx context.Context, limit int) ([]models.Feedback, error) {
	all, _ := f.FindAll(ctx)
	var out []models.Feedback
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Enriched() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (f *fakeStore) SetEnrichment(ctx context.Context, id bson.ObjectID, e models.Enrichment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	fb, ok := f.records[id]
	if !ok {
		return fmt.Errorf("feedback %s not found", id.Hex())
	}
	now := time.Now()
	fb.Sentiment = e.Sentiment
	fb.Summary = e.Summary
	fb.Response = e.Response
	fb.ActionItems = e.ActionItems
	fb.EnrichedAt = &now
	return nil
}

type fakeEnricher struct {
	mu         sync.Mutex
	analysis   *llm.Analysis
	err        error
	report     *llm.InsightReport
	reportErr  error
	calls      int
	batchSizes []int
}

func (f *fakeEnricher) AnalyzeFeedback(ctx context.Context, review string, rating int) (*llm.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a := *f.analysis
	return &a, nil
}

func (f *fakeEnricher) GenerateInsights(ctx context.Context, feedbacks []models.Feedback) (*llm.InsightReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchSizes = append(f.batchSizes, len(feedbacks))
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	r := *f.report
	return &r, nil
}

func (f *fakeEnricher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInsightStore struct {
	mu     sync.Mutex
	cached *models.Insight
}

func (f *fakeInsightStore) Get(ctx context.Context) (*models.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached == nil {
		return nil, nil
	}
	out := *f.cached
	return &out, nil
}

func (f *fakeInsightStore) Upsert(ctx context.Context, insight *models.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *insight
	f.cached = &out
	return nil
}

type fakeNotifier struct {
	published chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{published: make(chan string, 10)}
}

func (f *fakeNotifier) Publish(ctx context.Context, subject, message string) error {
	f.published <- subject
	return nil
}
