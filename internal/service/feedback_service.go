package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Nachikxt91/feedback-backend/internal/llm"
	"github.com/Nachikxt91/feedback-backend/internal/models"
	"github.com/Nachikxt91/feedback-backend/internal/notify"
)

// FeedbackStore is the persistence surface the service needs. Implemented
// by repository.FeedbackRepo.
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	CreateMany(ctx context.Context, feedbacks []*models.Feedback) error
	FindAll(ctx context.Context) ([]models.Feedback, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error)
	FindPending(ctx context.Context, limit int) ([]models.Feedback, error)
	FindRecentEnriched(ctx context.Context, limit int) ([]models.Feedback, error)
	SetEnrichment(ctx context.Context, id bson.ObjectID, e models.Enrichment) error
}

// InsightStore caches aggregate insight documents. Implemented by
// repository.InsightRepo.
type InsightStore interface {
	Get(ctx context.Context) (*models.Insight, error)
	Upsert(ctx context.Context, insight *models.Insight) error
}

// Enricher produces AI analysis. Implemented by llm.Client.
type Enricher interface {
	AnalyzeFeedback(ctx context.Context, review string, rating int) (*llm.Analysis, error)
	GenerateInsights(ctx context.Context, feedbacks []models.Feedback) (*llm.InsightReport, error)
}

const (
	// Ratings at or below this fire an admin alert.
	alertRatingThreshold = 2

	// Bound for background work: one enrichment call should never hang a
	// worker for longer than this.
	enrichTimeout = 60 * time.Second

	processPendingBatchSize = 20
	insightReviewLimit      = 50
)

type FeedbackService struct {
	store    FeedbackStore
	insights InsightStore
	enricher Enricher
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewFeedbackService(store FeedbackStore, insights InsightStore, enricher Enricher, notifier notify.Notifier, logger *zap.SugaredLogger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		insights: insights,
		enricher: enricher,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit persists a new feedback record and enriches it synchronously.
// Enrichment failure is logged and degraded, never surfaced: the caller
// always gets their stored record back.
func (s *FeedbackService) Submit(ctx context.Context, rating int, review string) (*models.Feedback, error) {
	feedback := &models.Feedback{
		Rating: rating,
		Review: review,
		Source: models.SourceWeb,
	}

	if err := s.store.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	if err := s.enrich(ctx, feedback); err != nil {
		s.logger.Warnw("enrichment failed, returning unenriched record",
			"feedback_id", feedback.ID.Hex(), "error", err)
	}

	if feedback.Rating <= alertRatingThreshold || feedback.Sentiment == models.SentimentNegative {
		// Fire the alert in a background goroutine (non-blocking)
		go s.alert(feedback)
	}

	return feedback, nil
}

// enrich runs one LLM call and applies the result to both the stored
// document and the in-memory record.
func (s *FeedbackService) enrich(ctx context.Context, feedback *models.Feedback) error {
	analysis, err := s.enricher.AnalyzeFeedback(ctx, feedback.Review, feedback.Rating)
	if err != nil {
		return err
	}

	enrichment := models.Enrichment{
		Sentiment:   analysis.Sentiment,
		Summary:     analysis.Summary,
		Response:    analysis.Response,
		ActionItems: analysis.ActionItems,
	}
	if err := s.store.SetEnrichment(ctx, feedback.ID, enrichment); err != nil {
		return fmt.Errorf("failed to persist enrichment: %w", err)
	}

	now := time.Now()
	feedback.Sentiment = enrichment.Sentiment
	feedback.Summary = enrichment.Summary
	feedback.Response = enrichment.Response
	feedback.ActionItems = enrichment.ActionItems
	feedback.EnrichedAt = &now
	return nil
}

func (s *FeedbackService) alert(feedback *models.Feedback) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	subject := fmt.Sprintf("Low-rating feedback received (%d/5)", feedback.Rating)
	message := fmt.Sprintf("Rating: %d/5\nSentiment: %s\nReview: %s",
		feedback.Rating, feedback.Sentiment, feedback.Review)

	if err := s.notifier.Publish(ctx, subject, message); err != nil {
		s.logger.Errorw("failed to publish feedback alert",
			"feedback_id", feedback.ID.Hex(), "error", err)
	}
}

// List returns every stored record in creation order.
func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return s.store.FindAll(ctx)
}

// Get returns one record by id, or nil if it does not exist.
func (s *FeedbackService) Get(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	return s.store.FindByID(ctx, id)
}

// ProcessPending enriches unenriched records in a background goroutine and
// returns immediately with the number of records queued.
func (s *FeedbackService) ProcessPending(ctx context.Context) (int, error) {
	pending, err := s.store.FindPending(ctx, processPendingBatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) > 0 {
		go s.enrichBatch(pending)
	}
	return len(pending), nil
}

// enrichBatch works through a batch sequentially. Each record gets its own
// timeout; failures are logged and skipped so one bad review cannot stall
// the rest.
func (s *FeedbackService) enrichBatch(batch []models.Feedback) {
	for i := range batch {
		fb := batch[i]
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		err := s.enrich(ctx, &fb)
		cancel()
		if err != nil {
			s.logger.Warnw("batch enrichment failed for record",
				"feedback_id", fb.ID.Hex(), "error", err)
		}
	}
	s.logger.Infow("batch enrichment finished", "count", len(batch))
}
