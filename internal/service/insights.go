package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Nachikxt91/feedback-backend/internal/models"
)

// Insights returns the cached aggregate report, regenerating it when none
// exists or refresh is requested. Unlike submission, a failed LLM call here
// is surfaced: there is no degraded result worth returning.
func (s *FeedbackService) Insights(ctx context.Context, refresh bool) (*models.Insight, error) {
	if !refresh {
		cached, err := s.insights.Get(ctx)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	reviews, err := s.store.FindRecentEnriched(ctx, insightReviewLimit)
	if err != nil {
		return nil, err
	}

	if len(reviews) == 0 {
		return &models.Insight{
			TopIssues:       []string{},
			TopPraises:      []string{},
			PriorityActions: []string{},
			OverallSummary:  "No enriched reviews available yet.",
			GeneratedAt:     time.Now(),
		}, nil
	}

	report, err := s.enricher.GenerateInsights(ctx, reviews)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	insight := &models.Insight{
		TopIssues:           report.TopIssues,
		TopPraises:          report.TopPraises,
		PriorityActions:     report.PriorityActions,
		OverallSummary:      report.OverallSummary,
		ReviewCountAnalyzed: len(reviews),
		GeneratedAt:         time.Now(),
	}

	if err := s.insights.Upsert(ctx, insight); err != nil {
		s.logger.Warnw("failed to cache insights", "error", err)
	}

	return insight, nil
}
