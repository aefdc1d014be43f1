package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nachikxt91/feedback-backend/internal/models"
)

func TestAnalytics_EmptyStore(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore(), &fakeEnricher{analysis: positiveAnalysis()})

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, a.TotalFeedback)
	assert.Equal(t, 0.0, a.AverageRating)
	assert.Empty(t, a.RatingDistribution)
	assert.Empty(t, a.Trend)
	assert.Nil(t, a.LatestSubmission)
}

func TestAnalytics_RatingDistributionSumsToN(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store, &fakeEnricher{analysis: positiveAnalysis()})

	ratings := []int{5, 5, 4, 3, 1, 1, 1, 2}
	for _, rating := range ratings {
		_, err := svc.Submit(context.Background(), rating, "review text")
		require.NoError(t, err)
	}

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(ratings), a.TotalFeedback)

	sum := 0
	for _, count := range a.RatingDistribution {
		sum += count
	}
	assert.Equal(t, len(ratings), sum, "rating distribution must sum to N")

	assert.Equal(t, 2, a.RatingDistribution["5"])
	assert.Equal(t, 3, a.RatingDistribution["1"])
	assert.Equal(t, 2.75, a.AverageRating)
	require.NotNil(t, a.LatestSubmission)
}

func TestAnalytics_SentimentBucketsIncludeUnenriched(t *testing.T) {
	store := newFakeStore()
	enricher := &fakeEnricher{analysis: positiveAnalysis()}
	svc, _, _ := newTestService(store, enricher)

	_, err := svc.Submit(context.Background(), 5, "enriched one")
	require.NoError(t, err)

	enricher.mu.Lock()
	enricher.err = errors.New("down")
	enricher.mu.Unlock()
	_, err = svc.Submit(context.Background(), 4, "unenriched one")
	require.NoError(t, err)

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, a.SentimentDistribution[models.SentimentPositive])
	assert.Equal(t, 1, a.SentimentDistribution[sentimentUnenriched])
	assert.Equal(t, 1, a.EnrichedCount)
	assert.Equal(t, 1, a.PendingCount)
}

func TestAnalytics_TrendBucketsPerDay(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store, &fakeEnricher{analysis: positiveAnalysis()})

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, store.Create(context.Background(), &models.Feedback{
		Rating: 4, Review: "older", CreatedAt: yesterday,
	}))
	require.NoError(t, store.Create(context.Background(), &models.Feedback{
		Rating: 5, Review: "newer a",
	}))
	require.NoError(t, store.Create(context.Background(), &models.Feedback{
		Rating: 5, Review: "newer b",
	}))

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	require.Len(t, a.Trend, 2)
	assert.Equal(t, yesterday.Format("2006-01-02"), a.Trend[0].Date)
	assert.Equal(t, 1, a.Trend[0].Count)
	assert.Equal(t, time.Now().Format("2006-01-02"), a.Trend[1].Date)
	assert.Equal(t, 2, a.Trend[1].Count)
}
