package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"
)

// Bucket name for records whose sentiment has not been derived yet.
const sentimentUnenriched = "unenriched"

// Analytics is the aggregate view over the full stored set, recomputed on
// every call. Nothing here is persisted.
type Analytics struct {
	TotalFeedback         int            `json:"total_feedback"`
	AverageRating         float64        `json:"average_rating"`
	RatingDistribution    map[string]int `json:"rating_distribution"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	Trend                 []TrendBucket  `json:"trend"`
	EnrichedCount         int            `json:"enriched_count"`
	PendingCount          int            `json:"pending_count"`
	LatestSubmission      *time.Time     `json:"latest_submission,omitempty"`
}

// TrendBucket is a per-day submission count.
type TrendBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Analytics scans all stored feedback and computes rating, sentiment and
// per-day distributions.
func (s *FeedbackService) Analytics(ctx context.Context) (*Analytics, error) {
	feedbacks, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TotalFeedback:         len(feedbacks),
		RatingDistribution:    make(map[string]int),
		SentimentDistribution: make(map[string]int),
		Trend:                 []TrendBucket{},
	}

	ratingSum := 0
	days := make(map[string]int)
	var latest time.Time

	for i := range feedbacks {
		fb := &feedbacks[i]

		ratingSum += fb.Rating
		a.RatingDistribution[strconv.Itoa(fb.Rating)]++

		if fb.Enriched() {
			a.EnrichedCount++
			a.SentimentDistribution[fb.Sentiment]++
		} else {
			a.PendingCount++
			a.SentimentDistribution[sentimentUnenriched]++
		}

		days[fb.CreatedAt.Format("2006-01-02")]++
		if fb.CreatedAt.After(latest) {
			latest = fb.CreatedAt
		}
	}

	if len(feedbacks) > 0 {
		a.AverageRating = math.Round(float64(ratingSum)/float64(len(feedbacks))*100) / 100
		a.LatestSubmission = &latest
	}

	for date, count := range days {
		a.Trend = append(a.Trend, TrendBucket{Date: date, Count: count})
	}
	sort.Slice(a.Trend, func(i, j int) bool { return a.Trend[i].Date < a.Trend[j].Date })

	return a, nil
}
