package repository

import (
	"context"

	"github.com/Nachikxt91/feedback-backend/internal/database"
	"github.com/Nachikxt91/feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type InsightRepo struct {
	collection *mongo.Collection
}

func NewInsightRepo() *InsightRepo {
	return &InsightRepo{
		collection: database.GetCollection("insights"),
	}
}

// Get returns the cached insight document, or nil if none has been
// generated yet.
func (r *InsightRepo) Get(ctx context.Context) (*models.Insight, error) {
	var insight models.Insight
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&insight)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &insight, nil
}

// Upsert replaces the single cached insight document.
func (r *InsightRepo) Upsert(ctx context.Context, insight *models.Insight) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{}, bson.M{
		"$set": bson.M{
			"top_issues":            insight.TopIssues,
			"top_praises":           insight.TopPraises,
			"priority_actions":      insight.PriorityActions,
			"overall_summary":       insight.OverallSummary,
			"review_count_analyzed": insight.ReviewCountAnalyzed,
			"generated_at":          insight.GeneratedAt,
		},
	}, options.UpdateOne().SetUpsert(true))
	return err
}
