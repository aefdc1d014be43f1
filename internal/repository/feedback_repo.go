package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Nachikxt91/feedback-backend/internal/database"
	"github.com/Nachikxt91/feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		collection: database.GetCollection("feedbacks"),
	}
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	if feedback.Source == "" {
		feedback.Source = models.SourceWeb
	}
	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}
	feedback.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// CreateMany inserts a batch of imported records in one round trip.
func (r *FeedbackRepo) CreateMany(ctx context.Context, feedbacks []*models.Feedback) error {
	if len(feedbacks) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(feedbacks))
	for _, fb := range feedbacks {
		if fb.CreatedAt.IsZero() {
			fb.CreatedAt = time.Now()
		}
		if fb.Source == "" {
			fb.Source = models.SourceImportCSV
		}
		docs = append(docs, fb)
	}
	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range result.InsertedIDs {
		feedbacks[i].ID = id.(bson.ObjectID)
	}
	return nil
}

// FindAll returns every record in creation order.
func (r *FeedbackRepo) FindAll(ctx context.Context) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var feedbacks []models.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&feedback)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// FindPending returns records that have not been enriched yet, oldest first.
func (r *FeedbackRepo) FindPending(ctx context.Context, limit int) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"enriched_at": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var feedbacks []models.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// FindRecentEnriched returns the newest enriched records for insight generation.
func (r *FeedbackRepo) FindRecentEnriched(ctx context.Context, limit int) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"enriched_at": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var feedbacks []models.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// SetEnrichment writes all AI fields plus enriched_at in one $set so a
// record never ends up partially enriched.
func (r *FeedbackRepo) SetEnrichment(ctx context.Context, id bson.ObjectID, e models.Enrichment) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"sentiment":    e.Sentiment,
			"summary":      e.Summary,
			"response":     e.Response,
			"action_items": e.ActionItems,
			"enriched_at":  time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("feedback %s not found", id.Hex())
	}
	return nil
}

// EnsureIndexes creates necessary indexes for the feedbacks collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "rating", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
