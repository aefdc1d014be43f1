package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Insight is the cached result of an aggregate LLM analysis over recent
// reviews. A single document is upserted on each regeneration.
type Insight struct {
	ID                  bson.ObjectID `bson:"_id,omitempty" json:"-"`
	TopIssues           []string      `bson:"top_issues" json:"top_issues"`
	TopPraises          []string      `bson:"top_praises" json:"top_praises"`
	PriorityActions     []string      `bson:"priority_actions" json:"priority_actions"`
	OverallSummary      string        `bson:"overall_summary" json:"overall_summary"`
	ReviewCountAnalyzed int           `bson:"review_count_analyzed" json:"review_count_analyzed"`
	GeneratedAt         time.Time     `bson:"generated_at" json:"generated_at"`
}
