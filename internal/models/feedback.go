package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Sentiment values assigned by enrichment. Anything the model returns
// outside this set is treated as a failed analysis.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Feedback sources.
const (
	SourceWeb       = "web"
	SourceImportCSV = "import_csv"
)

// Feedback is a single rating+review record. Rating, review and created_at
// are immutable after insert. The four AI fields plus enriched_at are written
// together in one update: they are either all set or all absent.
type Feedback struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Rating      int           `bson:"rating" json:"rating"`
	Review      string        `bson:"review" json:"review"`
	Sentiment   string        `bson:"sentiment,omitempty" json:"sentiment,omitempty"`
	Summary     string        `bson:"summary,omitempty" json:"summary,omitempty"`
	Response    string        `bson:"response,omitempty" json:"response,omitempty"`
	ActionItems []string      `bson:"action_items,omitempty" json:"action_items,omitempty"`
	Source      string        `bson:"source" json:"source"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	EnrichedAt  *time.Time    `bson:"enriched_at,omitempty" json:"enriched_at,omitempty"`
}

// Enriched reports whether AI analysis has completed for this record.
func (f *Feedback) Enriched() bool {
	return f.EnrichedAt != nil
}

// Enrichment carries the AI-derived fields applied to a Feedback in a
// single update.
type Enrichment struct {
	Sentiment   string
	Summary     string
	Response    string
	ActionItems []string
}
