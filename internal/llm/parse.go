package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Nachikxt91/feedback-backend/internal/models"
)

// Analysis is the structured enrichment derived from one review.
type Analysis struct {
	Sentiment   string   `json:"sentiment"`
	Summary     string   `json:"summary"`
	Response    string   `json:"response"`
	ActionItems []string `json:"action_items"`
}

// InsightReport is the aggregate analysis over a batch of reviews.
type InsightReport struct {
	TopIssues       []string `json:"top_issues"`
	TopPraises      []string `json:"top_praises"`
	PriorityActions []string `json:"priority_actions"`
	OverallSummary  string   `json:"overall_summary"`
}

// extractJSON pulls the outermost JSON object out of a model response.
// Models wrap output in markdown fences or surrounding prose often enough
// that unmarshalling the raw text directly is a losing game.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in model output")
	}
	return s[start : end+1], nil
}

func parseAnalysis(raw string) (*Analysis, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var a Analysis
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("malformed analysis JSON: %w", err)
	}

	a.Sentiment = normalizeSentiment(a.Sentiment)
	if a.Sentiment == "" {
		return nil, fmt.Errorf("model returned unknown sentiment")
	}

	a.Summary = strings.TrimSpace(a.Summary)
	a.Response = strings.TrimSpace(a.Response)
	if a.Summary == "" || a.Response == "" {
		return nil, fmt.Errorf("model returned incomplete analysis")
	}

	items := a.ActionItems[:0]
	for _, item := range a.ActionItems {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	a.ActionItems = items

	return &a, nil
}

// normalizeSentiment maps model output onto the closed enum. Returns ""
// for anything unrecognized.
func normalizeSentiment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimRight(s, "."))
	switch s {
	case models.SentimentPositive:
		return models.SentimentPositive
	case models.SentimentNeutral:
		return models.SentimentNeutral
	case models.SentimentNegative:
		return models.SentimentNegative
	default:
		return ""
	}
}

func parseInsights(raw string) (*InsightReport, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var r InsightReport
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("malformed insight JSON: %w", err)
	}
	return &r, nil
}
