package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Nachikxt91/feedback-backend/internal/models"
)

const (
	analysisSystemInstruction = "You are a customer feedback analyst for a business. " +
		"You always respond with a single JSON object and nothing else: no markdown, no explanation. " +
		"Required keys: \"sentiment\" (exactly one of: positive, neutral, negative), " +
		"\"summary\" (one concise sentence for an internal dashboard), " +
		"\"response\" (2-3 warm, professional sentences addressed to the customer: thank them if positive, " +
		"acknowledge and commit to improving if mixed or negative), " +
		"\"action_items\" (array of 2-3 short, concrete steps the business should take; empty array if none apply)."

	insightSystemInstruction = "You are a senior business analyst. You always respond with a single JSON object " +
		"and nothing else. Required keys: \"top_issues\", \"top_praises\", \"priority_actions\" (each an array of " +
		"short strings, at most 3 entries, specific to the reviews given, never generic), and " +
		"\"overall_summary\" (2-3 sentences describing the feedback landscape)."

	// Reviews longer than this are truncated in the aggregate prompt so the
	// insight request stays well under the model's input limit.
	insightReviewClip = 300
)

// Client wraps the Gemini API for feedback enrichment. Each call is a single
// outbound request: no retries, no caching.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// AnalyzeFeedback turns one review into sentiment, summary, customer-facing
// response and action items. Malformed model output is reported as an error,
// never propagated as partial data.
func (c *Client) AnalyzeFeedback(ctx context.Context, review string, rating int) (*Analysis, error) {
	prompt := fmt.Sprintf("A customer submitted the following feedback.\nRating: %d/5\nReview: %q\n\nAnalyze it.", rating, review)

	raw, err := c.generate(ctx, analysisSystemInstruction, prompt, 0.3)
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}

// GenerateInsights produces an aggregate report over a batch of enriched
// reviews with a single model call.
func (c *Client) GenerateInsights(ctx context.Context, feedbacks []models.Feedback) (*InsightReport, error) {
	var block strings.Builder
	for i, fb := range feedbacks {
		review := clipReview(fb.Review, insightReviewClip)
		sentiment := fb.Sentiment
		if sentiment == "" {
			sentiment = "unknown"
		}
		fmt.Fprintf(&block, "%d. [Rating: %d/5 | Sentiment: %s] %s\n", i+1, fb.Rating, sentiment, review)
	}

	prompt := fmt.Sprintf("Recent customer reviews (%d total):\n%s\nProduce the aggregate report.", len(feedbacks), block.String())

	raw, err := c.generate(ctx, insightSystemInstruction, prompt, 0.3)
	if err != nil {
		return nil, err
	}
	return parseInsights(raw)
}

// clipReview truncates on a rune boundary so the prompt never carries a
// split UTF-8 sequence.
func clipReview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (c *Client) generate(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	model := c.client.GenerativeModel(c.model)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	maxTokens := int32(1024)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  &maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}
	return text.String(), nil
}
