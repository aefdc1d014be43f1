package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nachikxt91/feedback-backend/internal/models"
)

const (
	maxImportErrors = 20
	minReviewLength = 10
	maxReviewLength = 2000
)

// ErrImportSave marks a store-side failure on an import whose rows parsed
// cleanly, so callers can tell it apart from a bad upload.
var ErrImportSave = errors.New("failed to save imported feedback")

// ImportResult summarizes one CSV import. Queued rows are stored unenriched
// and analyzed by a background batch.
type ImportResult struct {
	BatchID   string   `json:"batch_id"`
	TotalRows int      `json:"total_rows"`
	Queued    int      `json:"queued"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
	Message   string   `json:"message"`
}

// ImportCSV parses rows with columns review (aliases: review_text, feedback)
// and rating (alias: stars), inserts the valid ones and kicks off background
// enrichment for the batch.
func (s *FeedbackService) ImportCSV(ctx context.Context, file io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	reviewCol, ratingCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))) {
		case "review", "review_text", "feedback":
			reviewCol = i
		case "rating", "stars":
			ratingCol = i
		}
	}
	if reviewCol == -1 || ratingCol == -1 {
		return nil, fmt.Errorf("CSV must have review and rating columns")
	}

	result := &ImportResult{
		BatchID: uuid.New().String(),
		Errors:  []string{},
	}
	var batch []*models.Feedback

	for rowNum := 2; ; rowNum++ { // header is row 1
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.addError(fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.TotalRows++

		if reviewCol >= len(row) || ratingCol >= len(row) {
			result.addError(fmt.Sprintf("row %d: missing columns", rowNum))
			continue
		}

		review := strings.TrimSpace(row[reviewCol])
		if len(review) < minReviewLength {
			result.addError(fmt.Sprintf("row %d: review too short or missing", rowNum))
			continue
		}
		if len(review) > maxReviewLength {
			result.addError(fmt.Sprintf("row %d: review exceeds %d characters", rowNum, maxReviewLength))
			continue
		}

		rating, err := parseRating(row[ratingCol])
		if err != nil {
			result.addError(fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		batch = append(batch, &models.Feedback{
			Rating: rating,
			Review: review,
			Source: models.SourceImportCSV,
		})
	}

	if len(batch) > 0 {
		if err := s.store.CreateMany(ctx, batch); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportSave, err)
		}
		result.Queued = len(batch)

		queued := make([]models.Feedback, len(batch))
		for i, fb := range batch {
			queued[i] = *fb
		}
		go s.enrichBatch(queued)
	}

	result.Failed = result.TotalRows - result.Queued
	if result.TotalRows == 0 {
		result.Message = "No rows found in file"
	} else {
		result.Message = fmt.Sprintf("Imported %d/%d rows, enrichment queued", result.Queued, result.TotalRows)
	}

	s.logger.Infow("CSV import finished",
		"batch_id", result.BatchID, "queued", result.Queued, "failed", result.Failed)
	return result, nil
}

func (r *ImportResult) addError(msg string) {
	if len(r.Errors) < maxImportErrors {
		r.Errors = append(r.Errors, msg)
	}
}

func parseRating(raw string) (int, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("rating %q is not a number", raw)
	}
	rating := int(value)
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating %d out of range 1-5", rating)
	}
	return rating, nil
}

// ExportCSV streams every stored record. Action items are joined with "; "
// into one cell.
func (s *FeedbackService) ExportCSV(ctx context.Context, w io.Writer) error {
	feedbacks, err := s.store.FindAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "rating", "review", "sentiment", "summary", "response", "action_items", "source", "created_at"}); err != nil {
		return err
	}

	for i := range feedbacks {
		fb := &feedbacks[i]
		record := []string{
			fb.ID.Hex(),
			strconv.Itoa(fb.Rating),
			fb.Review,
			fb.Sentiment,
			fb.Summary,
			fb.Response,
			strings.Join(fb.ActionItems, "; "),
			fb.Source,
			fb.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
