package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Nachikxt91/feedback-backend/internal/service"
)

const serviceName = "feedback-backend"

type FeedbackHandler struct {
	svc       *service.FeedbackService
	logger    *zap.SugaredLogger
	startedAt time.Time
	version   string
}

func NewFeedbackHandler(svc *service.FeedbackService, logger *zap.SugaredLogger, version string) *FeedbackHandler {
	return &FeedbackHandler{
		svc:       svc,
		logger:    logger,
		startedAt: time.Now(),
		version:   version,
	}
}

type SubmitFeedbackRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"required,max=2000"`
}

// --- POST /api/feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	review := strings.TrimSpace(req.Review)
	if review == "" {
		writeError(w, http.StatusBadRequest, "review cannot be empty or only whitespace")
		return
	}

	feedback, err := h.svc.Submit(r.Context(), req.Rating, review)
	if err != nil {
		h.logger.Errorw("failed to submit feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}

	writeJSON(w, http.StatusCreated, feedback)
}

// --- GET /api/health ---

func (h *FeedbackHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"service":        serviceName,
		"version":        h.version,
		"uptime_seconds": time.Since(h.startedAt).Seconds(),
	})
}

// validationMessage turns the first validator failure into a field-level
// client message.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}

	fe := errs[0]
	switch fe.Field() {
	case "Rating":
		return "rating must be an integer between 1 and 5"
	case "Review":
		if fe.Tag() == "max" {
			return "review must be at most 2000 characters"
		}
		return "review is required"
	default:
		return "invalid request"
	}
}
