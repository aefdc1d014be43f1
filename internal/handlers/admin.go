package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Nachikxt91/feedback-backend/internal/service"
)

// Uploaded CSV files are capped at 5mb.
const maxImportBytes = 5 << 20

type AdminHandler struct {
	svc    *service.FeedbackService
	logger *zap.SugaredLogger
}

func NewAdminHandler(svc *service.FeedbackService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// --- GET /api/admin/feedbacks ---

func (h *AdminHandler) ListFeedbacks(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("failed to list feedbacks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch feedbacks")
		return
	}
	writeJSON(w, http.StatusOK, feedbacks)
}

// --- GET /api/admin/feedbacks/{id} ---

func (h *AdminHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback ID")
		return
	}

	feedback, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to fetch feedback", "id", id.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch feedback")
		return
	}
	if feedback == nil {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

// --- GET /api/admin/analytics ---

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.svc.Analytics(r.Context())
	if err != nil {
		h.logger.Errorw("failed to compute analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate analytics")
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// --- GET /api/admin/insights ---

func (h *AdminHandler) Insights(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	insight, err := h.svc.Insights(r.Context(), refresh)
	if err != nil {
		h.logger.Errorw("failed to generate insights", "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate insights")
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

// --- POST /api/admin/import/csv ---

func (h *AdminHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(r.Context(), file)
	if err != nil {
		h.logger.Errorw("CSV import failed", "error", err)
		if errors.Is(err, service.ErrImportSave) {
			writeError(w, http.StatusInternalServerError, "failed to save imported feedback")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- GET /api/admin/export/csv ---

func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	// Render into a buffer first so a store failure can still answer 500.
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), &buf); err != nil {
		h.logger.Errorw("CSV export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export feedbacks")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="feedbacks.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// --- GET /api/admin/export/json ---

func (h *AdminHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("JSON export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export feedbacks")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="feedbacks.json"`)
	writeJSON(w, http.StatusOK, feedbacks)
}

// --- POST /api/admin/process-pending ---

func (h *AdminHandler) ProcessPending(w http.ResponseWriter, r *http.Request) {
	queued, err := h.svc.ProcessPending(r.Context())
	if err != nil {
		h.logger.Errorw("failed to queue pending enrichment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue pending feedback")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "background enrichment started",
		"queued":  queued,
	})
}
