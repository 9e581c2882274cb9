package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"

	"tripvote/internal/domain"
	"tripvote/internal/service"
	apperrors "tripvote/pkg/errors"
	"tripvote/pkg/logger"
)

// PollHandler exposes the aggregation service over HTTP.
type PollHandler struct {
	pollService *service.PollService
	logger      *logger.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(pollService *service.PollService, logger *logger.Logger) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		logger:      logger,
	}
}

// GetOptions handles GET /api/options
func (h *PollHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	options, err := h.pollService.ListOptions(ctx)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, options)
}

// GetResults handles GET /api/results (the display's polling endpoint)
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.pollService.GetResults(ctx)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	// The display polls on a fixed interval; an ETag lets unchanged
	// standings come back as a 304.
	etag := h.generateETag(results)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=10")

	h.respondJSON(w, http.StatusOK, results)
}

// SubmitVote handles POST /api/vote
func (h *PollHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}

	response, err := h.pollService.SubmitVote(ctx, &req)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// Helper methods

func (h *PollHandler) generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

func (h *PollHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PollHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondAppError maps service failures onto the error taxonomy: client
// input errors come back as 400, upstream store failures as 502 with a
// truncated diagnostic, anything else as a generic 500.
func (h *PollHandler) respondAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	} else {
		h.logger.WithError(err).Debug("Request rejected")
	}

	h.respondError(w, appErr.StatusCode, appErr.Message)
}
