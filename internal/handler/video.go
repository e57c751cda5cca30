package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidtube/internal/httputil"
	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

type VideoHandler struct {
	videoService *service.VideoService
	logger       *slog.Logger
}

func NewVideoHandler(videoService *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{videoService: videoService, logger: logger}
}

// Create publishes video metadata owned by the authenticated user.
// POST /videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		httputil.WriteBadRequest(w, "Title is required")
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		httputil.WriteBadRequest(w, "Video URL is required")
		return
	}

	video, err := h.videoService.Publish(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error("video create failed", "user_id", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to publish video")
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, video, "Video published successfully")
}

// Get fetches one video. Authenticated viewers get it appended to
// their watch history.
// GET /videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	video, err := h.videoService.Get(r.Context(), videoID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrVideoNotFound) {
			httputil.WriteNotFound(w, "Video not found")
			return
		}
		h.logger.Error("video fetch failed", "video_id", videoID, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch video")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, video, "Video fetched successfully")
}
