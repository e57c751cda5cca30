package handler

import (
	"context"
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

type PlaylistHandler struct {
	playlistService *service.PlaylistService
	logger          *slog.Logger
}

func NewPlaylistHandler(playlistService *service.PlaylistService, logger *slog.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService, logger: logger}
}

// Create makes a playlist; name and description are both required.
// POST /playlists
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		httputil.WriteBadRequest(w, "Name and description are required")
		return
	}

	playlist, err := h.playlistService.Create(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error("playlist create failed", "user_id", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to create playlist")
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, playlist, "Playlist created successfully")
}

// Get returns one playlist with its ordered videos.
// GET /playlists/{id}
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlistID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlistService.GetByID(r.Context(), playlistID)
	if err != nil {
		if errors.Is(err, model.ErrPlaylistNotFound) {
			httputil.WriteNotFound(w, "Playlist not found")
			return
		}
		h.logger.Error("playlist fetch failed", "playlist_id", playlistID, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch playlist")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, playlist, "Playlist fetched successfully")
}

// ListByUser returns a user's playlists.
// GET /users/{id}/playlists
func (h *PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	playlists, err := h.playlistService.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("playlist list failed", "owner_id", ownerID, "error", err)
		httputil.WriteInternalError(w, "Failed to list playlists")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, playlists, "Playlists fetched successfully")
}

// AddVideo appends a video to an owned playlist.
// POST /playlists/{id}/videos/{videoID}
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.playlistService.AddVideo, "Video added to playlist")
}

// RemoveVideo removes a video from an owned playlist.
// DELETE /playlists/{id}/videos/{videoID}
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.playlistService.RemoveVideo, "Video removed from playlist")
}

func (h *PlaylistHandler) mutateVideos(w http.ResponseWriter, r *http.Request,
	mutate func(ctx context.Context, userID, playlistID, videoID int64) error, message string) {

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	playlistID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid playlist ID")
		return
	}

	videoID, err := strconv.ParseInt(chi.URLParam(r, "videoID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	if err := mutate(r.Context(), userID, playlistID, videoID); err != nil {
		switch {
		case errors.Is(err, model.ErrPlaylistNotFound):
			httputil.WriteNotFound(w, "Playlist not found")
		case errors.Is(err, model.ErrNotPlaylistOwner):
			httputil.WriteForbidden(w, "Only the playlist owner can modify it")
		case errors.Is(err, model.ErrVideoNotFound):
			httputil.WriteNotFound(w, "Video not found")
		case errors.Is(err, model.ErrVideoInPlaylist):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, model.ErrVideoNotInPlaylist):
			httputil.WriteNotFound(w, err.Error())
		default:
			h.logger.Error("playlist mutation failed", "playlist_id", playlistID, "video_id", videoID, "error", err)
			httputil.WriteInternalError(w, "Failed to update playlist")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, struct{}{}, message)
}
