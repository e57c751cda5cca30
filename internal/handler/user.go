package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"vidtube/internal/httputil"
	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

// UserHandler covers profile mutation and watch-history endpoints.
type UserHandler struct {
	userService  *service.UserService
	videoService *service.VideoService
	logger       *slog.Logger
}

func NewUserHandler(userService *service.UserService, videoService *service.VideoService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		videoService: videoService,
		logger:       logger,
	}
}

// UpdateAccount replaces full name and email; both are required.
// PATCH /users/update-account
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Email) == "" {
		httputil.WriteBadRequest(w, "Full name and email are required")
		return
	}

	user, err := h.userService.UpdateAccount(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrIdentityExists):
			httputil.WriteConflict(w, "Email already in use")
		default:
			h.logger.Error("update account failed", "user_id", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to update account")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar replaces the authenticated user's avatar from a single
// multipart file field named "avatar".
// PATCH /users/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.userService.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the cover image from the multipart field
// "coverImage".
// PATCH /users/cover-image
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.userService.UpdateCoverImage, "Cover image updated successfully")
}

// updateImage is the shared avatar/cover replacement flow: require the
// staged file before any media-host call, then delegate to the service.
func (h *UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, userID int64, localPath string) (*model.User, error), message string) {

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageSizeBytes+1024*1024)
	if err := r.ParseMultipartForm(model.MaxImageSizeBytes + 1024*1024); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Uploaded image exceeds the 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	localPath, err := stageFormFile(r, field)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if localPath == "" {
		httputil.WriteBadRequest(w, field+" file is missing")
		return
	}

	user, err := update(r.Context(), userID, localPath)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "Uploaded image exceeds the 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			h.logger.Error("image update failed", "user_id", userID, "field", field, "error", err)
			httputil.WriteInternalError(w, "Failed to upload "+field)
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, user, message)
}

// WatchHistory returns the viewer's enriched watch history in order.
// GET /users/watch-history
func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	history, err := h.videoService.GetWatchHistory(r.Context(), userID)
	if err != nil {
		h.logger.Error("watch history failed", "user_id", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch watch history")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, history, "Watch history fetched successfully")
}
