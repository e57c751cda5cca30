package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidtube/internal/httputil"
	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

// ChannelHandler exposes the public channel profile and the subscribe
// actions that feed it.
type ChannelHandler struct {
	subscriptionService *service.SubscriptionService
	logger              *slog.Logger
}

func NewChannelHandler(subscriptionService *service.SubscriptionService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// GetProfile returns the channel aggregation for a username. An
// authenticated viewer additionally learns whether they subscribe.
// GET /channels/{username}
func (h *ChannelHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.subscriptionService.GetChannelProfile(r.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrChannelNotFound) {
			httputil.WriteNotFound(w, "Channel does not exist")
			return
		}
		h.logger.Error("channel profile failed", "username", username, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch channel profile")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, profile, "User channel fetched successfully")
}

// Subscribe adds the authenticated viewer to the channel's subscribers.
// POST /channels/{username}/subscribe
func (h *ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	subscriberID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.subscriptionService.Subscribe(r.Context(), subscriberID, username); err != nil {
		switch {
		case errors.Is(err, model.ErrChannelNotFound):
			httputil.WriteNotFound(w, "Channel does not exist")
		case errors.Is(err, model.ErrCannotSubscribeSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrAlreadySubscribed):
			httputil.WriteConflict(w, err.Error())
		default:
			h.logger.Error("subscribe failed", "username", username, "error", err)
			httputil.WriteInternalError(w, "Failed to subscribe")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, struct{}{}, "Subscribed successfully")
}

// Unsubscribe removes the authenticated viewer from the subscribers.
// DELETE /channels/{username}/subscribe
func (h *ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	subscriberID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.subscriptionService.Unsubscribe(r.Context(), subscriberID, username); err != nil {
		switch {
		case errors.Is(err, model.ErrChannelNotFound):
			httputil.WriteNotFound(w, "Channel does not exist")
		case errors.Is(err, model.ErrNotSubscribed):
			httputil.WriteNotFound(w, err.Error())
		default:
			h.logger.Error("unsubscribe failed", "username", username, "error", err)
			httputil.WriteInternalError(w, "Failed to unsubscribe")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, struct{}{}, "Unsubscribed successfully")
}
