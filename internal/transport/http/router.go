package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"vidtube/internal/handler"
	"vidtube/internal/httputil"
	"vidtube/internal/metrics"
	authmw "vidtube/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	ChannelHandler  *handler.ChannelHandler
	VideoHandler    *handler.VideoHandler
	PlaylistHandler *handler.PlaylistHandler
	Metrics         *metrics.Collector
	RequestLogger   func(http.Handler) http.Handler
	AccessSecret    string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(cfg.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes - no authentication required
		r.Post("/users/register", cfg.AuthHandler.Register)
		r.Post("/users/login", cfg.AuthHandler.Login)
		r.Post("/users/refresh-token", cfg.AuthHandler.Refresh)

		// Public reads with optional authentication
		r.With(authmw.OptionalAuthMiddleware(cfg.AccessSecret)).Get("/channels/{username}", cfg.ChannelHandler.GetProfile)
		r.With(authmw.OptionalAuthMiddleware(cfg.AccessSecret)).Get("/videos/{id}", cfg.VideoHandler.Get)
		r.Get("/playlists/{id}", cfg.PlaylistHandler.Get)
		r.Get("/users/{id}/playlists", cfg.PlaylistHandler.ListByUser)

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.AccessSecret))

			r.Post("/users/logout", cfg.AuthHandler.Logout)
			r.Post("/users/change-password", cfg.AuthHandler.ChangePassword)
			r.Get("/users/current-user", cfg.AuthHandler.Me)
			r.Patch("/users/update-account", cfg.UserHandler.UpdateAccount)
			r.Patch("/users/avatar", cfg.UserHandler.UpdateAvatar)
			r.Patch("/users/cover-image", cfg.UserHandler.UpdateCoverImage)
			r.Get("/users/watch-history", cfg.UserHandler.WatchHistory)

			r.Post("/channels/{username}/subscribe", cfg.ChannelHandler.Subscribe)
			r.Delete("/channels/{username}/subscribe", cfg.ChannelHandler.Unsubscribe)

			r.Post("/videos", cfg.VideoHandler.Create)

			r.Post("/playlists", cfg.PlaylistHandler.Create)
			r.Post("/playlists/{id}/videos/{videoID}", cfg.PlaylistHandler.AddVideo)
			r.Delete("/playlists/{id}/videos/{videoID}", cfg.PlaylistHandler.RemoveVideo)
		})
	})

	return r
}
