package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/httputil"
	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// AuthHandler groups session endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	config      *config.Config
	logger      *slog.Logger
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		config:      cfg,
		logger:      logger,
	}
}

// setTokenCookies delivers both tokens as httpOnly cookies; the same
// tokens are echoed in the JSON body.
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, pair *model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   h.config.AccessTokenMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   h.config.RefreshTokenMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Register handles multipart sign-up with a mandatory avatar and an
// optional cover image.
// POST /users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	maxFormSize := 2*model.MaxImageSizeBytes + 1024*1024 // two images plus form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Uploaded files exceed the 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	req := model.RegisterRequest{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	for field, value := range map[string]string{
		"fullName": req.FullName,
		"email":    req.Email,
		"username": req.Username,
		"password": req.Password,
	} {
		if strings.TrimSpace(value) == "" {
			httputil.WriteBadRequest(w, field+" is required")
			return
		}
	}

	avatarPath, err := stageFormFile(r, "avatar")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if avatarPath == "" {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}

	coverImagePath, err := stageFormFile(r, "coverImage")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), &req, avatarPath, coverImagePath)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrIdentityExists):
			httputil.WriteConflict(w, "User with this username or email already exists")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "Uploaded image exceeds the 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		case errors.Is(err, model.ErrUploadFailed):
			httputil.WriteBadRequest(w, "Failed to upload avatar")
		default:
			h.logger.Error("register failed", "error", err)
			httputil.WriteInternalError(w, "Failed to register user")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, user, "User registered successfully")
}

// Login authenticates by username or email and issues the token pair.
// POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" && req.Email == "" {
		httputil.WriteBadRequest(w, "Username or email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User does not exist")
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Invalid user credentials")
		default:
			h.logger.Error("login failed", "error", err)
			httputil.WriteInternalError(w, "Failed to login")
		}
		return
	}

	pair, err := h.authService.IssueTokenPair(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("token issue failed", "user_id", user.ID, "error", err)
		httputil.WriteInternalError(w, "Failed to generate tokens")
		return
	}

	h.setTokenCookies(w, pair)
	httputil.WriteSuccess(w, http.StatusOK, model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, "User logged in successfully")
}

// Logout clears the stored refresh token and both cookies.
// POST /users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		h.logger.Error("logout failed", "user_id", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to logout")
		return
	}

	h.clearTokenCookies(w)
	httputil.WriteSuccess(w, http.StatusOK, struct{}{}, "User logged out successfully")
}

// Refresh exchanges a refresh token, read from cookie or body, for a
// new pair. The old refresh token is rotated out.
// POST /users/refresh-token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var raw string
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		raw = cookie.Value
	} else {
		var req model.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.RefreshToken
		}
	}

	if raw == "" {
		httputil.WriteUnauthorized(w, "Refresh token is required")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTokenMismatch):
			httputil.WriteUnauthorized(w, "Refresh token is expired or already used")
		case errors.Is(err, model.ErrTokenInvalid):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		default:
			h.logger.Error("refresh failed", "error", err)
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setTokenCookies(w, pair)
	httputil.WriteSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

// ChangePassword verifies the old password before replacing it.
// POST /users/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		httputil.WriteBadRequest(w, "Old and new passwords are required")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Old password is incorrect")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			h.logger.Error("change password failed", "user_id", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to change password")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

// Me returns the currently authenticated user.
// GET /users/current-user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("get current user failed", "user_id", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, user, "Current user fetched successfully")
}
