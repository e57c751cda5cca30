package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

type stubVideoRepo struct {
	history []model.WatchHistoryEntry
}

func (s *stubVideoRepo) Create(ctx context.Context, video *model.Video) error {
	video.ID = 1
	return nil
}

func (s *stubVideoRepo) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	return nil, model.ErrVideoNotFound
}

func (s *stubVideoRepo) IncrementViews(ctx context.Context, id int64) error { return nil }

func (s *stubVideoRepo) AppendWatchHistory(ctx context.Context, userID, videoID int64) error {
	return nil
}

func (s *stubVideoRepo) GetWatchHistory(ctx context.Context, userID int64) ([]model.WatchHistoryEntry, error) {
	return s.history, nil
}

type userFixture struct {
	handler  *UserHandler
	repo     *memoryUserRepo
	uploader *staticUploader
	videos   *stubVideoRepo
}

func newUserFixture() *userFixture {
	repo := newMemoryUserRepo()
	uploader := &staticUploader{}
	videos := &stubVideoRepo{}
	logger := slog.New(slog.DiscardHandler)

	userService := service.NewUserService(repo, uploader, logger)
	videoService := service.NewVideoService(videos, logger)

	return &userFixture{
		handler:  NewUserHandler(userService, videoService, logger),
		repo:     repo,
		uploader: uploader,
		videos:   videos,
	}
}

func (f *userFixture) seedUser(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{
		Username:  "testuser",
		Email:     "test@example.com",
		FullName:  "Test User",
		AvatarURL: "https://cdn.example.com/avatars/old.jpg",
		AvatarKey: "avatars/old.jpg",
	}
	if err := f.repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func authedRequest(req *http.Request, userID int64) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func imageForm(t *testing.T, field string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if withFile {
		part, err := writer.CreateFormFile(field, "image.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write([]byte("fake image bytes"))
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUserHandler_UpdateAvatar_Success(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t)

	body, contentType := imageForm(t, "avatar", true)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, user.ID)
	rec := httptest.NewRecorder()

	f.handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if f.uploader.deletes != 1 {
		t.Errorf("deletes = %d, want 1 (previous avatar removed)", f.uploader.deletes)
	}
	if f.uploader.uploads != 1 {
		t.Errorf("uploads = %d, want 1", f.uploader.uploads)
	}

	stored, _ := f.repo.GetByID(context.Background(), user.ID)
	if stored.AvatarKey == "avatars/old.jpg" {
		t.Error("avatar key should point at the new upload")
	}
}

func TestUserHandler_UpdateAvatar_MissingFile(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t)

	body, contentType := imageForm(t, "avatar", false)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, user.ID)
	rec := httptest.NewRecorder()

	f.handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if f.uploader.uploads != 0 || f.uploader.deletes != 0 {
		t.Error("no media-host call should happen without a staged file")
	}

	stored, _ := f.repo.GetByID(context.Background(), user.ID)
	if stored.AvatarKey != "avatars/old.jpg" {
		t.Error("avatar must be untouched when the file is missing")
	}
}

func TestUserHandler_UpdateAvatar_Unauthenticated(t *testing.T) {
	f := newUserFixture()

	body, contentType := imageForm(t, "avatar", true)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUserHandler_UpdateCoverImage_Success(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t)

	body, contentType := imageForm(t, "coverImage", true)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/cover-image", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, user.ID)
	rec := httptest.NewRecorder()

	f.handler.UpdateCoverImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Seeded user has no cover yet, so nothing to delete remotely.
	if f.uploader.deletes != 0 {
		t.Errorf("deletes = %d, want 0 for first cover upload", f.uploader.deletes)
	}

	stored, _ := f.repo.GetByID(context.Background(), user.ID)
	if stored.CoverImageURL == nil {
		t.Error("cover image should be set after upload")
	}
}

func TestUserHandler_UpdateAccount(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t)

	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
	}{
		{
			name:       "success",
			payload:    map[string]string{"full_name": "Renamed User", "email": "renamed@example.com"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing email",
			payload:    map[string]string{"full_name": "Renamed User"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing full name",
			payload:    map[string]string{"email": "renamed@example.com"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-account", bytes.NewReader(payload))
			req = authedRequest(req, user.ID)
			rec := httptest.NewRecorder()

			f.handler.UpdateAccount(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUserHandler_WatchHistory(t *testing.T) {
	f := newUserFixture()
	user := f.seedUser(t)

	f.videos.history = []model.WatchHistoryEntry{
		{
			Video: model.Video{ID: 10, Title: "first watched"},
			Owner: model.VideoOwner{Username: "creator", FullName: "Creator One"},
		},
		{
			Video: model.Video{ID: 4, Title: "second watched"},
			Owner: model.VideoOwner{Username: "other", FullName: "Creator Two"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/watch-history", nil)
	req = authedRequest(req, user.ID)
	rec := httptest.NewRecorder()

	f.handler.WatchHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, rec)
	entries, ok := envelope["data"].([]interface{})
	if !ok || len(entries) != 2 {
		t.Fatalf("data = %v, want 2 history entries", envelope["data"])
	}

	first := entries[0].(map[string]interface{})
	if first["title"] != "first watched" {
		t.Errorf("first entry title = %v, want reference order preserved", first["title"])
	}

	owner, ok := first["owner"].(map[string]interface{})
	if !ok {
		t.Fatal("owner should be a single object, not an array")
	}
	if owner["username"] != "creator" {
		t.Errorf("owner username = %v, want %q", owner["username"], "creator")
	}
}
