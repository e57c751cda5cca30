package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/config"
	"vidtube/internal/model"
	"vidtube/internal/service"
	"vidtube/internal/transport/http/middleware"
)

// memoryUserRepo is an in-memory repository.UserRepository good enough
// for exercising full register/login/refresh flows through the handlers.
type memoryUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int64]*model.User{}, nextID: 1}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	for _, user := range r.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *memoryUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := r.GetByUsernameOrEmail(ctx, username, email)
	return err == nil, nil
}

func (r *memoryUserRepo) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	user, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.RefreshToken = token
	return nil
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, userID int64, hashed string) error {
	user, ok := r.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.PasswordHashed = hashed
	return nil
}

func (r *memoryUserRepo) UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.FullName = fullName
	user.Email = email
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) UpdateAvatar(ctx context.Context, userID int64, url, key string) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.AvatarURL = url
	user.AvatarKey = key
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) UpdateCoverImage(ctx context.Context, userID int64, url, key string) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user.CoverImageURL = &url
	user.CoverImageKey = &key
	copied := *user
	return &copied, nil
}

// staticUploader satisfies service.MediaUploader without touching the
// network or the staged files.
type staticUploader struct {
	uploads int
	deletes int
}

func (u *staticUploader) UploadAvatar(ctx context.Context, localPath string) (*model.UploadResult, error) {
	u.uploads++
	return &model.UploadResult{URL: "https://cdn.example.com/avatars/a.jpg", Key: "avatars/a.jpg"}, nil
}

func (u *staticUploader) UploadCoverImage(ctx context.Context, localPath string) (*model.UploadResult, error) {
	u.uploads++
	return &model.UploadResult{URL: "https://cdn.example.com/covers/c.jpg", Key: "covers/c.jpg"}, nil
}

func (u *staticUploader) DeleteRemote(ctx context.Context, key string) model.DeleteStatus {
	u.deletes++
	if key == "" {
		return model.DeleteSkipped
	}
	return model.DeleteOK
}

type authFixture struct {
	handler  *AuthHandler
	repo     *memoryUserRepo
	uploader *staticUploader
	cfg      *config.Config
}

func newAuthFixture() *authFixture {
	cfg := &config.Config{
		AccessTokenSecret:  "access-secret-for-tests",
		RefreshTokenSecret: "refresh-secret-for-tests",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 864000,
	}
	repo := newMemoryUserRepo()
	uploader := &staticUploader{}
	logger := slog.New(slog.DiscardHandler)

	userService := service.NewUserService(repo, uploader, logger)
	authService := service.NewAuthService(repo, cfg)

	return &authFixture{
		handler:  NewAuthHandler(userService, authService, cfg, logger),
		repo:     repo,
		uploader: uploader,
		cfg:      cfg,
	}
}

// seedUser inserts a user with a known password directly into the repo.
func (f *authFixture) seedUser(t *testing.T, username, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &model.User{
		Username:       username,
		Email:          email,
		FullName:       "Seeded User",
		PasswordHashed: string(hash),
		AvatarURL:      "https://cdn.example.com/avatars/seed.jpg",
		AvatarKey:      "avatars/seed.jpg",
	}
	if err := f.repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func registerForm(t *testing.T, fields map[string]string, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if withAvatar {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write([]byte("fake image bytes"))
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return envelope
}

func TestAuthHandler_Register_Success(t *testing.T) {
	f := newAuthFixture()

	body, contentType := registerForm(t, map[string]string{
		"fullName": "New User",
		"email":    "new@example.com",
		"username": "NewUser",
		"password": "password123",
	}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Error("success should be true")
	}

	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data should be the created user object")
	}
	if data["username"] != "newuser" {
		t.Errorf("username = %v, want case-normalized %q", data["username"], "newuser")
	}
	for _, secret := range []string{"password", "password_hashed", "refresh_token"} {
		if _, leaked := data[secret]; leaked {
			t.Errorf("response leaks %q", secret)
		}
	}

	if f.uploader.uploads != 1 {
		t.Errorf("uploads = %d, want 1", f.uploader.uploads)
	}
}

func TestAuthHandler_Register_MissingAvatar(t *testing.T) {
	f := newAuthFixture()

	body, contentType := registerForm(t, map[string]string{
		"fullName": "New User",
		"email":    "new@example.com",
		"username": "newuser",
		"password": "password123",
	}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Avatar file is required" {
		t.Errorf("message = %v", envelope["message"])
	}
	if f.uploader.uploads != 0 {
		t.Error("no upload should be attempted without an avatar")
	}
	if len(f.repo.users) != 0 {
		t.Error("no user should be created without an avatar")
	}
}

func TestAuthHandler_Register_MissingField(t *testing.T) {
	f := newAuthFixture()

	body, contentType := registerForm(t, map[string]string{
		"fullName": "New User",
		"email":    "new@example.com",
		"username": "newuser",
		// password omitted
	}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(f.repo.users) != 0 {
		t.Error("no user should be created with missing fields")
	}
}

func TestAuthHandler_Register_DuplicateIdentity(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "taken", "taken@example.com", "password123")

	body, contentType := registerForm(t, map[string]string{
		"fullName": "New User",
		"email":    "taken@example.com",
		"username": "someoneelse",
		"password": "password123",
	}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != false {
		t.Error("success should be false")
	}
	if _, ok := envelope["errors"].([]interface{}); !ok {
		t.Error("error envelope should carry an errors array")
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "testuser", "test@example.com", "password123")

	payload, _ := json.Marshal(map[string]string{"username": "testuser", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	f.handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var gotAccess, gotRefresh bool
	for _, c := range cookies {
		switch c.Name {
		case middleware.AccessTokenCookie:
			gotAccess = true
		case RefreshTokenCookie:
			gotRefresh = true
		}
		if !c.HttpOnly {
			t.Errorf("cookie %s should be httpOnly", c.Name)
		}
	}
	if !gotAccess || !gotRefresh {
		t.Errorf("cookies = %v, want both token cookies", cookies)
	}

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	if data["access_token"] == "" || data["refresh_token"] == "" {
		t.Error("both tokens should be in the response body")
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "testuser", "test@example.com", "password123")

	payload, _ := json.Marshal(map[string]string{"username": "testuser", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	f.handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookies should be set on failed login")
	}
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	f := newAuthFixture()

	payload, _ := json.Marshal(map[string]string{"username": "ghost", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	f.handler.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAuthHandler_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "testuser", "test@example.com", "password123")

	authService := service.NewAuthService(f.repo, f.cfg)
	pair, err := authService.IssueTokenPair(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()

	f.handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Replaying the rotated-out token must fail.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	replay.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})
	replayRec := httptest.NewRecorder()

	f.handler.Refresh(replayRec, replay)

	if replayRec.Code != http.StatusUnauthorized {
		t.Errorf("replay status = %d, want %d", replayRec.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Refresh_FromBody(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "testuser", "test@example.com", "password123")

	authService := service.NewAuthService(f.repo, f.cfg)
	pair, err := authService.IssueTokenPair(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"refresh_token": pair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	f.handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	f := newAuthFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	f.handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_ChangePassword_WrongOldPassword(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "testuser", "test@example.com", "password123")

	payload, _ := json.Marshal(map[string]string{"old_password": "wrong", "new_password": "newpassword"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(payload))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rec := httptest.NewRecorder()

	f.handler.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Logout_ClearsCookiesAndToken(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "testuser", "test@example.com", "password123")

	authService := service.NewAuthService(f.repo, f.cfg)
	if _, err := authService.IssueTokenPair(context.Background(), user.ID); err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rec := httptest.NewRecorder()

	f.handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	stored, _ := f.repo.GetByID(context.Background(), user.ID)
	if stored.RefreshToken != nil {
		t.Error("stored refresh token should be cleared on logout")
	}

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge != -1 {
			t.Errorf("cookie %s should be expired, MaxAge = %d", c.Name, c.MaxAge)
		}
	}
}
