package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/model"
	"vidtube/internal/repository"
)

// UserService handles business logic for account operations.
type UserService struct {
	repo   repository.UserRepository
	media  MediaUploader
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, media MediaUploader, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		media:  media,
		logger: logger,
	}
}

// Register creates a new account. The avatar is mandatory; the cover
// image is uploaded only when a staged path is provided. The username
// is stored lower-cased so channel lookups are case-insensitive.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest, avatarPath, coverImagePath string) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if exists {
		return nil, model.ErrIdentityExists
	}

	avatar, err := s.media.UploadAvatar(ctx, avatarPath)
	if err != nil {
		return nil, err
	}
	if avatar == nil || avatar.URL == "" {
		return nil, model.ErrUploadFailed
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		FullName:  strings.TrimSpace(req.FullName),
		AvatarURL: avatar.URL,
		AvatarKey: avatar.Key,
	}

	if coverImagePath != "" {
		cover, err := s.media.UploadCoverImage(ctx, coverImagePath)
		if err != nil {
			return nil, err
		}
		if cover != nil {
			user.CoverImageURL = &cover.URL
			user.CoverImageKey = &cover.Key
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHashed = string(hashedPassword)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}

	return created, nil
}

// Login authenticates by username or email plus password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	user, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword verifies the old password before replacing it. The new
// hash is written directly, no other fields are revalidated.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return model.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// UpdateAccount replaces full name and email together.
func (s *UserService) UpdateAccount(ctx context.Context, userID int64, req *model.UpdateAccountRequest) (*model.User, error) {
	return s.repo.UpdateAccount(ctx, userID, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Email))
}

// UpdateAvatar replaces the user's avatar. The previous remote asset is
// deleted best-effort before the new upload; the three external calls
// are independent and not compensated on partial failure.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, localPath string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if status := s.media.DeleteRemote(ctx, user.AvatarKey); status == model.DeleteFailed {
		s.logger.Warn("old avatar left orphaned", "user_id", userID, "key", user.AvatarKey)
	}

	upload, err := s.media.UploadAvatar(ctx, localPath)
	if err != nil {
		return nil, err
	}
	if upload == nil || upload.URL == "" {
		return nil, model.ErrUploadFailed
	}

	return s.repo.UpdateAvatar(ctx, userID, upload.URL, upload.Key)
}

// UpdateCoverImage replaces the user's cover image, same contract as
// UpdateAvatar.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID int64, localPath string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.CoverImageKey != nil {
		if status := s.media.DeleteRemote(ctx, *user.CoverImageKey); status == model.DeleteFailed {
			s.logger.Warn("old cover image left orphaned", "user_id", userID, "key", *user.CoverImageKey)
		}
	}

	upload, err := s.media.UploadCoverImage(ctx, localPath)
	if err != nil {
		return nil, err
	}
	if upload == nil || upload.URL == "" {
		return nil, model.ErrUploadFailed
	}

	return s.repo.UpdateCoverImage(ctx, userID, upload.URL, upload.Key)
}
