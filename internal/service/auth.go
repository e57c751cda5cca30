package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vidtube/internal/config"
	"vidtube/internal/model"
	"vidtube/internal/repository"
)

// AuthService issues and validates the session token pair. The refresh
// token is persisted on the user record, so there is exactly one active
// refresh token per user and issuing a new pair invalidates the old one.
type AuthService struct {
	userRepo repository.UserRepository
	config   *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		config:   cfg,
	}
}

// IssueTokenPair signs both tokens for the user and persists the refresh
// token onto the user row without re-running any other validation.
func (s *AuthService) IssueTokenPair(ctx context.Context, userID int64) (*model.TokenPair, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for token issue: %w", err)
	}

	accessToken, err := user.SignAccessToken(s.config.AccessTokenSecret, time.Duration(s.config.AccessTokenMaxAge)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := user.SignRefreshToken(s.config.RefreshTokenSecret, time.Duration(s.config.RefreshTokenMaxAge)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, userID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, nil
}

// VerifyRefreshToken checks signature and expiry against the refresh
// secret, then requires the presented token to match the one currently
// stored on the referenced user byte-for-byte. A mismatch means the
// token was rotated out or reused.
func (s *AuthService) VerifyRefreshToken(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, model.ErrTokenInvalid
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.RefreshTokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrTokenInvalid
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, model.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, int64(userIDFloat))
	if err != nil {
		return nil, model.ErrTokenInvalid
	}

	if user.RefreshToken == nil || *user.RefreshToken != raw {
		return nil, model.ErrTokenMismatch
	}

	return user, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// stored token so the presented one is no longer accepted.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*model.TokenPair, error) {
	user, err := s.VerifyRefreshToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.IssueTokenPair(ctx, user.ID)
}

// Logout clears the stored refresh token, rejecting all subsequent
// refresh attempts until the next login.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
