package model

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a registered channel owner.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      string    `db:"avatar_url" json:"avatar_url"`
	AvatarKey      string    `db:"avatar_key" json:"-"`
	CoverImageURL  *string   `db:"cover_image_url" json:"cover_image_url"`
	CoverImageKey  *string   `db:"cover_image_key" json:"-"`
	RefreshToken   *string   `db:"refresh_token" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CheckPassword compares a plaintext password against the stored bcrypt hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHashed), []byte(password)) == nil
}

// SignAccessToken produces a short-lived access token for this user.
func (u *User) SignAccessToken(secret string, maxAge time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
		"exp":      time.Now().Add(maxAge).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// SignRefreshToken produces a longer-lived refresh token for this user.
// Only the user id is carried; everything else is looked up on use. The
// jti keeps every issued token distinct so rotation always invalidates
// the previous one.
func (u *User) SignRefreshToken(secret string, maxAge time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(maxAge).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// RegisterRequest carries the text fields of the multipart sign-up form.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`

	AvatarURL     string  `json:"-"`
	AvatarKey     string  `json:"-"`
	CoverImageURL *string `json:"-"`
	CoverImageKey *string `json:"-"`
}

// LoginRequest accepts either username or email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrIdentityExists is returned when a username or email is already taken
	ErrIdentityExists = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned when login or password-change credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
