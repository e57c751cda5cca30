package model

import "errors"

// TokenPair holds both tokens issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest is the body of POST /users/refresh-token when the
// token is not supplied via cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

var (
	// ErrTokenInvalid is returned when a token fails signature or expiry checks
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenMismatch is returned when a presented refresh token does not
	// match the one currently stored on the user (rotation/reuse)
	ErrTokenMismatch = errors.New("refresh token is expired or already used")
)
