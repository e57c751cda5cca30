package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_CheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	user := &User{PasswordHashed: string(hash)}

	if !user.CheckPassword("password123") {
		t.Error("correct password should verify")
	}
	if user.CheckPassword("wrong") {
		t.Error("wrong password should not verify")
	}
	if user.CheckPassword("") {
		t.Error("empty password should not verify")
	}
}

func TestUser_SignAccessToken(t *testing.T) {
	user := &User{ID: 42, Username: "testuser", Email: "test@example.com"}

	signed, err := user.SignAccessToken("secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("signed token should parse: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 42 {
		t.Errorf("user_id = %v, want 42", claims["user_id"])
	}
	if claims["username"] != "testuser" {
		t.Errorf("username = %v, want testuser", claims["username"])
	}
}

func TestUser_SignRefreshToken_Distinct(t *testing.T) {
	user := &User{ID: 42}

	first, err := user.SignRefreshToken("secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := user.SignRefreshToken("secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Error("consecutive refresh tokens must be distinct")
	}
}

func TestUser_JSONOmitsSensitiveFields(t *testing.T) {
	refresh := "some.refresh.token"
	key := "covers/c.jpg"
	user := &User{
		ID:             1,
		Username:       "testuser",
		PasswordHashed: "bcrypt-hash",
		AvatarKey:      "avatars/a.jpg",
		CoverImageKey:  &key,
		RefreshToken:   &refresh,
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, field := range []string{"password_hashed", "refresh_token", "avatar_key", "cover_image_key"} {
		if _, ok := out[field]; ok {
			t.Errorf("serialized user leaks %q", field)
		}
	}
	if out["username"] != "testuser" {
		t.Error("public fields should survive serialization")
	}
}
