package model

import (
	"errors"
	"time"
)

// Video is the join target of the watch-history aggregation.
type Video struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	VideoURL     string    `db:"video_url" json:"video_url"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url"`
	Duration     float64   `db:"duration" json:"duration"`
	Views        int64     `db:"views" json:"views"`
	IsPublished  bool      `db:"is_published" json:"is_published"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// VideoOwner is the reduced owner projection embedded in watch-history
// entries: full name, username and avatar only.
type VideoOwner struct {
	ID        int64  `db:"owner_id" json:"id"`
	FullName  string `db:"owner_full_name" json:"full_name"`
	Username  string `db:"owner_username" json:"username"`
	AvatarURL string `db:"owner_avatar_url" json:"avatar_url"`
}

// WatchHistoryEntry is one enriched video in a user's watch history.
// Owner is a single object, never an array.
type WatchHistoryEntry struct {
	Video
	Owner VideoOwner `json:"owner"`
}

type CreateVideoRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
}

var (
	// ErrVideoNotFound is returned when a video cannot be found
	ErrVideoNotFound = errors.New("video not found")
)
