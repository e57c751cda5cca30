package model

import (
	"errors"
	"time"
)

type Playlist struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PlaylistWithVideos is a playlist plus its ordered video entries.
type PlaylistWithVideos struct {
	Playlist
	Videos []Video `json:"videos"`
}

type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var (
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrNotPlaylistOwner   = errors.New("not the playlist owner")
	ErrVideoInPlaylist    = errors.New("video already in playlist")
	ErrVideoNotInPlaylist = errors.New("video not in playlist")
)
