package service

import (
	"context"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/repository"
)

// PlaylistService manages user playlists and their video membership.
type PlaylistService struct {
	repo repository.PlaylistRepository
}

func NewPlaylistService(repo repository.PlaylistRepository) *PlaylistService {
	return &PlaylistService{repo: repo}
}

func (s *PlaylistService) Create(ctx context.Context, ownerID int64, req *model.CreatePlaylistRequest) (*model.Playlist, error) {
	playlist := &model.Playlist{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}

	if err := s.repo.Create(ctx, playlist); err != nil {
		return nil, err
	}

	return playlist, nil
}

func (s *PlaylistService) GetByID(ctx context.Context, id int64) (*model.PlaylistWithVideos, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID int64) ([]model.Playlist, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// AddVideo appends a video; only the playlist owner may modify it.
func (s *PlaylistService) AddVideo(ctx context.Context, userID, playlistID, videoID int64) error {
	playlist, err := s.repo.GetByID(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.OwnerID != userID {
		return model.ErrNotPlaylistOwner
	}
	return s.repo.AddVideo(ctx, playlistID, videoID)
}

// RemoveVideo removes a video; only the playlist owner may modify it.
func (s *PlaylistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID int64) error {
	playlist, err := s.repo.GetByID(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.OwnerID != userID {
		return model.ErrNotPlaylistOwner
	}
	return s.repo.RemoveVideo(ctx, playlistID, videoID)
}
