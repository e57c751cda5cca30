package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vidtube/internal/model"
)

type playlistRepository struct {
	db *sqlx.DB
}

func NewPlaylistRepository(db *sqlx.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, p *model.Playlist) error {
	query := `
		INSERT INTO playlists (owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.OwnerID, p.Name, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id int64) (*model.PlaylistWithVideos, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = $1
	`

	var p model.Playlist
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	videosQuery := `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration, v.views, v.is_published, v.created_at, v.updated_at
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = $1
		ORDER BY pv.position
	`

	videos := []model.Video{}
	if err := r.db.SelectContext(ctx, &videos, videosQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get playlist videos: %w", err)
	}

	return &model.PlaylistWithVideos{Playlist: p, Videos: videos}, nil
}

func (r *playlistRepository) GetByOwner(ctx context.Context, ownerID int64) ([]model.Playlist, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM playlists
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	playlists := []model.Playlist{}
	if err := r.db.SelectContext(ctx, &playlists, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	return playlists, nil
}

func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID int64) error {
	query := `INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, playlistID, videoID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return model.ErrVideoInPlaylist
			case "23503":
				return model.ErrVideoNotFound
			}
		}
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return nil
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID int64) error {
	query := `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`
	result, err := r.db.ExecContext(ctx, query, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("failed to remove video from playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrVideoNotInPlaylist
	}

	return nil
}
