package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vidtube/internal/model"
)

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, v *model.Video) error {
	query := `
		INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, views, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		v.OwnerID,
		v.Title,
		v.Description,
		v.VideoURL,
		v.ThumbnailURL,
		v.Duration,
		v.IsPublished,
	).Scan(&v.ID, &v.Views, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	query := `
		SELECT id, owner_id, title, description, video_url, thumbnail_url, duration, views, is_published, created_at, updated_at
		FROM videos
		WHERE id = $1
	`

	var v model.Video
	err := r.db.GetContext(ctx, &v, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}

	return &v, nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id int64) error {
	query := `UPDATE videos SET views = views + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// AppendWatchHistory adds a video to the end of the user's watch sequence.
func (r *videoRepository) AppendWatchHistory(ctx context.Context, userID, videoID int64) error {
	query := `INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, userID, videoID)
	if err != nil {
		return fmt.Errorf("failed to append watch history: %w", err)
	}
	return nil
}

// watchHistoryRow is the flat scan target for the watch-history join.
type watchHistoryRow struct {
	ID           int64     `db:"id"`
	OwnerID      int64     `db:"owner_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	VideoURL     string    `db:"video_url"`
	ThumbnailURL string    `db:"thumbnail_url"`
	Duration     float64   `db:"duration"`
	Views        int64     `db:"views"`
	IsPublished  bool      `db:"is_published"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	OwnerFullName  string `db:"owner_full_name"`
	OwnerUsername  string `db:"owner_username"`
	OwnerAvatarURL string `db:"owner_avatar_url"`
}

// GetWatchHistory returns the user's watched videos in reference order,
// each enriched with its owner projected to full name/username/avatar.
func (r *videoRepository) GetWatchHistory(ctx context.Context, userID int64) ([]model.WatchHistoryEntry, error) {
	query := `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration, v.views, v.is_published, v.created_at, v.updated_at,
		       o.full_name AS owner_full_name, o.username AS owner_username, o.avatar_url AS owner_avatar_url
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		LEFT JOIN users o ON o.id = v.owner_id
		WHERE wh.user_id = $1
		ORDER BY wh.position
	`

	var rows []watchHistoryRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}

	entries := make([]model.WatchHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.WatchHistoryEntry{
			Video: model.Video{
				ID:           row.ID,
				OwnerID:      row.OwnerID,
				Title:        row.Title,
				Description:  row.Description,
				VideoURL:     row.VideoURL,
				ThumbnailURL: row.ThumbnailURL,
				Duration:     row.Duration,
				Views:        row.Views,
				IsPublished:  row.IsPublished,
				CreatedAt:    row.CreatedAt,
				UpdatedAt:    row.UpdatedAt,
			},
			Owner: model.VideoOwner{
				ID:        row.OwnerID,
				FullName:  row.OwnerFullName,
				Username:  row.OwnerUsername,
				AvatarURL: row.OwnerAvatarURL,
			},
		})
	}

	return entries, nil
}
