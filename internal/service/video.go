package service

import (
	"context"
	"log/slog"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/repository"
)

// VideoService covers the minimal video operations the platform needs:
// publishing metadata, fetching with view/watch-history side effects,
// and the watch-history aggregation.
type VideoService struct {
	repo   repository.VideoRepository
	logger *slog.Logger
}

func NewVideoService(repo repository.VideoRepository, logger *slog.Logger) *VideoService {
	return &VideoService{repo: repo, logger: logger}
}

// Publish stores video metadata owned by the given user.
func (s *VideoService) Publish(ctx context.Context, ownerID int64, req *model.CreateVideoRequest) (*model.Video, error) {
	video := &model.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		IsPublished:  true,
	}

	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}

	return video, nil
}

// Get fetches a video, bumping its view count. When a viewer is known
// the video is appended to their watch history; both side effects are
// non-critical and only logged on failure.
func (s *VideoService) Get(ctx context.Context, videoID int64, viewerID *int64) (*model.Video, error) {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, videoID); err != nil {
		s.logger.Warn("failed to increment views", "video_id", videoID, "error", err)
	} else {
		video.Views++
	}

	if viewerID != nil {
		if err := s.repo.AppendWatchHistory(ctx, *viewerID, videoID); err != nil {
			s.logger.Warn("failed to record watch history", "user_id", *viewerID, "video_id", videoID, "error", err)
		}
	}

	return video, nil
}

// GetWatchHistory returns the viewer's enriched watch history in
// reference order.
func (s *VideoService) GetWatchHistory(ctx context.Context, userID int64) ([]model.WatchHistoryEntry, error) {
	return s.repo.GetWatchHistory(ctx, userID)
}
