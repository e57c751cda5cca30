package repository

import (
	"context"

	"vidtube/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// UpdateRefreshToken writes the session token column directly, without
	// touching any other field. nil clears it.
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error
	UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID int64, url, key string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, userID int64, url, key string) (*model.User, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscriberID, channelID int64) (bool, error)
	Delete(ctx context.Context, subscriberID, channelID int64) error
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
	// GetChannelProfile runs the channel aggregation: match lowercased
	// username, left-join subscriber and subscribed-to counts, compute
	// whether the viewer is among the subscribers, project public fields.
	GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id int64) (*model.Video, error)
	IncrementViews(ctx context.Context, id int64) error
	AppendWatchHistory(ctx context.Context, userID, videoID int64) error
	// GetWatchHistory joins the user's ordered watch history against videos
	// and each video's owner, projected to full name/username/avatar.
	GetWatchHistory(ctx context.Context, userID int64) ([]model.WatchHistoryEntry, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.PlaylistWithVideos, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]model.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID int64) error
	RemoveVideo(ctx context.Context, playlistID, videoID int64) error
}
