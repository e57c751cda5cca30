package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vidtube/internal/model"
)

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	query := `
		INSERT INTO subscriptions (subscriber_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to create subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID int64) error {
	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`
	result, err := r.db.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotSubscribed
	}

	return nil
}

func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription existence: %w", err)
	}
	return exists, nil
}

// GetChannelProfile computes the public channel projection in one statement.
//
// Stage order mirrors the read contract: match on the lowercased username,
// left-join subscriptions where the user is the channel (subscriber count),
// left-join subscriptions where the user is the subscriber (subscribed-to
// count), then derive is_subscribed from the viewer's presence among the
// subscribers. A nil viewer compares as NULL and coalesces to false.
func (r *subscriptionRepository) GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error) {
	query := `
		SELECT u.id, u.full_name, u.username, u.email, u.avatar_url, u.cover_image_url,
		       COUNT(DISTINCT sub.subscriber_id) AS subscribers_count,
		       COUNT(DISTINCT sto.channel_id)    AS channels_subscribed_to_count,
		       COALESCE(BOOL_OR(sub.subscriber_id = $2), FALSE) AS is_subscribed
		FROM users u
		LEFT JOIN subscriptions sub ON sub.channel_id = u.id
		LEFT JOIN subscriptions sto ON sto.subscriber_id = u.id
		WHERE u.username = $1
		GROUP BY u.id
	`

	var profile model.ChannelProfile
	err := r.db.GetContext(ctx, &profile, query, username, viewerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return &profile, nil
}
