package model

import (
	"errors"
	"time"
)

type Subscription struct {
	SubscriberID int64     `db:"subscriber_id" json:"subscriber_id"`
	ChannelID    int64     `db:"channel_id" json:"channel_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ChannelProfile is the projected result of the channel aggregation:
// public user fields plus subscriber statistics relative to the viewer.
type ChannelProfile struct {
	ID                        int64   `db:"id" json:"id"`
	FullName                  string  `db:"full_name" json:"full_name"`
	Username                  string  `db:"username" json:"username"`
	Email                     string  `db:"email" json:"email"`
	AvatarURL                 string  `db:"avatar_url" json:"avatar_url"`
	CoverImageURL             *string `db:"cover_image_url" json:"cover_image_url"`
	SubscribersCount          int64   `db:"subscribers_count" json:"subscribers_count"`
	ChannelsSubscribedToCount int64   `db:"channels_subscribed_to_count" json:"channels_subscribed_to_count"`
	IsSubscribed              bool    `db:"is_subscribed" json:"is_subscribed"`
}

var (
	ErrChannelNotFound     = errors.New("channel does not exist")
	ErrAlreadySubscribed   = errors.New("already subscribed to this channel")
	ErrNotSubscribed       = errors.New("not subscribed to this channel")
	ErrCannotSubscribeSelf = errors.New("cannot subscribe to your own channel")
)
