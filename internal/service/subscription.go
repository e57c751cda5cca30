package service

import (
	"context"
	"strings"

	"vidtube/internal/model"
	"vidtube/internal/repository"
)

// SubscriptionService manages the subscriber graph and the channel
// profile aggregation built on it.
type SubscriptionService struct {
	repo repository.SubscriptionRepository
}

func NewSubscriptionService(repo repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// GetChannelProfile resolves a channel by lowercased username and
// computes its subscriber statistics relative to the viewer (nil for
// anonymous requests, which always see is_subscribed = false).
func (s *SubscriptionService) GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, model.ErrChannelNotFound
	}
	return s.repo.GetChannelProfile(ctx, username, viewerID)
}

// Subscribe adds the viewer to the channel's subscriber set.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID int64, channelUsername string) error {
	channel, err := s.GetChannelProfile(ctx, channelUsername, nil)
	if err != nil {
		return err
	}

	if channel.ID == subscriberID {
		return model.ErrCannotSubscribeSelf
	}

	created, err := s.repo.Create(ctx, subscriberID, channel.ID)
	if err != nil {
		return err
	}
	if !created {
		return model.ErrAlreadySubscribed
	}

	return nil
}

// Unsubscribe removes the viewer from the channel's subscriber set.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID int64, channelUsername string) error {
	channel, err := s.GetChannelProfile(ctx, channelUsername, nil)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, subscriberID, channel.ID)
}
