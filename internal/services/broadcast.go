package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/messenger"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
)

const nothingPosted = "Nothing has been posted yet."

type BroadcastStats struct {
	Recipients int
	Failed     int
	Posts      int
}

// BroadcastService fans the latest posts out to every USER-role user.
type BroadcastService struct {
	store   Store
	gateway messenger.Gateway
	limit   int
}

func NewBroadcastService(store Store, gateway messenger.Gateway, limit int) *BroadcastService {
	if limit <= 0 {
		limit = messenger.MaxCardsPerTemplate
	}
	return &BroadcastService{store: store, gateway: gateway, limit: limit}
}

// Broadcast sends sequentially; a failed recipient does not stop the rest.
func (s *BroadcastService) Broadcast(ctx context.Context, res *TurnResult) BroadcastStats {
	var stats BroadcastStats

	users, err := s.store.UsersByRole(ctx, models.RoleUser)
	if err != nil {
		res.fail("list_users", err)
		return stats
	}
	posts, err := s.store.LatestPosts(ctx, s.limit)
	if err != nil {
		res.fail("latest_posts", err)
		return stats
	}
	stats.Posts = len(posts)

	for _, u := range users {
		stats.Recipients++
		req := messenger.Text(u.FacebookID, nothingPosted)
		if len(posts) > 0 {
			req = messenger.PostCards(u.FacebookID, posts)
		}
		if !deliver(ctx, s.gateway, res, "broadcast", req) {
			stats.Failed++
		}
	}

	slog.Info("broadcast finished", "recipients", stats.Recipients, "failed", stats.Failed, "posts", stats.Posts)
	return stats
}
