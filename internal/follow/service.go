package follow

import (
	"context"
	"errors"
	"fmt"

	"babble-service/internal/feed"
	"babble-service/internal/notify"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type Service interface {
	Follow(ctx context.Context, followerID, followingID int64) error
	Unfollow(ctx context.Context, followerID, followingID int64) error
	Followers(ctx context.Context, userID int64) ([]int64, error)
	Following(ctx context.Context, userID int64) ([]int64, error)
}

type service struct {
	repo   Repository
	index  *feed.IndexCache
	events *notify.Publisher
}

func NewService(repo Repository, index *feed.IndexCache, events *notify.Publisher) Service {
	return &service{repo: repo, index: index, events: events}
}

// Follow creates the edge and drops the follower's feed index so the next
// timeline read rebuilds it with the new followee included.
func (s *service) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return ErrSelfFollow
	}
	if err := s.repo.Create(ctx, followerID, followingID); err != nil {
		return fmt.Errorf("create follow: %w", err)
	}

	s.index.Delete(ctx, followerID)
	s.events.Emit(ctx, notify.Event{
		Kind:    notify.KindFollowed,
		ActorID: followerID,
		UserID:  followingID,
	})
	return nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followingID int64) error {
	if err := s.repo.Delete(ctx, followerID, followingID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	s.index.Delete(ctx, followerID)
	return nil
}

func (s *service) Followers(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.FollowerIDs(ctx, userID)
}

func (s *service) Following(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.FolloweeIDs(ctx, userID)
}
