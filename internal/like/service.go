package like

import (
	"context"
	"errors"
	"fmt"

	"babble-service/internal/babble"
	"babble-service/internal/feed"
	"babble-service/internal/notify"
)

var ErrAlreadyLiked = errors.New("babble already liked")

// BabbleSource resolves the babble being liked; a missing babble aborts.
type BabbleSource interface {
	GetByID(ctx context.Context, id int64) (*babble.Babble, error)
}

type Service interface {
	Like(ctx context.Context, userID, babbleID int64) error
	Unlike(ctx context.Context, userID, babbleID int64) error
}

type service struct {
	repo     Repository
	babbles  BabbleSource
	counters *babble.Counters
	index    *feed.IndexCache
	events   *notify.Publisher
}

func NewService(repo Repository, babbles BabbleSource, counters *babble.Counters, index *feed.IndexCache, events *notify.Publisher) Service {
	return &service{repo: repo, babbles: babbles, counters: counters, index: index, events: events}
}

func (s *service) Like(ctx context.Context, userID, babbleID int64) error {
	b, err := s.babbles.GetByID(ctx, babbleID)
	if err != nil {
		return err
	}
	exists, err := s.repo.Exists(ctx, userID, babbleID)
	if err != nil {
		return fmt.Errorf("check like: %w", err)
	}
	if exists {
		return ErrAlreadyLiked
	}

	if err := s.repo.Create(ctx, userID, babbleID); err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	if err := s.counters.Apply(ctx, babbleID, babble.FieldLikeCount, 1); err != nil {
		// keep edge and counter consistent when the counter write fails
		_, _ = s.repo.Delete(ctx, userID, babbleID)
		return fmt.Errorf("like count: %w", err)
	}

	s.index.SetFlag(ctx, userID, babbleID, feed.FlagLiked, true)
	s.events.Emit(ctx, notify.Event{
		Kind:     notify.KindLiked,
		ActorID:  userID,
		UserID:   b.UserID,
		BabbleID: babbleID,
	})
	return nil
}

func (s *service) Unlike(ctx context.Context, userID, babbleID int64) error {
	removed, err := s.repo.Delete(ctx, userID, babbleID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if !removed {
		return nil
	}
	if err := s.counters.Apply(ctx, babbleID, babble.FieldLikeCount, -1); err != nil {
		return fmt.Errorf("like count: %w", err)
	}
	s.index.SetFlag(ctx, userID, babbleID, feed.FlagLiked, false)
	return nil
}
