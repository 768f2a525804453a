package rebabble

import (
	"context"
	"errors"
	"fmt"

	"babble-service/internal/babble"
	"babble-service/internal/feed"
	"babble-service/internal/notify"
)

var ErrAlreadyRebabbled = errors.New("babble already rebabbled")

type BabbleSource interface {
	GetByID(ctx context.Context, id int64) (*babble.Babble, error)
}

type Service interface {
	Rebabble(ctx context.Context, userID, babbleID int64) error
	Undo(ctx context.Context, userID, babbleID int64) error
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

func (s *service) Rebabble(ctx context.Context, userID, babbleID int64) error {
	b, err := s.babbles.GetByID(ctx, babbleID)
	if err != nil {
		return err
	}
	exists, err := s.repo.Exists(ctx, userID, babbleID)
	if err != nil {
		return fmt.Errorf("check rebabble: %w", err)
	}
	if exists {
		return ErrAlreadyRebabbled
	}

	if err := s.repo.Create(ctx, userID, babbleID); err != nil {
		return fmt.Errorf("create rebabble: %w", err)
	}
	if err := s.counters.Apply(ctx, babbleID, babble.FieldRebabbleCount, 1); err != nil {
		_, _ = s.repo.Delete(ctx, userID, babbleID)
		return fmt.Errorf("rebabble count: %w", err)
	}

	s.index.SetFlag(ctx, userID, babbleID, feed.FlagRebabbled, true)
	s.events.Emit(ctx, notify.Event{
		Kind:     notify.KindRebabbled,
		ActorID:  userID,
		UserID:   b.UserID,
		BabbleID: babbleID,
	})
	return nil
}

func (s *service) Undo(ctx context.Context, userID, babbleID int64) error {
	removed, err := s.repo.Delete(ctx, userID, babbleID)
	if err != nil {
		return fmt.Errorf("delete rebabble: %w", err)
	}
	if !removed {
		return nil
	}
	if err := s.counters.Apply(ctx, babbleID, babble.FieldRebabbleCount, -1); err != nil {
		return fmt.Errorf("rebabble count: %w", err)
	}
	s.index.SetFlag(ctx, userID, babbleID, feed.FlagRebabbled, false)
	return nil
}
