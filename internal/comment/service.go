package comment

import (
	"context"
	"errors"
	"fmt"

	"babble-service/internal/babble"
	"babble-service/internal/notify"
)

var ErrNotAuthor = errors.New("not the author")

type BabbleSource interface {
	GetByID(ctx context.Context, id int64) (*babble.Babble, error)
}

type Service interface {
	Create(ctx context.Context, userID, babbleID int64, audioURL string) (Data, error)
	Delete(ctx context.Context, userID, id int64) error
	ListByBabble(ctx context.Context, babbleID int64, offset, limit int) ([]Data, error)
}

type service struct {
	repo     Repository
	babbles  BabbleSource
	counters *babble.Counters
	events   *notify.Publisher
}

func NewService(repo Repository, babbles BabbleSource, counters *babble.Counters, events *notify.Publisher) Service {
	return &service{repo: repo, babbles: babbles, counters: counters, events: events}
}

func (s *service) Create(ctx context.Context, userID, babbleID int64, audioURL string) (Data, error) {
	b, err := s.babbles.GetByID(ctx, babbleID)
	if err != nil {
		return Data{}, err
	}

	c := &Comment{UserID: userID, BabbleID: babbleID, Audio: audioURL}
	if err := s.repo.Create(ctx, c); err != nil {
		return Data{}, fmt.Errorf("create comment: %w", err)
	}
	if err := s.counters.Apply(ctx, babbleID, babble.FieldCommentCount, 1); err != nil {
		_ = s.repo.Delete(ctx, c.ID)
		return Data{}, fmt.Errorf("comment count: %w", err)
	}

	s.events.Emit(ctx, notify.Event{
		Kind:     notify.KindCommented,
		ActorID:  userID,
		UserID:   b.UserID,
		BabbleID: babbleID,
	})
	return Serialize(c), nil
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotAuthor
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.counters.Apply(ctx, c.BabbleID, babble.FieldCommentCount, -1)
}

func (s *service) ListByBabble(ctx context.Context, babbleID int64, offset, limit int) ([]Data, error) {
	cs, err := s.repo.ListByBabble(ctx, babbleID, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Data, len(cs))
	for i := range cs {
		out[i] = Serialize(&cs[i])
	}
	return out, nil
}
