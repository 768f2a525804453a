package babble

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"babble-service/internal/notify"
	"babble-service/internal/tag"
)

var ErrNotAuthor = errors.New("not the author")

// KeywordSource is the speech-to-text collaborator: synchronous, returns the
// tag set for a stored audio clip before the content cache entry is written.
type KeywordSource interface {
	GetKeywords(ctx context.Context, audioURL string) ([]string, error)
}

// FeedPusher propagates a committed babble into follower feed indexes.
// Implemented by the feed fan-out writer; declared here to keep the
// dependency pointing from feed to babble only.
type FeedPusher interface {
	Push(ctx context.Context, authorID int64, d Data)
}

// Marks answers a viewer's like/rebabble state for a set of babbles.
type Marks interface {
	LikedSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
	RebabbledSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, audioURL string) (Data, error)
	Get(ctx context.Context, viewerID, id int64) (Data, error)
	Update(ctx context.Context, userID, id int64, audioURL string) (Data, error)
	Delete(ctx context.Context, userID, id int64) error

	Explore(ctx context.Context, viewerID int64, cur Cursor, limit int) ([]Data, error)
	Profile(ctx context.Context, viewerID, authorID int64, cur Cursor, limit int) ([]Data, error)
	ByTag(ctx context.Context, viewerID int64, text string, cur Cursor, limit int) ([]Data, error)
	LikedBy(ctx context.Context, viewerID, userID int64, cur Cursor, limit int) ([]Data, error)
}

type service struct {
	repo     Repository
	tags     tag.Repository
	keywords KeywordSource
	content  *ContentCache
	fanout   FeedPusher
	marks    Marks
	events   *notify.Publisher
	log      *zap.Logger
}

func NewService(repo Repository, tags tag.Repository, keywords KeywordSource, content *ContentCache, fanout FeedPusher, marks Marks, events *notify.Publisher, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:     repo,
		tags:     tags,
		keywords: keywords,
		content:  content,
		fanout:   fanout,
		marks:    marks,
		events:   events,
		log:      log,
	}
}

// Create commits the babble, tags it from the transcription keywords, and
// only then fans the pointer out to followers. Tagging failures degrade to
// an untagged babble rather than losing the committed post.
func (s *service) Create(ctx context.Context, userID int64, audioURL string) (Data, error) {
	b := &Babble{UserID: userID, Audio: audioURL}
	if err := s.repo.Create(ctx, b); err != nil {
		return Data{}, fmt.Errorf("create babble: %w", err)
	}

	s.applyKeywords(ctx, b)

	d := Serialize(b)
	s.fanout.Push(ctx, userID, d)

	s.events.Emit(ctx, notify.Event{
		Kind:     notify.KindBabbleCreated,
		ActorID:  userID,
		UserID:   userID,
		BabbleID: b.ID,
	})
	s.log.Info("babble created",
		zap.Int64("babble_id", b.ID),
		zap.Int64("user_id", userID),
		zap.Strings("tags", d.Tags),
	)
	return d, nil
}

func (s *service) applyKeywords(ctx context.Context, b *Babble) {
	if b.Audio == "" {
		return
	}
	keywords, err := s.keywords.GetKeywords(ctx, b.Audio)
	if err != nil {
		s.log.Warn("keyword extraction", zap.Int64("babble_id", b.ID), zap.Error(err))
		return
	}
	tags, err := s.tags.UpsertAll(ctx, keywords)
	if err != nil {
		s.log.Warn("tag upsert", zap.Int64("babble_id", b.ID), zap.Error(err))
		return
	}
	if err := s.repo.ReplaceTags(ctx, b, tags); err != nil {
		s.log.Warn("tag attach", zap.Int64("babble_id", b.ID), zap.Error(err))
		return
	}
	b.Tags = tags
}

func (s *service) Get(ctx context.Context, viewerID, id int64) (Data, error) {
	d, ok := s.content.Get(ctx, id)
	if !ok {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return Data{}, err
		}
		d = Serialize(b)
		s.content.Set(ctx, d)
	}

	page := []Data{d}
	s.overlay(ctx, viewerID, page)
	return page[0], nil
}

// Update rewrites the audio, re-derives the tag set, and re-pushes the
// pointer to followers; an already present pointer merges instead of
// duplicating.
func (s *service) Update(ctx context.Context, userID, id int64, audioURL string) (Data, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Data{}, err
	}
	if b.UserID != userID {
		return Data{}, ErrNotAuthor
	}

	if audioURL != "" {
		b.Audio = audioURL
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return Data{}, fmt.Errorf("update babble: %w", err)
	}
	s.applyKeywords(ctx, b)

	d := Serialize(b)
	s.fanout.Push(ctx, userID, d)
	return d, nil
}

// Delete removes the content cache entry immediately; feed index pointers
// die lazily when the next read fails to resolve them.
func (s *service) Delete(ctx context.Context, userID, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotAuthor
	}

	s.content.Delete(ctx, id)
	return s.repo.Delete(ctx, id)
}

func (s *service) Explore(ctx context.Context, viewerID int64, cur Cursor, limit int) ([]Data, error) {
	rows, err := s.repo.Explore(ctx, viewerID, cur, limit)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, rows), nil
}

func (s *service) Profile(ctx context.Context, viewerID, authorID int64, cur Cursor, limit int) ([]Data, error) {
	rows, err := s.repo.ByAuthor(ctx, authorID, cur, limit)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, rows), nil
}

func (s *service) ByTag(ctx context.Context, viewerID int64, text string, cur Cursor, limit int) ([]Data, error) {
	rows, err := s.repo.ByTag(ctx, text, cur, limit)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, rows), nil
}

func (s *service) LikedBy(ctx context.Context, viewerID, userID int64, cur Cursor, limit int) ([]Data, error) {
	rows, err := s.repo.LikedBy(ctx, userID, cur, limit)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, rows), nil
}

func (s *service) pageOf(ctx context.Context, viewerID int64, rows []Babble) []Data {
	page := SerializeAll(rows)
	s.overlay(ctx, viewerID, page)
	return page
}

func (s *service) overlay(ctx context.Context, viewerID int64, page []Data) {
	if len(page) == 0 || viewerID == 0 {
		return
	}
	ids := make([]int64, len(page))
	for i := range page {
		ids[i] = page[i].ID
	}
	liked, err := s.marks.LikedSet(ctx, viewerID, ids)
	if err != nil {
		s.log.Warn("liked overlay", zap.Int64("user_id", viewerID), zap.Error(err))
		liked = map[int64]bool{}
	}
	rebabbled, err := s.marks.RebabbledSet(ctx, viewerID, ids)
	if err != nil {
		s.log.Warn("rebabbled overlay", zap.Int64("user_id", viewerID), zap.Error(err))
		rebabbled = map[int64]bool{}
	}
	for i := range page {
		page[i].IsLiked = liked[page[i].ID]
		page[i].IsRebabbled = rebabbled[page[i].ID]
	}
}
