package babble

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"babble-service/internal/tag"
)

var ErrNotFound = errors.New("babble not found")

// CounterField names a mutable counter column on babbles. Only the three
// known fields are accepted; anything else is a programming error.
type CounterField string

const (
	FieldLikeCount     CounterField = "like_count"
	FieldCommentCount  CounterField = "comment_count"
	FieldRebabbleCount CounterField = "rebabble_count"
)

func (f CounterField) valid() bool {
	switch f {
	case FieldLikeCount, FieldCommentCount, FieldRebabbleCount:
		return true
	}
	return false
}

type Repository interface {
	Create(ctx context.Context, b *Babble) error
	GetByID(ctx context.Context, id int64) (*Babble, error)
	// BatchByIDs returns the babbles that still exist, newest first.
	// Missing ids are silently absent from the result.
	BatchByIDs(ctx context.Context, ids []int64) ([]Babble, error)
	// Timeline returns babbles authored by userID or any of followeeIDs,
	// newest first, limited.
	Timeline(ctx context.Context, userID int64, followeeIDs []int64, offset, limit int) ([]Babble, error)
	Update(ctx context.Context, b *Babble) error
	ReplaceTags(ctx context.Context, b *Babble, tags []tag.Tag) error
	Delete(ctx context.Context, id int64) error

	Explore(ctx context.Context, viewerID int64, cur Cursor, limit int) ([]Babble, error)
	ByAuthor(ctx context.Context, authorID int64, cur Cursor, limit int) ([]Babble, error)
	ByTag(ctx context.Context, text string, cur Cursor, limit int) ([]Babble, error)
	LikedBy(ctx context.Context, userID int64, cur Cursor, limit int) ([]Babble, error)

	// AddCounter applies an atomic delta to a counter column, floored at 0.
	AddCounter(ctx context.Context, id int64, field CounterField, delta int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Babble) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return err
	}
	// reload the author relation for serialization
	return r.db.WithContext(ctx).Preload("User").Preload("Tags").First(b, b.ID).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Babble, error) {
	var b Babble
	err := r.db.WithContext(ctx).Preload("User").Preload("Tags").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) BatchByIDs(ctx context.Context, ids []int64) ([]Babble, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var bs []Babble
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Where("id IN ?", ids).
		Order("babbles.created_at DESC, babbles.id DESC").
		Find(&bs).Error
	return bs, err
}

func (r *repository) Timeline(ctx context.Context, userID int64, followeeIDs []int64, offset, limit int) ([]Babble, error) {
	authors := append([]int64{userID}, followeeIDs...)
	var bs []Babble
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Where("user_id IN ?", authors).
		Order("babbles.created_at DESC, babbles.id DESC").
		Offset(offset).Limit(limit).
		Find(&bs).Error
	return bs, err
}

func (r *repository) Update(ctx context.Context, b *Babble) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) ReplaceTags(ctx context.Context, b *Babble, tags []tag.Tag) error {
	return r.db.WithContext(ctx).Model(b).Association("Tags").Replace(tags)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&Babble{}, id).Error
}

func (r *repository) keyset(q *gorm.DB, cur Cursor) *gorm.DB {
	if cur.IsZero() {
		return q
	}
	return q.Where("(babbles.created_at, babbles.id) < (?, ?)", cur.Created, cur.ID)
}

func (r *repository) Explore(ctx context.Context, viewerID int64, cur Cursor, limit int) ([]Babble, error) {
	var bs []Babble
	q := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Where("user_id <> ?", viewerID)
	err := r.keyset(q, cur).
		Order("babbles.created_at DESC, babbles.id DESC").
		Limit(limit).
		Find(&bs).Error
	return bs, err
}

func (r *repository) ByAuthor(ctx context.Context, authorID int64, cur Cursor, limit int) ([]Babble, error) {
	var bs []Babble
	q := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Where("user_id = ?", authorID)
	err := r.keyset(q, cur).
		Order("babbles.created_at DESC, babbles.id DESC").
		Limit(limit).
		Find(&bs).Error
	return bs, err
}

func (r *repository) ByTag(ctx context.Context, text string, cur Cursor, limit int) ([]Babble, error) {
	var bs []Babble
	q := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Joins("JOIN babble_tags bt ON bt.babble_id = babbles.id").
		Where("bt.tag_text = ?", text)
	err := r.keyset(q, cur).
		Order("babbles.created_at DESC, babbles.id DESC").
		Limit(limit).
		Find(&bs).Error
	return bs, err
}

func (r *repository) LikedBy(ctx context.Context, userID int64, cur Cursor, limit int) ([]Babble, error) {
	var bs []Babble
	q := r.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Joins("JOIN likes ON likes.babble_id = babbles.id").
		Where("likes.user_id = ?", userID)
	err := r.keyset(q, cur).
		Order("babbles.created_at DESC, babbles.id DESC").
		Limit(limit).
		Find(&bs).Error
	return bs, err
}

func (r *repository) AddCounter(ctx context.Context, id int64, field CounterField, delta int) error {
	if !field.valid() {
		return fmt.Errorf("unknown counter field %q", field)
	}
	// GREATEST keeps the floor at zero even under concurrent decrements.
	stmt := fmt.Sprintf("UPDATE babbles SET %s = GREATEST(%s + ?, 0) WHERE id = ?", field, field)
	return r.db.WithContext(ctx).Exec(stmt, delta, id).Error
}
