package comment

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("comment not found")

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Delete(ctx context.Context, id int64) error
	ListByBabble(ctx context.Context, babbleID int64, offset, limit int) ([]Comment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(c, c.ID).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var c Comment
	err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&Comment{}, id).Error
}

func (r *repository) ListByBabble(ctx context.Context, babbleID int64, offset, limit int) ([]Comment, error) {
	var cs []Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("babble_id = ?", babbleID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&cs).Error
	return cs, err
}
