package rebabble

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, userID, babbleID int64) error
	Delete(ctx context.Context, userID, babbleID int64) (bool, error)
	Exists(ctx context.Context, userID, babbleID int64) (bool, error)
	// RebabbledSet filters ids down to the ones userID has rebabbled.
	RebabbledSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID, babbleID int64) error {
	return r.db.WithContext(ctx).Create(&Rebabble{UserID: userID, BabbleID: babbleID}).Error
}

func (r *repository) Delete(ctx context.Context, userID, babbleID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND babble_id = ?", userID, babbleID).
		Delete(&Rebabble{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Exists(ctx context.Context, userID, babbleID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Rebabble{}).
		Where("user_id = ? AND babble_id = ?", userID, babbleID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) RebabbledSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var marked []int64
	err := r.db.WithContext(ctx).Model(&Rebabble{}).
		Where("user_id = ? AND babble_id IN ?", userID, ids).
		Pluck("babble_id", &marked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range marked {
		out[id] = true
	}
	return out, nil
}
