package like

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, userID, babbleID int64) error
	// Delete reports whether an edge was actually removed.
	Delete(ctx context.Context, userID, babbleID int64) (bool, error)
	Exists(ctx context.Context, userID, babbleID int64) (bool, error)
	// LikedSet filters ids down to the ones userID has liked.
	LikedSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID, babbleID int64) error {
	return r.db.WithContext(ctx).Create(&Like{UserID: userID, BabbleID: babbleID}).Error
}

func (r *repository) Delete(ctx context.Context, userID, babbleID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND babble_id = ?", userID, babbleID).
		Delete(&Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Exists(ctx context.Context, userID, babbleID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("user_id = ? AND babble_id = ?", userID, babbleID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) LikedSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var liked []int64
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("user_id = ? AND babble_id IN ?", userID, ids).
		Pluck("babble_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}
