package follow

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, followerID, followingID int64) error
	Delete(ctx context.Context, followerID, followingID int64) error
	// FollowerIDs returns who follows userID; this is the fan-out set.
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	// FolloweeIDs returns who userID follows; feeds the cold rebuild.
	FolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, followerID, followingID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&Follower{UserID: followerID, FollowingID: followingID}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"UPDATE users SET following_count = following_count + 1 WHERE id = ?", followerID,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			"UPDATE users SET follower_count = follower_count + 1 WHERE id = ?", followingID,
		).Error
	})
}

func (r *repository) Delete(ctx context.Context, followerID, followingID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND following_id = ?", followerID, followingID).
			Delete(&Follower{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Exec(
			"UPDATE users SET following_count = GREATEST(following_count - 1, 0) WHERE id = ?", followerID,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			"UPDATE users SET follower_count = GREATEST(follower_count - 1, 0) WHERE id = ?", followingID,
		).Error
	})
}

func (r *repository) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&Follower{}).
		Where("following_id = ?", userID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *repository) FolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&Follower{}).
		Where("user_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}
