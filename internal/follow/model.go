package follow

import (
	"time"

	"babble-service/internal/user"
)

// Follower is a directed edge: UserID follows FollowingID.
type Follower struct {
	ID          int64 `gorm:"primaryKey"`
	UserID      int64 `gorm:"index:idx_follow_edge,unique"`
	User        user.User
	FollowingID int64 `gorm:"index:idx_follow_edge,unique;index"`
	Following   user.User
	CreatedAt   time.Time
}
