package babble

import (
	"time"

	"babble-service/internal/tag"
	"babble-service/internal/user"
)

type Babble struct {
	ID            int64 `gorm:"primaryKey"`
	UserID        int64 `gorm:"index"`
	User          user.User
	Audio         string
	LikeCount     int
	CommentCount  int
	RebabbleCount int
	Tags          []tag.Tag `gorm:"many2many:babble_tags;"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}
