package migrate

import (
	"gorm.io/gorm"

	"babble-service/internal/babble"
	"babble-service/internal/comment"
	"babble-service/internal/follow"
	"babble-service/internal/like"
	"babble-service/internal/rebabble"
	"babble-service/internal/tag"
	"babble-service/internal/user"
)

func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&tag.Tag{},
		&babble.Babble{},
		&comment.Comment{},
		&like.Like{},
		&rebabble.Rebabble{},
		&follow.Follower{},
	)
}
