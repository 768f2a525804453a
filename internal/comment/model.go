package comment

import (
	"time"

	"babble-service/internal/user"
)

// Comments are audio replies, like their parent babbles.
type Comment struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64
	User      user.User
	BabbleID  int64 `gorm:"index"`
	Audio     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Data struct {
	ID       int64        `json:"id"`
	User     user.Summary `json:"user"`
	BabbleID int64        `json:"babble_id"`
	Audio    string       `json:"audio,omitempty"`
	Created  time.Time    `json:"created"`
}

func Serialize(c *Comment) Data {
	return Data{
		ID:       c.ID,
		User:     c.User.Summary(),
		BabbleID: c.BabbleID,
		Audio:    c.Audio,
		Created:  c.CreatedAt,
	}
}
