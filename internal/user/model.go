package user

import "time"

// User rows are owned by the user service; this service reads author
// summaries and maintains the follower/following counters.
type User struct {
	ID             int64 `gorm:"primaryKey"`
	Username       string
	Nickname       string
	Image          string
	FollowerCount  int
	FollowingCount int
	CreatedAt      time.Time
}

// Summary is the denormalized author block embedded in babble payloads.
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Image    string `json:"image,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Image: u.Image}
}
