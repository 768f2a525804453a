package like

import "time"

type Like struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"index:idx_like_edge,unique"`
	BabbleID  int64 `gorm:"index:idx_like_edge,unique;index"`
	CreatedAt time.Time
}
