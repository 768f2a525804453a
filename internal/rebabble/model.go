package rebabble

import "time"

// Rebabble is a repost edge; the reposted babble itself is shared, only the
// counter and the per-user flag change.
type Rebabble struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"index:idx_rebabble_edge,unique"`
	BabbleID  int64 `gorm:"index:idx_rebabble_edge,unique;index"`
	CreatedAt time.Time
}
