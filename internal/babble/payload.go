package babble

import (
	"time"

	"babble-service/internal/tag"
	"babble-service/internal/user"
)

// Data is the denormalized babble payload kept in the content cache and
// returned to clients. The is_liked/is_rebabbled flags are per viewer and are
// overlaid after the payload is resolved; the cached copy always carries the
// zero values.
type Data struct {
	ID            int64        `json:"id"`
	User          user.Summary `json:"user"`
	Audio         string       `json:"audio,omitempty"`
	Tags          []string     `json:"tags"`
	LikeCount     int          `json:"like_count"`
	CommentCount  int          `json:"comment_count"`
	RebabbleCount int          `json:"rebabble_count"`
	Created       time.Time    `json:"created"`
	Modified      time.Time    `json:"modified"`
	IsLiked       bool         `json:"is_liked"`
	IsRebabbled   bool         `json:"is_rebabbled"`
}

func Serialize(b *Babble) Data {
	return Data{
		ID:            b.ID,
		User:          b.User.Summary(),
		Audio:         b.Audio,
		Tags:          tag.Texts(b.Tags),
		LikeCount:     b.LikeCount,
		CommentCount:  b.CommentCount,
		RebabbleCount: b.RebabbleCount,
		Created:       b.CreatedAt,
		Modified:      b.UpdatedAt,
	}
}

func SerializeAll(bs []Babble) []Data {
	out := make([]Data, len(bs))
	for i := range bs {
		out[i] = Serialize(&bs[i])
	}
	return out
}
