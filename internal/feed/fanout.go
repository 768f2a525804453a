package feed

import (
	"context"

	"go.uber.org/zap"

	"babble-service/internal/babble"
)

// FollowerSource yields the follower set of an author at fan-out time.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Fanout propagates a freshly committed babble into its author's and every
// follower's feed index, and seeds the content cache so the followers' next
// reads are hits. Everything here is best-effort: the authoritative write
// has already committed, and a cache failure must not fail the request.
type Fanout struct {
	index     *IndexCache
	content   *babble.ContentCache
	followers FollowerSource
	log       *zap.Logger
}

func NewFanout(index *IndexCache, content *babble.ContentCache, followers FollowerSource, log *zap.Logger) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{index: index, content: content, followers: followers, log: log}
}

// Push writes d into the content cache and inserts its pointer at the head
// of the author's entry (created if absent) and of each follower's entry
// (skipped if absent; those feeds rebuild lazily on next read). Re-pushing
// an id already present merges into the existing pointer, so updates and
// rebabbles do not duplicate.
func (f *Fanout) Push(ctx context.Context, authorID int64, d babble.Data) {
	f.content.Set(ctx, d)

	p := Pointer{PostID: d.ID}
	f.index.Push(ctx, authorID, p, true)

	ids, err := f.followers.FollowerIDs(ctx, authorID)
	if err != nil {
		f.log.Warn("fanout: follower lookup", zap.Int64("author_id", authorID), zap.Error(err))
		return
	}
	for _, fid := range ids {
		if f.index.Push(ctx, fid, p, false) {
			fanoutPushes.Inc()
		}
	}
}
