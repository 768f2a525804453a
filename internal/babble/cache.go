package babble

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"babble-service/internal/cache"
)

// ContentCache holds the serialized payload of each babble keyed by id; it
// is the second tier behind the per-user feed index. All operations are
// best-effort: a backend failure reads as a miss and writes are logged and
// dropped, never surfaced to the caller.
type ContentCache struct {
	c   cache.Client
	log *zap.Logger
}

func NewContentCache(c cache.Client, log *zap.Logger) *ContentCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentCache{c: c, log: log}
}

func ckey(id int64) string { return strconv.FormatInt(id, 10) }

func (cc *ContentCache) Get(ctx context.Context, id int64) (Data, bool) {
	b, ok, err := cc.c.Get(ctx, ckey(id))
	if err != nil {
		cc.log.Warn("content cache get", zap.Int64("babble_id", id), zap.Error(err))
		return Data{}, false
	}
	if !ok {
		return Data{}, false
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		cc.log.Warn("content cache decode", zap.Int64("babble_id", id), zap.Error(err))
		return Data{}, false
	}
	return d, true
}

func (cc *ContentCache) GetMany(ctx context.Context, ids []int64) map[int64]Data {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ckey(id)
	}
	raw, err := cc.c.GetMany(ctx, keys)
	if err != nil {
		cc.log.Warn("content cache mget", zap.Int("keys", len(keys)), zap.Error(err))
		return map[int64]Data{}
	}
	out := make(map[int64]Data, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		var d Data
		if json.Unmarshal(v, &d) == nil {
			out[id] = d
		}
	}
	return out
}

func (cc *ContentCache) Set(ctx context.Context, d Data) {
	// viewer flags never belong in the shared copy
	d.IsLiked = false
	d.IsRebabbled = false
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := cc.c.Set(ctx, ckey(d.ID), b); err != nil {
		cc.log.Warn("content cache set", zap.Int64("babble_id", d.ID), zap.Error(err))
	}
}

func (cc *ContentCache) SetMany(ctx context.Context, ds []Data) {
	for i := range ds {
		cc.Set(ctx, ds[i])
	}
}

func (cc *ContentCache) Delete(ctx context.Context, id int64) {
	if err := cc.c.Delete(ctx, ckey(id)); err != nil {
		cc.log.Warn("content cache delete", zap.Int64("babble_id", id), zap.Error(err))
	}
}

// ApplyDelta mirrors a counter change into the cached payload if one exists.
// A miss is skipped, never fetched; the read-modify-write is not atomic and
// may lose a concurrent update, which is acceptable for an advisory copy.
func (cc *ContentCache) ApplyDelta(ctx context.Context, id int64, field CounterField, delta int) {
	d, ok := cc.Get(ctx, id)
	if !ok {
		return
	}
	switch field {
	case FieldLikeCount:
		d.LikeCount += delta
	case FieldCommentCount:
		d.CommentCount += delta
	case FieldRebabbleCount:
		d.RebabbleCount += delta
	default:
		return
	}
	cc.Set(ctx, d)
}
