package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"babble-service/internal/cache"
)

// Flag names a per-pointer boolean maintained in the index.
type Flag string

const (
	FlagLiked     Flag = "is_liked"
	FlagRebabbled Flag = "is_rebabbled"
)

// IndexCache is the first cache tier: one bounded pointer list per user.
// Mutations go through a striped lock so two concurrent writers to the same
// entry cannot overwrite each other's insert; distinct users almost always
// map to distinct stripes and proceed in parallel.
type IndexCache struct {
	c     cache.Client
	log   *zap.Logger
	locks [64]sync.Mutex
}

func NewIndexCache(c cache.Client, log *zap.Logger) *IndexCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndexCache{c: c, log: log}
}

func ikey(userID int64) string { return strconv.FormatInt(userID, 10) }

func (ic *IndexCache) lock(userID int64) *sync.Mutex {
	return &ic.locks[uint64(userID)%uint64(len(ic.locks))]
}

// Get returns the user's entry; a backend failure reads as absent.
func (ic *IndexCache) Get(ctx context.Context, userID int64) (Entry, bool) {
	b, ok, err := ic.c.Get(ctx, ikey(userID))
	if err != nil {
		ic.log.Warn("feed index get", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		ic.log.Warn("feed index decode", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	return e, true
}

// Put replaces the user's entry wholesale. Concurrent rebuilds are safe to
// race; the last writer wins.
func (ic *IndexCache) Put(ctx context.Context, userID int64, e Entry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := ic.c.Set(ctx, ikey(userID), b); err != nil {
		ic.log.Warn("feed index put", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Delete drops the entry so the next read performs a cold rebuild.
func (ic *IndexCache) Delete(ctx context.Context, userID int64) {
	if err := ic.c.Delete(ctx, ikey(userID)); err != nil {
		ic.log.Warn("feed index delete", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Push inserts a pointer at the head of the user's entry under the entry
// lock. When the user has no entry yet it is a no-op unless create is set;
// absent followers get their feed rebuilt lazily on next read instead.
// Reports whether the entry was written.
func (ic *IndexCache) Push(ctx context.Context, userID int64, p Pointer, create bool) bool {
	mu := ic.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	e, ok := ic.Get(ctx, userID)
	if !ok && !create {
		return false
	}
	ic.Put(ctx, userID, e.Insert(p, Capacity))
	return true
}

// SetFlag updates one pointer flag in the user's own entry. Missing entries
// and missing pointers are skipped.
func (ic *IndexCache) SetFlag(ctx context.Context, userID, postID int64, flag Flag, val bool) {
	mu := ic.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	e, ok := ic.Get(ctx, userID)
	if !ok {
		return
	}
	for i := range e {
		if e[i].PostID != postID {
			continue
		}
		switch flag {
		case FlagLiked:
			e[i].IsLiked = val
		case FlagRebabbled:
			e[i].IsRebabbled = val
		}
		ic.Put(ctx, userID, e)
		return
	}
}

// Prune removes the given post ids from the user's entry under the entry
// lock, re-reading first so a concurrent fan-out push is not lost.
func (ic *IndexCache) Prune(ctx context.Context, userID int64, ids map[int64]bool) {
	if len(ids) == 0 {
		return
	}
	mu := ic.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	e, ok := ic.Get(ctx, userID)
	if !ok {
		return
	}
	ic.Put(ctx, userID, e.RemoveAll(ids))
}
