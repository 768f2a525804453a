package feed

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"babble-service/internal/babble"
)

// PostSource is the slice of the authoritative store the assembler reads.
type PostSource interface {
	BatchByIDs(ctx context.Context, ids []int64) ([]babble.Babble, error)
	Timeline(ctx context.Context, userID int64, followeeIDs []int64, offset, limit int) ([]babble.Babble, error)
}

// FolloweeSource yields who a user follows, for cold rebuilds.
type FolloweeSource interface {
	FolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

// MarkSource answers which of the given babbles a user has liked or
// rebabbled, straight from the authoritative edges.
type MarkSource interface {
	LikedSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
	RebabbledSet(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

// Assembler turns a user's feed index into a page of fully resolved babbles,
// reconciling the two cache tiers with the authoritative store and repairing
// the index as a side effect.
type Assembler struct {
	index     *IndexCache
	content   *babble.ContentCache
	posts     PostSource
	followees FolloweeSource
	marks     MarkSource
	log       *zap.Logger

	// bound on batch reads while resolving cache misses; on expiry the
	// affected pointers are dropped from the page, not the whole request
	dbTimeout time.Duration
}

func NewAssembler(index *IndexCache, content *babble.ContentCache, posts PostSource, followees FolloweeSource, marks MarkSource, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		index:     index,
		content:   content,
		posts:     posts,
		followees: followees,
		marks:     marks,
		log:       log,
		dbTimeout: 2 * time.Second,
	}
}

// Page assembles the ownerID timeline slice addressed by next (an offset in
// steps of PageSize) and annotates it with viewerID's like/rebabble state.
// When owner and viewer coincide the flags come from the index pointers
// themselves; otherwise the viewer's edges are queried directly.
func (a *Assembler) Page(ctx context.Context, ownerID, viewerID int64, next int) ([]babble.Data, int, error) {
	if next < 0 {
		next = 0
	}

	entry, ok := a.index.Get(ctx, ownerID)
	if !ok {
		page, err := a.coldRebuild(ctx, ownerID, next)
		if err != nil {
			return nil, 0, err
		}
		if viewerID != ownerID {
			a.overlay(ctx, viewerID, page)
		}
		return page, next + PageSize, nil
	}

	page := a.assemble(ctx, ownerID, entry.Window(next, PageSize))
	if viewerID != ownerID {
		a.overlay(ctx, viewerID, page)
	}
	return page, next + PageSize, nil
}

// assemble resolves one window of pointers: content cache hits first, then a
// single batch read for the misses, pruning pointers whose babble no longer
// exists. The result is newest first; equal timestamps keep pointer order.
func (a *Assembler) assemble(ctx context.Context, ownerID int64, window Entry) []babble.Data {
	if len(window) == 0 {
		return []babble.Data{}
	}

	cached := a.content.GetMany(ctx, window.IDs())

	seen := make(map[int64]bool, len(window))
	var missed Entry
	for _, p := range window {
		if seen[p.PostID] {
			continue
		}
		seen[p.PostID] = true
		if _, ok := cached[p.PostID]; ok {
			contentHits.Inc()
			continue
		}
		contentMisses.Inc()
		missed = append(missed, p)
	}

	fetched := a.resolveMisses(ctx, ownerID, missed)

	// walk the window so equal timestamps keep pointer order after the sort,
	// regardless of which tier resolved each pointer
	resolved := make([]babble.Data, 0, len(window))
	emitted := make(map[int64]bool, len(window))
	for _, p := range window {
		if emitted[p.PostID] {
			continue
		}
		d, ok := cached[p.PostID]
		if !ok {
			if d, ok = fetched[p.PostID]; !ok {
				continue
			}
		}
		emitted[p.PostID] = true
		d.IsLiked = p.IsLiked
		d.IsRebabbled = p.IsRebabbled
		resolved = append(resolved, d)
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].Created.After(resolved[j].Created)
	})
	return resolved
}

func (a *Assembler) resolveMisses(ctx context.Context, ownerID int64, missed Entry) map[int64]babble.Data {
	if len(missed) == 0 {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, a.dbTimeout)
	defer cancel()

	rows, err := a.posts.BatchByIDs(tctx, missed.IDs())
	if err != nil {
		// degrade: serve the page without these pointers and leave the
		// index alone so a healthy store can still resolve them later
		a.log.Warn("assemble: batch read", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil
	}

	out := make(map[int64]babble.Data, len(rows))
	for i := range rows {
		d := babble.Serialize(&rows[i])
		a.content.Set(ctx, d)
		out[d.ID] = d
	}

	// ids the store no longer knows were deleted; this read is the only
	// place they get pruned from the index
	gone := make(map[int64]bool)
	for _, id := range missed.IDs() {
		if _, ok := out[id]; !ok {
			gone[id] = true
		}
	}
	if len(gone) > 0 {
		a.index.Prune(ctx, ownerID, gone)
		prunedPointers.Add(float64(len(gone)))
	}
	return out
}

// coldRebuild materializes the feed index from the authoritative store: the
// owner's own babbles plus everyone they follow, newest first. The first
// RebuildWindow rows seed the index; offsets past the window read straight
// through. Redundant concurrent rebuilds are idempotent, last writer wins.
func (a *Assembler) coldRebuild(ctx context.Context, ownerID int64, next int) ([]babble.Data, error) {
	coldRebuilds.Inc()

	start, limit := 0, RebuildWindow
	if next >= RebuildWindow {
		start, limit = next, PageSize
	}

	followees, err := a.followees.FolloweeIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := a.posts.Timeline(ctx, ownerID, followees, start, limit)
	if err != nil {
		return nil, err
	}

	data := babble.SerializeAll(rows)
	a.content.SetMany(ctx, data)

	a.overlay(ctx, ownerID, data)

	// only the top of the timeline may seed the index; deep offsets read
	// straight through and leave the entry absent
	if start == 0 {
		entry := make(Entry, 0, len(data))
		for i := range data {
			entry = entry.Insert(Pointer{
				PostID:      data[i].ID,
				IsLiked:     data[i].IsLiked,
				IsRebabbled: data[i].IsRebabbled,
			}, Capacity)
		}
		// Insert prepends, so reverse back into newest-first order
		for i, j := 0, len(entry)-1; i < j; i, j = i+1, j-1 {
			entry[i], entry[j] = entry[j], entry[i]
		}
		a.index.Put(ctx, ownerID, entry)
	}

	if start == 0 && next > 0 {
		data = slicePage(data, next)
	} else if len(data) > PageSize {
		data = data[:PageSize]
	}
	return data, nil
}

func slicePage(data []babble.Data, start int) []babble.Data {
	if start >= len(data) {
		return []babble.Data{}
	}
	end := start + PageSize
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

// overlay re-derives is_liked/is_rebabbled for userID by querying the edges
// directly. Failures degrade to unflagged results.
func (a *Assembler) overlay(ctx context.Context, userID int64, page []babble.Data) {
	if len(page) == 0 {
		return
	}
	ids := make([]int64, len(page))
	for i := range page {
		ids[i] = page[i].ID
	}
	liked, err := a.marks.LikedSet(ctx, userID, ids)
	if err != nil {
		a.log.Warn("overlay: liked set", zap.Int64("user_id", userID), zap.Error(err))
		liked = map[int64]bool{}
	}
	rebabbled, err := a.marks.RebabbledSet(ctx, userID, ids)
	if err != nil {
		a.log.Warn("overlay: rebabbled set", zap.Int64("user_id", userID), zap.Error(err))
		rebabbled = map[int64]bool{}
	}
	for i := range page {
		page[i].IsLiked = liked[page[i].ID]
		page[i].IsRebabbled = rebabbled[page[i].ID]
	}
}
