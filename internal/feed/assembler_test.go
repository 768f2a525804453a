package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babble-service/internal/babble"
	"babble-service/internal/cache"
)

type fakePosts struct {
	rows     map[int64]babble.Babble
	timeline []babble.Babble

	batchErr    error
	timelineErr error

	batchCalls    int
	timelineCalls int
	lastOffset    int
	lastLimit     int
}

func (f *fakePosts) BatchByIDs(_ context.Context, ids []int64) ([]babble.Babble, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]babble.Babble, 0, len(ids))
	for _, id := range ids {
		if b, ok := f.rows[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakePosts) Timeline(_ context.Context, _ int64, _ []int64, offset, limit int) ([]babble.Babble, error) {
	f.timelineCalls++
	f.lastOffset, f.lastLimit = offset, limit
	if f.timelineErr != nil {
		return nil, f.timelineErr
	}
	rows := f.timeline
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeFollowees struct{ ids []int64 }

func (f *fakeFollowees) FolloweeIDs(context.Context, int64) ([]int64, error) { return f.ids, nil }

type fakeMarks struct {
	liked     map[int64]bool
	rebabbled map[int64]bool
}

func (f *fakeMarks) LikedSet(_ context.Context, _ int64, ids []int64) (map[int64]bool, error) {
	return pick(f.liked, ids), nil
}

func (f *fakeMarks) RebabbledSet(_ context.Context, _ int64, ids []int64) (map[int64]bool, error) {
	return pick(f.rebabbled, ids), nil
}

func pick(set map[int64]bool, ids []int64) map[int64]bool {
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if set[id] {
			out[id] = true
		}
	}
	return out
}

func row(id int64, created time.Time) babble.Babble {
	return babble.Babble{ID: id, UserID: 10, CreatedAt: created, UpdatedAt: created}
}

func newTestAssembler(posts *fakePosts, followees *fakeFollowees, marks *fakeMarks) (*Assembler, *IndexCache, *babble.ContentCache) {
	index := NewIndexCache(cache.NewMemory(), nil)
	content := babble.NewContentCache(cache.NewMemory(), nil)
	if marks == nil {
		marks = &fakeMarks{}
	}
	return NewAssembler(index, content, posts, followees, marks, nil), index, content
}

func ids(page []babble.Data) []int64 {
	out := make([]int64, len(page))
	for i := range page {
		out[i] = page[i].ID
	}
	return out
}

func TestPageColdRebuildThenWarmPush(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	posts := &fakePosts{timeline: []babble.Babble{row(2, now), row(1, now.Add(-time.Minute))}}
	a, index, content := newTestAssembler(posts, &fakeFollowees{ids: []int64{10}}, nil)

	page, next, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(page))
	assert.Equal(t, PageSize, next)
	assert.Equal(t, 1, posts.timelineCalls)

	// index entry seeded newest first
	e, ok := index.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []int64{2, 1}, e.IDs())

	// a new babble arrives over fan-out while the feed is warm
	f := NewFanout(index, content, &stubFollowers{ids: []int64{1}}, nil)
	f.Push(ctx, 10, post(3, now.Add(time.Minute)))

	page, _, err = a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(page))
	// served entirely from cache
	assert.Equal(t, 1, posts.timelineCalls)
	assert.Equal(t, 0, posts.batchCalls)
}

func TestPageWarmUsesOwnerPointerFlags(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	posts := &fakePosts{}
	a, index, content := newTestAssembler(posts, &fakeFollowees{}, nil)

	content.Set(ctx, babble.Data{ID: 7, Created: now})
	index.Put(ctx, 1, Entry{{PostID: 7, IsLiked: true, IsRebabbled: true}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].IsLiked)
	assert.True(t, page[0].IsRebabbled)
	assert.Equal(t, 0, posts.batchCalls)
}

func TestPageResolvesMissesAndBackfills(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	posts := &fakePosts{rows: map[int64]babble.Babble{4: row(4, now)}}
	a, index, content := newTestAssembler(posts, &fakeFollowees{}, nil)

	content.Set(ctx, babble.Data{ID: 5, Created: now.Add(time.Minute)})
	index.Put(ctx, 1, Entry{{PostID: 5}, {PostID: 4, IsLiked: true}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, ids(page))
	// the miss kept its pointer flags
	assert.True(t, page[1].IsLiked)
	assert.Equal(t, 1, posts.batchCalls)

	// resolved payload was written back to the content cache, flag-free
	d, ok := content.Get(ctx, 4)
	require.True(t, ok)
	assert.False(t, d.IsLiked)
}

func TestPagePrunesDeletedPointers(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	// id 9 is gone from the store entirely
	posts := &fakePosts{rows: map[int64]babble.Babble{4: row(4, now)}}
	a, index, _ := newTestAssembler(posts, &fakeFollowees{}, nil)

	index.Put(ctx, 1, Entry{{PostID: 9}, {PostID: 4}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(page))

	e, ok := index.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []int64{4}, e.IDs())
}

func TestPageDegradesOnBatchFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	posts := &fakePosts{batchErr: errors.New("timeout")}
	a, index, content := newTestAssembler(posts, &fakeFollowees{}, nil)

	content.Set(ctx, babble.Data{ID: 5, Created: now})
	index.Put(ctx, 1, Entry{{PostID: 5}, {PostID: 4}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	// the page degrades to the cached hits only
	assert.Equal(t, []int64{5}, ids(page))

	// the unresolved pointer is not pruned; a healthy store may still have it
	e, ok := index.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []int64{5, 4}, e.IDs())
}

func TestPageEmptyEntry(t *testing.T) {
	ctx := context.Background()

	a, index, _ := newTestAssembler(&fakePosts{}, &fakeFollowees{}, nil)
	index.Put(ctx, 1, Entry{})

	page, next, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, PageSize, next)
}

func TestPageViewerOverlay(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	posts := &fakePosts{}
	marks := &fakeMarks{liked: map[int64]bool{7: true}}
	a, index, content := newTestAssembler(posts, &fakeFollowees{}, marks)

	content.Set(ctx, babble.Data{ID: 7, Created: now})
	index.Put(ctx, 1, Entry{{PostID: 7, IsRebabbled: true}})

	// viewer 2 reads owner 1's feed: flags come from viewer 2's edges, not
	// from the owner's pointers
	page, _, err := a.Page(ctx, 1, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].IsLiked)
	assert.False(t, page[0].IsRebabbled)
}

func TestPageDuplicatePointersCollapse(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	a, index, content := newTestAssembler(&fakePosts{}, &fakeFollowees{}, nil)
	content.Set(ctx, babble.Data{ID: 7, Created: now})
	// a corrupted entry with a duplicated id must not produce duplicates
	index.Put(ctx, 1, Entry{{PostID: 7}, {PostID: 7}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(page))
}

func TestPageColdIntermediateOffset(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	timeline := make([]babble.Babble, 0, RebuildWindow)
	for i := 0; i < RebuildWindow; i++ {
		timeline = append(timeline, row(int64(100-i), now.Add(-time.Duration(i)*time.Minute)))
	}
	posts := &fakePosts{timeline: timeline}
	a, index, _ := newTestAssembler(posts, &fakeFollowees{}, nil)

	page, next, err := a.Page(ctx, 1, 1, PageSize)
	require.NoError(t, err)
	// the rebuild materializes the full window but serves the second page
	assert.Equal(t, []int64{95, 94, 93, 92, 91}, ids(page))
	assert.Equal(t, 2*PageSize, next)
	assert.Equal(t, 0, posts.lastOffset)
	assert.Equal(t, RebuildWindow, posts.lastLimit)

	e, ok := index.Get(ctx, 1)
	require.True(t, ok)
	assert.Len(t, e, RebuildWindow)
	assert.Equal(t, int64(100), e[0].PostID)
}

func TestPageColdDeepOffsetReadsThrough(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	timeline := make([]babble.Babble, 0, RebuildWindow+PageSize)
	for i := 0; i < RebuildWindow+PageSize; i++ {
		timeline = append(timeline, row(int64(100-i), now.Add(-time.Duration(i)*time.Minute)))
	}
	posts := &fakePosts{timeline: timeline}
	a, index, _ := newTestAssembler(posts, &fakeFollowees{}, nil)

	page, next, err := a.Page(ctx, 1, 1, RebuildWindow)
	require.NoError(t, err)
	assert.Equal(t, []int64{80, 79, 78, 77, 76}, ids(page))
	assert.Equal(t, RebuildWindow+PageSize, next)
	assert.Equal(t, RebuildWindow, posts.lastOffset)
	assert.Equal(t, PageSize, posts.lastLimit)

	// a deep read-through never seeds the index
	_, ok := index.Get(ctx, 1)
	assert.False(t, ok)
}

func TestPageEqualTimestampsKeepPointerOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	// three babbles created in the same instant: 3 and 1 are cache hits,
	// 2 resolves from the store; ties must keep the pointer order
	posts := &fakePosts{rows: map[int64]babble.Babble{2: row(2, now)}}
	a, index, content := newTestAssembler(posts, &fakeFollowees{}, nil)

	content.Set(ctx, babble.Data{ID: 3, Created: now})
	content.Set(ctx, babble.Data{ID: 1, Created: now})
	index.Put(ctx, 1, Entry{{PostID: 3}, {PostID: 2}, {PostID: 1}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(page))
}

func TestPageEvictedBabbleDoesNotResurface(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	a, index, content := newTestAssembler(&fakePosts{}, &fakeFollowees{}, nil)

	// id 1 was evicted from the entry but still sits in the content cache
	content.Set(ctx, babble.Data{ID: 1, Created: now.Add(-time.Hour)})
	content.Set(ctx, babble.Data{ID: 2, Created: now})
	content.Set(ctx, babble.Data{ID: 3, Created: now.Add(time.Minute)})
	index.Put(ctx, 1, Entry{{PostID: 3}, {PostID: 2}})

	page, _, err := a.Page(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids(page))
}
