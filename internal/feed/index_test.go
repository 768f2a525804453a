package feed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babble-service/internal/cache"
)

func TestIndexPushCreateSemantics(t *testing.T) {
	ctx := context.Background()
	ic := NewIndexCache(cache.NewMemory(), nil)

	// without create, pushing to an absent entry is a no-op
	assert.False(t, ic.Push(ctx, 1, Pointer{PostID: 5}, false))
	_, ok := ic.Get(ctx, 1)
	assert.False(t, ok)

	assert.True(t, ic.Push(ctx, 1, Pointer{PostID: 5}, true))
	e, ok := ic.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []int64{5}, e.IDs())

	// once the entry exists, create no longer matters
	assert.True(t, ic.Push(ctx, 1, Pointer{PostID: 6}, false))
	e, _ = ic.Get(ctx, 1)
	assert.Equal(t, []int64{6, 5}, e.IDs())
}

func TestIndexPushConcurrent(t *testing.T) {
	ctx := context.Background()
	ic := NewIndexCache(cache.NewMemory(), nil)
	ic.Put(ctx, 1, Entry{})

	// two writers racing on the same entry must not lose each other's insert
	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 1; i <= n; i++ {
		go func(id int64) {
			defer wg.Done()
			ic.Push(ctx, 1, Pointer{PostID: id}, false)
		}(int64(i))
	}
	wg.Wait()

	e, ok := ic.Get(ctx, 1)
	require.True(t, ok)
	require.Len(t, e, Capacity)

	seen := map[int64]bool{}
	for _, p := range e {
		assert.False(t, seen[p.PostID], "duplicate post id %d", p.PostID)
		seen[p.PostID] = true
	}
}

func TestIndexSetFlag(t *testing.T) {
	ctx := context.Background()
	ic := NewIndexCache(cache.NewMemory(), nil)
	ic.Put(ctx, 1, Entry{{PostID: 5}, {PostID: 4}})

	ic.SetFlag(ctx, 1, 4, FlagLiked, true)
	e, _ := ic.Get(ctx, 1)
	assert.False(t, e[0].IsLiked)
	assert.True(t, e[1].IsLiked)

	ic.SetFlag(ctx, 1, 4, FlagLiked, false)
	e, _ = ic.Get(ctx, 1)
	assert.False(t, e[1].IsLiked)

	// missing pointer and missing entry are both silent no-ops
	ic.SetFlag(ctx, 1, 99, FlagRebabbled, true)
	ic.SetFlag(ctx, 2, 5, FlagLiked, true)
	_, ok := ic.Get(ctx, 2)
	assert.False(t, ok)
}

func TestIndexPrune(t *testing.T) {
	ctx := context.Background()
	ic := NewIndexCache(cache.NewMemory(), nil)
	ic.Put(ctx, 1, Entry{{PostID: 5}, {PostID: 4}, {PostID: 3}})

	ic.Prune(ctx, 1, map[int64]bool{4: true, 3: true})
	e, ok := ic.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []int64{5}, e.IDs())

	// pruning an absent entry does not create one
	ic.Prune(ctx, 2, map[int64]bool{1: true})
	_, ok = ic.Get(ctx, 2)
	assert.False(t, ok)
}

func TestIndexDeleteForcesRebuild(t *testing.T) {
	ctx := context.Background()
	ic := NewIndexCache(cache.NewMemory(), nil)
	ic.Put(ctx, 1, Entry{{PostID: 5}})

	ic.Delete(ctx, 1)
	_, ok := ic.Get(ctx, 1)
	assert.False(t, ok)
}
