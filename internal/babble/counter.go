package babble

import "context"

// CounterStore is the authoritative side of a counter change.
type CounterStore interface {
	AddCounter(ctx context.Context, id int64, field CounterField, delta int) error
}

// Counters applies like/comment/rebabble deltas: first atomically against
// the authoritative store, then best-effort into the content cache. The two
// steps are not transactional; a crash in between leaves the cached copy
// stale until its TTL expires or it is rewritten.
type Counters struct {
	store   CounterStore
	content *ContentCache
}

func NewCounters(store CounterStore, content *ContentCache) *Counters {
	return &Counters{store: store, content: content}
}

func (c *Counters) Apply(ctx context.Context, id int64, field CounterField, delta int) error {
	if err := c.store.AddCounter(ctx, id, field, delta); err != nil {
		return err
	}
	c.content.ApplyDelta(ctx, id, field, delta)
	return nil
}
