package feed

// Capacity bounds each user's feed index entry. The window the cold rebuild
// materializes and the page size served per request are smaller.
const (
	Capacity      = 30
	RebuildWindow = 20
	PageSize      = 5
)

// Pointer is a lightweight reference into the content cache. The flags are a
// snapshot of the owner's like/rebabble edges at the time they were last
// written and may be wrong until repaired.
type Pointer struct {
	PostID      int64 `json:"post_id"`
	IsLiked     bool  `json:"is_liked"`
	IsRebabbled bool  `json:"is_rebabbled"`
}

// Entry is one user's feed index: at most Capacity pointers, newest first,
// no duplicate post ids.
type Entry []Pointer

// Insert places p at the head. If the entry already holds a pointer for the
// same post the existing flags are kept and the pointer moves to the head;
// otherwise the oldest pointer is evicted once the entry exceeds max.
func (e Entry) Insert(p Pointer, max int) Entry {
	out := make(Entry, 0, len(e)+1)
	out = append(out, p)
	for _, q := range e {
		if q.PostID == p.PostID {
			out[0].IsLiked = q.IsLiked
			out[0].IsRebabbled = q.IsRebabbled
			continue
		}
		out = append(out, q)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func (e Entry) RemoveAll(ids map[int64]bool) Entry {
	if len(ids) == 0 {
		return e
	}
	out := e[:0]
	for _, p := range e {
		if !ids[p.PostID] {
			out = append(out, p)
		}
	}
	return out
}

// Window slices [start, start+n) clamped to the entry bounds.
func (e Entry) Window(start, n int) Entry {
	if start < 0 {
		start = 0
	}
	if start >= len(e) {
		return Entry{}
	}
	end := start + n
	if end > len(e) {
		end = len(e)
	}
	return e[start:end]
}

func (e Entry) IDs() []int64 {
	ids := make([]int64, len(e))
	for i, p := range e {
		ids[i] = p.PostID
	}
	return ids
}
