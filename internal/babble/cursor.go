package babble

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor is an opaque keyset position on (created, id). Direct listings
// (explore, profile, tag, liked) page with it so concurrent writes cannot
// duplicate or skip rows, unlike the offset-based home timeline.
type Cursor struct {
	Created time.Time `json:"c"`
	ID      int64     `json:"i"`
}

func (c Cursor) IsZero() bool { return c.ID == 0 && c.Created.IsZero() }

func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor returns the zero cursor for empty or malformed input, so a
// missing query parameter reads from the top.
func DecodeCursor(s string) Cursor {
	var c Cursor
	if s == "" {
		return c
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}
	}
	if json.Unmarshal(b, &c) != nil {
		return Cursor{}
	}
	return c
}

// After returns the cursor pointing past the last element of page.
func After(page []Data) Cursor {
	if len(page) == 0 {
		return Cursor{}
	}
	last := page[len(page)-1]
	return Cursor{Created: last.Created, ID: last.ID}
}
