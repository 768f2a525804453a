package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babble-service/internal/babble"
	"babble-service/internal/shared/httpx"
)

func TestListHandler(t *testing.T) {
	now := time.Now()
	posts := &fakePosts{timeline: []babble.Babble{row(2, now), row(1, now.Add(-time.Minute))}}
	a, _, _ := newTestAssembler(posts, &fakeFollowees{}, nil)
	h := &Handler{asm: a}

	req := httptest.NewRequest(http.MethodGet, "/babbles", nil)
	req = req.WithContext(httpx.WithUser(req.Context(), 1))
	rec := httptest.NewRecorder()

	require.NoError(t, h.list(rec, req))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []babble.Data `json:"results"`
		Next    int           `json:"next"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int64{2, 1}, ids(body.Results))
	assert.Equal(t, PageSize, body.Next)
}

func TestListHandlerPagination(t *testing.T) {
	a, index, content := newTestAssembler(&fakePosts{}, &fakeFollowees{}, nil)

	now := time.Now()
	entry := Entry{}
	for id := int64(1); id <= 7; id++ {
		content.Set(t.Context(), babble.Data{ID: id, Created: now.Add(time.Duration(id) * time.Minute)})
		entry = entry.Insert(Pointer{PostID: id}, Capacity)
	}
	index.Put(t.Context(), 1, entry)

	h := &Handler{asm: a}
	req := httptest.NewRequest(http.MethodGet, "/babbles?next=5", nil)
	req = req.WithContext(httpx.WithUser(req.Context(), 1))
	rec := httptest.NewRecorder()

	require.NoError(t, h.list(rec, req))

	var body struct {
		Results []babble.Data `json:"results"`
		Next    int           `json:"next"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int64{2, 1}, ids(body.Results))
	assert.Equal(t, 10, body.Next)
}

func TestListHandlerUnauthenticated(t *testing.T) {
	a, _, _ := newTestAssembler(&fakePosts{}, &fakeFollowees{}, nil)
	h := &Handler{asm: a}

	req := httptest.NewRequest(http.MethodGet, "/babbles", nil)
	rec := httptest.NewRecorder()

	httpx.Wrap(h.list).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
