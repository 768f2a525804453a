package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKeywords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/keywords", r.URL.Path)
		var in struct {
			AudioURL string `json:"audio_url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "http://media/a.mp3", in.AudioURL)
		_ = json.NewEncoder(w).Encode(map[string][]string{"keywords": {"positive", "go"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.GetKeywords(context.Background(), "http://media/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, []string{"positive", "go"}, got)
}

func TestGetKeywordsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetKeywords(context.Background(), "a")
	assert.ErrorContains(t, err, "model overloaded")
}

func TestGetKeywordsBoundsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inflight.Add(-1)
		_ = json.NewEncoder(w).Encode(map[string][]string{"keywords": {}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	done := make(chan struct{})
	for i := 0; i < defaultConcurrency*2; i++ {
		go func() {
			_, _ = c.GetKeywords(context.Background(), "a")
			done <- struct{}{}
		}()
	}

	// let the first wave reach the server, then release everyone
	time.Sleep(100 * time.Millisecond)
	close(release)
	for i := 0; i < defaultConcurrency*2; i++ {
		<-done
	}
	assert.LessOrEqual(t, peak.Load(), int32(defaultConcurrency))
}

func TestGetKeywordsContextCancelled(t *testing.T) {
	c := NewClient("http://unused")
	// saturate the slots so the call blocks on admission
	for i := 0; i < defaultConcurrency; i++ {
		c.slots <- struct{}{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetKeywords(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
