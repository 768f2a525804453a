package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the transcription/tagging collaborator over HTTP. The model
// behind it is expensive, so admissions are bounded by a counting semaphore;
// callers block until a slot frees or their context ends.
type Client struct {
	baseURL    string
	httpClient *http.Client
	slots      chan struct{}
}

const defaultConcurrency = 8

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		slots:      make(chan struct{}, defaultConcurrency),
	}
}

// GetKeywords transcribes the clip at audioURL and returns the sentiment
// label plus the most frequent nouns, ready to be used as tags.
func (c *Client) GetKeywords(ctx context.Context, audioURL string) ([]string, error) {
	select {
	case c.slots <- struct{}{}:
		defer func() { <-c.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	body, _ := json.Marshal(map[string]string{"audio_url": audioURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/keywords", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stt service error: %s", string(b))
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Keywords, nil
}
