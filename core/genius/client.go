// Package genius looks up lyrics pages on the Genius API. Only reference
// descriptors are returned; the API's terms forbid redistributing full text.
package genius

import (
	"context"
	"fmt"
	"strings"
	"time"

	"KaraFM/logger"
	"KaraFM/model"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.genius.com"

// Client is a Genius search client. It sits on the lyrics resolution path,
// and resolution results are never cached: every call performs a live search.
type Client struct {
	apiKey  string
	baseURL string
	http    *req.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    req.C().SetTimeout(10 * time.Second),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// Search looks up a song by artist and title. Returns (nil, nil) when the
// service has no match or no API key is configured; a transport or API
// failure is returned as an error for the caller's fallback policy.
func (c *Client) Search(ctx context.Context, artist, title string) (*model.LyricsReference, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	query := strings.TrimSpace(artist + " " + title)
	if query == "" {
		return nil, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBearerAuthToken(c.apiKey).
		SetQueryParam("q", query).
		Get(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("genius search request failed: %w", err)
	}
	if resp.IsErrorState() {
		return nil, fmt.Errorf("genius search returned status %d", resp.StatusCode)
	}

	hit := gjson.Get(resp.String(), "response.hits.0.result")
	if !hit.Exists() {
		logger.Debug("genius: no match", logger.String("query", query))
		return nil, nil
	}

	return &model.LyricsReference{
		ID:        hit.Get("id").String(),
		URL:       hit.Get("url").String(),
		Title:     hit.Get("title").String(),
		Artist:    hit.Get("primary_artist.name").String(),
		Thumbnail: hit.Get("song_art_image_thumbnail_url").String(),
		Notice:    "Full lyrics are available at the linked page.",
	}, nil
}
