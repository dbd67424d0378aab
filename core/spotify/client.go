// Package spotify proxies track-metadata search to the Spotify Web API using
// a client-credentials token.
package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

const defaultAPIBaseURL = "https://api.spotify.com/v1"

// TrackInfo is the subset of track metadata exposed to the frontend.
type TrackInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"durationMs"`
	CoverURL   string `json:"coverUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// Client is a Spotify Web API client backed by an injectable token provider.
// Catalog metadata changes rarely, so identical searches are answered from a
// short-lived cache.
type Client struct {
	tokens  *TokenProvider
	baseURL string
	http    *req.Client
	cache   *expirable.LRU[string, []TrackInfo]
}

func NewClient(tokens *TokenProvider) *Client {
	return &Client{
		tokens:  tokens,
		baseURL: defaultAPIBaseURL,
		http:    req.C().SetTimeout(10 * time.Second),
		cache:   expirable.NewLRU[string, []TrackInfo](256, nil, 30*time.Minute),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }

// SearchTracks runs a track search and returns up to limit results.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]TrackInfo, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("%s|%d", query, limit)
	if tracks, ok := c.cache.Get(cacheKey); ok {
		return tracks, nil
	}

	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBearerAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     query,
			"type":  "track",
			"limit": fmt.Sprintf("%d", limit),
		}).
		Get(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("spotify search request failed: %w", err)
	}
	if resp.IsErrorState() {
		return nil, fmt.Errorf("spotify search returned status %d", resp.StatusCode)
	}

	var tracks []TrackInfo
	gjson.Get(resp.String(), "tracks.items").ForEach(func(_, item gjson.Result) bool {
		tracks = append(tracks, TrackInfo{
			ID:         item.Get("id").String(),
			Title:      item.Get("name").String(),
			Artist:     item.Get("artists.0.name").String(),
			Album:      item.Get("album.name").String(),
			DurationMs: item.Get("duration_ms").Int(),
			CoverURL:   item.Get("album.images.0.url").String(),
			PreviewURL: item.Get("preview_url").String(),
		})
		return true
	})
	c.cache.Add(cacheKey, tracks)
	return tracks, nil
}
