package spotify

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

func tokenServer(t *testing.T, requests *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func TestTokenProviderFetchesAndCaches(t *testing.T) {
	var requests int64
	srv := tokenServer(t, &requests)
	defer srv.Close()

	p := NewTokenProvider("client-id", "client-secret")
	p.SetTokenURL(srv.URL)

	token, err := p.GetValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)

	// second call must reuse the cached token
	token, err = p.GetValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

func TestTokenProviderRefreshesExpiredToken(t *testing.T) {
	var requests int64
	srv := tokenServer(t, &requests)
	defer srv.Close()

	p := NewTokenProvider("client-id", "client-secret")
	p.SetTokenURL(srv.URL)

	_, err := p.GetValidToken(context.Background())
	require.NoError(t, err)

	// force expiry
	p.mu.Lock()
	p.expiresAt = time.Now().Add(-time.Minute)
	p.mu.Unlock()

	_, err = p.GetValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestTokenProviderMissingCredentials(t *testing.T) {
	p := NewTokenProvider("", "")
	_, err := p.GetValidToken(context.Background())
	assert.Error(t, err)
}

func TestTokenProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewTokenProvider("client-id", "client-secret")
	p.SetTokenURL(srv.URL)

	_, err := p.GetValidToken(context.Background())
	assert.Error(t, err)
}

func TestSearchTracks(t *testing.T) {
	var tokenRequests int64
	tokenSrv := tokenServer(t, &tokenRequests)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id":   "t1",
						"name": "Bohemian Rhapsody",
						"artists": []map[string]interface{}{
							{"name": "Queen"},
						},
						"album": map[string]interface{}{
							"name": "A Night at the Opera",
							"images": []map[string]interface{}{
								{"url": "https://img.example/cover.jpg"},
							},
						},
						"duration_ms": 354000,
					},
				},
			},
		})
	}))
	defer apiSrv.Close()

	tokens := NewTokenProvider("client-id", "client-secret")
	tokens.SetTokenURL(tokenSrv.URL)
	client := NewClient(tokens)
	client.SetBaseURL(apiSrv.URL)

	tracks, err := client.SearchTracks(context.Background(), "bohemian", 10)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Bohemian Rhapsody", tracks[0].Title)
	assert.Equal(t, "Queen", tracks[0].Artist)
	assert.Equal(t, int64(354000), tracks[0].DurationMs)
	assert.Equal(t, "https://img.example/cover.jpg", tracks[0].CoverURL)
}

func TestSearchTracksCachesIdenticalQueries(t *testing.T) {
	var tokenRequests int64
	tokenSrv := tokenServer(t, &tokenRequests)
	defer tokenSrv.Close()

	var searches int64
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&searches, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []map[string]interface{}{
					{"id": "t1", "name": "Bohemian Rhapsody"},
				},
			},
		})
	}))
	defer apiSrv.Close()

	tokens := NewTokenProvider("client-id", "client-secret")
	tokens.SetTokenURL(tokenSrv.URL)
	client := NewClient(tokens)
	client.SetBaseURL(apiSrv.URL)

	_, err := client.SearchTracks(context.Background(), "bohemian", 10)
	require.NoError(t, err)

	// same query and limit comes out of the cache
	_, err = client.SearchTracks(context.Background(), "bohemian", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&searches))

	// a different limit is a different search
	_, err = client.SearchTracks(context.Background(), "bohemian", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&searches))
}
