package genius

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchWithoutAPIKey(t *testing.T) {
	client := NewClient("")
	ref, err := client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestSearchReturnsReference(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Queen Bohemian Rhapsody", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": map[string]interface{}{
				"hits": []map[string]interface{}{
					{
						"result": map[string]interface{}{
							"id":    354,
							"url":   "https://genius.com/queen-bohemian-rhapsody-lyrics",
							"title": "Bohemian Rhapsody",
							"primary_artist": map[string]interface{}{
								"name": "Queen",
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	ref, err := client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "354", ref.ID)
	assert.Equal(t, "https://genius.com/queen-bohemian-rhapsody-lyrics", ref.URL)
	assert.Equal(t, "Queen", ref.Artist)
	assert.NotEmpty(t, ref.Notice)

	// resolution results are never cached; a repeat search hits the service
	_, err = client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestSearchNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": map[string]interface{}{"hits": []interface{}{}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	ref, err := client.Search(context.Background(), "Nobody", "Nothing")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestSearchUpstreamFailureIsAnError(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	_, err := client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.Error(t, err)

	// failures are not cached; the service is retried next call
	_, err = client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.Error(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}
