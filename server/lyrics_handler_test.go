package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"KaraFM/core/lyrics"
	"KaraFM/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExternal struct {
	ref *model.LyricsReference
	err error
}

func (s *stubExternal) Search(ctx context.Context, artist, title string) (*model.LyricsReference, error) {
	return s.ref, s.err
}

func lyricsFixture(external lyrics.ExternalLookup) *APIHandler {
	songs := &fakeSongRepo{songs: map[int64]*model.Song{
		1: {ID: 1, Title: "Stored", Artist: "Artist", Lyrics: "[00:05]hello\n[00:09]world", Duration: 200},
		2: {ID: 2, Title: "Bare", Artist: "Artist", Duration: 120},
	}}
	return &APIHandler{
		songRepo:       songs,
		lyricsResolver: lyrics.NewResolver(external),
	}
}

func getLyrics(t *testing.T, h *APIHandler, songID string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/lyrics/song/"+songID, nil)
	req = mux.SetURLVars(req, map[string]string{"songId": songID})
	w := httptest.NewRecorder()
	h.GetLyricsHandler(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestGetLyricsStoredText(t *testing.T) {
	h := lyricsFixture(&stubExternal{ref: &model.LyricsReference{URL: "x"}})

	code, body := getLyrics(t, h, "1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "database", body["source"])
	assert.Equal(t, "[00:05]hello\n[00:09]world", body["lyrics"])
	assert.NotContains(t, body, "lyricsInfo")
}

func TestGetLyricsExternalReference(t *testing.T) {
	h := lyricsFixture(&stubExternal{ref: &model.LyricsReference{
		ID: "42", URL: "https://genius.test/song", Notice: "Full lyrics are available at the linked page.",
	}})

	code, body := getLyrics(t, h, "2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "external", body["source"])
	info, ok := body["lyricsInfo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://genius.test/song", info["url"])
}

func TestGetLyricsSampleFallback(t *testing.T) {
	h := lyricsFixture(&stubExternal{err: errors.New("down")})

	code, body := getLyrics(t, h, "2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "sample", body["source"])

	payload, ok := body["lyrics"].(map[string]interface{})
	require.True(t, ok)
	structure, ok := payload["structure"].([]interface{})
	require.True(t, ok)
	assert.Len(t, structure, 6)
}

func TestGetLyricsUnknownSong(t *testing.T) {
	h := lyricsFixture(nil)
	code, _ := getLyrics(t, h, "99")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetTimedLyrics(t *testing.T) {
	h := lyricsFixture(nil)

	req := httptest.NewRequest("GET", "/api/lyrics/song/1/timed", nil)
	req = mux.SetURLVars(req, map[string]string{"songId": "1"})
	w := httptest.NewRecorder()
	h.GetTimedLyricsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Source string            `json:"source"`
		Lines  []model.LyricLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "database", resp.Source)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, int64(5000), resp.Lines[0].AtMs)
}

func TestUpdateLyrics(t *testing.T) {
	h := lyricsFixture(nil)

	payload, _ := json.Marshal(map[string]string{"lyrics": "new text"})
	req := httptest.NewRequest("PUT", "/api/lyrics/song/2", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"songId": "2"})
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	h.UpdateLyricsHandler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// empty body is rejected
	payload, _ = json.Marshal(map[string]string{"lyrics": ""})
	req = httptest.NewRequest("PUT", "/api/lyrics/song/2", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"songId": "2"})
	req = authed(req, 1, "freddie")
	w = httptest.NewRecorder()
	h.UpdateLyricsHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
