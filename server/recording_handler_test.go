package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"KaraFM/model"
	"KaraFM/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps uploaded content in memory and records deletions.
type fakeStore struct {
	uploads map[string][]byte // url -> content
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (s *fakeStore) Upload(ctx context.Context, kind storage.FileKind, originalName, contentType string, r io.Reader, size int64) (*storage.StoredFile, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	name := storage.GenerateFileName(originalName)
	url := kind.URLPrefix() + "/" + name
	s.uploads[url] = content
	return &storage.StoredFile{Kind: kind, Name: name, URL: url}, nil
}

func (s *fakeStore) ResolveURL(f *storage.StoredFile) string { return f.URL }

func (s *fakeStore) Delete(ctx context.Context, url string) error {
	delete(s.uploads, url)
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *fakeStore) Mode() string { return "local" }

// fakeSongRepo serves a fixed catalog.
type fakeSongRepo struct {
	songs map[int64]*model.Song
}

func (r *fakeSongRepo) CreateSong(song *model.Song) (int64, error) { return 0, nil }
func (r *fakeSongRepo) GetSongByID(id int64) (*model.Song, error)  { return r.songs[id], nil }
func (r *fakeSongRepo) ListSongs(int, int) ([]*model.Song, error)  { return nil, nil }
func (r *fakeSongRepo) SearchSongs(string, int) ([]*model.Song, error) {
	return nil, nil
}
func (r *fakeSongRepo) UpdateSong(*model.Song) error     { return nil }
func (r *fakeSongRepo) UpdateLyrics(int64, string) error { return nil }
func (r *fakeSongRepo) DeleteSong(int64) error           { return nil }
func (r *fakeSongRepo) AllFileURLs() ([]string, error)   { return nil, nil }

// fakeRecordingRepo implements the recording operations in memory with the
// same membership semantics as the MySQL repository.
type fakeRecordingRepo struct {
	recordings map[string]*model.Recording
	likes      map[string]map[int64]struct{} // recording -> liker set
	deleteErr  error
}

func newFakeRecordingRepo() *fakeRecordingRepo {
	return &fakeRecordingRepo{
		recordings: make(map[string]*model.Recording),
		likes:      make(map[string]map[int64]struct{}),
	}
}

func (r *fakeRecordingRepo) CreateRecording(rec *model.Recording) error {
	r.recordings[rec.ID] = rec
	return nil
}

func (r *fakeRecordingRepo) GetRecordingByID(id string, viewerID int64) (*model.Recording, error) {
	rec, ok := r.recordings[id]
	if !ok {
		return nil, nil
	}
	out := *rec
	out.Likes = int64(len(r.likes[id]))
	_, out.IsLiked = r.likes[id][viewerID]
	return &out, nil
}

func (r *fakeRecordingRepo) ListByUser(userID int64) ([]*model.Recording, error) {
	var recs []*model.Recording
	for id, rec := range r.recordings {
		if rec.UserID == userID {
			out, _ := r.GetRecordingByID(id, userID)
			recs = append(recs, out)
		}
	}
	return recs, nil
}

func (r *fakeRecordingRepo) ListPublic(viewerID int64) ([]*model.Recording, error) {
	var recs []*model.Recording
	for id, rec := range r.recordings {
		if rec.IsPublic {
			out, _ := r.GetRecordingByID(id, viewerID)
			recs = append(recs, out)
		}
	}
	return recs, nil
}

func (r *fakeRecordingRepo) ListPublicBySong(songID, viewerID int64) ([]*model.Recording, error) {
	var recs []*model.Recording
	for id, rec := range r.recordings {
		if rec.IsPublic && rec.SongID == songID {
			out, _ := r.GetRecordingByID(id, viewerID)
			recs = append(recs, out)
		}
	}
	return recs, nil
}

func (r *fakeRecordingRepo) ToggleLike(recordingID string, userID int64) (int64, bool, error) {
	set, ok := r.likes[recordingID]
	if !ok {
		set = make(map[int64]struct{})
		r.likes[recordingID] = set
	}
	var isLiked bool
	if _, liked := set[userID]; liked {
		delete(set, userID)
	} else {
		set[userID] = struct{}{}
		isLiked = true
	}
	return int64(len(set)), isLiked, nil
}

func (r *fakeRecordingRepo) IncrementPlayCount(recordingID string) (int64, error) {
	rec, ok := r.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("no rows")
	}
	rec.PlayCount++
	return rec.PlayCount, nil
}

func (r *fakeRecordingRepo) DeleteRecording(id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.recordings, id)
	delete(r.likes, id)
	return nil
}

func (r *fakeRecordingRepo) AllFileURLs() ([]string, error) { return nil, nil }

type recordingFixture struct {
	handler *APIHandler
	store   *fakeStore
	recs    *fakeRecordingRepo
}

func newRecordingFixture() *recordingFixture {
	store := newFakeStore()
	recs := newFakeRecordingRepo()
	songs := &fakeSongRepo{songs: map[int64]*model.Song{
		7: {ID: 7, Title: "Bohemian Rhapsody", Artist: "Queen", Duration: 354},
	}}
	h := &APIHandler{
		store:         store,
		uploader:      storage.NewUploader(store),
		songRepo:      songs,
		recordingRepo: recs,
	}
	return &recordingFixture{handler: h, store: store, recs: recs}
}

func authed(r *http.Request, userID int64, username string) *http.Request {
	ctx := context.WithValue(r.Context(), "userID", userID)
	ctx = context.WithValue(ctx, "username", username)
	return r.WithContext(ctx)
}

func recordingUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="audio"; filename="take.webm"`)
	header.Set("Content-Type", "audio/webm")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("opus frames"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateRecordingDefaults(t *testing.T) {
	fx := newRecordingFixture()

	body, contentType := recordingUpload(t, map[string]string{"songId": "7", "duration": "93.5"})
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	fx.handler.CreateRecordingHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Recording model.Recording `json:"recording"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bohemian Rhapsody - freddie's Cover", resp.Recording.Title)
	assert.True(t, resp.Recording.IsPublic, "visibility defaults to public")
	assert.Equal(t, 93.5, resp.Recording.Duration)
	assert.Len(t, fx.store.uploads, 1)
	assert.Len(t, fx.recs.recordings, 1)
}

func TestCreateRecordingExplicitlyPrivate(t *testing.T) {
	fx := newRecordingFixture()

	body, contentType := recordingUpload(t, map[string]string{"songId": "7", "isPublic": "false", "title": "secret take"})
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	fx.handler.CreateRecordingHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Recording model.Recording `json:"recording"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Recording.IsPublic)
	assert.Equal(t, "secret take", resp.Recording.Title)
}

func TestCreateRecordingUnknownSong(t *testing.T) {
	fx := newRecordingFixture()

	body, contentType := recordingUpload(t, map[string]string{"songId": "999"})
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	fx.handler.CreateRecordingHandler(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, fx.store.uploads, "no file may be stored when the song does not exist")
	assert.Empty(t, fx.recs.recordings)
}

func TestCreateRecordingMissingFile(t *testing.T) {
	fx := newRecordingFixture()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("songId", "7"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	fx.handler.CreateRecordingHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fx.store.uploads)
}

func TestCreateRecordingOversizeRequestRejected(t *testing.T) {
	fx := newRecordingFixture()

	body, contentType := recordingUpload(t, map[string]string{"songId": "7"})
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = storage.KindRecording.MaxSize() + (2 << 20)
	req = authed(req, 1, "freddie")

	w := httptest.NewRecorder()
	fx.handler.CreateRecordingHandler(w, req)

	// rejected by the declared length alone, before the form is parsed
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fx.store.uploads)
	assert.Empty(t, fx.recs.recordings)
}

func seedRecording(fx *recordingFixture, userID int64, isPublic bool) *model.Recording {
	rec := model.NewRecording(userID, 7, "take", "/recordings/seed.webm", 60, isPublic)
	fx.recs.recordings[rec.ID] = rec
	fx.store.uploads[rec.AudioURL] = []byte("opus frames")
	return rec
}

func TestLikeToggleRoundTrip(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 2, true)

	like := func() (int64, bool) {
		req := httptest.NewRequest("POST", "/api/karaoke/recordings/"+rec.ID+"/like", nil)
		req = authed(req, 1, "freddie")
		req = mux.SetURLVars(req, map[string]string{"id": rec.ID})
		w := httptest.NewRecorder()
		fx.handler.LikeRecordingHandler(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Likes   int64 `json:"likes"`
			IsLiked bool  `json:"isLiked"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Likes, resp.IsLiked
	}

	likes, isLiked := like()
	assert.Equal(t, int64(1), likes)
	assert.True(t, isLiked)

	likes, isLiked = like()
	assert.Equal(t, int64(0), likes)
	assert.False(t, isLiked)
}

func TestLikePrivateRecordingForbidden(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 2, false)

	req := httptest.NewRequest("POST", "/api/karaoke/recordings/"+rec.ID+"/like", nil)
	req = authed(req, 1, "freddie")
	req = mux.SetURLVars(req, map[string]string{"id": rec.ID})

	w := httptest.NewRecorder()
	fx.handler.LikeRecordingHandler(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPlayCountIncrements(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 1, true)

	for want := int64(1); want <= 3; want++ {
		req := httptest.NewRequest("POST", "/api/karaoke/recordings/"+rec.ID+"/play", nil)
		req = authed(req, 1, "freddie")
		req = mux.SetURLVars(req, map[string]string{"id": rec.ID})

		w := httptest.NewRecorder()
		fx.handler.PlayRecordingHandler(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			PlayCount int64 `json:"playCount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.PlayCount)
	}
}

func TestDeleteRecordingNonOwnerForbidden(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 2, true)

	req := httptest.NewRequest("DELETE", "/api/karaoke/recordings/"+rec.ID, nil)
	req = authed(req, 1, "freddie")
	req = mux.SetURLVars(req, map[string]string{"id": rec.ID})

	w := httptest.NewRecorder()
	fx.handler.DeleteRecordingHandler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, fx.recs.recordings, rec.ID, "document must stay intact")
	assert.Contains(t, fx.store.uploads, rec.AudioURL, "file must stay intact")
}

func TestDeleteRecordingOwner(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 1, true)

	req := httptest.NewRequest("DELETE", "/api/karaoke/recordings/"+rec.ID, nil)
	req = authed(req, 1, "freddie")
	req = mux.SetURLVars(req, map[string]string{"id": rec.ID})

	w := httptest.NewRecorder()
	fx.handler.DeleteRecordingHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, fx.recs.recordings, rec.ID)
	assert.Equal(t, []string{rec.AudioURL}, fx.store.deleted)
}

func TestDeleteRecordingReclaimsFileBeforeDocument(t *testing.T) {
	fx := newRecordingFixture()
	rec := seedRecording(fx, 1, true)
	fx.recs.deleteErr = fmt.Errorf("connection lost")

	req := httptest.NewRequest("DELETE", "/api/karaoke/recordings/"+rec.ID, nil)
	req = authed(req, 1, "freddie")
	req = mux.SetURLVars(req, map[string]string{"id": rec.ID})

	w := httptest.NewRecorder()
	fx.handler.DeleteRecordingHandler(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{rec.AudioURL}, fx.store.deleted, "file removal precedes the document delete")
}

func TestDeleteRecordingNotFound(t *testing.T) {
	fx := newRecordingFixture()

	req := httptest.NewRequest("DELETE", "/api/karaoke/recordings/unknown", nil)
	req = authed(req, 1, "freddie")
	req = mux.SetURLVars(req, map[string]string{"id": "unknown"})

	w := httptest.NewRecorder()
	fx.handler.DeleteRecordingHandler(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
