package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"KaraFM/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUpload(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func countFiles(t *testing.T, store *LocalStore, kind FileKind) int {
	t.Helper()
	entries, err := os.ReadDir(store.Dir(kind))
	require.NoError(t, err)
	return len(entries)
}

func TestUploaderFromRequest(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	body, contentType := buildUpload(t, "audio", "take.mp3", "audio/mpeg", []byte("frames"))
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)

	stored, err := uploader.FromRequest(req, "audio", KindRecording)
	require.NoError(t, err)
	assert.Equal(t, 1, countFiles(t, store, KindRecording))
	assert.Equal(t, stored.URL, store.ResolveURL(stored))
}

func TestUploaderRejectsMissingField(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	body, contentType := buildUpload(t, "other", "take.mp3", "audio/mpeg", []byte("frames"))
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)

	_, err = uploader.FromRequest(req, "audio", KindRecording)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 0, countFiles(t, store, KindRecording))
}

func TestUploaderRejectsDisallowedContentType(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	body, contentType := buildUpload(t, "audio", "movie.mp4", "video/mp4", []byte("frames"))
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)

	_, err = uploader.FromRequest(req, "audio", KindRecording)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	// rejected before any write
	assert.Equal(t, 0, countFiles(t, store, KindRecording))
}

func TestCheckRequestSizeRejectsOversizeDeclaredLength(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	body, contentType := buildUpload(t, "audio", "take.mp3", "audio/mpeg", []byte("frames"))
	req := httptest.NewRequest("POST", "/api/karaoke/recordings", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = KindRecording.MaxSize() + (2 << 20)

	w := httptest.NewRecorder()
	err = uploader.CheckRequestSize(w, req, KindRecording)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	// the body is untouched; nothing was parsed or written
	assert.Equal(t, 0, countFiles(t, store, KindRecording))
}

func TestCheckRequestSizeCapsBodyWithoutContentLength(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	// over the image limit but declared as unknown length, the way a chunked
	// request arrives
	payload := bytes.Repeat([]byte("x"), int(KindImage.MaxSize()+(2<<20)))
	body, contentType := buildUpload(t, "cover", "cover.png", "image/png", payload)
	req := httptest.NewRequest("POST", "/api/songs", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = -1

	w := httptest.NewRecorder()
	require.NoError(t, uploader.CheckRequestSize(w, req, KindImage))

	_, err = uploader.FromRequest(req, "cover", KindImage)
	require.Error(t, err)
	assert.Equal(t, 0, countFiles(t, store, KindImage))
}

func TestUploaderImageAllowList(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	uploader := NewUploader(store)

	body, contentType := buildUpload(t, "cover", "cover.png", "image/png; charset=binary", []byte{0x89, 'P', 'N', 'G'})
	req := httptest.NewRequest("POST", "/api/songs", body)
	req.Header.Set("Content-Type", contentType)

	// parameters after the media type must not defeat the allow-list
	stored, err := uploader.FromRequest(req, "cover", KindImage)
	require.NoError(t, err)
	assert.Equal(t, KindImage, stored.Kind)
}
