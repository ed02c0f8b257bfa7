package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"docsum/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	doc         *types.Document
	err         error
	called      bool
	gotFilename string
	gotMimeType string
	gotPath     string
}

func (f *fakeIngester) Ingest(_ context.Context, filename, mimeType, path string) (*types.Document, error) {
	f.called = true
	f.gotFilename = filename
	f.gotMimeType = mimeType
	f.gotPath = path
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func uploadRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadMissingFileField(t *testing.T) {
	pipeline := &fakeIngester{}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, t.TempDir()).HandleUpload)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, pipeline.called)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	pipeline := &fakeIngester{}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, t.TempDir()).HandleUpload)

	req := uploadRequest(t, "tool.exe", "application/octet-stream", []byte("MZ"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Contains(t, body["error"], "unsupported file type")
	assert.False(t, pipeline.called, "pipeline must not run for rejected uploads")
}

func TestUploadRejectsOversizeFile(t *testing.T) {
	pipeline := &fakeIngester{}
	handler := NewUploadHandler(pipeline, t.TempDir())
	handler.maxSize = 16
	app := newTestApp(http.MethodPost, "/upload", handler.HandleUpload)

	req := uploadRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 64))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.False(t, pipeline.called)
}

func TestUploadSuccess(t *testing.T) {
	uploadDir := t.TempDir()
	pipeline := &fakeIngester{doc: &types.Document{
		Filename:         "notes.txt",
		PageCount:        2,
		ChunkCount:       7,
		Summary:          "a summary",
		Classification:   "Small Document",
		ProcessingMethod: "Chunk-wise Summarization",
	}}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, uploadDir).HandleUpload)

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("some document text"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[types.UploadResponse](t, resp)
	assert.Equal(t, "notes.txt", body.Filename)
	assert.Equal(t, 2, body.PageEstimate)
	assert.Equal(t, 7, body.ChunkCount)
	assert.Equal(t, "a summary", body.Summary)
	assert.Equal(t, "Small Document", body.Classification)
	assert.Equal(t, "Chunk-wise Summarization", body.ProcessingMethod)

	assert.Equal(t, "notes.txt", pipeline.gotFilename)
	assert.Equal(t, "text/plain", pipeline.gotMimeType)
	assert.FileExists(t, filepath.Join(uploadDir, "notes.txt"))
}

func TestUploadRemovesFileOnPipelineFailure(t *testing.T) {
	uploadDir := t.TempDir()
	pipeline := &fakeIngester{err: errors.New("summarization failed: model unavailable")}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, uploadDir).HandleUpload)

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("some document text"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Contains(t, body["error"], "Sorry, processing the document failed")

	_, statErr := os.Stat(filepath.Join(uploadDir, "notes.txt"))
	assert.True(t, os.IsNotExist(statErr), "failed ingest must not leave the file behind")

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no staging file left behind")
}

func TestUploadFailedReuploadKeepsExistingFile(t *testing.T) {
	uploadDir := t.TempDir()
	existing := filepath.Join(uploadDir, "notes.txt")
	require.NoError(t, os.WriteFile(existing, []byte("previous upload"), 0o644))

	pipeline := &fakeIngester{err: errors.New("summarization failed: model unavailable")}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, uploadDir).HandleUpload)

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("new content"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	data, err := os.ReadFile(existing)
	require.NoError(t, err, "the previous upload's file must survive a failed re-upload")
	assert.Equal(t, "previous upload", string(data))

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the previous upload remains")
}

func TestUploadOverwritesExistingFileOnSuccess(t *testing.T) {
	uploadDir := t.TempDir()
	existing := filepath.Join(uploadDir, "notes.txt")
	require.NoError(t, os.WriteFile(existing, []byte("previous upload"), 0o644))

	pipeline := &fakeIngester{doc: &types.Document{Filename: "notes.txt"}}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, uploadDir).HandleUpload)

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("new content"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
}

func TestUploadStripsPathFromFilename(t *testing.T) {
	uploadDir := t.TempDir()
	pipeline := &fakeIngester{doc: &types.Document{Filename: "notes.txt"}}
	app := newTestApp(http.MethodPost, "/upload", NewUploadHandler(pipeline, uploadDir).HandleUpload)

	req := uploadRequest(t, "../../notes.txt", "text/plain", []byte("text"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "notes.txt", pipeline.gotFilename)
	assert.Equal(t, uploadDir, filepath.Dir(pipeline.gotPath))
	assert.FileExists(t, filepath.Join(uploadDir, "notes.txt"))
}
