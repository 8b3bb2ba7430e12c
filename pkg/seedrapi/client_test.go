package seedrapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextBG() context.Context {
	return context.Background()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := NewClient(Options{Email: "a@b.com", Password: "pw", BaseURL: srv.URL})
	return c, srv.Close
}

func TestGetFolderContents_NormalizesTorrentsAndFolderIdAliases(t *testing.T) {
	body := `{
		"torrents": [{"id": 1, "name": "M", "hash": "h1", "size": 1000, "progress": "50"}],
		"folders": [{"folder_id": 7, "folder_name": "Sub", "size": 2000}],
		"files": [{"id": 9, "name": "movie.mkv", "size": 500}]
	}`

	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
	defer closeFn()

	snap, err := c.GetFolderContents(contextBG(), nil)
	require.NoError(t, err)

	require.Len(t, snap.Transfers, 1)
	assert.Equal(t, "1", snap.Transfers[0].ID)
	assert.Equal(t, "h1", snap.Transfers[0].Hash)
	assert.Equal(t, 50.0, snap.Transfers[0].Progress)

	require.Len(t, snap.Folders, 1)
	assert.Equal(t, "7", snap.Folders[0].ID)
	assert.Equal(t, "Sub", snap.Folders[0].Name)

	require.Len(t, snap.Files, 1)
	assert.Equal(t, "movie.mkv", snap.Files[0].Name)
}

func TestGetFolderContents_ClassifiesAuthFailure(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer closeFn()

	_, err := c.GetFolderContents(contextBG(), nil)
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestGetFolderContents_ClassifiesNotFound(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer closeFn()

	_, err := c.GetFolderContents(contextBG(), nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGetFolderContents_EmptyBodyIsProtocolError(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer closeFn()

	_, err := c.GetFolderContents(contextBG(), nil)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestAddMagnet_NormalizesCreationShape(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"result": true, "user_torrent_id": 42, "title": "My Movie", "torrent_hash": "ABCD"}`))
	})
	defer closeFn()

	res, err := c.AddMagnet(contextBG(), "magnet:?xt=urn:btih:ABCD")
	require.NoError(t, err)
	assert.Equal(t, "42", res.ID)
	assert.Equal(t, "My Movie", res.Name)
	assert.Equal(t, "ABCD", res.Hash)
}

func TestAddMagnet_ResultFalseIsProtocolError(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": false}`))
	})
	defer closeFn()

	_, err := c.AddMagnet(contextBG(), "magnet:?xt=urn:btih:ABCD")
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestDownloadFileToPath_RenamesOnSuccess(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})
	defer closeFn()

	dir := t.TempDir()
	dst := filepath.Join(dir, "movie.mkv")

	err := c.DownloadFileToPath(contextBG(), "9", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, err = os.Stat(dst + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadFileToPath_RemovesPartialOnFailure(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer closeFn()

	dir := t.TempDir()
	dst := filepath.Join(dir, "movie.mkv")

	err := c.DownloadFileToPath(contextBG(), "9", dst)
	require.Error(t, err)

	_, statErr := os.Stat(dst + ".part")
	assert.True(t, os.IsNotExist(statErr))
}
