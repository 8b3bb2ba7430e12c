package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3uddz/seedr-adapter/pkg/localdisk"
	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// fakeCloud serves a fixed folder tree keyed by folder id, and records
// which file ids were downloaded.
type fakeCloud struct {
	mu        sync.Mutex
	tree      map[string]*seedrapi.Snapshot
	downloads map[string]bool
	failFile  string
}

func (f *fakeCloud) GetFolderContents(ctx context.Context, folderID *string) (*seedrapi.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ""
	if folderID != nil {
		id = *folderID
	}
	snap, ok := f.tree[id]
	if !ok {
		return &seedrapi.Snapshot{}, nil
	}
	return snap, nil
}

func (f *fakeCloud) DownloadFileToPath(ctx context.Context, fileID string, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloads == nil {
		f.downloads = map[string]bool{}
	}
	if fileID == f.failFile {
		return assertError{"simulated download failure"}
	}
	f.downloads[fileID] = true
	return os.WriteFile(path, []byte("contents-of-"+fileID), 0o644)
}

type assertError struct{ s string }

func (e assertError) Error() string { return e.s }

func waitFor(t *testing.T, store mapping.Store, key string, cond func(mapping.DownloadMapping) bool) mapping.DownloadMapping {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m, ok := store.Get(key)
		if ok && cond(m) {
			return m
		}
		time.Sleep(5 * time.Millisecond)
	}
	m, _ := store.Get(key)
	t.Fatalf("condition never met, last mapping state: %+v", m)
	return m
}

func TestStartFolderCopy_DownloadsAllFilesAndMarksComplete(t *testing.T) {
	cloud := &fakeCloud{
		tree: map[string]*seedrapi.Snapshot{
			"f1": {
				Files: []seedrapi.File{
					{ID: "file1", Name: "movie.mkv", Size: 100},
				},
			},
		},
	}
	disk := localdisk.New()
	store := mapping.NewStore()
	dir := t.TempDir()

	store.Set("HASH1", mapping.DownloadMapping{InfoHash: "HASH1"})
	ft := New(cloud, disk, store, dir)

	ft.StartFolderCopy("HASH1", seedrapi.Folder{ID: "f1", Name: "My Movie", Size: 100})

	m := waitFor(t, store, "HASH1", func(m mapping.DownloadMapping) bool {
		return m.LocalDownloadComplete || m.LocalDownloadFailed
	})

	assert.True(t, m.LocalDownloadComplete)
	assert.False(t, m.LocalDownloadFailed)

	data, err := os.ReadFile(filepath.Join(dir, "My Movie", "movie.mkv"))
	require.NoError(t, err)
	assert.Equal(t, "contents-of-file1", string(data))
}

func TestStartFolderCopy_EmptySubtreeIsFailure(t *testing.T) {
	cloud := &fakeCloud{tree: map[string]*seedrapi.Snapshot{"f1": {}}}
	disk := localdisk.New()
	store := mapping.NewStore()
	dir := t.TempDir()

	store.Set("HASH2", mapping.DownloadMapping{InfoHash: "HASH2"})
	ft := New(cloud, disk, store, dir)
	ft.StartFolderCopy("HASH2", seedrapi.Folder{ID: "f1", Name: "Empty", Size: 0})

	m := waitFor(t, store, "HASH2", func(m mapping.DownloadMapping) bool {
		return m.LocalDownloadComplete || m.LocalDownloadFailed
	})
	assert.True(t, m.LocalDownloadFailed)
	assert.Equal(t, 1, m.DownloadAttempts)
}

func TestStartFolderCopy_GuardSkipsWhenAlreadyInProgress(t *testing.T) {
	disk := localdisk.New()
	store := mapping.NewStore()
	dir := t.TempDir()

	store.Set("HASH3", mapping.DownloadMapping{InfoHash: "HASH3", LocalDownloadInProgress: true})
	cloud := &fakeCloud{}
	ft := New(cloud, disk, store, dir)

	ft.StartFolderCopy("HASH3", seedrapi.Folder{ID: "f1", Name: "X", Size: 1})

	time.Sleep(20 * time.Millisecond)
	m, _ := store.Get("HASH3")
	assert.True(t, m.LocalDownloadInProgress)
	assert.False(t, m.LocalDownloadComplete)
}

func TestStartFileCopy_SkipsWhenAlreadyComplete(t *testing.T) {
	disk := localdisk.New()
	store := mapping.NewStore()
	dir := t.TempDir()

	dest := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(dest, make([]byte, 100), 0o644))

	cloud := &fakeCloud{}
	store.Set("HASH4", mapping.DownloadMapping{InfoHash: "HASH4"})
	ft := New(cloud, disk, store, dir)

	ft.StartFileCopy("HASH4", seedrapi.File{ID: "fileX", Name: "movie.mkv", Size: 100})

	m := waitFor(t, store, "HASH4", func(m mapping.DownloadMapping) bool {
		return m.LocalDownloadComplete || m.LocalDownloadFailed
	})
	assert.True(t, m.LocalDownloadComplete)
	assert.False(t, cloud.downloads["fileX"], "already-complete file must not be re-downloaded")
}
