package seedr

import (
	"context"
	"os"
	"sync"

	"github.com/l3uddz/seedr-adapter/pkg/ownership"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// fakeCloud is a scripted stand-in for C1 satisfying both cloudProxy (this
// package) and fetcher.cloudClient.
type fakeCloud struct {
	mu sync.Mutex

	root         seedrapi.Snapshot
	byFolderID   map[string]seedrapi.Snapshot
	fileContents map[string][]byte

	addResult seedrapi.AddResult
	addErr    error

	deletedFolders   []string
	deletedFiles     []string
	deletedTransfers []string

	user    seedrapi.User
	userErr error
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		byFolderID:   map[string]seedrapi.Snapshot{},
		fileContents: map[string][]byte{},
	}
}

func (f *fakeCloud) GetFolderContents(ctx context.Context, folderID *string) (*seedrapi.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if folderID == nil || *folderID == "" {
		snap := f.root
		return &snap, nil
	}
	snap, ok := f.byFolderID[*folderID]
	if !ok {
		return &seedrapi.Snapshot{}, nil
	}
	return &snap, nil
}

func (f *fakeCloud) AddMagnet(ctx context.Context, magnetURI string) (seedrapi.AddResult, error) {
	return f.addResult, f.addErr
}

func (f *fakeCloud) AddTorrentFile(ctx context.Context, filename string, data []byte) (seedrapi.AddResult, error) {
	return f.addResult, f.addErr
}

func (f *fakeCloud) DeleteTransfer(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedTransfers = append(f.deletedTransfers, id)
	return nil
}

func (f *fakeCloud) DeleteFolder(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFolders = append(f.deletedFolders, id)
	return nil
}

func (f *fakeCloud) DeleteFile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFiles = append(f.deletedFiles, id)
	return nil
}

func (f *fakeCloud) GetUser(ctx context.Context) (seedrapi.User, error) {
	return f.user, f.userErr
}

func (f *fakeCloud) DownloadFileToPath(ctx context.Context, fileID string, path string) error {
	f.mu.Lock()
	data, ok := f.fileContents[fileID]
	f.mu.Unlock()
	if !ok {
		data = []byte("stub")
	}
	return os.WriteFile(path, data, 0o644)
}

// fakeOwnership is a scripted stand-in for C2.
type fakeOwnership struct {
	mu sync.Mutex

	isOwnedByMe map[string]ownership.Result
	releaseWith ownership.Result

	claims   []string
	releases []string
}

func newFakeOwnership() *fakeOwnership {
	return &fakeOwnership{isOwnedByMe: map[string]ownership.Result{}, releaseWith: ownership.True}
}

func (f *fakeOwnership) ClaimOwnership(ctx context.Context, infoHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims = append(f.claims, infoHash)
	return nil
}

func (f *fakeOwnership) IsOwnedByMe(ctx context.Context, infoHash string) ownership.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.isOwnedByMe[infoHash]; ok {
		return r
	}
	return ownership.True
}

func (f *fakeOwnership) ReleaseOwnership(ctx context.Context, infoHash string) ownership.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases = append(f.releases, infoHash)
	return f.releaseWith
}

func (f *fakeOwnership) TestConnection(ctx context.Context) string {
	return ""
}

var _ ownership.Registry = (*fakeOwnership)(nil)
