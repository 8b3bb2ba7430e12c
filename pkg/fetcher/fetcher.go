// Package fetcher is the Async Fetcher (C4): moves cloud state into the
// local download directory in the background, one detached task per
// mapping at a time (spec §4.4, §5).
package fetcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/l3uddz/seedr-adapter/pkg/localdisk"
	"github.com/l3uddz/seedr-adapter/pkg/logger"
	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// cloudClient is the slice of the Cloud API Proxy (C1) the fetcher needs.
// Satisfied by *seedrapi.Client; narrowed to an interface so tests can
// substitute a fake.
type cloudClient interface {
	GetFolderContents(ctx context.Context, folderID *string) (*seedrapi.Snapshot, error)
	DownloadFileToPath(ctx context.Context, fileID string, path string) error
}

// Fetcher executes folder and file copies from Seedr's cloud into the
// configured local download directory.
type Fetcher struct {
	log         *logrus.Entry
	api         cloudClient
	disk        localdisk.Disk
	store       mapping.Store
	downloadDir string
}

// New builds a Fetcher. downloadDir is the validated local root (spec
// §4.5 Test step 3 validates it ahead of use).
func New(api cloudClient, disk localdisk.Disk, store mapping.Store, downloadDir string) *Fetcher {
	return &Fetcher{
		log:         logger.GetLogger("fetcher"),
		api:         api,
		disk:        disk,
		store:       store,
		downloadDir: downloadDir,
	}
}

// LocalPath returns the sanitised local destination for a cloud-supplied
// name, or "" if sanitisation yields an empty base name (spec §9).
func (f *Fetcher) LocalPath(name string) string {
	base := f.disk.SanitizeBaseName(name)
	if base == "" {
		return ""
	}
	return filepath.Join(f.downloadDir, base)
}

// StartFolderCopy begins (or no-ops onto an already-running) a recursive
// copy of folder's cloud subtree into the local download directory, for
// the mapping stored under key. Spec §4.4 "Folder copy algorithm".
func (f *Fetcher) StartFolderCopy(key string, folder seedrapi.Folder) {
	if !f.claimStart(key, folder.Size) {
		return
	}
	go f.runFolderCopy(key, folder)
}

// StartFileCopy begins (or no-ops onto an already-running) a single-file
// copy, the non-recursive case of the folder algorithm (spec §4.4).
func (f *Fetcher) StartFileCopy(key string, file seedrapi.File) {
	if !f.claimStart(key, file.Size) {
		return
	}
	go f.runFileCopy(key, file)
}

// claimStart applies the idempotent-at-start-boundary guard (spec §4.4
// "Guard"): if the mapping is already in progress this is a no-op. On a
// successful claim it marks the mapping in-progress and records the start
// time / declared size.
func (f *Fetcher) claimStart(key string, declaredSize int64) bool {
	m, ok := f.store.Get(key)
	if !ok || m.LocalDownloadInProgress {
		return false
	}

	now := nowFn()
	m.LocalDownloadInProgress = true
	m.LocalDownloadFailed = false
	m.LocalDownloadStartTime = &now
	m.LocalTotalBytes = declaredSize
	f.store.Set(key, m)
	return true
}

func (f *Fetcher) runFolderCopy(key string, folder seedrapi.Folder) {
	ctx := context.Background()

	localPath := f.LocalPath(folder.Name)
	if localPath == "" {
		f.finish(key, fmt.Errorf("folder name %q sanitises to an empty base name", folder.Name), 0)
		return
	}
	if err := f.disk.EnsureDir(localPath); err != nil {
		f.finish(key, fmt.Errorf("create local folder: %w", err), 0)
		return
	}

	filesSeen, err := f.copyFolderTree(ctx, folder.ID, localPath)
	if err == nil && filesSeen == 0 {
		// Spec §4.4 step 6: an empty subtree means the cloud side isn't
		// assembled yet, not a completed empty folder.
		err = fmt.Errorf("folder %s produced no files: not yet assembled on the cloud", folder.ID)
	}
	f.finish(key, err, filesSeen)
}

// copyFolderTree walks cloudFolderID's immediate children, downloading
// files and recursing into sub-folders. It returns the number of files
// seen across the whole subtree and the first error encountered; per-file
// failures are logged, the first of them becomes the returned error, and
// none of them stops the walk (spec §4.4 step 3, §7 "no individual mapping's failure
// affects any other").
func (f *Fetcher) copyFolderTree(ctx context.Context, cloudFolderID, localPath string) (int, error) {
	snap, err := f.api.GetFolderContents(ctx, &cloudFolderID)
	if err != nil {
		return 0, fmt.Errorf("list folder %s: %w", cloudFolderID, err)
	}

	filesSeen := 0
	var firstErr error

	for _, file := range snap.Files {
		filesSeen++
		base := f.disk.SanitizeBaseName(file.Name)
		if base == "" {
			if firstErr == nil {
				firstErr = fmt.Errorf("file name %q sanitises to an empty base name", file.Name)
			}
			continue
		}
		dest := filepath.Join(localPath, base)

		complete, checkErr := f.disk.FileDownloadComplete(dest, file.Size)
		if checkErr != nil {
			f.log.WithError(checkErr).Warnf("stat check failed for %s, downloading anyway", dest)
		}
		if complete {
			f.log.Debugf("skipping already-complete file %s (resumable restart)", dest)
			continue
		}

		if dlErr := f.api.DownloadFileToPath(ctx, file.ID, dest); dlErr != nil {
			f.log.WithError(dlErr).Warnf("download failed for file %s", file.Name)
			if firstErr == nil {
				firstErr = fmt.Errorf("download %s: %w", file.Name, dlErr)
			}
		}
	}

	for _, sub := range snap.Folders {
		subLocal := filepath.Join(localPath, f.disk.SanitizeBaseName(sub.Name))
		if f.disk.SanitizeBaseName(sub.Name) == "" {
			if firstErr == nil {
				firstErr = fmt.Errorf("sub-folder name %q sanitises to an empty base name", sub.Name)
			}
			continue
		}
		if err := f.disk.EnsureDir(subLocal); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("create sub-folder %s: %w", subLocal, err)
			}
			continue
		}

		subFiles, subErr := f.copyFolderTree(ctx, sub.ID, subLocal)
		filesSeen += subFiles
		if subErr != nil && firstErr == nil {
			firstErr = subErr
		}
	}

	return filesSeen, firstErr
}

func (f *Fetcher) runFileCopy(key string, file seedrapi.File) {
	ctx := context.Background()

	dest := f.LocalPath(file.Name)
	if dest == "" {
		f.finish(key, fmt.Errorf("file name %q sanitises to an empty base name", file.Name), 0)
		return
	}

	complete, checkErr := f.disk.FileDownloadComplete(dest, file.Size)
	if checkErr != nil {
		f.log.WithError(checkErr).Warnf("stat check failed for %s, downloading anyway", dest)
	}
	if complete {
		f.finish(key, nil, 1)
		return
	}

	err := f.api.DownloadFileToPath(ctx, file.ID, dest)
	f.finish(key, err, 1)
}

// finish applies the terminal bookkeeping shared by folder and file
// copies: failure schedules backoff (spec §4.4 step 5); success clears
// retry state.
func (f *Fetcher) finish(key string, err error, filesSeen int) {
	m, ok := f.store.Get(key)
	if !ok {
		return
	}

	if err != nil {
		f.log.WithError(err).Warnf("local copy failed for %s", key)
		m.MarkFailed(nowFn())
	} else {
		m.MarkComplete()
	}
	f.store.Set(key, m)
}

// nowFn is overridable in tests.
var nowFn = defaultNow
