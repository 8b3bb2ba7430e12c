package seedr

import (
	"context"
	"strings"
	"time"

	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// processFolders implements spec §4.5 step 5.
func (a *Adapter) processFolders(ctx context.Context, folders []seedrapi.Folder, activeTransferNames map[string]struct{}, now time.Time) []Item {
	var items []Item

	for _, f := range folders {
		if _, active := activeTransferNames[strings.ToLower(f.Name)]; active {
			continue
		}

		m, found := a.findByFolderID(f.ID)
		if !found {
			m, found = a.findByName(f.Name)
		}
		if !found {
			if a.cfg.SharedAccount {
				continue
			}
			entry, rescued := a.rescueFromHistory(ctx, f.Name)
			if !rescued {
				a.log.Warnf("no mapping for folder %q (id %s), skipping", f.Name, f.ID)
				continue
			}
			m = mappingFromHistory(entry)
		}

		m.FolderID = strPtr(f.ID)
		if m.Name == "" {
			m.Name = f.Name
		}

		localPath := a.localPath(f.Name)
		item, emit := a.reconcileFolder(ctx, &m, f, localPath, now)
		if emit {
			items = append(items, item)
		}

		a.store.Set(m.InfoHash, m)
	}

	return items
}

// reconcileFolder runs the completion/retry/readiness/start state machine
// for one folder against its mapping (spec §4.5 step 5, §4.4). The
// mapping is mutated in place; the caller is responsible for persisting
// it back to the store.
func (a *Adapter) reconcileFolder(ctx context.Context, m *mapping.DownloadMapping, f seedrapi.Folder, localPath string, now time.Time) (Item, bool) {
	if localPath == "" {
		a.log.Warnf("folder %q sanitises to an empty base name, skipping", f.Name)
		return Item{}, false
	}

	diskComplete := false
	if !m.LocalDownloadInProgress && !m.LocalDownloadFailed {
		var err error
		diskComplete, err = a.disk.FolderDownloadComplete(localPath, f.Size)
		if err != nil {
			a.log.WithError(err).Warnf("completion check failed for %s", localPath)
		}
	}

	if m.LocalDownloadComplete || diskComplete {
		m.LocalDownloadComplete = true
		m.LocalDownloadFailed = false
		path := localPath
		return Item{
			DownloadID:    m.InfoHash,
			Title:         f.Name,
			TotalSize:     f.Size,
			RemainingSize: 0,
			Status:        Completed,
			OutputPath:    &path,
			CanMoveFiles:  true,
			CanBeRemoved:  true,
		}, true
	}

	if m.LocalDownloadFailed {
		if m.NextRetryAfter != nil && now.Before(*m.NextRetryAfter) {
			return Item{
				DownloadID:    m.InfoHash,
				Title:         f.Name,
				TotalSize:     f.Size,
				RemainingSize: f.Size,
				Status:        Downloading,
				Message:       retryMessage(m.DownloadAttempts),
			}, true
		}
		m.DownloadAttempts++
		m.LocalDownloadFailed = false
	}

	ready, err := a.isFolderReady(ctx, f)
	if err != nil {
		a.log.WithError(err).Warnf("readiness check failed for folder %s", f.ID)
	}

	if !ready {
		m.FolderReadyAttempts++
		if m.FolderReadyAttempts > folderReadyAttemptCeiling {
			m.MarkFailed(now)
			m.FolderReadyAttempts = 0
			return Item{
				DownloadID:    m.InfoHash,
				Title:         f.Name,
				TotalSize:     f.Size,
				RemainingSize: f.Size,
				Status:        Downloading,
				Message:       retryMessage(m.DownloadAttempts),
			}, true
		}
		return Item{
			DownloadID:    m.InfoHash,
			Title:         f.Name,
			TotalSize:     f.Size,
			RemainingSize: f.Size,
			Status:        Downloading,
			Message:       "Waiting for Seedr to finish processing",
		}, true
	}

	m.FolderReadyAttempts = 0
	a.fetcher.StartFolderCopy(m.InfoHash, f)

	bytesOnDisk, err := a.disk.GetFolderBytesOnDisk(localPath)
	if err != nil {
		a.log.WithError(err).Warnf("byte count failed for %s", localPath)
	}
	remaining := f.Size - bytesOnDisk
	if remaining < 0 {
		remaining = 0
	}

	var eta *time.Duration
	if m.LocalDownloadStartTime != nil && bytesOnDisk > 0 {
		elapsed := now.Sub(*m.LocalDownloadStartTime).Seconds()
		if elapsed > 0 {
			rate := float64(bytesOnDisk) / elapsed
			if rate > 0 {
				remainSeconds := float64(remaining) / rate
				d := time.Duration(remainSeconds) * time.Second
				eta = &d
			}
		}
	}

	return Item{
		DownloadID:    m.InfoHash,
		Title:         f.Name,
		TotalSize:     f.Size,
		RemainingSize: remaining,
		RemainingTime: eta,
		Status:        Downloading,
	}, true
}

// isFolderReady implements the readiness check in spec §4.4/§4.5: the
// folder must report at least one child whose combined size reaches 95%
// of the declared size, except a declared size of 0 waives the size
// check (spec §8 boundary behaviour).
func (a *Adapter) isFolderReady(ctx context.Context, f seedrapi.Folder) (bool, error) {
	snap, err := a.api.GetFolderContents(ctx, strPtr(f.ID))
	if err != nil {
		return false, err
	}

	childCount := len(snap.Folders) + len(snap.Files)
	if childCount == 0 {
		return false, nil
	}
	if f.Size <= 0 {
		return true, nil
	}

	var total int64
	for _, sub := range snap.Folders {
		total += sub.Size
	}
	for _, file := range snap.Files {
		total += file.Size
	}

	return float64(total) >= 0.95*float64(f.Size), nil
}

// rescueFromHistory matches a folder name against grab history by
// case-insensitive substring in either direction (spec §4.5 step 5).
func (a *Adapter) rescueFromHistory(ctx context.Context, folderName string) (GrabHistoryEntry, bool) {
	if a.history == nil {
		return GrabHistoryEntry{}, false
	}

	entries, err := a.history.ListGrabs(ctx)
	if err != nil {
		a.log.WithError(err).Warn("grab-history lookup failed during rescue")
		return GrabHistoryEntry{}, false
	}

	lowerFolder := strings.ToLower(folderName)
	for _, e := range entries {
		if e.Imported {
			continue
		}
		if _, exists := a.store.Get(e.DownloadID); exists {
			continue
		}
		lowerName := strings.ToLower(e.SeedrName)
		if strings.Contains(lowerFolder, lowerName) || strings.Contains(lowerName, lowerFolder) {
			return e, true
		}
	}
	return GrabHistoryEntry{}, false
}

func strPtr(s string) *string { return &s }
