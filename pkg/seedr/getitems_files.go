package seedr

import (
	"context"
	"time"

	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// processFiles implements spec §4.5 step 6: single-file torrents, the
// symmetric non-recursive case of step 5.
func (a *Adapter) processFiles(ctx context.Context, files []seedrapi.File, now time.Time) []Item {
	var items []Item

	for _, file := range files {
		m, found := a.findByFileID(file.ID)
		if !found {
			m, found = a.findByName(file.Name)
		}
		if !found {
			if a.cfg.SharedAccount {
				continue
			}
			entry, rescued := a.rescueFromHistory(ctx, file.Name)
			if !rescued {
				a.log.Warnf("no mapping for file %q (id %s), skipping", file.Name, file.ID)
				continue
			}
			m = mappingFromHistory(entry)
		}

		m.FileID = strPtr(file.ID)
		if m.Name == "" {
			m.Name = file.Name
		}

		localPath := a.localPath(file.Name)
		item, emit := a.reconcileFile(&m, file, localPath, now)
		if emit {
			items = append(items, item)
		}

		a.store.Set(m.InfoHash, m)
	}

	return items
}

func (a *Adapter) reconcileFile(m *mapping.DownloadMapping, f seedrapi.File, localPath string, now time.Time) (Item, bool) {
	if localPath == "" {
		a.log.Warnf("file %q sanitises to an empty base name, skipping", f.Name)
		return Item{}, false
	}

	diskComplete := false
	if !m.LocalDownloadInProgress && !m.LocalDownloadFailed {
		var err error
		diskComplete, err = a.disk.FileDownloadComplete(localPath, f.Size)
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

	a.fetcher.StartFileCopy(m.InfoHash, f)

	bytesOnDisk, err := a.disk.GetFileBytesOnDisk(localPath)
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
