package seedr

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/ownership"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

const folderReadyAttemptCeiling = 20

// GetItems fuses the cloud inventory, the mapping store, local disk state
// and ownership into the uniform item list the caller polls (spec §4.5
// "GetItems"). Not re-entrant; the Adapter serialises internally.
func (a *Adapter) GetItems(ctx context.Context) []Item {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.recovered {
		a.recovered = true
		if a.store.Len() == 0 {
			if err := a.RecoverFromHistory(ctx); err != nil {
				a.log.WithError(err).Warn("grab-history recovery failed")
			}
		}
	}

	snap, err := a.api.GetFolderContents(ctx, nil)
	if err != nil || snap == nil {
		a.log.WithError(err).Warn("failed to fetch cloud inventory, returning empty item list")
		return nil
	}

	activeTransferNames := make(map[string]struct{}, len(snap.Transfers))
	for _, t := range snap.Transfers {
		if t.Name != "" {
			activeTransferNames[strings.ToLower(t.Name)] = struct{}{}
		}
	}

	now := time.Now()

	var items []Item
	items = append(items, a.processTransfers(ctx, snap.Transfers, now)...)
	items = append(items, a.processFolders(ctx, snap.Folders, activeTransferNames, now)...)
	items = append(items, a.processFiles(ctx, snap.Files, now)...)
	return items
}

func (a *Adapter) findByTransferID(id string) (mapping.DownloadMapping, bool) {
	for _, m := range a.store.Values() {
		if m.TransferID != nil && *m.TransferID == id {
			return m, true
		}
	}
	return mapping.DownloadMapping{}, false
}

func (a *Adapter) findByFolderID(id string) (mapping.DownloadMapping, bool) {
	for _, m := range a.store.Values() {
		if m.FolderID != nil && *m.FolderID == id {
			return m, true
		}
	}
	return mapping.DownloadMapping{}, false
}

func (a *Adapter) findByFileID(id string) (mapping.DownloadMapping, bool) {
	for _, m := range a.store.Values() {
		if m.FileID != nil && *m.FileID == id {
			return m, true
		}
	}
	return mapping.DownloadMapping{}, false
}

func (a *Adapter) findByName(name string) (mapping.DownloadMapping, bool) {
	for _, m := range a.store.Values() {
		if m.Name == name {
			return m, true
		}
	}
	return mapping.DownloadMapping{}, false
}

// processTransfers implements spec §4.5 step 4.
func (a *Adapter) processTransfers(ctx context.Context, transfers []seedrapi.Transfer, now time.Time) []Item {
	var items []Item

	for _, t := range transfers {
		m, found := a.findByTransferID(t.ID)
		if !found {
			m, found = a.findByName(t.Name)
		}

		infoHash := m.InfoHash
		if infoHash == "" {
			if t.Hash != "" {
				infoHash = strings.ToUpper(t.Hash)
			} else {
				infoHash = "seedr-" + t.ID
			}
		}

		if a.cfg.SharedAccount {
			if a.ownership.IsOwnedByMe(ctx, infoHash) == ownership.False {
				continue
			}
		}

		if !found && t.Hash != "" {
			transferID := t.ID
			m = mapping.DownloadMapping{InfoHash: infoHash, TransferID: &transferID, Name: t.Name}
		}
		m.InfoHash = infoHash

		remaining := t.Size - int64(math.Floor(float64(t.Size)*t.Progress/100))
		if remaining < 0 {
			remaining = 0
		}

		remainingTime := estimateRemainingTime(&m, t.Progress, now)

		if found || t.Hash != "" {
			a.store.Set(infoHash, m)
		}

		items = append(items, Item{
			DownloadID:    infoHash,
			Title:         t.Name,
			TotalSize:     t.Size,
			RemainingSize: remaining,
			RemainingTime: remainingTime,
			Status:        Downloading,
			CanMoveFiles:  false,
			CanBeRemoved:  false,
		})
	}

	return items
}

// estimateRemainingTime implements the progress-rate memory described in
// spec §4.5 step 4: derive an ETA from the rate of progress since the last
// observation, discarding implausible results, and always advance the
// memory when progress has changed.
func estimateRemainingTime(m *mapping.DownloadMapping, progress float64, now time.Time) *time.Duration {
	var eta *time.Duration

	if progress > 0 && progress < 100 && progress > m.LastProgress && m.LastProgressTime != nil {
		elapsed := now.Sub(*m.LastProgressTime).Seconds()
		if elapsed > 0 {
			rate := (progress - m.LastProgress) / elapsed
			if rate > 0 {
				remain := (100 - progress) / rate
				if remain > 0 && remain < 86400 {
					d := time.Duration(remain) * time.Second
					eta = &d
				}
			}
		}
	}

	if progress != m.LastProgress {
		m.LastProgress = progress
		t := now
		m.LastProgressTime = &t
	}

	return eta
}

// retryMessage formats the "Retry scheduled" message spec §8 scenario 6
// requires verbatim.
func retryMessage(attempts int) string {
	return "Retry scheduled (attempt " + strconv.Itoa(attempts) + ")"
}
